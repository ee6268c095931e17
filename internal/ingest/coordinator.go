// Package ingest drives background loading and tailing of a log source,
// feeding bytes through the record store's append path and publishing
// progress and new-record notifications.
package ingest

import (
	"context"
	"fmt"
	"log"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"

	jlvio "github.com/jarruda/json-log-reader/internal/io"
	"github.com/jarruda/json-log-reader/internal/store"
)

// State of the coordinator. Loading moves to Ready on completion; Tailing is
// optionally entered from Ready; any state moves to Failed on an
// unrecoverable I/O error.
type State int32

const (
	StateIdle State = iota
	StateLoading
	StateReady
	StateTailing
	StateFailed
)

// String returns the state's display name
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateTailing:
		return "tailing"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// EventKind discriminates coordinator notifications
type EventKind int

const (
	// EventProgress reports bytes processed during loading
	EventProgress EventKind = iota
	// EventLoaded reports the initial scan completing
	EventLoaded
	// EventAppended reports new records arriving while tailing
	EventAppended
	// EventFailed reports an unrecoverable source error
	EventFailed
)

// Event is one coordinator notification
type Event struct {
	Kind     EventKind
	Bytes    int64 // bytes processed so far
	Total    int64 // total size if known, 0 otherwise
	NewLines int   // lines appended (EventAppended)
	Err      error // diagnostic (EventFailed)
}

const (
	defaultChunkSize    = 64 * 1024
	defaultPollInterval = 500 * time.Millisecond
)

// Options tune the coordinator. Zero values use defaults.
type Options struct {
	ChunkSize    int
	PollInterval time.Duration
}

// Coordinator owns the write path into a store for one source file.
// It is the only component that appends bytes; readers observe growth through
// the store's published state and through the event channel.
type Coordinator struct {
	store     *store.Store
	path      string
	chunkSize int
	pollEvery time.Duration

	state  atomic.Int32
	offset int64 // bytes consumed from the source; only the active task touches it

	events chan Event

	mu         sync.Mutex
	loadCancel context.CancelFunc
	tailCancel context.CancelFunc
	wg         sync.WaitGroup
}

// New creates a coordinator for the given source path
func New(s *store.Store, path string, opts Options) *Coordinator {
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = defaultChunkSize
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = defaultPollInterval
	}
	return &Coordinator{
		store:     s,
		path:      path,
		chunkSize: opts.ChunkSize,
		pollEvery: opts.PollInterval,
		events:    make(chan Event, 128),
	}
}

// Events returns the notification channel. Progress events may be dropped
// when the consumer lags; terminal and append events are always delivered.
func (c *Coordinator) Events() <-chan Event {
	return c.events
}

// State returns the current state
func (c *Coordinator) State() State {
	return State(c.state.Load())
}

// Start begins the initial load in the background. It validates the source
// synchronously and returns immediately; completion arrives as an
// EventLoaded or EventFailed notification.
func (c *Coordinator) Start(ctx context.Context) error {
	if !c.state.CompareAndSwap(int32(StateIdle), int32(StateLoading)) {
		return fmt.Errorf("load already started (state %s)", c.State())
	}

	if _, err := os.Stat(c.path); err != nil {
		c.state.Store(int32(StateFailed))
		return fmt.Errorf("open source: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	c.mu.Lock()
	c.loadCancel = cancel
	c.mu.Unlock()

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.load(ctx)
	}()
	return nil
}

// CancelLoad abandons an in-progress load. Lines already indexed remain
// queryable.
func (c *Coordinator) CancelLoad() {
	c.mu.Lock()
	if c.loadCancel != nil {
		c.loadCancel()
	}
	c.mu.Unlock()
}

func (c *Coordinator) load(ctx context.Context) {
	file, err := jlvio.OpenMapped(c.path)
	if err != nil {
		c.fail(fmt.Errorf("open source: %w", err))
		return
	}
	defer file.Close()

	total := file.Size()
	buf := make([]byte, c.chunkSize)

	for c.offset < total {
		if ctx.Err() != nil {
			// Abandoned; partial data stays queryable
			c.state.Store(int32(StateIdle))
			return
		}

		n := int64(len(buf))
		if c.offset+n > total {
			n = total - c.offset
		}
		read, err := file.ReadAt(buf[:n], c.offset)
		if err != nil {
			c.fail(fmt.Errorf("read %s at %d: %w", file.Path(), c.offset, err))
			return
		}
		if _, err := c.store.AppendBytes(buf[:read]); err != nil {
			c.fail(fmt.Errorf("index %s: %w", file.Path(), err))
			return
		}
		c.offset += int64(read)
		c.emitProgress(Event{Kind: EventProgress, Bytes: c.offset, Total: total})
	}

	c.state.Store(int32(StateReady))
	c.emit(Event{Kind: EventLoaded, Bytes: c.offset, Total: total})
}

// StartTail watches the source for appended bytes and feeds them through the
// same append path. Valid from Ready; runs until StopTail or the context is
// cancelled. Already-consumed bytes are never re-read.
func (c *Coordinator) StartTail(ctx context.Context) error {
	if !c.state.CompareAndSwap(int32(StateReady), int32(StateTailing)) {
		return fmt.Errorf("cannot tail from state %s", c.State())
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		c.state.Store(int32(StateReady))
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(c.path); err != nil {
		watcher.Close()
		c.state.Store(int32(StateReady))
		return fmt.Errorf("watch source: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	c.mu.Lock()
	c.tailCancel = cancel
	c.mu.Unlock()

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer watcher.Close()
		c.tail(ctx, watcher)
	}()
	return nil
}

// StopTail stops watching the source. The coordinator returns to Ready.
func (c *Coordinator) StopTail() {
	c.mu.Lock()
	if c.tailCancel != nil {
		c.tailCancel()
	}
	c.mu.Unlock()
	c.wg.Wait()
}

func (c *Coordinator) tail(ctx context.Context, watcher *fsnotify.Watcher) {
	// Poll as a fallback for filesystems where change notification is
	// unreliable (network mounts, some container overlays)
	ticker := time.NewTicker(c.pollEvery)
	defer ticker.Stop()

	// Catch up on anything written between load completion and watch start
	if !c.consumeNew() {
		return
	}

	for {
		select {
		case <-ctx.Done():
			c.state.CompareAndSwap(int32(StateTailing), int32(StateReady))
			return
		case ev, ok := <-watcher.Events:
			if !ok {
				c.state.CompareAndSwap(int32(StateTailing), int32(StateReady))
				return
			}
			if ev.Op.Has(fsnotify.Write) || ev.Op.Has(fsnotify.Create) {
				if !c.consumeNew() {
					return
				}
			}
		case err, ok := <-watcher.Errors:
			if ok && err != nil {
				log.Printf("watch error on %s: %v", c.path, err)
			}
		case <-ticker.C:
			if !c.consumeNew() {
				return
			}
		}
	}
}

// consumeNew reads any bytes past the consumed offset and appends them.
// Returns false after transitioning to Failed.
func (c *Coordinator) consumeNew() bool {
	info, err := os.Stat(c.path)
	if err != nil {
		c.fail(fmt.Errorf("source vanished: %w", err))
		return false
	}
	size := info.Size()
	if size <= c.offset {
		return true
	}

	file, err := os.Open(c.path)
	if err != nil {
		c.fail(fmt.Errorf("reopen source: %w", err))
		return false
	}
	defer file.Close()

	buf := make([]byte, c.chunkSize)
	newLines := 0
	for c.offset < size {
		n := int64(len(buf))
		if c.offset+n > size {
			n = size - c.offset
		}
		read, err := file.ReadAt(buf[:n], c.offset)
		if err != nil {
			c.fail(fmt.Errorf("read appended bytes: %w", err))
			return false
		}
		added, err := c.store.AppendBytes(buf[:read])
		if err != nil {
			c.fail(fmt.Errorf("index appended bytes: %w", err))
			return false
		}
		c.offset += int64(read)
		newLines += added
	}

	if newLines > 0 {
		c.emit(Event{Kind: EventAppended, Bytes: c.offset, NewLines: newLines})
	}
	return true
}

func (c *Coordinator) fail(err error) {
	c.state.Store(int32(StateFailed))
	log.Printf("ingest %s: %v", c.path, err)
	c.emit(Event{Kind: EventFailed, Err: err})
}

// emit delivers an event the consumer must not miss
func (c *Coordinator) emit(ev Event) {
	c.events <- ev
}

// emitProgress delivers best-effort progress; dropped when the consumer lags
func (c *Coordinator) emitProgress(ev Event) {
	select {
	case c.events <- ev:
	default:
	}
}
