// Package store owns the loaded bytes, the line index and the decode cache
// for one log source. The ingestion coordinator is the only writer; display
// and search read concurrently.
package store

import (
	"bytes"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jarruda/json-log-reader/internal/buffer"
	"github.com/jarruda/json-log-reader/internal/index"
	"github.com/jarruda/json-log-reader/pkg/logformat"
)

// ErrOutOfRange is returned when a record index is at or past LineCount
var ErrOutOfRange = errors.New("record index out of range")

// Store holds the raw byte buffer, the line index and a cache of decoded
// records. Records are decoded lazily on first access and never evicted.
type Store struct {
	mu    sync.RWMutex
	arena *buffer.Arena
	index *index.LineIndex
	count atomic.Int64

	codec *logformat.Codec

	cacheMu sync.RWMutex
	cache   map[int]*logformat.Record
}

// New creates an empty store decoding through the given codec
func New(codec *logformat.Codec) *Store {
	return &Store{
		arena: buffer.NewArena(),
		index: index.NewLineIndex(),
		codec: codec,
		cache: make(map[int]*logformat.Record),
	}
}

// LineCount returns the number of fully indexed lines. Non-blocking; an
// append becomes observable here only after its lines are indexed.
func (s *Store) LineCount() int {
	return int(s.count.Load())
}

// Size returns the number of bytes ingested so far
func (s *Store) Size() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.arena.Len()
}

// RawLine returns the bytes of line i without its terminator. The slice
// aliases the owned buffer and stays valid across later appends.
func (s *Store) RawLine(i int) ([]byte, error) {
	if i < 0 || i >= s.LineCount() {
		return nil, ErrOutOfRange
	}

	s.mu.RLock()
	rl, ok := s.index.Line(i)
	var raw []byte
	if ok {
		raw = s.arena.Slice(rl.Offset, rl.Length)
	}
	s.mu.RUnlock()

	if !ok {
		return nil, ErrOutOfRange
	}
	// Tolerate \r\n terminators
	return bytes.TrimSuffix(raw, []byte{'\r'}), nil
}

// Get returns the decoded record at index i, decoding on first access.
// Concurrent first accesses may decode twice; the first cached result wins,
// which is safe since decoding is a pure function of the raw bytes.
func (s *Store) Get(i int) (*logformat.Record, error) {
	if i < 0 || i >= s.LineCount() {
		return nil, ErrOutOfRange
	}

	s.cacheMu.RLock()
	rec, ok := s.cache[i]
	s.cacheMu.RUnlock()
	if ok {
		return rec, nil
	}

	raw, err := s.RawLine(i)
	if err != nil {
		return nil, err
	}
	rec = s.codec.Decode(raw)

	s.cacheMu.Lock()
	if prev, ok := s.cache[i]; ok {
		rec = prev
	} else {
		s.cache[i] = rec
	}
	s.cacheMu.Unlock()

	return rec, nil
}

// AppendBytes extends the buffer and indexes any newly completed lines.
// Called only by the ingestion coordinator. Returns the number of new lines.
func (s *Store) AppendBytes(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	s.mu.Lock()
	base := s.arena.Len()
	s.arena.Append(p)
	added, err := s.index.Scan(p, base)
	if err == nil {
		s.count.Store(int64(s.index.Count()))
	}
	s.mu.Unlock()

	return added, err
}

// FindAtTime returns the index of the first record whose parsed timestamp is
// at or after t, or -1. Records with unparsed timestamps are skipped.
func (s *Store) FindAtTime(t time.Time) int {
	n := s.LineCount()
	for i := 0; i < n; i++ {
		rec, err := s.Get(i)
		if err != nil {
			return -1
		}
		if rec.Time != nil && !rec.Time.Before(t) {
			return i
		}
	}
	return -1
}
