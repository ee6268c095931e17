// Package session ties one open log file to its store, ingestion coordinator
// and search engine. Exactly one search is active per session; a new search
// supersedes the previous one.
package session

import (
	"context"
	"path/filepath"
	"sync"

	"github.com/jarruda/json-log-reader/internal/config"
	"github.com/jarruda/json-log-reader/internal/ingest"
	"github.com/jarruda/json-log-reader/internal/search"
	"github.com/jarruda/json-log-reader/internal/store"
	"github.com/jarruda/json-log-reader/pkg/logformat"
)

// Session owns all per-file state from open to close
type Session struct {
	path  string
	store *store.Store
	coord *ingest.Coordinator
	eng   *search.Engine

	mu     sync.Mutex
	active *search.Stream
}

// Open creates a session for the file and starts the initial load in the
// background. Progress and completion arrive on Events.
func Open(ctx context.Context, path string, cfg *config.Config) (*Session, error) {
	codec := logformat.NewCodec(logformat.FieldKeys{
		Time:    cfg.Fields.Timestamp,
		Level:   cfg.Fields.Level,
		Tag:     cfg.Fields.Tag,
		Message: cfg.Fields.Message,
	})

	st := store.New(codec)
	coord := ingest.New(st, path, ingest.Options{
		ChunkSize:    cfg.Ingest.ChunkSize(),
		PollInterval: cfg.Ingest.PollInterval(),
	})

	s := &Session{
		path:  path,
		store: st,
		coord: coord,
		eng:   search.NewEngine(st),
	}
	if err := coord.Start(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Store exposes the read-only record access used for display
func (s *Session) Store() *store.Store {
	return s.store
}

// Events returns the ingestion notification channel
func (s *Session) Events() <-chan ingest.Event {
	return s.coord.Events()
}

// State returns the ingestion state
func (s *Session) State() ingest.State {
	return s.coord.State()
}

// Filename returns the display name of the open file
func (s *Session) Filename() string {
	return filepath.Base(s.path)
}

// Search starts a query, cancelling any previous one
func (s *Session) Search(ctx context.Context, q search.Query) (*search.Stream, error) {
	st, err := s.eng.Search(ctx, q)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if s.active != nil {
		s.active.Cancel()
	}
	s.active = st
	s.mu.Unlock()
	return st, nil
}

// CancelSearch cancels the active search, if any
func (s *Session) CancelSearch() {
	s.mu.Lock()
	if s.active != nil {
		s.active.Cancel()
		s.active = nil
	}
	s.mu.Unlock()
}

// Follow begins tailing the file for appended records
func (s *Session) Follow(ctx context.Context) error {
	return s.coord.StartTail(ctx)
}

// StopFollow stops tailing
func (s *Session) StopFollow() {
	s.coord.StopTail()
}

// Close tears the session down: the active search is cancelled and tailing
// stops. The store and its decoded records stay readable until released.
func (s *Session) Close() {
	s.CancelSearch()
	s.coord.CancelLoad()
	s.coord.StopTail()
}
