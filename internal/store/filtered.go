package store

import (
	"bytes"

	"github.com/jarruda/json-log-reader/pkg/logformat"
)

// FilteredView is a read-only view of a Store restricted by severity and/or
// a raw-text substring. The index of passing records is built lazily and
// extended incrementally as the store grows, never re-testing records already
// seen. Not safe for concurrent use; each consumer owns its view.
type FilteredView struct {
	store *Store

	levels   map[logformat.Level]bool
	contains []byte

	passing []int
	next    int // first store index not yet tested
}

// NewFilteredView creates an unfiltered view over the store
func NewFilteredView(s *Store) *FilteredView {
	return &FilteredView{
		store:  s,
		levels: make(map[logformat.Level]bool),
	}
}

// SetLevels restricts the view to the given severities (empty map shows all)
func (f *FilteredView) SetLevels(levels map[logformat.Level]bool) {
	f.levels = levels
	f.reset()
}

// SetContains restricts the view to lines containing the given text
// (empty clears the text filter)
func (f *FilteredView) SetContains(text string) {
	if text == "" {
		f.contains = nil
	} else {
		f.contains = []byte(text)
	}
	f.reset()
}

// IsFiltered returns true when any filter is active
func (f *FilteredView) IsFiltered() bool {
	return len(f.levels) > 0 || len(f.contains) > 0
}

func (f *FilteredView) reset() {
	f.passing = nil
	f.next = 0
}

// extend tests records appended since the last call
func (f *FilteredView) extend() {
	total := f.store.LineCount()
	for ; f.next < total; f.next++ {
		if f.passes(f.next) {
			f.passing = append(f.passing, f.next)
		}
	}
}

func (f *FilteredView) passes(i int) bool {
	if len(f.contains) > 0 {
		raw, err := f.store.RawLine(i)
		if err != nil || !bytes.Contains(raw, f.contains) {
			return false
		}
	}
	if len(f.levels) > 0 {
		rec, err := f.store.Get(i)
		if err != nil || !f.levels[rec.Level] {
			return false
		}
	}
	return true
}

// LineCount returns the number of records passing the filter
func (f *FilteredView) LineCount() int {
	if !f.IsFiltered() {
		return f.store.LineCount()
	}
	f.extend()
	return len(f.passing)
}

// Get returns the record at filtered position i together with its original
// store index
func (f *FilteredView) Get(i int) (*logformat.Record, int, error) {
	orig := f.OriginalIndex(i)
	if orig < 0 {
		return nil, -1, ErrOutOfRange
	}
	rec, err := f.store.Get(orig)
	return rec, orig, err
}

// OriginalIndex maps a filtered position to the store index, or -1
func (f *FilteredView) OriginalIndex(i int) int {
	if !f.IsFiltered() {
		if i < 0 || i >= f.store.LineCount() {
			return -1
		}
		return i
	}
	f.extend()
	if i < 0 || i >= len(f.passing) {
		return -1
	}
	return f.passing[i]
}
