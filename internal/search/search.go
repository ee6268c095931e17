// Package search runs substring and regex queries over the record store,
// streaming matching record indices as they are found.
package search

import (
	"context"
	"fmt"
	"regexp"

	"github.com/jarruda/json-log-reader/internal/store"
)

// Query describes one search. A zero Field matches against the raw line
// without forcing a JSON decode; otherwise the named record field is tested
// ("time", "level", "tag", "message", or any context key).
type Query struct {
	Pattern       string
	Regex         bool // Pattern is a regular expression rather than a literal
	CaseSensitive bool
	WholeWord     bool
	Field         string
	Backward      bool
	// Start is the record index to begin scanning from. Negative means the
	// natural end for the direction: the first record going forward, the last
	// going backward.
	Start int
}

// Engine answers queries against a store it borrows read-only
type Engine struct {
	store *store.Store
}

// NewEngine creates an engine over the given store
func NewEngine(s *store.Store) *Engine {
	return &Engine{store: s}
}

// compile builds the query's matcher. Literal patterns are escaped to match
// verbatim; case-insensitivity and whole-word matching are folded into the
// expression so it is compiled once and reused across records.
func (q Query) compile() (*regexp.Regexp, error) {
	pattern := q.Pattern
	if !q.Regex {
		pattern = regexp.QuoteMeta(pattern)
	}
	if q.WholeWord {
		pattern = `\b(?:` + pattern + `)\b`
	}
	if !q.CaseSensitive {
		pattern = `(?i)` + pattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("bad search pattern: %w", err)
	}
	return re, nil
}

// Search starts a query. Pattern compilation errors surface immediately;
// scanning runs in its own goroutine and results stream out in scan order.
// The stream is finite: a forward scan ends when it catches up with
// LineCount(), which it re-reads each step so records appended by concurrent
// tailing are still visited.
func (e *Engine) Search(ctx context.Context, q Query) (*Stream, error) {
	re, err := q.compile()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	// Unbuffered: the scan only advances past a match once the consumer has
	// taken it, so results are never produced far ahead of consumption.
	st := &Stream{
		results: make(chan int),
		cancel:  cancel,
	}

	go e.run(ctx, q, re, st)
	return st, nil
}

func (e *Engine) run(ctx context.Context, q Query, re *regexp.Regexp, st *Stream) {
	defer close(st.results)
	defer st.cancel()

	emit := func(i int) bool {
		select {
		case <-ctx.Done():
			return false
		default:
		}
		select {
		case st.results <- i:
			return true
		case <-ctx.Done():
			return false
		}
	}

	if q.Backward {
		i := q.Start
		if n := e.store.LineCount(); i >= n || i < 0 {
			i = n - 1
		}
		for ; i >= 0; i-- {
			if ctx.Err() != nil {
				return
			}
			ok, err := e.match(re, q.Field, i)
			if err != nil {
				st.err = err
				return
			}
			if ok && !emit(i) {
				return
			}
		}
		return
	}

	i := q.Start
	if i < 0 {
		i = 0
	}
	for {
		if ctx.Err() != nil {
			return
		}
		if i >= e.store.LineCount() {
			return
		}
		ok, err := e.match(re, q.Field, i)
		if err != nil {
			st.err = err
			return
		}
		if ok && !emit(i) {
			return
		}
		i++
	}
}

func (e *Engine) match(re *regexp.Regexp, field string, i int) (bool, error) {
	if field == "" {
		raw, err := e.store.RawLine(i)
		if err != nil {
			return false, err
		}
		return re.Match(raw), nil
	}

	rec, err := e.store.Get(i)
	if err != nil {
		return false, err
	}
	v, ok := rec.Field(field)
	if !ok {
		return false, nil
	}
	return re.MatchString(v), nil
}

// Stream is a lazy, cancellable sequence of matching record indices.
// Results arrive in scan order; the channel closes when the scan finishes,
// fails, or is cancelled. After Cancel, at most one already-found match is
// still delivered.
type Stream struct {
	results chan int
	cancel  context.CancelFunc
	err     error
}

// Results returns the channel of matching record indices
func (st *Stream) Results() <-chan int {
	return st.results
}

// Cancel stops the scan. Cancellation is a normal terminal state, not an
// error; it takes effect within one record scan.
func (st *Stream) Cancel() {
	st.cancel()
}

// Err reports a store access failure. Valid once Results is closed; nil on
// normal completion and on cancellation.
func (st *Stream) Err() error {
	return st.err
}

// Collect drains the stream into a slice, for callers that want the whole
// result set
func (st *Stream) Collect() ([]int, error) {
	var out []int
	for i := range st.results {
		out = append(out, i)
	}
	return out, st.err
}
