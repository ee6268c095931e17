package logformat

import "time"

// Record is the decoded form of one log line.
//
// Time is nil when the timestamp was missing or unparseable; the record is
// still usable for search and display, just unordered relative to time.
// Context holds every top-level JSON field that was not hoisted into the
// named fields, with JSON value types preserved (numbers as json.Number).
type Record struct {
	Time      *time.Time
	Level     Level
	LevelText string // verbatim severity string, kept for display
	Tag       string
	Message   string
	Context   map[string]any

	Raw []byte // original line, without terminator
	Err string // parse diagnostic; empty for well-formed records
}

// IsParseError reports whether the line's payload was not a JSON object.
// Such records preserve the raw text and carry a diagnostic instead of
// decoded fields.
func (r *Record) IsParseError() bool {
	return r.Err != ""
}

// Field returns the named record field as a display string. Recognized names
// are "time", "level", "tag" and "message"; any other name is looked up in
// the context. The second return is false when the field is absent.
func (r *Record) Field(name string) (string, bool) {
	switch name {
	case "time":
		if r.Time == nil {
			return "", false
		}
		return r.Time.Format(time.RFC3339Nano), true
	case "level":
		if r.LevelText == "" {
			return "", false
		}
		return r.LevelText, true
	case "tag":
		return r.Tag, r.Tag != ""
	case "message":
		return r.Message, r.Message != ""
	}
	v, ok := r.Context[name]
	if !ok {
		return "", false
	}
	return contextString(v), true
}
