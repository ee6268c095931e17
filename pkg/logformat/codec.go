package logformat

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"time"
)

// FieldKeys names the top-level JSON keys that are hoisted out of the context
// into the Record's typed fields.
type FieldKeys struct {
	Time    string
	Level   string
	Tag     string
	Message string
}

// DefaultFieldKeys returns the documented default key names
func DefaultFieldKeys() FieldKeys {
	return FieldKeys{Time: "t", Level: "level", Tag: "tag", Message: "message"}
}

// Codec decodes raw log lines into Records
type Codec struct {
	keys FieldKeys
	ts   *TimestampParser
}

// NewCodec creates a codec for the given key names. Empty key names fall back
// to the defaults.
func NewCodec(keys FieldKeys) *Codec {
	def := DefaultFieldKeys()
	if keys.Time == "" {
		keys.Time = def.Time
	}
	if keys.Level == "" {
		keys.Level = def.Level
	}
	if keys.Tag == "" {
		keys.Tag = def.Tag
	}
	if keys.Message == "" {
		keys.Message = def.Message
	}
	return &Codec{
		keys: keys,
		ts:   NewTimestampParser(),
	}
}

// Decode parses one line into a Record. It never fails: a payload that is not
// a JSON object yields a parse-error record carrying the raw text and a
// diagnostic, and a well-formed object with missing fields takes defaults.
func (c *Codec) Decode(raw []byte) *Record {
	rec := &Record{Raw: raw}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var obj map[string]any
	if err := dec.Decode(&obj); err != nil {
		rec.Err = fmt.Sprintf("not a JSON object: %v", err)
		return rec
	}
	if obj == nil {
		rec.Err = "not a JSON object: null"
		return rec
	}
	// The whole line must be one object; anything after it is garbage
	if _, err := dec.Token(); err != io.EOF {
		rec.Err = "not a JSON object: trailing data after object"
		return rec
	}

	rec.Context = obj

	if v, ok := obj[c.keys.Time]; ok {
		if s, isStr := v.(string); isStr {
			rec.Time = c.parseTimestamp(s)
			delete(obj, c.keys.Time)
		}
	}
	if v, ok := obj[c.keys.Level]; ok {
		if s, isStr := v.(string); isStr {
			rec.Level = ParseLevel(s)
			rec.LevelText = s
			delete(obj, c.keys.Level)
		}
	}
	if v, ok := obj[c.keys.Tag]; ok {
		if s, isStr := v.(string); isStr {
			rec.Tag = s
			delete(obj, c.keys.Tag)
		}
	}
	if v, ok := obj[c.keys.Message]; ok {
		if s, isStr := v.(string); isStr {
			rec.Message = s
			delete(obj, c.keys.Message)
		}
	}

	return rec
}

// parseTimestamp tries RFC 3339 first, then the looser fallback formats.
// Returns nil when nothing matches; the record stays usable.
func (c *Codec) parseTimestamp(s string) *time.Time {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return &t
	}
	return c.ts.Parse(s)
}

// contextString renders a context value for matching and display without
// losing the underlying JSON type.
func contextString(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case json.Number:
		return val.String()
	case bool:
		return fmt.Sprintf("%t", val)
	case nil:
		return "null"
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(b)
}
