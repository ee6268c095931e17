package render

import (
	"bytes"
	"encoding/json"
	"sort"
	"strings"

	"github.com/alecthomas/chroma/v2/quick"

	"github.com/jarruda/json-log-reader/pkg/logformat"
)

// ContextHighlighter pretty-prints a record's full field set as
// syntax-highlighted JSON for detail display
type ContextHighlighter struct {
	theme string
}

// NewContextHighlighter creates a highlighter with the default theme
func NewContextHighlighter() *ContextHighlighter {
	return &ContextHighlighter{theme: "monokai"}
}

// Highlight renders the record detail. Parse-error records show the raw
// line and the diagnostic instead of fields.
func (h *ContextHighlighter) Highlight(rec *logformat.Record) string {
	if rec.IsParseError() {
		return string(rec.Raw) + "\n(" + rec.Err + ")"
	}

	text := formatDetail(rec)

	var buf bytes.Buffer
	if err := quick.Highlight(&buf, text, "json", "terminal16m", h.theme); err != nil {
		return text
	}
	return buf.String()
}

// formatDetail renders the hoisted fields followed by the context keys in
// stable order
func formatDetail(rec *logformat.Record) string {
	var fields []string
	writeField := func(key string, value any) {
		kb, _ := json.Marshal(key)
		vb, err := json.MarshalIndent(value, "  ", "  ")
		if err != nil {
			vb, _ = json.Marshal(err.Error())
		}
		fields = append(fields, "  "+string(kb)+": "+string(vb))
	}

	if rec.Time != nil {
		writeField("time", rec.Time)
	}
	if rec.LevelText != "" {
		writeField("level", rec.LevelText)
	}
	if rec.Tag != "" {
		writeField("tag", rec.Tag)
	}
	if rec.Message != "" {
		writeField("message", rec.Message)
	}

	keys := make([]string, 0, len(rec.Context))
	for k := range rec.Context {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		writeField(k, rec.Context[k])
	}

	// Valid JSON, so the detail can be pasted into other tools
	return "{\n" + strings.Join(fields, ",\n") + "\n}"
}
