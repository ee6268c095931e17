package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jarruda/json-log-reader/internal/config"
	"github.com/jarruda/json-log-reader/pkg/logformat"
)

// RecordRenderer formats decoded records as single display lines,
// colored by severity
type RecordRenderer struct {
	styles     map[logformat.Level]lipgloss.Style
	parseError lipgloss.Style
	indexStyle lipgloss.Style
	showIndex  bool
}

// NewRecordRenderer creates a renderer with config colors
func NewRecordRenderer(cfg *config.Config, showIndex bool) *RecordRenderer {
	styles := map[logformat.Level]lipgloss.Style{
		logformat.LevelUnknown: lipgloss.NewStyle(),
		logformat.LevelDebug:   lipgloss.NewStyle().Foreground(lipgloss.Color(cfg.Theme.Levels.Debug)),
		logformat.LevelInfo:    lipgloss.NewStyle().Foreground(lipgloss.Color(cfg.Theme.Levels.Info)),
		logformat.LevelWarning: lipgloss.NewStyle().Foreground(lipgloss.Color(cfg.Theme.Levels.Warning)),
		logformat.LevelError:   lipgloss.NewStyle().Foreground(lipgloss.Color(cfg.Theme.Levels.Error)),
		logformat.LevelFatal:   lipgloss.NewStyle().Foreground(lipgloss.Color(cfg.Theme.Levels.Fatal)),
	}

	return &RecordRenderer{
		styles:     styles,
		parseError: lipgloss.NewStyle().Foreground(lipgloss.Color(cfg.Theme.ParseError)),
		indexStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		showIndex:  showIndex,
	}
}

// Render formats one record. Malformed lines are shown distinctly as raw
// text with a marker rather than hidden.
func (r *RecordRenderer) Render(idx int, rec *logformat.Record) string {
	var b strings.Builder

	if r.showIndex {
		b.WriteString(r.indexStyle.Render(fmt.Sprintf("%8d ", idx)))
	}

	if rec.IsParseError() {
		b.WriteString(r.parseError.Render("? " + string(rec.Raw)))
		return b.String()
	}

	parts := make([]string, 0, 4)
	if rec.Time != nil {
		parts = append(parts, rec.Time.Format("2006-01-02 15:04:05.000"))
	}
	if rec.LevelText != "" {
		parts = append(parts, levelLabel(rec))
	}
	if rec.Tag != "" {
		parts = append(parts, "["+rec.Tag+"]")
	}
	parts = append(parts, rec.Message)

	style := r.styles[rec.Level]
	b.WriteString(style.Render(strings.Join(parts, " ")))
	return b.String()
}

// levelLabel shows the canonical name for known levels and the verbatim
// text for unrecognized ones
func levelLabel(rec *logformat.Record) string {
	if rec.Level == logformat.LevelUnknown {
		return rec.LevelText
	}
	return rec.Level.String()
}
