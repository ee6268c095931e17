package logformat

import "strings"

// Level represents a log severity level
type Level int

const (
	LevelUnknown Level = iota
	LevelDebug
	LevelInfo
	LevelWarning
	LevelError
	LevelFatal
)

// ParseLevel matches a severity string case-insensitively against the fixed
// enum. Anything unrecognized maps to LevelUnknown; callers keep the verbatim
// text for display.
func ParseLevel(s string) Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG", "DBG":
		return LevelDebug
	case "INFO", "INF":
		return LevelInfo
	case "WARNING", "WARN", "WRN":
		return LevelWarning
	case "ERROR", "ERR":
		return LevelError
	case "FATAL", "FTL", "CRITICAL":
		return LevelFatal
	}
	return LevelUnknown
}

// String returns the canonical display name for a level
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarning:
		return "WARNING"
	case LevelError:
		return "ERROR"
	case LevelFatal:
		return "FATAL"
	}
	return "UNKNOWN"
}
