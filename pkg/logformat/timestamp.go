package logformat

import (
	"strconv"
	"time"
)

// TimestampParser handles timestamp field values that are not RFC 3339.
// Producers disagree on timestamp formats, so a handful of common layouts
// plus unix epoch values are accepted.
type TimestampParser struct {
	layouts []string
}

// NewTimestampParser creates a parser with the common fallback formats
func NewTimestampParser() *TimestampParser {
	return &TimestampParser{
		layouts: []string{
			// 2024-01-15 10:30:45.123
			"2006-01-02 15:04:05.000",
			// 2024-01-15 10:30:45
			"2006-01-02 15:04:05",
			// 2024-01-15T10:30:45 (RFC 3339 without zone)
			"2006-01-02T15:04:05",
			"2006-01-02T15:04:05.000",
			// Apache/nginx common log format
			"02/Jan/2006:15:04:05 -0700",
			// Syslog format, year-less
			"Jan 2 15:04:05",
		},
	}
}

// Parse attempts to interpret a timestamp field value.
// Returns nil when no known format matches.
func (p *TimestampParser) Parse(s string) *time.Time {
	if s == "" {
		return nil
	}

	// Unix epoch, seconds or milliseconds
	if isDigits(s) {
		n, err := strconv.ParseInt(s, 10, 64)
		if err == nil {
			var t time.Time
			if len(s) >= 13 {
				t = time.UnixMilli(n)
			} else {
				t = time.Unix(n, 0)
			}
			return &t
		}
	}

	for _, layout := range p.layouts {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		// Syslog timestamps carry no year; assume the current one
		if t.Year() == 0 {
			t = time.Date(time.Now().Year(), t.Month(), t.Day(),
				t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
		}
		return &t
	}

	return nil
}

func isDigits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return len(s) > 0
}
