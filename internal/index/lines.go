// Package index maintains byte offsets for each line of a growing buffer.
package index

import (
	"bytes"
	"fmt"
)

// RawLine addresses one line within the source buffer.
// Length excludes the '\n' terminator; a trailing '\r' is part of the
// addressed bytes and is trimmed by the store's accessor.
type RawLine struct {
	Offset int64
	Length int
}

// LineIndex is an append-only list of line boundaries. Scanning is
// incremental: state about a trailing partial line is carried between calls,
// so a half-written record is never exposed until its terminator arrives.
type LineIndex struct {
	lines     []RawLine
	lineStart int64 // offset where the current (possibly partial) line begins
	scanned   int64 // total bytes scanned so far
}

// NewLineIndex creates an empty index
func NewLineIndex() *LineIndex {
	return &LineIndex{
		// assume ~100 bytes per line once data starts arriving
		lines: make([]RawLine, 0, 64),
	}
}

// Scan indexes the newly available bytes in chunk, whose first byte sits at
// global offset base. base must equal the number of bytes scanned so far;
// previously indexed regions are never re-scanned. Returns the number of
// lines appended.
func (x *LineIndex) Scan(chunk []byte, base int64) (int, error) {
	if base != x.scanned {
		return 0, fmt.Errorf("scan offset %d does not continue previous scan at %d", base, x.scanned)
	}

	added := 0
	pos := 0
	for {
		i := bytes.IndexByte(chunk[pos:], '\n')
		if i == -1 {
			break
		}
		end := base + int64(pos) + int64(i)
		x.lines = append(x.lines, RawLine{
			Offset: x.lineStart,
			Length: int(end - x.lineStart),
		})
		x.lineStart = end + 1
		pos += i + 1
		added++
	}

	x.scanned += int64(len(chunk))
	return added, nil
}

// Count returns the number of fully indexed lines
func (x *LineIndex) Count() int {
	return len(x.lines)
}

// Line returns the boundaries of line i. The second return is false when i
// is out of range.
func (x *LineIndex) Line(i int) (RawLine, bool) {
	if i < 0 || i >= len(x.lines) {
		return RawLine{}, false
	}
	return x.lines[i], true
}
