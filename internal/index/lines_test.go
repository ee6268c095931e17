package index

import (
	"bytes"
	"strings"
	"testing"
)

func scanAll(t *testing.T, x *LineIndex, chunk []byte, base int64) int {
	t.Helper()
	n, err := x.Scan(chunk, base)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	return n
}

func TestScanRoundTrip(t *testing.T) {
	lines := []string{
		`{"t":"2023-05-31T19:51:05Z","message":"one"}`,
		`{"t":"2023-05-31T19:51:06Z","message":"two"}`,
		"plain text line",
		"",
		"last",
	}
	buf := []byte(strings.Join(lines, "\n") + "\n")

	x := NewLineIndex()
	added := scanAll(t, x, buf, 0)

	if added != len(lines) || x.Count() != len(lines) {
		t.Fatalf("Count = %d, want %d", x.Count(), len(lines))
	}
	for i, want := range lines {
		rl, ok := x.Line(i)
		if !ok {
			t.Fatalf("Line(%d) out of range", i)
		}
		got := buf[rl.Offset : rl.Offset+int64(rl.Length)]
		if !bytes.Equal(got, []byte(want)) {
			t.Errorf("line %d = %q, want %q", i, got, want)
		}
	}
}

func TestScanIncrementalEquivalence(t *testing.T) {
	buf := []byte("alpha\nbravo\ncharlie\ndelta\n")

	whole := NewLineIndex()
	scanAll(t, whole, buf, 0)

	// Split at every byte position, not just line boundaries
	for k := 0; k <= len(buf); k++ {
		split := NewLineIndex()
		scanAll(t, split, buf[:k], 0)
		scanAll(t, split, buf[k:], int64(k))

		if split.Count() != whole.Count() {
			t.Fatalf("split at %d: Count = %d, want %d", k, split.Count(), whole.Count())
		}
		for i := 0; i < whole.Count(); i++ {
			a, _ := split.Line(i)
			b, _ := whole.Line(i)
			if a != b {
				t.Errorf("split at %d: line %d = %+v, want %+v", k, i, a, b)
			}
		}
	}
}

func TestScanPartialTrailingLine(t *testing.T) {
	x := NewLineIndex()

	scanAll(t, x, []byte("complete\npart"), 0)
	if x.Count() != 1 {
		t.Fatalf("Count = %d, want 1 (partial line must not be indexed)", x.Count())
	}

	scanAll(t, x, []byte("ial\n"), 13)
	if x.Count() != 2 {
		t.Fatalf("Count = %d, want 2 after terminator arrives", x.Count())
	}
	rl, _ := x.Line(1)
	if rl.Offset != 9 || rl.Length != 7 {
		t.Errorf("line 1 = %+v, want offset 9 length 7", rl)
	}
}

func TestScanInvariants(t *testing.T) {
	x := NewLineIndex()
	scanAll(t, x, []byte("aa\nbbbb\nc\n\ndd\n"), 0)

	var prevEnd int64
	for i := 0; i < x.Count(); i++ {
		rl, _ := x.Line(i)
		if rl.Offset < prevEnd {
			t.Errorf("line %d overlaps previous: %+v", i, rl)
		}
		// contiguous coverage modulo the single-byte terminator
		if rl.Offset != prevEnd {
			t.Errorf("line %d leaves a gap: starts at %d, previous ended at %d", i, rl.Offset, prevEnd)
		}
		prevEnd = rl.Offset + int64(rl.Length) + 1
	}
}

func TestScanOffsetMismatch(t *testing.T) {
	x := NewLineIndex()
	scanAll(t, x, []byte("abc\n"), 0)

	if _, err := x.Scan([]byte("def\n"), 99); err == nil {
		t.Error("expected error for discontinuous scan offset")
	}
}

func TestLineOutOfRange(t *testing.T) {
	x := NewLineIndex()
	scanAll(t, x, []byte("abc\n"), 0)

	if _, ok := x.Line(-1); ok {
		t.Error("Line(-1) should be out of range")
	}
	if _, ok := x.Line(1); ok {
		t.Error("Line(1) should be out of range")
	}
}
