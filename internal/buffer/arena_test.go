package buffer

import (
	"bytes"
	"testing"
)

func TestAppendAndSlice(t *testing.T) {
	a := NewArenaSize(8)

	a.Append([]byte("hello "))
	a.Append([]byte("world"))

	if a.Len() != 11 {
		t.Fatalf("Len = %d, want 11", a.Len())
	}
	if got := a.Slice(0, 5); !bytes.Equal(got, []byte("hello")) {
		t.Errorf("Slice(0,5) = %q", got)
	}
	// Straddles the 8-byte block boundary
	if got := a.Slice(6, 5); !bytes.Equal(got, []byte("world")) {
		t.Errorf("Slice(6,5) = %q", got)
	}
}

func TestSliceStableAcrossAppends(t *testing.T) {
	a := NewArenaSize(16)
	a.Append([]byte("first line"))

	view := a.Slice(0, 10)

	// Fill several more blocks
	for i := 0; i < 20; i++ {
		a.Append([]byte("padding padding "))
	}

	if !bytes.Equal(view, []byte("first line")) {
		t.Errorf("earlier slice invalidated by append: %q", view)
	}
}

func TestSliceBounds(t *testing.T) {
	a := NewArenaSize(8)
	a.Append([]byte("abc"))

	if got := a.Slice(0, 4); got != nil {
		t.Errorf("out-of-range slice = %q, want nil", got)
	}
	if got := a.Slice(-1, 2); got != nil {
		t.Errorf("negative offset slice = %q, want nil", got)
	}
	if got := a.Slice(1, 0); got != nil {
		t.Errorf("empty slice = %q, want nil", got)
	}
}

func TestLargeAppendSpansBlocks(t *testing.T) {
	a := NewArenaSize(4)
	payload := []byte("0123456789abcdef")
	a.Append(payload)

	if a.Len() != int64(len(payload)) {
		t.Fatalf("Len = %d, want %d", a.Len(), len(payload))
	}
	if got := a.Slice(0, len(payload)); !bytes.Equal(got, payload) {
		t.Errorf("round-trip = %q, want %q", got, payload)
	}
	if got := a.Slice(5, 6); !bytes.Equal(got, []byte("56789a")) {
		t.Errorf("mid slice = %q", got)
	}
}
