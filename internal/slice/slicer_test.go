package slice

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jarruda/json-log-reader/internal/store"
	"github.com/jarruda/json-log-reader/pkg/logformat"
)

func newTestStore(t *testing.T, lines ...string) *store.Store {
	t.Helper()
	s := store.New(logformat.NewCodec(logformat.DefaultFieldKeys()))
	for _, line := range lines {
		if _, err := s.AppendBytes([]byte(line + "\n")); err != nil {
			t.Fatalf("AppendBytes: %v", err)
		}
	}
	return s
}

func TestSliceRangeRoundTrip(t *testing.T) {
	s := newTestStore(t, "zero", "one", "two", "three", "four")
	dir := t.TempDir()

	out := filepath.Join(dir, "out.log")
	info, err := NewSlicer(dir).SliceRange(s, "test.log", 1, 4, out)
	if err != nil {
		t.Fatalf("SliceRange: %v", err)
	}
	if info.StartLine != 1 || info.EndLine != 4 {
		t.Errorf("info range = %d-%d", info.StartLine, info.EndLine)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if string(data) != "one\ntwo\nthree\n" {
		t.Errorf("output = %q", data)
	}
}

func TestSliceRangeClamps(t *testing.T) {
	s := newTestStore(t, "zero", "one")
	dir := t.TempDir()

	info, err := NewSlicer(dir).SliceRange(s, "test.log", -3, 99, filepath.Join(dir, "out.log"))
	if err != nil {
		t.Fatalf("SliceRange: %v", err)
	}
	if info.StartLine != 0 || info.EndLine != 2 {
		t.Errorf("info range = %d-%d, want 0-2", info.StartLine, info.EndLine)
	}
}

func TestSliceRangeInvalid(t *testing.T) {
	s := newTestStore(t, "zero")

	if _, err := NewSlicer(t.TempDir()).SliceRange(s, "test.log", 1, 1, ""); err == nil {
		t.Error("expected error for empty range")
	}
}

func TestCleanup(t *testing.T) {
	s := newTestStore(t, "zero", "one")
	dir := t.TempDir()

	slicer := NewSlicer(dir)
	info, err := slicer.SliceRange(s, "test.log", 0, 2, "")
	if err != nil {
		t.Fatalf("SliceRange: %v", err)
	}
	if err := slicer.Cleanup(info); err != nil {
		t.Fatalf("Cleanup: %v", err)
	}
	if _, err := os.Stat(info.OutputPath); !os.IsNotExist(err) {
		t.Error("output file not removed")
	}
}
