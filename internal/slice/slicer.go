// Package slice exports a range of records to a standalone file.
package slice

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jarruda/json-log-reader/internal/store"
)

// Info describes one completed export
type Info struct {
	SourceName string // display name of the source
	OutputPath string
	StartLine  int // 0-based, inclusive
	EndLine    int // 0-based, exclusive
}

// Slicer writes record ranges out of a store
type Slicer struct {
	outputDir string
}

// NewSlicer creates a slicer writing to the given directory; empty uses the
// system temp directory
func NewSlicer(outputDir string) *Slicer {
	if outputDir == "" {
		outputDir = os.TempDir()
	}
	return &Slicer{outputDir: outputDir}
}

// SliceRange writes lines [startLine, endLine) of the store to outputPath.
// An empty outputPath derives a name from sourceName and the range.
func (s *Slicer) SliceRange(st *store.Store, sourceName string, startLine, endLine int, outputPath string) (*Info, error) {
	if startLine < 0 {
		startLine = 0
	}
	if endLine > st.LineCount() {
		endLine = st.LineCount()
	}
	if startLine >= endLine {
		return nil, fmt.Errorf("invalid range: %d-%d", startLine, endLine)
	}

	if outputPath == "" {
		base := filepath.Base(sourceName)
		outputPath = filepath.Join(s.outputDir, fmt.Sprintf("jlv-slice-%d-%d-%s", startLine, endLine, base))
	}

	outFile, err := os.Create(outputPath)
	if err != nil {
		return nil, fmt.Errorf("create slice file: %w", err)
	}
	defer outFile.Close()

	w := bufio.NewWriter(outFile)
	for i := startLine; i < endLine; i++ {
		raw, err := st.RawLine(i)
		if err != nil {
			os.Remove(outputPath)
			return nil, fmt.Errorf("read line %d: %w", i, err)
		}
		if _, err := w.Write(raw); err != nil {
			os.Remove(outputPath)
			return nil, fmt.Errorf("write line %d: %w", i, err)
		}
		if err := w.WriteByte('\n'); err != nil {
			os.Remove(outputPath)
			return nil, fmt.Errorf("write terminator: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		os.Remove(outputPath)
		return nil, fmt.Errorf("flush slice file: %w", err)
	}

	return &Info{
		SourceName: sourceName,
		OutputPath: outputPath,
		StartLine:  startLine,
		EndLine:    endLine,
	}, nil
}

// Cleanup removes an export's output file
func (s *Slicer) Cleanup(info *Info) error {
	if info == nil || info.OutputPath == "" {
		return nil
	}
	return os.Remove(info.OutputPath)
}
