package pipeline

import (
	"encoding/csv"
	"fmt"
	"os"
	"sync"

	"github.com/andresuchdata/procuresmart/backend-go/internal/report"
)

type fileLines struct {
	source string
	lines  []report.Line
}

// StreamingAggregator collects the lines of every analyzed file and writes
// them as one consolidated plan, in input file order.
type StreamingAggregator struct {
	buffer []*fileLines
	mu     sync.Mutex
}

// NewStreamingAggregator creates an aggregator for fileCount files
func NewStreamingAggregator(fileCount int) *StreamingAggregator {
	return &StreamingAggregator{
		buffer: make([]*fileLines, fileCount),
	}
}

// AddFileData stores the lines of the file at position idx
func (sa *StreamingAggregator) AddFileData(idx int, source string, lines []report.Line) {
	sa.mu.Lock()
	defer sa.mu.Unlock()
	sa.buffer[idx] = &fileLines{source: source, lines: lines}
}

// Recommended counts the lines that recommend a purchase
func (sa *StreamingAggregator) Recommended() int {
	sa.mu.Lock()
	defer sa.mu.Unlock()
	n := 0
	for _, f := range sa.buffer {
		if f == nil {
			continue
		}
		for _, l := range f.lines {
			if l.CanPurchase {
				n++
			}
		}
	}
	return n
}

// Finalize writes the consolidated CSV to path. Files that failed are absent.
func (sa *StreamingAggregator) Finalize(path string) error {
	sa.mu.Lock()
	defer sa.mu.Unlock()

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)

	if err := writer.Write(append([]string{"Source"}, report.CSVHeader()...)); err != nil {
		return err
	}

	for _, f := range sa.buffer {
		if f == nil {
			continue
		}
		for _, l := range f.lines {
			if err := writer.Write(append([]string{f.source}, report.CSVRecord(l)...)); err != nil {
				return fmt.Errorf("write %s: %w", f.source, err)
			}
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return err
	}
	return file.Close()
}
