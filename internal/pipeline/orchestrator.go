package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Orchestrator coordinates running a Worker over the spreadsheets of a directory.
type Orchestrator struct {
	analyzer Analyzer
	cfg      PipelineConfig
	makeW    func(a Analyzer, cfg PipelineConfig) *Worker
}

// NewOrchestrator creates a new Orchestrator.
func NewOrchestrator(analyzer Analyzer, cfg PipelineConfig) *Orchestrator {
	return &Orchestrator{
		analyzer: analyzer,
		cfg:      cfg,
		makeW:    NewWorker,
	}
}

// Run analyzes every .xlsx, .xlsm and .csv file directly inside dir, in name order.
func (o *Orchestrator) Run(ctx context.Context, dir string) (*PipelineRun, error) {
	files, err := DiscoverSpreadsheets(dir)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no spreadsheets found in %s", dir)
	}

	return o.makeW(o.analyzer, o.cfg).ProcessBatch(ctx, files)
}

// DiscoverSpreadsheets lists the spreadsheets directly inside dir.
// Office lock files (~$name.xlsx) are ignored.
func DiscoverSpreadsheets(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", dir, err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), "~$") {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".xlsx", ".xlsm", ".csv":
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}
