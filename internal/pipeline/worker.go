package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/andresuchdata/procuresmart/backend-go/internal/domain"
	"github.com/andresuchdata/procuresmart/backend-go/internal/report"
)

// Worker analyzes a batch of local spreadsheets
type Worker struct {
	analyzer   Analyzer
	config     PipelineConfig
	aggregator *StreamingAggregator
	mu         sync.Mutex
}

// NewWorker creates a new pipeline worker
func NewWorker(analyzer Analyzer, config PipelineConfig) *Worker {
	if config.WorkerCount < 1 {
		config.WorkerCount = 1
	}
	if config.Format == "" {
		config.Format = report.FormatXLSX
	}
	return &Worker{
		analyzer: analyzer,
		config:   config,
	}
}

// ProcessBatch analyzes files concurrently. A file that fails is recorded on its
// job and does not stop the others; the returned error is reserved for
// cancellation and output failures.
func (w *Worker) ProcessBatch(ctx context.Context, files []string) (*PipelineRun, error) {
	log.Info().Int("files", len(files)).Msg("pipeline: starting batch")

	run := &PipelineRun{
		Status:     StatusPending,
		TotalFiles: len(files),
		StartedAt:  time.Now(),
		Jobs:       make([]*FileJob, len(files)),
	}
	for i, file := range files {
		run.Jobs[i] = &FileJob{FilePath: file, Status: FileStatusQueued}
	}

	if err := os.MkdirAll(w.config.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	w.aggregator = NewStreamingAggregator(len(files))

	run.Status = StatusProcessing
	if err := w.processFilesParallel(ctx, run); err != nil {
		run.Status = StatusFailed
		return run, err
	}

	consolidated := filepath.Join(w.config.OutputDir, ConsolidatedFile)
	if err := w.aggregator.Finalize(consolidated); err != nil {
		run.Status = StatusFailed
		return run, fmt.Errorf("failed to finalize aggregation: %w", err)
	}
	run.ConsolidatedReport = consolidated
	run.TotalRecommended = w.aggregator.Recommended()

	switch {
	case run.FailedFiles == 0:
		run.Status = StatusCompleted
	case run.ProcessedFiles == 0:
		run.Status = StatusFailed
	default:
		run.Status = StatusPartial
	}
	now := time.Now()
	run.CompletedAt = &now

	log.Info().
		Int("processed", run.ProcessedFiles).
		Int("failed", run.FailedFiles).
		Int("recommended", run.TotalRecommended).
		Msg("pipeline: batch completed")

	return run, nil
}

// processFilesParallel processes files using a worker pool
func (w *Worker) processFilesParallel(ctx context.Context, run *PipelineRun) error {
	jobChan := make(chan int, len(run.Jobs))
	var wg sync.WaitGroup

	// Start workers
	for i := 0; i < w.config.WorkerCount; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for idx := range jobChan {
				job := run.Jobs[idx]
				if err := w.processFile(ctx, idx, job); err != nil {
					log.Warn().Err(err).Int("worker", workerID).Str("file", job.FilePath).Msg("pipeline: file failed")
					w.markJobFailed(run, job, err)
					continue
				}
				w.mu.Lock()
				run.ProcessedFiles++
				w.mu.Unlock()
			}
		}(i)
	}

	// Enqueue jobs
	for idx := range run.Jobs {
		select {
		case <-ctx.Done():
			close(jobChan)
			wg.Wait()
			return ctx.Err()
		case jobChan <- idx:
		}
	}
	close(jobChan)

	// Wait for all workers
	wg.Wait()
	return ctx.Err()
}

// processFile analyzes a single file and writes its report
func (w *Worker) processFile(ctx context.Context, idx int, job *FileJob) error {
	startTime := time.Now()

	w.mu.Lock()
	job.Status = FileStatusProcessing
	w.mu.Unlock()

	f, err := os.Open(job.FilePath)
	if err != nil {
		return fmt.Errorf("open failed: %w", err)
	}
	defer f.Close()

	rep, err := w.analyzer.AnalyzeFile(ctx, filepath.Base(job.FilePath), f, w.config.Request)
	if err != nil {
		return err
	}

	reportPath, err := w.writeReport(job.FilePath, rep)
	if err != nil {
		return err
	}

	w.aggregator.AddFileData(idx, filepath.Base(job.FilePath), report.Lines(*rep))

	now := time.Now()
	w.mu.Lock()
	job.Status = FileStatusCompleted
	job.Summary = rep.Result.Summary
	job.ReportPath = reportPath
	job.ProcessedAt = &now
	w.mu.Unlock()

	log.Debug().
		Str("file", job.FilePath).
		Dur("duration", time.Since(startTime)).
		Int("recommendations", len(rep.Result.Recommendations)).
		Msg("pipeline: file completed")
	return nil
}

func (w *Worker) writeReport(sourcePath string, rep *domain.Report) (string, error) {
	path := filepath.Join(w.config.OutputDir, report.FileName(filepath.Base(sourcePath), w.config.Format))

	out, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create report %s: %w", path, err)
	}
	if err := report.Write(out, *rep, w.config.Format); err != nil {
		out.Close()
		return "", fmt.Errorf("failed to write report %s: %w", path, err)
	}
	if err := out.Close(); err != nil {
		return "", fmt.Errorf("failed to close report %s: %w", path, err)
	}
	return path, nil
}

// markJobFailed records a failed job on the run
func (w *Worker) markJobFailed(run *PipelineRun, job *FileJob, err error) {
	now := time.Now()
	w.mu.Lock()
	defer w.mu.Unlock()
	job.Status = FileStatusFailed
	job.ErrorMessage = err.Error()
	job.ProcessedAt = &now
	run.FailedFiles++
}
