package pipeline

import (
	"context"
	"io"
	"time"

	"github.com/andresuchdata/procuresmart/backend-go/internal/domain"
	"github.com/andresuchdata/procuresmart/backend-go/internal/report"
	"github.com/andresuchdata/procuresmart/backend-go/internal/service"
)

// Analyzer turns one spreadsheet into a report. *service.AnalysisService implements it.
type Analyzer interface {
	AnalyzeFile(ctx context.Context, filename string, r io.Reader, req service.Request) (*domain.Report, error)
}

// PipelineConfig holds configuration for a batch run
type PipelineConfig struct {
	WorkerCount int           // Number of concurrent workers
	OutputDir   string        // Directory for per-file reports and the consolidated plan
	Format      report.Format // Format of the per-file reports
	Request     service.Request
}

// DefaultPipelineConfig returns sensible defaults
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		WorkerCount: 4,
		OutputDir:   "data/reports",
		Format:      report.FormatXLSX,
	}
}

// ConsolidatedFile is the name of the combined purchase plan written by a run.
const ConsolidatedFile = "consolidated.csv"

// PipelineStatus represents the current state of a pipeline run
type PipelineStatus string

const (
	StatusPending    PipelineStatus = "pending"
	StatusProcessing PipelineStatus = "processing"
	StatusCompleted  PipelineStatus = "completed"
	// StatusPartial means at least one file failed while others succeeded.
	StatusPartial PipelineStatus = "partial"
	StatusFailed  PipelineStatus = "failed"
)

// FileJobStatus represents the state of a single file processing job
type FileJobStatus string

const (
	FileStatusQueued     FileJobStatus = "queued"
	FileStatusProcessing FileJobStatus = "processing"
	FileStatusCompleted  FileJobStatus = "completed"
	FileStatusFailed     FileJobStatus = "failed"
)

// PipelineRun tracks a single execution over a set of files
type PipelineRun struct {
	Status             PipelineStatus `json:"status"`
	TotalFiles         int            `json:"totalFiles"`
	ProcessedFiles     int            `json:"processedFiles"`
	FailedFiles        int            `json:"failedFiles"`
	TotalRecommended   int            `json:"totalRecommended"`
	ConsolidatedReport string         `json:"consolidatedReport,omitempty"`
	StartedAt          time.Time      `json:"startedAt"`
	CompletedAt        *time.Time     `json:"completedAt,omitempty"`
	Jobs               []*FileJob     `json:"jobs"`
}

// FileJob tracks the processing of a single file
type FileJob struct {
	FilePath     string        `json:"filePath"`
	Status       FileJobStatus `json:"status"`
	ErrorMessage string        `json:"errorMessage,omitempty"`
	Summary      string        `json:"summary,omitempty"`
	ReportPath   string        `json:"reportPath,omitempty"`
	ProcessedAt  *time.Time    `json:"processedAt,omitempty"`
}
