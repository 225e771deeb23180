package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/andresuchdata/procuresmart/backend-go/internal/domain"
	"github.com/andresuchdata/procuresmart/backend-go/internal/drive"
	"github.com/andresuchdata/procuresmart/backend-go/internal/ingest"
	"github.com/andresuchdata/procuresmart/backend-go/internal/metrics"
	"github.com/andresuchdata/procuresmart/backend-go/internal/narrative"
	"github.com/andresuchdata/procuresmart/backend-go/internal/replenishment"
	"github.com/andresuchdata/procuresmart/backend-go/internal/report"
	"github.com/andresuchdata/procuresmart/backend-go/internal/storage"
)

const (
	SourceRecords = "records"
	defaultDays   = 30
)

// DriveSource lists and downloads spreadsheets from Google Drive.
type DriveSource interface {
	ListSpreadsheets(ctx context.Context, folderID string) ([]drive.File, error)
	Fetch(ctx context.Context, fileID string) (string, []byte, error)
}

// Request carries the per-call analysis parameters.
type Request struct {
	// ProjectionDays of zero selects the configured default.
	ProjectionDays int
	Narrative      bool
}

// Options wires an AnalysisService. Only Aggregator is required.
type Options struct {
	Aggregator       *replenishment.Aggregator
	Ingest           ingest.Options
	Narrator         narrative.Narrator
	NarrativeEnabled bool
	Storage          storage.ObjectStorage
	StoragePrefix    string
	Drive            DriveSource
	DriveFolderID    string
	Metrics          *metrics.Recorder
	Workers          int
	DefaultDays      int
}

// AnalysisService turns spreadsheets and records into reports.
// The deterministic result is always computed first; the narrative is optional
// and its failure never fails the call.
type AnalysisService struct {
	aggregator       *replenishment.Aggregator
	ingestOpts       ingest.Options
	narrator         narrative.Narrator
	narrativeEnabled bool
	storage          storage.ObjectStorage
	storagePrefix    string
	drive            DriveSource
	driveFolderID    string
	metrics          *metrics.Recorder
	workers          int
	defaultDays      int
}

func NewAnalysisService(opts Options) *AnalysisService {
	if opts.Aggregator == nil {
		opts.Aggregator = replenishment.NewAggregator(nil)
	}
	if opts.Narrator == nil {
		opts.Narrator = narrative.NewNoopNarrator()
		opts.NarrativeEnabled = false
	}
	if opts.Ingest.CSVDelimiter == 0 {
		opts.Ingest = ingest.DefaultOptions()
	}
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.DefaultDays <= 0 {
		opts.DefaultDays = defaultDays
	}

	return &AnalysisService{
		aggregator:       opts.Aggregator,
		ingestOpts:       opts.Ingest,
		narrator:         opts.Narrator,
		narrativeEnabled: opts.NarrativeEnabled,
		storage:          opts.Storage,
		storagePrefix:    opts.StoragePrefix,
		drive:            opts.Drive,
		driveFolderID:    opts.DriveFolderID,
		metrics:          opts.Metrics,
		workers:          opts.Workers,
		defaultDays:      opts.DefaultDays,
	}
}

// Layout is the column layout spreadsheets are expected to follow.
func (s *AnalysisService) Layout() ingest.Layout {
	return s.ingestOpts.Layout
}

func (s *AnalysisService) DefaultProjectionDays() int {
	return s.defaultDays
}

func (s *AnalysisService) StorageEnabled() bool {
	return s.storage != nil
}

func (s *AnalysisService) DriveEnabled() bool {
	return s.drive != nil
}

// AnalyzeFile ingests a spreadsheet and analyzes its records.
// Ingestion failures are returned as *domain.IngestionError.
func (s *AnalysisService) AnalyzeFile(ctx context.Context, filename string, r io.Reader, req Request) (*domain.Report, error) {
	records, err := ingest.ParseFile(filename, r, s.ingestOpts)
	if err != nil {
		s.metrics.IngestionFailed()
		log.Error().Err(err).Str("file", filename).Msg("analysis: ingestion failed")
		return nil, err
	}

	log.Info().Str("file", filename).Int("records", len(records)).Msg("analysis: spreadsheet ingested")
	return s.analyze(ctx, filename, records, req)
}

// AnalyzeRecords analyzes records supplied directly by the caller.
// They go through the same normalization as spreadsheet rows; records
// without a code end up in the diagnostics.
func (s *AnalysisService) AnalyzeRecords(ctx context.Context, records []domain.MaterialRecord, req Request) (*domain.Report, error) {
	return s.analyze(ctx, SourceRecords, ingest.Normalize(records), req)
}

func (s *AnalysisService) analyze(ctx context.Context, source string, records []domain.MaterialRecord, req Request) (*domain.Report, error) {
	days := req.ProjectionDays
	if days == 0 {
		days = s.defaultDays
	}

	start := time.Now()
	result, err := s.aggregator.Analyze(records, days)
	if err != nil {
		return nil, err
	}
	s.metrics.ObserveAnalysis(metricSource(source), result, time.Since(start))

	if len(result.Diagnostics) > 0 {
		log.Warn().Str("source", source).Int("skipped", len(result.Diagnostics)).Msg("analysis: records skipped due to invalid data")
	}

	rep := &domain.Report{
		Source:  source,
		Result:  result,
		Records: records,
	}
	if req.Narrative {
		s.narrate(ctx, rep)
	}
	return rep, nil
}

func (s *AnalysisService) narrate(ctx context.Context, rep *domain.Report) {
	if !s.narrativeEnabled {
		rep.NarrativeError = "narrative generation is disabled"
		s.metrics.NarrativeOutcome("disabled")
		return
	}
	if len(rep.Result.Recommendations) == 0 {
		return
	}

	n, err := s.narrator.Narrate(ctx, rep.Result)
	if err != nil {
		log.Warn().Err(err).Str("source", rep.Source).Msg("analysis: narrative unavailable, returning computed result only")
		rep.NarrativeError = err.Error()
		s.metrics.NarrativeOutcome("failed")
		return
	}
	rep.Narrative = n
	s.metrics.NarrativeOutcome("ok")
}

// ListObjects lists the spreadsheets under the configured storage prefix.
func (s *AnalysisService) ListObjects(ctx context.Context) ([]storage.ObjectInfo, error) {
	if s.storage == nil {
		return nil, fmt.Errorf("object storage: %w", ErrSourceNotConfigured)
	}
	objects, err := s.storage.ListObjects(ctx, s.storagePrefix)
	if err != nil {
		return nil, &SourceError{Source: "storage", Err: err}
	}
	return storage.FilterSpreadsheets(objects), nil
}

// AnalyzeObjects analyzes stored spreadsheets concurrently, one report per key
// in key order. An empty key list selects every spreadsheet under the prefix.
// Each file is analyzed as a unit; the first failure cancels the rest.
func (s *AnalysisService) AnalyzeObjects(ctx context.Context, keys []string, req Request) ([]domain.Report, error) {
	if s.storage == nil {
		return nil, fmt.Errorf("object storage: %w", ErrSourceNotConfigured)
	}

	if len(keys) == 0 {
		objects, err := s.ListObjects(ctx)
		if err != nil {
			return nil, err
		}
		for _, obj := range objects {
			keys = append(keys, obj.Key)
		}
	}

	reports := make([]domain.Report, len(keys))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for i, key := range keys {
		g.Go(func() error {
			rep, err := s.AnalyzeObject(gctx, key, req)
			if err != nil {
				return fmt.Errorf("analyze %s: %w", key, err)
			}
			reports[i] = *rep
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	log.Info().Int("files", len(reports)).Msg("analysis: stored spreadsheets analyzed")
	return reports, nil
}

// AnalyzeObject downloads and analyzes a single stored spreadsheet.
func (s *AnalysisService) AnalyzeObject(ctx context.Context, key string, req Request) (*domain.Report, error) {
	if s.storage == nil {
		return nil, fmt.Errorf("object storage: %w", ErrSourceNotConfigured)
	}

	data, err := s.storage.GetObject(ctx, key)
	if err != nil {
		return nil, &SourceError{Source: "storage", Err: err}
	}
	return s.AnalyzeFile(ctx, key, bytes.NewReader(data), req)
}

// PublishReport renders rep and stores it under key, returning the stored key.
// An empty key derives one from the report source.
func (s *AnalysisService) PublishReport(ctx context.Context, rep *domain.Report, format report.Format, key string) (string, error) {
	if s.storage == nil {
		return "", fmt.Errorf("object storage: %w", ErrSourceNotConfigured)
	}
	if key == "" {
		key = ReportKey(rep.Source, format)
	}

	var buf bytes.Buffer
	if err := report.Write(&buf, *rep, format); err != nil {
		return "", err
	}
	if err := s.storage.UploadObject(ctx, key, buf.Bytes(), format.ContentType()); err != nil {
		return "", &SourceError{Source: "storage", Err: err}
	}

	log.Info().Str("key", key).Str("format", string(format)).Msg("analysis: report published")
	return key, nil
}

// ReportKey is the default object key of a report rendered from source.
func ReportKey(source string, format report.Format) string {
	return path.Join("reports", report.FileName(source, format))
}

// ListDriveFiles lists the spreadsheets of folderID, or of the configured folder when empty.
func (s *AnalysisService) ListDriveFiles(ctx context.Context, folderID string) ([]drive.File, error) {
	if s.drive == nil {
		return nil, fmt.Errorf("google drive: %w", ErrSourceNotConfigured)
	}
	if folderID == "" {
		folderID = s.driveFolderID
	}
	files, err := s.drive.ListSpreadsheets(ctx, folderID)
	if err != nil {
		return nil, &SourceError{Source: "drive", Err: err}
	}
	if files == nil {
		files = make([]drive.File, 0)
	}
	return files, nil
}

// AnalyzeDriveFile downloads and analyzes a Google Drive spreadsheet.
func (s *AnalysisService) AnalyzeDriveFile(ctx context.Context, fileID string, req Request) (*domain.Report, error) {
	if s.drive == nil {
		return nil, fmt.Errorf("google drive: %w", ErrSourceNotConfigured)
	}

	name, data, err := s.drive.Fetch(ctx, fileID)
	if err != nil {
		return nil, &SourceError{Source: "drive", Err: err}
	}
	return s.AnalyzeFile(ctx, name, bytes.NewReader(data), req)
}

// metricSource keeps the label cardinality bounded.
func metricSource(source string) string {
	if source == SourceRecords {
		return SourceRecords
	}
	return "file"
}

// IsClientError reports whether err was caused by the caller's input.
func IsClientError(err error) bool {
	return errors.Is(err, domain.ErrIngestion) || errors.Is(err, domain.ErrInvalidRecord)
}
