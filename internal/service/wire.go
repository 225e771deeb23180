package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/andresuchdata/procuresmart/backend-go/internal/cache"
	"github.com/andresuchdata/procuresmart/backend-go/internal/config"
	"github.com/andresuchdata/procuresmart/backend-go/internal/drive"
	"github.com/andresuchdata/procuresmart/backend-go/internal/ingest"
	"github.com/andresuchdata/procuresmart/backend-go/internal/metrics"
	"github.com/andresuchdata/procuresmart/backend-go/internal/narrative"
	"github.com/andresuchdata/procuresmart/backend-go/internal/replenishment"
	"github.com/andresuchdata/procuresmart/backend-go/internal/storage"
)

// FromConfig wires an AnalysisService and its optional sources from cfg.
// Optional integrations that fail to initialize are logged and left disabled.
func FromConfig(ctx context.Context, cfg *config.Config, recorder *metrics.Recorder) (*AnalysisService, error) {
	policy := replenishment.PriorityPolicy{
		UrgentRatio: cfg.Priority.UrgentRatio,
		HighRatio:   cfg.Priority.HighRatio,
		MediumRatio: cfg.Priority.MediumRatio,
	}
	if err := policy.Validate(); err != nil {
		return nil, fmt.Errorf("invalid priority configuration: %w", err)
	}

	ingestOpts := ingest.DefaultOptions()
	ingestOpts.CSVDelimiter = cfg.App.CSVComma()
	if cfg.App.PreferredSheet != "" {
		ingestOpts.Layout.PreferredSheet = cfg.App.PreferredSheet
	}

	opts := Options{
		Aggregator:    replenishment.NewAggregator(replenishment.NewCalculator(policy)),
		Ingest:        ingestOpts,
		Metrics:       recorder,
		Workers:       cfg.App.WorkerCount,
		DefaultDays:   cfg.App.DefaultProjectionDays,
		StoragePrefix: cfg.Storage.Prefix,
		DriveFolderID: cfg.Drive.FolderID,
	}

	if cfg.Narrative.Enabled {
		narrator, err := newNarrator(cfg)
		if err != nil {
			log.Warn().Err(err).Msg("narrative disabled")
		} else {
			opts.Narrator = narrator
			opts.NarrativeEnabled = true
		}
	}

	if cfg.Storage.Enabled {
		client, err := storage.NewMinioClient(cfg.Storage)
		if err != nil {
			log.Warn().Err(err).Msg("object storage disabled")
		} else {
			opts.Storage = client
		}
	}

	if cfg.Drive.CredentialsJSON != "" {
		driveService, err := drive.NewService(ctx, cfg.Drive.CredentialsJSON)
		if err != nil {
			log.Warn().Err(err).Msg("google drive disabled")
		} else {
			opts.Drive = driveService
		}
	}

	return NewAnalysisService(opts), nil
}

func newNarrator(cfg *config.Config) (narrative.Narrator, error) {
	openaiNarrator, err := narrative.NewOpenAINarrator(cfg.Narrative.APIKey, cfg.Narrative.BaseURL, cfg.Narrative.Model)
	if err != nil {
		return nil, err
	}

	narrativeCache, err := cache.NewNarrativeCache(cfg.Cache)
	if err != nil {
		log.Warn().Err(err).Msg("redis unavailable, caching narratives in memory")
		narrativeCache = cache.NewMemoryNarrativeCache()
	}

	retrying := narrative.WithRetry(openaiNarrator, narrative.RetryConfig{
		Attempts: cfg.Narrative.RetryAttempts,
		Backoff:  cfg.Narrative.RetryBackoff,
		Timeout:  cfg.Narrative.Timeout,
	})
	return narrative.WithCache(retrying, narrativeCache, openaiNarrator.Model()), nil
}
