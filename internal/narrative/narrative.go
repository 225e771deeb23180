package narrative

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/andresuchdata/procuresmart/backend-go/internal/domain"
)

// Narrator writes prose on top of an already computed result.
// Implementations must not alter the result.
type Narrator interface {
	Narrate(ctx context.Context, result domain.AnalysisResult) (*domain.Narrative, error)
}

type noopNarrator struct{}

// NewNoopNarrator returns a narrator that is always unavailable
func NewNoopNarrator() Narrator {
	return noopNarrator{}
}

func (noopNarrator) Narrate(context.Context, domain.AnalysisResult) (*domain.Narrative, error) {
	return nil, fmt.Errorf("%w: narrative generation is disabled", domain.ErrNarrativeUnavailable)
}

// RetryConfig bounds a narrator call.
type RetryConfig struct {
	Attempts int           // total attempts, at least 1
	Backoff  time.Duration // doubled after every failed attempt
	Timeout  time.Duration // per attempt
}

type retryingNarrator struct {
	next Narrator
	cfg  RetryConfig
}

// WithRetry wraps n with a per-attempt timeout and exponential backoff.
// Every failure is reported as domain.ErrNarrativeUnavailable.
func WithRetry(n Narrator, cfg RetryConfig) Narrator {
	if cfg.Attempts < 1 {
		cfg.Attempts = 1
	}
	return &retryingNarrator{next: n, cfg: cfg}
}

func (r *retryingNarrator) Narrate(ctx context.Context, result domain.AnalysisResult) (*domain.Narrative, error) {
	var lastErr error
	backoff := r.cfg.Backoff

	for attempt := 1; attempt <= r.cfg.Attempts; attempt++ {
		narrative, err := r.attempt(ctx, result)
		if err == nil {
			return narrative, nil
		}
		lastErr = err

		// disabled narrators will not recover
		if errors.Is(err, domain.ErrNarrativeUnavailable) {
			return nil, err
		}

		log.Warn().Err(err).Int("attempt", attempt).Int("max_attempts", r.cfg.Attempts).Msg("narrative: attempt failed")

		if attempt == r.cfg.Attempts {
			break
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %v", domain.ErrNarrativeUnavailable, ctx.Err())
		case <-time.After(backoff):
		}
		backoff *= 2
	}

	return nil, fmt.Errorf("%w: %v", domain.ErrNarrativeUnavailable, lastErr)
}

func (r *retryingNarrator) attempt(ctx context.Context, result domain.AnalysisResult) (*domain.Narrative, error) {
	if r.cfg.Timeout <= 0 {
		return r.next.Narrate(ctx, result)
	}
	ctx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
	defer cancel()
	return r.next.Narrate(ctx, result)
}
