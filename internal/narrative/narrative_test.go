package narrative_test

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/andresuchdata/procuresmart/backend-go/internal/cache"
	"github.com/andresuchdata/procuresmart/backend-go/internal/domain"
	"github.com/andresuchdata/procuresmart/backend-go/internal/narrative"
)

type stubNarrator struct {
	calls    atomic.Int32
	failures int32
	delay    time.Duration
}

func (s *stubNarrator) Narrate(ctx context.Context, result domain.AnalysisResult) (*domain.Narrative, error) {
	n := s.calls.Add(1)
	if s.delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(s.delay):
		}
	}
	if n <= s.failures {
		return nil, errors.New("upstream unavailable")
	}
	return &domain.Narrative{Summary: "plan for " + result.Summary, Model: "stub"}, nil
}

func sampleResult() domain.AnalysisResult {
	return domain.AnalysisResult{
		ProjectionDays: 30,
		Summary:        "1 item(s) recommended for purchase, 1 already sufficiently stocked.",
		Recommendations: []domain.PurchaseRecommendation{
			{Code: "LOW-1", Priority: domain.PriorityLow, SuggestedQuantity: 0, AvailableBalance: 500},
			{Code: "URG-1", Priority: domain.PriorityUrgent, CanPurchase: true, SuggestedQuantity: 120.5, AvailableBalance: 2, CeilingApplied: true},
		},
		Diagnostics: []domain.Diagnostic{},
	}
}

func TestNoopNarratorIsUnavailable(t *testing.T) {
	_, err := narrative.NewNoopNarrator().Narrate(context.Background(), sampleResult())
	if !errors.Is(err, domain.ErrNarrativeUnavailable) {
		t.Fatalf("expected ErrNarrativeUnavailable, got %v", err)
	}
}

func TestWithRetry(t *testing.T) {
	t.Run("succeeds after transient failures", func(t *testing.T) {
		stub := &stubNarrator{failures: 2}
		n := narrative.WithRetry(stub, narrative.RetryConfig{Attempts: 3, Backoff: time.Millisecond})

		got, err := n.Narrate(context.Background(), sampleResult())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got == nil || !strings.HasPrefix(got.Summary, "plan for") {
			t.Fatalf("unexpected narrative: %+v", got)
		}
		if calls := stub.calls.Load(); calls != 3 {
			t.Fatalf("expected 3 calls, got %d", calls)
		}
	})

	t.Run("gives up after attempts are exhausted", func(t *testing.T) {
		stub := &stubNarrator{failures: 10}
		n := narrative.WithRetry(stub, narrative.RetryConfig{Attempts: 2, Backoff: time.Millisecond})

		_, err := n.Narrate(context.Background(), sampleResult())
		if !errors.Is(err, domain.ErrNarrativeUnavailable) {
			t.Fatalf("expected ErrNarrativeUnavailable, got %v", err)
		}
		if calls := stub.calls.Load(); calls != 2 {
			t.Fatalf("expected 2 calls, got %d", calls)
		}
	})

	t.Run("times out slow attempts", func(t *testing.T) {
		stub := &stubNarrator{delay: time.Second}
		n := narrative.WithRetry(stub, narrative.RetryConfig{Attempts: 1, Timeout: 10 * time.Millisecond})

		start := time.Now()
		_, err := n.Narrate(context.Background(), sampleResult())
		if !errors.Is(err, domain.ErrNarrativeUnavailable) {
			t.Fatalf("expected ErrNarrativeUnavailable, got %v", err)
		}
		if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
			t.Fatalf("timeout not honoured, took %s", elapsed)
		}
	})

	t.Run("does not retry a disabled narrator", func(t *testing.T) {
		n := narrative.WithRetry(narrative.NewNoopNarrator(), narrative.RetryConfig{Attempts: 5, Backoff: time.Second})

		start := time.Now()
		_, err := n.Narrate(context.Background(), sampleResult())
		if !errors.Is(err, domain.ErrNarrativeUnavailable) {
			t.Fatalf("expected ErrNarrativeUnavailable, got %v", err)
		}
		if time.Since(start) > 500*time.Millisecond {
			t.Fatalf("noop narrator was retried")
		}
	})
}

func TestWithCache(t *testing.T) {
	stub := &stubNarrator{}
	n := narrative.WithCache(stub, cache.NewMemoryNarrativeCache(), "stub")
	result := sampleResult()

	first, err := n.Narrate(context.Background(), result)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := n.Narrate(context.Background(), result)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if first.Summary != second.Summary {
		t.Fatalf("cached narrative differs: %q vs %q", first.Summary, second.Summary)
	}
	if calls := stub.calls.Load(); calls != 1 {
		t.Fatalf("expected a single upstream call, got %d", calls)
	}

	result.ProjectionDays = 60
	if _, err := n.Narrate(context.Background(), result); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls := stub.calls.Load(); calls != 2 {
		t.Fatalf("expected a miss for a different result, got %d calls", calls)
	}
}

func TestBuildPrompt(t *testing.T) {
	prompt := narrative.BuildPrompt(sampleResult())

	for _, want := range []string{"30-day", "Do NOT recompute", "URG-1 | Urgent | 120.5 | 2 |", "LOW-1 | Low | 0 | 500 |"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q:\n%s", want, prompt)
		}
	}
	if strings.Index(prompt, "URG-1") > strings.Index(prompt, "LOW-1") {
		t.Errorf("urgent items should be listed first")
	}
}
