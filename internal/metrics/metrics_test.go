package metrics_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/andresuchdata/procuresmart/backend-go/internal/domain"
	"github.com/andresuchdata/procuresmart/backend-go/internal/metrics"
)

func TestObserveAnalysis(t *testing.T) {
	r := metrics.New()
	result := domain.AnalysisResult{
		Recommendations: []domain.PurchaseRecommendation{
			{Code: "A", Priority: domain.PriorityUrgent},
			{Code: "B", Priority: domain.PriorityLow},
			{Code: "C", Priority: domain.PriorityUrgent},
		},
		Counts: domain.AnalysisCounts{Skipped: 2},
	}

	r.ObserveAnalysis("upload", result, 5*time.Millisecond)
	r.NarrativeOutcome("failed")
	r.IngestionFailed()

	expected := `
# HELP procuresmart_recommendations_total Recommendations produced, by priority.
# TYPE procuresmart_recommendations_total counter
procuresmart_recommendations_total{priority="Low"} 1
procuresmart_recommendations_total{priority="Urgent"} 2
`
	if err := testutil.GatherAndCompare(r.Registry(), strings.NewReader(expected), "procuresmart_recommendations_total"); err != nil {
		t.Fatalf("unexpected recommendations metric: %v", err)
	}

	expected = `
# HELP procuresmart_records_skipped_total Material records skipped due to invalid data.
# TYPE procuresmart_records_skipped_total counter
procuresmart_records_skipped_total 2
`
	if err := testutil.GatherAndCompare(r.Registry(), strings.NewReader(expected), "procuresmart_records_skipped_total"); err != nil {
		t.Fatalf("unexpected skipped metric: %v", err)
	}
}

func TestNilRecorderIsSafe(t *testing.T) {
	var r *metrics.Recorder
	r.ObserveAnalysis("upload", domain.AnalysisResult{}, time.Second)
	r.NarrativeOutcome("ok")
	r.IngestionFailed()

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 from nil recorder, got %d", rec.Code)
	}
}

func TestHandlerExposesMetrics(t *testing.T) {
	r := metrics.New()
	r.IngestionFailed()

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "procuresmart_ingestion_failures_total 1") {
		t.Fatalf("metric missing from output:\n%s", rec.Body.String())
	}
}
