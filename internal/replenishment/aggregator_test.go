package replenishment_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/andresuchdata/procuresmart/backend-go/internal/domain"
	"github.com/andresuchdata/procuresmart/backend-go/internal/replenishment"
)

func TestAggregator_EmptyBatch(t *testing.T) {
	agg := replenishment.NewAggregator(nil)

	result, err := agg.Analyze(nil, 30)
	if err != nil {
		t.Fatalf("empty batch must not fail: %v", err)
	}
	if len(result.Recommendations) != 0 {
		t.Fatalf("expected no recommendations, got %d", len(result.Recommendations))
	}
	if result.Summary != replenishment.NoDataSummary {
		t.Fatalf("unexpected summary: %q", result.Summary)
	}
	if result.Recommendations == nil || result.Diagnostics == nil {
		t.Fatalf("expected empty, non-nil slices for JSON output")
	}
}

func TestAggregator_PreservesOrder(t *testing.T) {
	records := []domain.MaterialRecord{
		{ID: "Z-0", Code: "Z", FreeBalance: 100, Consumption30Days: 300, MaximumThreshold: 500},
		{ID: "A-1", Code: "A", FreeBalance: 400, Consumption30Days: 300, MaximumThreshold: 500},
		{ID: "M-2", Code: "M", Consumption30Days: 600, MaximumThreshold: 100},
		{ID: "Z-3", Code: "Z", FreeBalance: 50, MaximumThreshold: 20},
	}

	result, err := replenishment.NewAggregator(nil).Analyze(records, 30)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Recommendations) != len(records) {
		t.Fatalf("expected %d recommendations, got %d", len(records), len(result.Recommendations))
	}
	for i, rec := range records {
		got := result.Recommendations[i]
		if got.Code != rec.Code || got.RecordID != rec.ID {
			t.Errorf("position %d: expected %s/%s, got %s/%s", i, rec.Code, rec.ID, got.Code, got.RecordID)
		}
	}

	want := "2 item(s) recommended for purchase, 2 already sufficiently stocked. Priority: Urgent 1, High 1, Medium 0, Low 2."
	if result.Summary != want {
		t.Errorf("unexpected summary:\n got: %s\nwant: %s", result.Summary, want)
	}
	if result.Counts.ToPurchase != 2 || result.Counts.Sufficient != 2 || result.Counts.Total != 4 {
		t.Errorf("unexpected counts: %+v", result.Counts)
	}
}

func TestAggregator_SkipsInvalidRecords(t *testing.T) {
	records := []domain.MaterialRecord{
		{ID: "A-0", Code: "A", FreeBalance: 100, Consumption30Days: 300, MaximumThreshold: 500, Row: 2},
		{ID: "B-1", Code: "B", Consumption30Days: -1, MaximumThreshold: 500, Row: 3},
		{ID: "C-2", Code: "C", MaximumThreshold: -10, Row: 4},
		{ID: "D-3", Code: "D", FreeBalance: 400, Consumption30Days: 300, MaximumThreshold: 500, Row: 5},
	}

	result, err := replenishment.NewAggregator(nil).Analyze(records, 30)
	if err != nil {
		t.Fatalf("invalid records must not fail the batch: %v", err)
	}
	if len(result.Recommendations) != 2 {
		t.Fatalf("expected 2 recommendations, got %d", len(result.Recommendations))
	}
	if result.Recommendations[0].Code != "A" || result.Recommendations[1].Code != "D" {
		t.Fatalf("unexpected order: %s, %s", result.Recommendations[0].Code, result.Recommendations[1].Code)
	}
	if result.Recommendations[0].SuggestedQuantity != 200 {
		t.Fatalf("valid record was affected by invalid ones: %v", result.Recommendations[0].SuggestedQuantity)
	}
	if len(result.Diagnostics) != 2 {
		t.Fatalf("expected 2 diagnostics, got %d", len(result.Diagnostics))
	}
	if result.Diagnostics[0].Code != "B" || result.Diagnostics[0].Row != 3 {
		t.Errorf("unexpected diagnostic: %+v", result.Diagnostics[0])
	}
	if !strings.Contains(result.Summary, "2 record(s) skipped due to invalid data.") {
		t.Errorf("summary does not report skipped records: %s", result.Summary)
	}
	if result.Counts.Skipped != 2 || result.Counts.Total != 4 {
		t.Errorf("unexpected counts: %+v", result.Counts)
	}
}

func TestAggregator_RejectsInvalidHorizon(t *testing.T) {
	records := []domain.MaterialRecord{{ID: "A-0", Code: "A", MaximumThreshold: 10}}

	_, err := replenishment.NewAggregator(nil).Analyze(records, 0)
	if !errors.Is(err, domain.ErrInvalidRecord) {
		t.Fatalf("expected ErrInvalidRecord, got %v", err)
	}
}

func TestAggregator_Idempotent(t *testing.T) {
	records := []domain.MaterialRecord{
		{ID: "A-0", Code: "A", FreeBalance: 12, OpenOrders: 3, Consumption30Days: 91, MaximumThreshold: 70},
		{ID: "B-1", Code: "B", FreeBalance: 0, Consumption30Days: 10, MaximumThreshold: 5},
	}
	agg := replenishment.NewAggregator(nil)

	first, err := agg.Analyze(records, 45)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, _ := agg.Analyze(records, 45)
	if first.Summary != second.Summary {
		t.Fatalf("summaries differ: %q vs %q", first.Summary, second.Summary)
	}
	for i := range first.Recommendations {
		a, b := first.Recommendations[i], second.Recommendations[i]
		if a.SuggestedQuantity != b.SuggestedQuantity || a.Justification != b.Justification || a.Priority != b.Priority {
			t.Fatalf("recommendation %d differs between runs", i)
		}
	}
}
