package replenishment

import (
	"errors"
	"fmt"
	"strings"

	"github.com/andresuchdata/procuresmart/backend-go/internal/domain"
)

// NoDataSummary is the summary of an empty batch.
const NoDataSummary = "No data available for analysis."

// Aggregator runs the calculator over a batch of records.
type Aggregator struct {
	calculator *Calculator
}

// NewAggregator creates a new aggregator
func NewAggregator(calculator *Calculator) *Aggregator {
	if calculator == nil {
		calculator = NewCalculator(DefaultPriorityPolicy())
	}
	return &Aggregator{calculator: calculator}
}

// Analyze computes one recommendation per record, in input order.
//
// A record the calculator rejects is skipped and reported in Diagnostics; it
// never affects the other records. A non-positive horizon is a batch-level
// error since no record could be computed with it.
func (a *Aggregator) Analyze(records []domain.MaterialRecord, projectionDays int) (domain.AnalysisResult, error) {
	result := domain.AnalysisResult{
		Recommendations: make([]domain.PurchaseRecommendation, 0, len(records)),
		Diagnostics:     make([]domain.Diagnostic, 0),
		ProjectionDays:  projectionDays,
		Counts:          newCounts(),
	}

	if len(records) == 0 {
		result.Summary = NoDataSummary
		return result, nil
	}

	if projectionDays <= 0 {
		return domain.AnalysisResult{}, &domain.InvalidRecordError{Field: "projectionDays", Reason: "must be positive"}
	}

	for _, rec := range records {
		rcm, err := a.calculator.Calculate(rec, projectionDays)
		if err != nil {
			var invalid *domain.InvalidRecordError
			if !errors.As(err, &invalid) {
				return domain.AnalysisResult{}, fmt.Errorf("calculate %s: %w", rec.Code, err)
			}
			result.Diagnostics = append(result.Diagnostics, domain.Diagnostic{
				RecordID: rec.ID,
				Code:     rec.Code,
				Row:      rec.Row,
				Reason:   err.Error(),
			})
			continue
		}
		result.Recommendations = append(result.Recommendations, rcm)
	}

	result.Counts = count(result.Recommendations, len(result.Diagnostics))
	result.Summary = summarize(result.Counts)

	return result, nil
}

func newCounts() domain.AnalysisCounts {
	byPriority := make(map[domain.Priority]int, len(domain.Priorities))
	for _, p := range domain.Priorities {
		byPriority[p] = 0
	}
	return domain.AnalysisCounts{ByPriority: byPriority}
}

func count(recs []domain.PurchaseRecommendation, skipped int) domain.AnalysisCounts {
	c := newCounts()
	c.Total = len(recs) + skipped
	c.Skipped = skipped
	for _, r := range recs {
		if r.CanPurchase {
			c.ToPurchase++
		} else {
			c.Sufficient++
		}
		c.ByPriority[r.Priority]++
	}
	return c
}

// summarize renders the deterministic batch statement.
func summarize(c domain.AnalysisCounts) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%d item(s) recommended for purchase, %d already sufficiently stocked.", c.ToPurchase, c.Sufficient)

	parts := make([]string, 0, len(domain.Priorities))
	for _, p := range domain.Priorities {
		parts = append(parts, fmt.Sprintf("%s %d", p, c.ByPriority[p]))
	}
	b.WriteString(" Priority: ")
	b.WriteString(strings.Join(parts, ", "))
	b.WriteString(".")

	if c.Skipped > 0 {
		fmt.Fprintf(&b, " %d record(s) skipped due to invalid data.", c.Skipped)
	}

	return b.String()
}
