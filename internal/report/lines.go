package report

import (
	"github.com/andresuchdata/procuresmart/backend-go/internal/domain"
	"github.com/andresuchdata/procuresmart/backend-go/internal/replenishment"
)

// Line joins a recommendation with the record it was computed from.
type Line struct {
	Code                 string
	Description          string
	Unit                 string
	Priority             domain.Priority
	CanPurchase          bool
	SuggestedQuantity    float64
	FreeBalance          float64
	OpenOrders           float64
	AvailableBalance     float64
	DailyAverage         float64
	ProjectedConsumption float64
	CoverageDays         *float64
	MaximumThreshold     float64
	CeilingApplied       bool
	RecommendationType   string
	SheetSuggestion      float64
	// SheetDelta is SuggestedQuantity minus the spreadsheet's own suggestion.
	SheetDelta    float64
	Justification string
}

// Lines builds one line per recommendation, in result order.
// Recommendations without a matching record keep only the computed fields.
func Lines(rep domain.Report) []Line {
	byID := make(map[string]domain.MaterialRecord, len(rep.Records))
	for _, rec := range rep.Records {
		byID[rec.ID] = rec
	}

	lines := make([]Line, 0, len(rep.Result.Recommendations))
	for _, r := range rep.Result.Recommendations {
		line := Line{
			Code:                 r.Code,
			Priority:             r.Priority,
			CanPurchase:          r.CanPurchase,
			SuggestedQuantity:    r.SuggestedQuantity,
			AvailableBalance:     r.AvailableBalance,
			DailyAverage:         r.DailyAverage,
			ProjectedConsumption: r.ProjectedConsumption,
			CoverageDays:         r.CoverageDays,
			CeilingApplied:       r.CeilingApplied,
			Justification:        r.Justification,
		}
		if rec, ok := byID[r.RecordID]; ok {
			line.Description = rec.Description
			line.Unit = rec.UnitOfMeasure
			line.FreeBalance = rec.FreeBalance
			line.OpenOrders = rec.OpenOrders
			line.MaximumThreshold = rec.MaximumThreshold
			line.RecommendationType = rec.RecommendationTypeRaw
			line.SheetSuggestion = rec.SheetDerivedSuggestion
			line.SheetDelta = replenishment.RoundQuantity(r.SuggestedQuantity-rec.SheetDerivedSuggestion, 2)
		}
		lines = append(lines, line)
	}
	return lines
}
