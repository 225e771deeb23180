package replenishment

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/andresuchdata/procuresmart/backend-go/internal/domain"
)

// FormatQuantity renders v rounded to two decimal places without trailing zeros.
// Example: 10 => "10"; 3.333 => "3.33"; 2.5 => "2.5".
func FormatQuantity(v float64) string {
	return decimal.NewFromFloat(v).Round(2).String()
}

// RoundQuantity rounds v to the given number of decimal places, half away from zero.
func RoundQuantity(v float64, places int32) float64 {
	f, _ := decimal.NewFromFloat(v).Round(places).Float64()
	return f
}

// justify builds the reproducible trace of a calculation.
func justify(rec domain.MaterialRecord, projectionDays int, rcm domain.PurchaseRecommendation) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Daily average %s x %d days = projected %s vs available %s (free %s + open orders %s); purchase %s.",
		FormatQuantity(rcm.DailyAverage),
		projectionDays,
		FormatQuantity(rcm.ProjectedConsumption),
		FormatQuantity(rcm.AvailableBalance),
		FormatQuantity(rec.FreeBalance),
		FormatQuantity(rec.OpenOrders),
		FormatQuantity(rcm.SuggestedQuantity),
	)

	if rcm.CeilingApplied {
		fmt.Fprintf(&b, " Ceiling %s applied (limited to %s).",
			FormatQuantity(rec.MaximumThreshold),
			FormatQuantity(rcm.SuggestedQuantity),
		)
	}

	return b.String()
}
