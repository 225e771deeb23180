package replenishment

import (
	"math"
	"strings"

	"github.com/andresuchdata/procuresmart/backend-go/internal/domain"
)

// daysPerConsumptionWindow is the length of the trailing consumption window in the sheet.
const daysPerConsumptionWindow = 30

// Calculator computes purchase recommendations for material records.
// It holds no mutable state and is safe for concurrent use.
type Calculator struct {
	policy PriorityPolicy
}

// NewCalculator creates a calculator using the given priority policy
func NewCalculator(policy PriorityPolicy) *Calculator {
	return &Calculator{policy: policy}
}

// Calculate computes the recommendation for one record over projectionDays.
// Out-of-range quantities are clamped, only out-of-domain inputs are rejected.
func (c *Calculator) Calculate(rec domain.MaterialRecord, projectionDays int) (domain.PurchaseRecommendation, error) {
	if err := validate(rec, projectionDays); err != nil {
		return domain.PurchaseRecommendation{}, err
	}

	// 1. Available balance = free balance + open orders
	availableBalance := rec.AvailableBalance()

	// 2. Daily average over the 30-day window
	dailyAverage := rec.Consumption30Days / daysPerConsumptionWindow

	// 3. Projected consumption over the horizon
	projectedConsumption := dailyAverage * float64(projectionDays)

	// 4. Initial purchase, never negative
	purchase := math.Max(projectedConsumption-availableBalance, 0)

	// 5-6. Ceiling: stock after purchase may not exceed the maximum threshold
	ceilingApplied := false
	if availableBalance+purchase > rec.MaximumThreshold {
		purchase = rec.MaximumThreshold - availableBalance
		ceilingApplied = true
	}

	// 7. Balance may already be above the ceiling, we never suggest disposal
	purchase = math.Max(purchase, 0)

	priority, coverage := c.policy.Classify(availableBalance, dailyAverage, projectionDays)

	rcm := domain.PurchaseRecommendation{
		Code:                 rec.Code,
		RecordID:             rec.ID,
		CanPurchase:          purchase > 0,
		SuggestedQuantity:    purchase,
		Priority:             priority,
		AvailableBalance:     availableBalance,
		DailyAverage:         dailyAverage,
		ProjectedConsumption: projectedConsumption,
		CoverageDays:         coverage,
		CeilingApplied:       ceilingApplied,
	}
	rcm.Justification = justify(rec, projectionDays, rcm)

	return rcm, nil
}

func validate(rec domain.MaterialRecord, projectionDays int) error {
	if projectionDays <= 0 {
		return &domain.InvalidRecordError{Code: rec.Code, Field: "projectionDays", Reason: "must be positive"}
	}
	if strings.TrimSpace(rec.Code) == "" {
		return &domain.InvalidRecordError{Field: "code", Reason: "must not be empty"}
	}

	fields := []struct {
		name  string
		value float64
	}{
		{"maximumThreshold", rec.MaximumThreshold},
		{"consumption30Days", rec.Consumption30Days},
		{"freeBalance", rec.FreeBalance},
		{"openOrders", rec.OpenOrders},
	}
	for _, f := range fields {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) {
			return &domain.InvalidRecordError{Code: rec.Code, Field: f.name, Reason: "must be a finite number"}
		}
	}

	if rec.MaximumThreshold < 0 {
		return &domain.InvalidRecordError{Code: rec.Code, Field: "maximumThreshold", Reason: "must not be negative"}
	}
	if rec.Consumption30Days < 0 {
		return &domain.InvalidRecordError{Code: rec.Code, Field: "consumption30Days", Reason: "must not be negative"}
	}

	return nil
}
