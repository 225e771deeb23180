package replenishment

import (
	"fmt"

	"github.com/andresuchdata/procuresmart/backend-go/internal/domain"
)

// PriorityPolicy maps days of coverage to a priority.
// Each ratio is a fraction of the projection horizon: coverage below
// UrgentRatio*days is Urgent, below HighRatio*days is High, below
// MediumRatio*days is Medium, anything else is Low.
type PriorityPolicy struct {
	UrgentRatio float64
	HighRatio   float64
	MediumRatio float64
}

// DefaultPriorityPolicy returns the thresholds agreed with purchasing
func DefaultPriorityPolicy() PriorityPolicy {
	return PriorityPolicy{
		UrgentRatio: 0.25,
		HighRatio:   0.5,
		MediumRatio: 1,
	}
}

// Validate checks the ratios are positive and ordered.
func (p PriorityPolicy) Validate() error {
	if p.UrgentRatio <= 0 || p.HighRatio <= 0 || p.MediumRatio <= 0 {
		return fmt.Errorf("priority ratios must be positive (urgent=%v high=%v medium=%v)", p.UrgentRatio, p.HighRatio, p.MediumRatio)
	}
	if !(p.UrgentRatio <= p.HighRatio && p.HighRatio <= p.MediumRatio) {
		return fmt.Errorf("priority ratios must satisfy urgent <= high <= medium (urgent=%v high=%v medium=%v)", p.UrgentRatio, p.HighRatio, p.MediumRatio)
	}
	return nil
}

// Classify returns the priority and the days of coverage.
// Coverage is nil when there is no consumption signal.
func (p PriorityPolicy) Classify(availableBalance, dailyAverage float64, projectionDays int) (domain.Priority, *float64) {
	if dailyAverage == 0 {
		return domain.PriorityLow, nil
	}

	coverage := availableBalance / dailyAverage
	horizon := float64(projectionDays)

	switch {
	case availableBalance <= 0 || coverage <= 0:
		return domain.PriorityUrgent, &coverage
	case coverage < horizon*p.UrgentRatio:
		return domain.PriorityUrgent, &coverage
	case coverage < horizon*p.HighRatio:
		return domain.PriorityHigh, &coverage
	case coverage < horizon*p.MediumRatio:
		return domain.PriorityMedium, &coverage
	default:
		return domain.PriorityLow, &coverage
	}
}
