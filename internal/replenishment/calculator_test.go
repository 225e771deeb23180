package replenishment_test

import (
	"errors"
	"math"
	"testing"

	"github.com/andresuchdata/procuresmart/backend-go/internal/domain"
	"github.com/andresuchdata/procuresmart/backend-go/internal/replenishment"
)

func newCalculator() *replenishment.Calculator {
	return replenishment.NewCalculator(replenishment.DefaultPriorityPolicy())
}

func TestCalculator_Scenarios(t *testing.T) {
	tests := []struct {
		name          string
		record        domain.MaterialRecord
		days          int
		wantQty       float64
		wantPurchase  bool
		wantCeiling   bool
		wantPriority  domain.Priority
		justification string
	}{
		{
			name:          "projection below ceiling",
			record:        domain.MaterialRecord{Code: "A", FreeBalance: 100, Consumption30Days: 300, MaximumThreshold: 500},
			days:          30,
			wantQty:       200,
			wantPurchase:  true,
			wantPriority:  domain.PriorityHigh,
			justification: "Daily average 10 x 30 days = projected 300 vs available 100 (free 100 + open orders 0); purchase 200.",
		},
		{
			name:          "balance covers projection",
			record:        domain.MaterialRecord{Code: "B", FreeBalance: 400, Consumption30Days: 300, MaximumThreshold: 500},
			days:          30,
			wantQty:       0,
			wantPurchase:  false,
			wantPriority:  domain.PriorityLow,
			justification: "Daily average 10 x 30 days = projected 300 vs available 400 (free 400 + open orders 0); purchase 0.",
		},
		{
			name:          "ceiling limits purchase",
			record:        domain.MaterialRecord{Code: "C", Consumption30Days: 600, MaximumThreshold: 100},
			days:          30,
			wantQty:       100,
			wantPurchase:  true,
			wantCeiling:   true,
			wantPriority:  domain.PriorityUrgent,
			justification: "Daily average 20 x 30 days = projected 600 vs available 0 (free 0 + open orders 0); purchase 100. Ceiling 100 applied (limited to 100).",
		},
		{
			name:          "balance already above ceiling",
			record:        domain.MaterialRecord{Code: "D", FreeBalance: 50, MaximumThreshold: 20},
			days:          30,
			wantQty:       0,
			wantPurchase:  false,
			wantCeiling:   true,
			wantPriority:  domain.PriorityLow,
			justification: "Daily average 0 x 30 days = projected 0 vs available 50 (free 50 + open orders 0); purchase 0. Ceiling 20 applied (limited to 0).",
		},
		{
			name:         "open orders count toward balance",
			record:       domain.MaterialRecord{Code: "E", FreeBalance: 40, OpenOrders: 60, Consumption30Days: 300, MaximumThreshold: 1000},
			days:         60,
			wantQty:      500,
			wantPurchase: true,
			wantPriority: domain.PriorityUrgent,
		},
		{
			name:         "negative free balance is tolerated",
			record:       domain.MaterialRecord{Code: "F", FreeBalance: -10, Consumption30Days: 30, MaximumThreshold: 100},
			days:         30,
			wantQty:      40,
			wantPurchase: true,
			wantPriority: domain.PriorityUrgent,
		},
	}

	calc := newCalculator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := calc.Calculate(tt.record, tt.days)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.SuggestedQuantity != tt.wantQty {
				t.Errorf("expected quantity %v, got %v", tt.wantQty, got.SuggestedQuantity)
			}
			if got.CanPurchase != tt.wantPurchase {
				t.Errorf("expected canPurchase %v, got %v", tt.wantPurchase, got.CanPurchase)
			}
			if got.CeilingApplied != tt.wantCeiling {
				t.Errorf("expected ceilingApplied %v, got %v", tt.wantCeiling, got.CeilingApplied)
			}
			if got.Priority != tt.wantPriority {
				t.Errorf("expected priority %s, got %s", tt.wantPriority, got.Priority)
			}
			if tt.justification != "" && got.Justification != tt.justification {
				t.Errorf("unexpected justification:\n got: %s\nwant: %s", got.Justification, tt.justification)
			}
			if got.Code != tt.record.Code {
				t.Errorf("expected code %s, got %s", tt.record.Code, got.Code)
			}
		})
	}
}

func TestCalculator_IntermediateFigures(t *testing.T) {
	rec := domain.MaterialRecord{Code: "A", FreeBalance: 100, Consumption30Days: 300, MaximumThreshold: 500}
	got, err := newCalculator().Calculate(rec, 30)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.AvailableBalance != 100 || got.DailyAverage != 10 || got.ProjectedConsumption != 300 {
		t.Fatalf("unexpected figures: %+v", got)
	}
	if got.CoverageDays == nil || *got.CoverageDays != 10 {
		t.Fatalf("expected coverage of 10 days, got %v", got.CoverageDays)
	}
}

func TestCalculator_InvalidInputs(t *testing.T) {
	tests := []struct {
		name   string
		record domain.MaterialRecord
		days   int
		field  string
	}{
		{"empty code", domain.MaterialRecord{Code: "  ", MaximumThreshold: 10}, 30, "code"},
		{"negative maximum", domain.MaterialRecord{Code: "X", MaximumThreshold: -1}, 30, "maximumThreshold"},
		{"negative consumption", domain.MaterialRecord{Code: "X", Consumption30Days: -5, MaximumThreshold: 10}, 30, "consumption30Days"},
		{"zero horizon", domain.MaterialRecord{Code: "X", MaximumThreshold: 10}, 0, "projectionDays"},
		{"negative horizon", domain.MaterialRecord{Code: "X", MaximumThreshold: 10}, -7, "projectionDays"},
		{"NaN balance", domain.MaterialRecord{Code: "X", FreeBalance: math.NaN(), MaximumThreshold: 10}, 30, "freeBalance"},
		{"infinite maximum", domain.MaterialRecord{Code: "X", MaximumThreshold: math.Inf(1)}, 30, "maximumThreshold"},
	}

	calc := newCalculator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := calc.Calculate(tt.record, tt.days)
			if err == nil {
				t.Fatalf("expected error, got nil")
			}
			if !errors.Is(err, domain.ErrInvalidRecord) {
				t.Fatalf("expected ErrInvalidRecord, got %v", err)
			}
			var invalid *domain.InvalidRecordError
			if !errors.As(err, &invalid) {
				t.Fatalf("expected *InvalidRecordError, got %T", err)
			}
			if invalid.Field != tt.field {
				t.Errorf("expected field %s, got %s", tt.field, invalid.Field)
			}
		})
	}
}

func TestCalculator_Properties(t *testing.T) {
	balances := []float64{-20, 0, 1, 37.5, 100, 250, 1000}
	openOrders := []float64{0, 5, 80}
	consumptions := []float64{0, 1, 29.9, 300, 4500}
	maximums := []float64{0, 10, 150, 600, 10000}
	horizons := []int{1, 7, 30, 45, 90, 365}

	calc := newCalculator()
	for _, free := range balances {
		for _, open := range openOrders {
			for _, cons := range consumptions {
				for _, ceiling := range maximums {
					for _, days := range horizons {
						rec := domain.MaterialRecord{
							Code:              "P",
							FreeBalance:       free,
							OpenOrders:        open,
							Consumption30Days: cons,
							MaximumThreshold:  ceiling,
						}
						got, err := calc.Calculate(rec, days)
						if err != nil {
							t.Fatalf("unexpected error for %+v/%d: %v", rec, days, err)
						}
						if got.SuggestedQuantity < 0 {
							t.Fatalf("negative quantity for %+v/%d: %v", rec, days, got.SuggestedQuantity)
						}
						if got.CanPurchase != (got.SuggestedQuantity > 0) {
							t.Fatalf("canPurchase mismatch for %+v/%d", rec, days)
						}
						available := free + open
						if ceiling >= available && available+got.SuggestedQuantity > ceiling {
							t.Fatalf("ceiling exceeded for %+v/%d: %v", rec, days, got.SuggestedQuantity)
						}
						again, _ := calc.Calculate(rec, days)
						if again.SuggestedQuantity != got.SuggestedQuantity ||
							again.Priority != got.Priority ||
							again.Justification != got.Justification {
							t.Fatalf("non-deterministic output for %+v/%d", rec, days)
						}
					}
				}
			}
		}
	}
}
