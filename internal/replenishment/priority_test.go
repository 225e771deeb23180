package replenishment_test

import (
	"testing"

	"github.com/andresuchdata/procuresmart/backend-go/internal/domain"
	"github.com/andresuchdata/procuresmart/backend-go/internal/replenishment"
)

func TestPriorityPolicy_Classify(t *testing.T) {
	policy := replenishment.DefaultPriorityPolicy()

	tests := []struct {
		name      string
		available float64
		daily     float64
		days      int
		want      domain.Priority
		coverage  bool
	}{
		{"no consumption", 0, 0, 30, domain.PriorityLow, false},
		{"no consumption with stock", 500, 0, 30, domain.PriorityLow, false},
		{"empty stock", 0, 2, 30, domain.PriorityUrgent, true},
		{"negative stock", -5, 2, 30, domain.PriorityUrgent, true},
		{"under a quarter", 14, 2, 30, domain.PriorityUrgent, true},
		{"exactly a quarter", 15, 2, 30, domain.PriorityHigh, true},
		{"under half", 28, 2, 30, domain.PriorityHigh, true},
		{"exactly half", 30, 2, 30, domain.PriorityMedium, true},
		{"under horizon", 58, 2, 30, domain.PriorityMedium, true},
		{"covers horizon", 60, 2, 30, domain.PriorityLow, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, coverage := policy.Classify(tt.available, tt.daily, tt.days)
			if got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
			if (coverage != nil) != tt.coverage {
				t.Errorf("expected coverage present=%v, got %v", tt.coverage, coverage)
			}
		})
	}
}

func TestPriorityPolicy_Validate(t *testing.T) {
	if err := replenishment.DefaultPriorityPolicy().Validate(); err != nil {
		t.Fatalf("default policy should be valid: %v", err)
	}

	bad := []replenishment.PriorityPolicy{
		{UrgentRatio: 0, HighRatio: 0.5, MediumRatio: 1},
		{UrgentRatio: 0.6, HighRatio: 0.5, MediumRatio: 1},
		{UrgentRatio: 0.25, HighRatio: 1.5, MediumRatio: 1},
	}
	for _, p := range bad {
		if err := p.Validate(); err == nil {
			t.Errorf("expected error for %+v", p)
		}
	}
}

func TestFormatQuantity(t *testing.T) {
	tests := map[float64]string{
		0:        "0",
		10:       "10",
		2.5:      "2.5",
		10.0 / 3: "3.33",
		1234.567: "1234.57",
		-30:      "-30",
	}
	for in, want := range tests {
		if got := replenishment.FormatQuantity(in); got != want {
			t.Errorf("FormatQuantity(%v) = %q, want %q", in, got, want)
		}
	}
}
