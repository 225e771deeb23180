package ingest

import (
	"testing"

	"github.com/andresuchdata/procuresmart/backend-go/internal/domain"
)

func TestParseNumber(t *testing.T) {
	tests := map[string]float64{
		"":          0,
		"  ":        0,
		"42":        42,
		" 12.5 ":    12.5,
		"-3":        -3,
		"12,5":      12.5,
		"1.234,5":   1234.5,
		"1,234.5":   1234.5,
		"1,234,567": 1234567,
		"1.234.567": 1234567,
		"1 000":     1000,
		"abc":       0,
		"N/A":       0,
		"NaN":       0,
		"Inf":       0,
	}
	for in, want := range tests {
		if got := parseNumber(in); got != want {
			t.Errorf("parseNumber(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNormalize(t *testing.T) {
	in := []domain.MaterialRecord{
		{ID: "client-id", Code: "  A  ", Description: " bolt ", Consumption30Days: 300, MaximumThreshold: 1000},
		{Code: "", Consumption30Days: 300, MaximumThreshold: 1000},
		{Code: "B", RecommendationTypeRaw: "Comprar Mín", SuggestedMin: 40, OpenOrders: 10},
		{Code: "C", SheetDerivedSuggestion: 7},
	}

	got := Normalize(in)

	if len(got) != len(in) {
		t.Fatalf("expected %d records, got %d", len(in), len(got))
	}
	if got[0].Code != "A" || got[0].ID != "A-0" || got[0].Description != "bolt" {
		t.Errorf("record not trimmed: %+v", got[0])
	}
	if got[0].RecommendationTypeRaw != notInformed {
		t.Errorf("expected %q, got %q", notInformed, got[0].RecommendationTypeRaw)
	}
	if got[1].Code != "" || got[1].ID != "record-1" {
		t.Errorf("empty code should be kept with a positional id: %+v", got[1])
	}
	if got[2].SheetDerivedSuggestion != 30 {
		t.Errorf("expected sheet suggestion 30, got %v", got[2].SheetDerivedSuggestion)
	}
	if got[3].SheetDerivedSuggestion != 7 {
		t.Errorf("caller suggestion overwritten: %v", got[3].SheetDerivedSuggestion)
	}
	if in[0].Code != "  A  " {
		t.Error("input slice was modified")
	}
}
