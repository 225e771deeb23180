package ingest

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/andresuchdata/procuresmart/backend-go/internal/domain"
)

// notInformed labels a record whose recommendation type cell is empty.
const notInformed = "Not informed"

// Records normalizes raw rows into material records.
// Header rows are skipped and rows without a code are dropped.
func (l Layout) Records(rows [][]string) []domain.MaterialRecord {
	records := make([]domain.MaterialRecord, 0, len(rows))

	for i, row := range rows {
		if i < l.HeaderRows {
			continue
		}

		getValue := func(idx int) string {
			if idx >= 0 && idx < len(row) {
				return strings.TrimSpace(row[idx])
			}
			return ""
		}
		getFloat := func(idx int) float64 {
			return parseNumber(getValue(idx))
		}

		code := getValue(l.Code)
		if code == "" {
			continue
		}

		rec := domain.MaterialRecord{
			ID:                    fmt.Sprintf("%s-%d", code, len(records)),
			Code:                  code,
			Description:           getValue(l.Description),
			UnitOfMeasure:         getValue(l.Unit),
			MinimumThreshold:      getFloat(l.Minimum),
			MaximumThreshold:      getFloat(l.Maximum),
			FreeBalance:           getFloat(l.FreeBalance),
			Consumption30Days:     getFloat(l.Consumption30Days),
			SuggestedMin:          getFloat(l.SuggestedMin),
			SuggestedMax:          getFloat(l.SuggestedMax),
			OpenOrders:            getFloat(l.OpenOrders),
			RecommendationTypeRaw: getValue(l.RecommendationType),
			Row:                   i + 1,
		}
		fillSheetFields(&rec)

		records = append(records, rec)
	}

	return records
}

// Normalize applies the row rules to records that did not come from a sheet.
// Strings are trimmed and IDs are reassigned as code-index. Records with an
// empty code are kept so the engine reports them instead of losing them.
func Normalize(records []domain.MaterialRecord) []domain.MaterialRecord {
	out := make([]domain.MaterialRecord, len(records))
	for i, rec := range records {
		rec.Code = strings.TrimSpace(rec.Code)
		rec.Description = strings.TrimSpace(rec.Description)
		rec.UnitOfMeasure = strings.TrimSpace(rec.UnitOfMeasure)
		rec.RecommendationTypeRaw = strings.TrimSpace(rec.RecommendationTypeRaw)

		if rec.Code == "" {
			rec.ID = fmt.Sprintf("record-%d", i)
		} else {
			rec.ID = fmt.Sprintf("%s-%d", rec.Code, i)
		}
		if rec.SheetDerivedSuggestion == 0 {
			fillSheetFields(&rec)
		} else if rec.RecommendationTypeRaw == "" {
			rec.RecommendationTypeRaw = notInformed
		}

		out[i] = rec
	}
	return out
}

func fillSheetFields(rec *domain.MaterialRecord) {
	rec.SheetDerivedSuggestion = sheetSuggestion(*rec)
	if rec.RecommendationTypeRaw == "" {
		rec.RecommendationTypeRaw = notInformed
	}
}

// sheetSuggestion reproduces the spreadsheet's own purchase heuristic:
// the min or max suggestion picked by the recommendation label, minus open orders.
func sheetSuggestion(rec domain.MaterialRecord) float64 {
	label := strings.ToLower(rec.RecommendationTypeRaw)

	var base float64
	switch {
	case strings.Contains(label, "mín") || strings.Contains(label, "min"):
		base = rec.SuggestedMin
	case strings.Contains(label, "máx") || strings.Contains(label, "max"):
		base = rec.SuggestedMax
	case rec.SuggestedMin > 0:
		base = rec.SuggestedMin
	default:
		base = rec.SuggestedMax
	}

	return math.Max(0, base-rec.OpenOrders)
}

// parseNumber reads a numeric cell, returning 0 for empty or non-numeric values.
// Both "1,234.5" and "1.234,5" are accepted.
func parseNumber(raw string) float64 {
	s := strings.ReplaceAll(strings.TrimSpace(raw), " ", "")
	if s == "" {
		return 0
	}

	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return finiteOrZero(f)
	}

	lastDot := strings.LastIndex(s, ".")
	lastComma := strings.LastIndex(s, ",")
	switch {
	case lastDot >= 0 && lastComma >= 0 && lastComma > lastDot:
		// 1.234,5
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	case lastDot >= 0 && lastComma >= 0:
		// 1,234.5
		s = strings.ReplaceAll(s, ",", "")
	case lastComma >= 0 && strings.Count(s, ",") == 1:
		s = strings.Replace(s, ",", ".", 1)
	case lastComma >= 0:
		s = strings.ReplaceAll(s, ",", "")
	case strings.Count(s, ".") > 1:
		s = strings.ReplaceAll(s, ".", "")
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return finiteOrZero(f)
}

func finiteOrZero(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}
