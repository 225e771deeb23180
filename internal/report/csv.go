package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/andresuchdata/procuresmart/backend-go/internal/replenishment"
)

var csvHeader = []string{
	"Code", "Description", "Unit", "Priority", "Can Purchase", "Suggested Quantity",
	"Free Balance", "Open Orders", "Available Balance", "Daily Average", "Projected Consumption",
	"Coverage Days", "Maximum", "Ceiling Applied", "Sheet Type", "Sheet Suggestion", "Sheet Delta",
	"Justification",
}

// CSVHeader returns the column names written by WriteCSV.
func CSVHeader() []string {
	return append([]string(nil), csvHeader...)
}

// WriteCSV writes one row per line after a header row.
func WriteCSV(w io.Writer, lines []Line) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, l := range lines {
		if err := writer.Write(CSVRecord(l)); err != nil {
			return fmt.Errorf("write csv row %s: %w", l.Code, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// CSVRecord renders a line in CSVHeader order.
func CSVRecord(l Line) []string {
	return []string{
		csvSafe(l.Code),
		csvSafe(l.Description),
		csvSafe(l.Unit),
		string(l.Priority),
		strconv.FormatBool(l.CanPurchase),
		replenishment.FormatQuantity(l.SuggestedQuantity),
		replenishment.FormatQuantity(l.FreeBalance),
		replenishment.FormatQuantity(l.OpenOrders),
		replenishment.FormatQuantity(l.AvailableBalance),
		replenishment.FormatQuantity(l.DailyAverage),
		replenishment.FormatQuantity(l.ProjectedConsumption),
		formatCoverage(l.CoverageDays),
		replenishment.FormatQuantity(l.MaximumThreshold),
		strconv.FormatBool(l.CeilingApplied),
		csvSafe(l.RecommendationType),
		replenishment.FormatQuantity(l.SheetSuggestion),
		replenishment.FormatQuantity(l.SheetDelta),
		l.Justification,
	}
}

// csvSafe neutralises values a spreadsheet would evaluate as formulas.
func csvSafe(s string) string {
	if len(s) == 0 {
		return s
	}
	switch s[0] {
	case '=', '+', '-', '@', '\t', '\r':
		return "'" + s
	}
	return s
}

func formatCoverage(days *float64) string {
	if days == nil {
		return ""
	}
	return replenishment.FormatQuantity(*days)
}
