package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/andresuchdata/procuresmart/backend-go/internal/domain"
	"github.com/andresuchdata/procuresmart/backend-go/internal/replenishment"
)

const (
	SheetRecommendations = "Recommendations"
	SheetSummary         = "Summary"
	SheetSkipped         = "Skipped"
)

// WriteXLSX writes a workbook with the recommendations, the summary and
// the skipped records on separate sheets.
func WriteXLSX(w io.Writer, rep domain.Report) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), SheetRecommendations); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if err := writeRecommendations(f, Lines(rep)); err != nil {
		return err
	}
	if err := writeSummary(f, rep); err != nil {
		return err
	}
	if len(rep.Result.Diagnostics) > 0 {
		if err := writeSkipped(f, rep.Result.Diagnostics); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeRecommendations(f *excelize.File, lines []Line) error {
	header := make([]interface{}, len(csvHeader))
	for i, h := range csvHeader {
		header[i] = h
	}
	if err := f.SetSheetRow(SheetRecommendations, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err == nil {
		last, _ := excelize.ColumnNumberToName(len(header))
		_ = f.SetCellStyle(SheetRecommendations, "A1", last+"1", bold)
	}

	for i, l := range lines {
		var coverage interface{}
		if l.CoverageDays != nil {
			coverage = replenishment.RoundQuantity(*l.CoverageDays, 2)
		}
		excelRow := []interface{}{
			l.Code,
			l.Description,
			l.Unit,
			string(l.Priority),
			l.CanPurchase,
			replenishment.RoundQuantity(l.SuggestedQuantity, 2),
			l.FreeBalance,
			l.OpenOrders,
			l.AvailableBalance,
			replenishment.RoundQuantity(l.DailyAverage, 2),
			replenishment.RoundQuantity(l.ProjectedConsumption, 2),
			coverage,
			l.MaximumThreshold,
			l.CeilingApplied,
			l.RecommendationType,
			l.SheetSuggestion,
			l.SheetDelta,
			l.Justification,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("cell name: %w", err)
		}
		if err := f.SetSheetRow(SheetRecommendations, cell, &excelRow); err != nil {
			return fmt.Errorf("write row %s: %w", l.Code, err)
		}
	}

	if err := f.SetColWidth(SheetRecommendations, "B", "B", 40); err != nil {
		return fmt.Errorf("set column width: %w", err)
	}
	return nil
}

func writeSummary(f *excelize.File, rep domain.Report) error {
	if _, err := f.NewSheet(SheetSummary); err != nil {
		return fmt.Errorf("create summary sheet: %w", err)
	}

	counts := rep.Result.Counts
	rows := [][]interface{}{
		{"Source", rep.Source},
		{"Projection Days", rep.Result.ProjectionDays},
		{"Summary", rep.Result.Summary},
		{"Total", counts.Total},
		{"To Purchase", counts.ToPurchase},
		{"Sufficient", counts.Sufficient},
		{"Skipped", counts.Skipped},
	}
	for _, p := range domain.Priorities {
		rows = append(rows, []interface{}{string(p), counts.ByPriority[p]})
	}
	if rep.Narrative != nil {
		rows = append(rows, []interface{}{"Narrative", rep.Narrative.Summary})
		for _, h := range rep.Narrative.Highlights {
			rows = append(rows, []interface{}{"", h})
		}
	}

	for i := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("cell name: %w", err)
		}
		if err := f.SetSheetRow(SheetSummary, cell, &rows[i]); err != nil {
			return fmt.Errorf("write summary row: %w", err)
		}
	}
	return nil
}

func writeSkipped(f *excelize.File, diags []domain.Diagnostic) error {
	if _, err := f.NewSheet(SheetSkipped); err != nil {
		return fmt.Errorf("create skipped sheet: %w", err)
	}

	header := []interface{}{"Record", "Code", "Row", "Reason"}
	if err := f.SetSheetRow(SheetSkipped, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, d := range diags {
		row := []interface{}{d.RecordID, d.Code, d.Row, d.Reason}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("cell name: %w", err)
		}
		if err := f.SetSheetRow(SheetSkipped, cell, &row); err != nil {
			return fmt.Errorf("write skipped row: %w", err)
		}
	}
	return nil
}
