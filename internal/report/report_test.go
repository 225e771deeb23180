package report_test

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/andresuchdata/procuresmart/backend-go/internal/domain"
	"github.com/andresuchdata/procuresmart/backend-go/internal/replenishment"
	"github.com/andresuchdata/procuresmart/backend-go/internal/report"
)

func sampleReport(t *testing.T) domain.Report {
	t.Helper()

	records := []domain.MaterialRecord{
		{ID: "MAT-A-0", Code: "MAT-A", Description: "Parafuso sextavado", UnitOfMeasure: "UN",
			MaximumThreshold: 1000, FreeBalance: 100, Consumption30Days: 300,
			RecommendationTypeRaw: "Mín", SheetDerivedSuggestion: 150},
		{ID: "=CMD-1", Code: "=CMD", Description: "formula-looking code", MaximumThreshold: 10, FreeBalance: 500, Consumption30Days: 30},
		{ID: "BAD-2", Code: "BAD", Consumption30Days: -1},
	}

	result, err := replenishment.NewAggregator(nil).Analyze(records, 30)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	return domain.Report{Source: "stock.xlsx", Result: result, Records: records}
}

func TestLinesJoinRecords(t *testing.T) {
	lines := report.Lines(sampleReport(t))
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}

	first := lines[0]
	if first.Description != "Parafuso sextavado" || first.Unit != "UN" {
		t.Errorf("record fields not joined: %+v", first)
	}
	if first.SuggestedQuantity != 200 {
		t.Errorf("expected purchase 200, got %v", first.SuggestedQuantity)
	}
	if first.SheetDelta != 50 {
		t.Errorf("expected sheet delta 50, got %v", first.SheetDelta)
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := report.WriteCSV(&buf, report.Lines(sampleReport(t))); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("read back csv: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(rows))
	}
	if rows[0][0] != "Code" || rows[0][16] != "Sheet Delta" {
		t.Errorf("unexpected header: %v", rows[0])
	}
	if rows[1][5] != "200" || rows[1][16] != "50" {
		t.Errorf("unexpected quantities: %v", rows[1])
	}
	if rows[2][0] != "'=CMD" {
		t.Errorf("formula-like code must be escaped, got %q", rows[2][0])
	}
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	if err := report.WriteXLSX(&buf, sampleReport(t)); err != nil {
		t.Fatalf("WriteXLSX: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	want := []string{report.SheetRecommendations, report.SheetSummary, report.SheetSkipped}
	if strings.Join(sheets, ",") != strings.Join(want, ",") {
		t.Fatalf("unexpected sheets %v", sheets)
	}

	code, _ := f.GetCellValue(report.SheetRecommendations, "A2")
	qty, _ := f.GetCellValue(report.SheetRecommendations, "F2")
	if code != "MAT-A" || qty != "200" {
		t.Errorf("unexpected first row: code=%q qty=%q", code, qty)
	}

	reason, _ := f.GetCellValue(report.SheetSkipped, "D2")
	if !strings.Contains(reason, "consumption") {
		t.Errorf("expected skipped reason, got %q", reason)
	}
}

func TestWriteJSONOmitsRecords(t *testing.T) {
	var buf bytes.Buffer
	if err := report.WriteJSON(&buf, sampleReport(t)); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if _, ok := decoded["records"]; ok {
		t.Error("records must not be serialized")
	}
	if _, ok := decoded["Records"]; ok {
		t.Error("records must not be serialized")
	}
	if decoded["source"] != "stock.xlsx" {
		t.Errorf("unexpected source %v", decoded["source"])
	}
}

func TestWriteTable(t *testing.T) {
	rep := sampleReport(t)
	rep.NarrativeError = "narrative unavailable: disabled"

	var buf bytes.Buffer
	if err := report.WriteTable(&buf, rep); err != nil {
		t.Fatalf("WriteTable: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"MAT-A", "PURCHASE", rep.Result.Summary, "skipped BAD", "narrative unavailable"} {
		if !strings.Contains(out, want) {
			t.Errorf("table output missing %q:\n%s", want, out)
		}
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    report.Format
		wantErr bool
	}{
		{in: "", want: report.FormatJSON},
		{in: "CSV", want: report.FormatCSV},
		{in: " xlsx ", want: report.FormatXLSX},
		{in: "table", want: report.FormatTable},
		{in: "pdf", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := report.ParseFormat(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("wantErr=%v, got %v", tt.wantErr, err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFilterPriority(t *testing.T) {
	rep := sampleReport(t)

	tests := []struct {
		label string
		want  []string
	}{
		{"", []string{"MAT-A", "=CMD"}},
		{"Alta", []string{"MAT-A"}},
		{"urgent", nil},
		{"Baixa", []string{"MAT-A", "=CMD"}},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			floor, err := report.ParseMinPriority(tt.label)
			if err != nil {
				t.Fatalf("ParseMinPriority: %v", err)
			}
			got := report.FilterPriority(rep, floor)

			var codes []string
			for _, r := range got.Result.Recommendations {
				codes = append(codes, r.Code)
			}
			if strings.Join(codes, ",") != strings.Join(tt.want, ",") {
				t.Fatalf("got %v, want %v", codes, tt.want)
			}
			if got.Result.Counts.Total != rep.Result.Counts.Total || got.Result.Summary != rep.Result.Summary {
				t.Fatalf("summary and counts must describe the whole batch")
			}
		})
	}

	if len(rep.Result.Recommendations) != 2 {
		t.Fatal("input report was modified")
	}
	if _, err := report.ParseMinPriority("critical"); err == nil {
		t.Fatal("expected an error for an unknown priority")
	}
}

func TestFileName(t *testing.T) {
	tests := map[string]string{
		"stock.xlsx":           "stock.xlsx-recommendations.csv",
		"stock.csv":            "stock.csv-recommendations.csv",
		"inventory/may.xlsx":   "may.xlsx-recommendations.csv",
		`C:\data\north.xlsm`:   "north.xlsm-recommendations.csv",
		"":                     "analysis-recommendations.csv",
	}
	for in, want := range tests {
		if got := report.FileName(in, report.FormatCSV); got != want {
			t.Errorf("FileName(%q) = %q, want %q", in, got, want)
		}
	}
}
