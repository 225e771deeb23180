// Package report renders analysis reports for people and spreadsheets.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/andresuchdata/procuresmart/backend-go/internal/domain"
)

type Format string

const (
	FormatJSON  Format = "json"
	FormatCSV   Format = "csv"
	FormatXLSX  Format = "xlsx"
	FormatTable Format = "table"
)

// ParseFormat accepts a format name case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatJSON, FormatCSV, FormatXLSX, FormatTable:
		return f, nil
	case "":
		return FormatJSON, nil
	}
	return "", fmt.Errorf("unsupported report format %q (expected json, csv, xlsx or table)", s)
}

// ContentType is the MIME type of a rendered report.
func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatTable:
		return "text/plain; charset=utf-8"
	}
	return "application/json"
}

// Extension is the file extension for a rendered report, without the dot.
func (f Format) Extension() string {
	if f == FormatTable {
		return "txt"
	}
	return string(f)
}

// FileName names the report rendered from source. The source extension is
// kept so stock.xlsx and stock.csv never share a report.
func FileName(source string, format Format) string {
	base := path.Base(strings.ReplaceAll(source, "\\", "/"))
	if base == "." || base == "/" {
		base = "analysis"
	}
	return base + "-recommendations." + format.Extension()
}

// ParseMinPriority reads a priority floor. Empty means no floor.
func ParseMinPriority(label string) (domain.Priority, error) {
	if strings.TrimSpace(label) == "" {
		return "", nil
	}
	p, ok := domain.ParsePriority(label)
	if !ok {
		return "", fmt.Errorf("unknown priority %q (expected Low, Medium, High or Urgent)", label)
	}
	return p, nil
}

// FilterPriority keeps the recommendations at least as pressing as floor.
// Summary and counts still describe the whole batch. An empty floor keeps everything.
func FilterPriority(rep domain.Report, floor domain.Priority) domain.Report {
	if floor == "" {
		return rep
	}
	kept := make([]domain.PurchaseRecommendation, 0, len(rep.Result.Recommendations))
	for _, r := range rep.Result.Recommendations {
		if r.Priority.AtLeast(floor) {
			kept = append(kept, r)
		}
	}
	rep.Result.Recommendations = kept
	return rep
}

// Write renders rep in the given format.
func Write(w io.Writer, rep domain.Report, format Format) error {
	switch format {
	case FormatJSON:
		return WriteJSON(w, rep)
	case FormatCSV:
		return WriteCSV(w, Lines(rep))
	case FormatXLSX:
		return WriteXLSX(w, rep)
	case FormatTable:
		return WriteTable(w, rep)
	}
	return fmt.Errorf("unsupported report format %q", format)
}

func WriteJSON(w io.Writer, rep domain.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rep); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return nil
}
