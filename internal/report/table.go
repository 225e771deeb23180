package report

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/andresuchdata/procuresmart/backend-go/internal/domain"
	"github.com/andresuchdata/procuresmart/backend-go/internal/replenishment"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)

	priorityColors = map[domain.Priority]lipgloss.Color{
		domain.PriorityUrgent: lipgloss.Color("#FF6B6B"),
		domain.PriorityHigh:   lipgloss.Color("#FFA94D"),
		domain.PriorityMedium: lipgloss.Color("#FFD43B"),
		domain.PriorityLow:    lipgloss.Color("#888888"),
	}
)

const priorityColumn = 2

// WriteTable renders the report as a terminal table followed by the summary.
func WriteTable(w io.Writer, rep domain.Report) error {
	lines := Lines(rep)
	rows := make([][]string, 0, len(lines))
	for _, l := range lines {
		rows = append(rows, []string{
			l.Code,
			truncate(l.Description, 32),
			string(l.Priority),
			replenishment.FormatQuantity(l.SuggestedQuantity),
			replenishment.FormatQuantity(l.AvailableBalance),
			replenishment.FormatQuantity(l.DailyAverage),
			formatCoverage(l.CoverageDays),
			ceilingMark(l.CeilingApplied),
		})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("CODE", "DESCRIPTION", "PRIORITY", "PURCHASE", "AVAILABLE", "DAILY", "COVERAGE", "CEILING").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if col == priorityColumn && row >= 0 && row < len(lines) {
				if c, ok := priorityColors[lines[row].Priority]; ok {
					return cellStyle.Foreground(c)
				}
			}
			return cellStyle
		})

	if _, err := fmt.Fprintln(w, t.String()); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, rep.Result.Summary); err != nil {
		return err
	}
	for _, d := range rep.Result.Diagnostics {
		if _, err := fmt.Fprintf(w, "  skipped %s (row %d): %s\n", d.Code, d.Row, d.Reason); err != nil {
			return err
		}
	}
	if rep.Narrative != nil {
		if _, err := fmt.Fprintf(w, "\n%s\n", rep.Narrative.Summary); err != nil {
			return err
		}
		for _, h := range rep.Narrative.Highlights {
			if _, err := fmt.Fprintf(w, "  - %s\n", h); err != nil {
				return err
			}
		}
	} else if rep.NarrativeError != "" {
		if _, err := fmt.Fprintf(w, "\nnarrative unavailable: %s\n", rep.NarrativeError); err != nil {
			return err
		}
	}
	return nil
}

func ceilingMark(applied bool) string {
	if applied {
		return "yes"
	}
	return ""
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
