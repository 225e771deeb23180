package ingest

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Layout maps record fields to 0-based spreadsheet column positions.
type Layout struct {
	Code               int
	Description        int
	Unit               int
	Minimum            int
	Maximum            int
	FreeBalance        int
	Consumption30Days  int
	SuggestedMin       int
	RecommendationType int
	SuggestedMax       int
	OpenOrders         int

	// PreferredSheet is read when present, otherwise the first sheet.
	PreferredSheet string
	// HeaderRows are skipped before data rows.
	HeaderRows int
}

// DefaultLayout is the purchasing team's inventory sheet:
// A code, B description, C unit, E minimum, F maximum, G free balance,
// H 30-day consumption, J suggested min, L recommendation type,
// N suggested max, R open orders.
func DefaultLayout() Layout {
	return Layout{
		Code:               0,
		Description:        1,
		Unit:               2,
		Minimum:            4,
		Maximum:            5,
		FreeBalance:        6,
		Consumption30Days:  7,
		SuggestedMin:       9,
		RecommendationType: 11,
		SuggestedMax:       13,
		OpenOrders:         17,
		PreferredSheet:     "Tabela1",
		HeaderRows:         1,
	}
}

// Column describes one mapped column.
type Column struct {
	Letter string `json:"letter"`
	Index  int    `json:"index"`
	Field  string `json:"field"`
}

// Columns lists the mapped columns in sheet order.
func (l Layout) Columns() []Column {
	mapped := []struct {
		idx   int
		field string
	}{
		{l.Code, "code"},
		{l.Description, "description"},
		{l.Unit, "unitOfMeasure"},
		{l.Minimum, "minimumThreshold"},
		{l.Maximum, "maximumThreshold"},
		{l.FreeBalance, "freeBalance"},
		{l.Consumption30Days, "consumption30Days"},
		{l.SuggestedMin, "suggestedMin"},
		{l.RecommendationType, "recommendationTypeRaw"},
		{l.SuggestedMax, "suggestedMax"},
		{l.OpenOrders, "openOrders"},
	}

	cols := make([]Column, 0, len(mapped))
	for _, m := range mapped {
		cols = append(cols, Column{Letter: columnLetter(m.idx), Index: m.idx, Field: m.field})
	}
	return cols
}

// Describe renders the layout for error messages, e.g. "A:code, B:description, ...".
func (l Layout) Describe() string {
	cols := l.Columns()
	parts := make([]string, 0, len(cols))
	for _, c := range cols {
		parts = append(parts, fmt.Sprintf("%s:%s", c.Letter, c.Field))
	}
	return strings.Join(parts, ", ")
}

func columnLetter(idx int) string {
	name, err := excelize.ColumnNumberToName(idx + 1)
	if err != nil {
		return fmt.Sprintf("#%d", idx)
	}
	return name
}
