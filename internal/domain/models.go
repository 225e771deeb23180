// backend-go/internal/domain/models.go
package domain

// MaterialRecord represents one inventory row produced by the ingestion adapter.
// Records are created once per ingestion pass and treated as read-only afterwards.
type MaterialRecord struct {
	ID                string  `json:"id"`
	Code              string  `json:"code"`
	Description       string  `json:"description"`
	UnitOfMeasure     string  `json:"unitOfMeasure"`
	MinimumThreshold  float64 `json:"minimumThreshold"`
	MaximumThreshold  float64 `json:"maximumThreshold"`
	FreeBalance       float64 `json:"freeBalance"`
	OpenOrders        float64 `json:"openOrders"`
	Consumption30Days float64 `json:"consumption30Days"`

	// Spreadsheet-side heuristics, kept for display and cross-checking only.
	SuggestedMin           float64 `json:"suggestedMin"`
	SuggestedMax           float64 `json:"suggestedMax"`
	RecommendationTypeRaw  string  `json:"recommendationTypeRaw"`
	SheetDerivedSuggestion float64 `json:"sheetDerivedSuggestion"`

	// Row is the 1-based spreadsheet row, zero when the record did not come from a sheet.
	Row int `json:"row,omitempty"`
}

// AvailableBalance is on-hand stock plus quantity already on order.
func (m MaterialRecord) AvailableBalance() float64 {
	return m.FreeBalance + m.OpenOrders
}

// PurchaseRecommendation is the engine output for a single record
type PurchaseRecommendation struct {
	Code              string   `json:"code"`
	RecordID          string   `json:"recordId"`
	CanPurchase       bool     `json:"canPurchase"`
	SuggestedQuantity float64  `json:"suggestedQuantity"`
	Priority          Priority `json:"priority"`
	Justification     string   `json:"justification"`

	AvailableBalance     float64  `json:"availableBalance"`
	DailyAverage         float64  `json:"dailyAverage"`
	ProjectedConsumption float64  `json:"projectedConsumption"`
	CoverageDays         *float64 `json:"coverageDays"`
	CeilingApplied       bool     `json:"ceilingApplied"`
}

// Diagnostic describes a record that was skipped during aggregation
type Diagnostic struct {
	RecordID string `json:"recordId"`
	Code     string `json:"code"`
	Row      int    `json:"row,omitempty"`
	Reason   string `json:"reason"`
}

// AnalysisCounts holds the aggregate figures behind the summary
type AnalysisCounts struct {
	Total      int              `json:"total"`
	ToPurchase int              `json:"toPurchase"`
	Sufficient int              `json:"sufficient"`
	Skipped    int              `json:"skipped"`
	ByPriority map[Priority]int `json:"byPriority"`
}

// AnalysisResult is the batch output of the aggregator
type AnalysisResult struct {
	Recommendations []PurchaseRecommendation `json:"recommendations"`
	Summary         string                   `json:"summary"`
	ProjectionDays  int                      `json:"projectionDays"`
	Counts          AnalysisCounts           `json:"counts"`
	Diagnostics     []Diagnostic             `json:"diagnostics"`
}

// Report wraps an AnalysisResult with the optional narrative layer and source metadata
type Report struct {
	Source         string         `json:"source,omitempty"`
	Result         AnalysisResult `json:"result"`
	Narrative      *Narrative     `json:"narrative,omitempty"`
	NarrativeError string         `json:"narrativeError,omitempty"`

	// Records are the ingested rows behind Result, kept for exports.
	Records []MaterialRecord `json:"-"`
}

// Narrative is prose generated on top of a deterministic result. It is never authoritative.
type Narrative struct {
	Summary    string   `json:"summary"`
	Highlights []string `json:"highlights"`
	Model      string   `json:"model,omitempty"`
}
