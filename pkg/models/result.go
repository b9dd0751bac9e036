package models

// Confidence is the qualitative trust level attached to findings and
// validation verdicts. It is a styling hint for consumers, never an input to
// business logic.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Valid reports whether c is one of the three known levels.
func (c Confidence) Valid() bool {
	switch c {
	case ConfidenceHigh, ConfidenceMedium, ConfidenceLow:
		return true
	}
	return false
}

// ChartType is an optional presentation hint on a finding.
type ChartType string

const (
	ChartTypeBar   ChartType = "bar"
	ChartTypeLine  ChartType = "line"
	ChartTypePie   ChartType = "pie"
	ChartTypeTable ChartType = "table"
)

// ChartPoint is one labeled data point in a finding's chart data.
type ChartPoint struct {
	Name       string   `json:"name"`
	Value      float64  `json:"value"`
	Percentage *float64 `json:"percentage,omitempty"`
}

// AnalysisResult is a single structured finding. ID, Title, Description,
// Insight, and a valid Confidence are mandatory; the sanitizer drops results
// that break this contract before they reach callers.
type AnalysisResult struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Value       interface{}  `json:"value,omitempty"`
	ChartType   ChartType    `json:"chart_type,omitempty"`
	ChartData   []ChartPoint `json:"chart_data,omitempty"`
	Insight     string       `json:"insight"`
	Confidence  Confidence   `json:"confidence"`
}

// WellFormed reports whether the result satisfies the mandatory-field
// contract.
func (r *AnalysisResult) WellFormed() bool {
	return r.ID != "" &&
		r.Title != "" &&
		r.Description != "" &&
		r.Insight != "" &&
		r.Confidence.Valid()
}

// ValidationResult is the data-quality verdict for a table.
// IsValid holds exactly when Errors is empty.
type ValidationResult struct {
	IsValid    bool       `json:"is_valid"`
	Errors     []string   `json:"errors"`
	Warnings   []string   `json:"warnings"`
	Confidence Confidence `json:"confidence"`
}

// AnalysisSummary aggregates a finished run: totals, the analysis families
// that produced output (derived from result ID prefixes), and an overall
// data-quality grade.
type AnalysisSummary struct {
	TotalResults          int        `json:"total_results"`
	HighConfidenceResults int        `json:"high_confidence_results"`
	AnalysisTypes         []string   `json:"analysis_types"`
	DataQuality           Confidence `json:"data_quality"`
}
