package services

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/insightforge/insight-engine/pkg/models"
)

func newOrchestrator() AnalysisOrchestrator {
	logger := zap.NewNop()
	return NewAnalysisOrchestrator(NewDataValidationService(1000, logger), logger)
}

func purchaseViewTable() *models.Table {
	return &models.Table{
		Columns: []models.Column{
			{Name: "action", Type: models.ColumnTypeString},
			{Name: "timestamp", Type: models.ColumnTypeDate},
		},
		Rows: []models.Row{
			{"action": models.StringValue("purchase"), "timestamp": models.StringValue("2024-01-15")},
			{"action": models.StringValue("purchase"), "timestamp": models.StringValue("2024-01-16")},
			{"action": models.StringValue("view"), "timestamp": models.StringValue("2024-01-16")},
		},
		RowCount: 3,
	}
}

func TestRunCompleteAnalysisNeverEmpty(t *testing.T) {
	o := newOrchestrator()

	results := o.RunCompleteAnalysis(purchaseViewTable())
	require.NotEmpty(t, results)
	for _, r := range results {
		assert.NotEmpty(t, r.ID)
		assert.NotEmpty(t, r.Title)
		assert.NotEmpty(t, r.Description)
		assert.NotEmpty(t, r.Insight)
		assert.True(t, r.Confidence.Valid())
	}
}

func TestRunCompleteAnalysisIdempotent(t *testing.T) {
	o := newOrchestrator()
	table := purchaseViewTable()

	first := o.RunCompleteAnalysis(table)
	second := o.RunCompleteAnalysis(table)
	assert.True(t, reflect.DeepEqual(first, second))
}

func TestRunCompleteAnalysisEmptyTableFallback(t *testing.T) {
	o := newOrchestrator()

	results := o.RunCompleteAnalysis(&models.Table{})
	require.Len(t, results, 1)
	assert.Equal(t, "summary_basic", results[0].ID)
	assert.Equal(t, models.ConfidenceLow, results[0].Confidence)
	assert.Contains(t, results[0].Insight, "No usable data")
}

func TestRunCompleteAnalysisNilTableFallback(t *testing.T) {
	o := newOrchestrator()

	results := o.RunCompleteAnalysis(nil)
	require.Len(t, results, 1)
	assert.Equal(t, "summary_basic", results[0].ID)
}

func TestEndToEndActionShares(t *testing.T) {
	o := newOrchestrator()

	results := o.RunCompleteAnalysis(purchaseViewTable())
	breakdown := findResult(t, results, "action_breakdown")

	require.Len(t, breakdown.ChartData, 2)
	assert.Equal(t, 66.7, *breakdown.ChartData[0].Percentage)
	assert.Equal(t, 33.3, *breakdown.ChartData[1].Percentage)
	assert.Contains(t, breakdown.Insight, `"purchase"`)
}

// panicAnalyzer simulates an analyzer bug.
type panicAnalyzer struct{}

func (p *panicAnalyzer) Name() string { return "broken" }
func (p *panicAnalyzer) Analyze(table *models.Table) []models.AnalysisResult {
	panic("analyzer bug")
}

// malformedAnalyzer emits a result that violates the mandatory-field
// contract.
type malformedAnalyzer struct{}

func (m *malformedAnalyzer) Name() string { return "malformed" }
func (m *malformedAnalyzer) Analyze(table *models.Table) []models.AnalysisResult {
	return []models.AnalysisResult{
		{ID: "malformed_missing_bits", Confidence: models.ConfidenceHigh},
		{ID: "malformed_bad_confidence", Title: "t", Description: "d", Insight: "i", Confidence: "definitely"},
	}
}

func TestAnalyzerPanicIsIsolated(t *testing.T) {
	logger := zap.NewNop()
	o := &analysisOrchestrator{
		validator: NewDataValidationService(1000, logger),
		analyzers: []Analyzer{&panicAnalyzer{}, NewRowCountAnalyzer()},
		logger:    logger,
	}

	results := o.RunCompleteAnalysis(purchaseViewTable())

	errResult := findResult(t, results, "broken_error")
	assert.Equal(t, models.ConfidenceLow, errResult.Confidence)

	// the analyzer after the broken one still ran
	findResult(t, results, "rowcount_total_rows")
}

func TestSanitizerDropsMalformedResults(t *testing.T) {
	logger := zap.NewNop()
	o := &analysisOrchestrator{
		validator: NewDataValidationService(1000, logger),
		analyzers: []Analyzer{&malformedAnalyzer{}, NewRowCountAnalyzer()},
		logger:    logger,
	}

	results := o.RunCompleteAnalysis(purchaseViewTable())
	for _, r := range results {
		assert.True(t, r.WellFormed())
		assert.NotEqual(t, "malformed_missing_bits", r.ID)
		assert.NotEqual(t, "malformed_bad_confidence", r.ID)
	}
}

func TestSummarize(t *testing.T) {
	o := newOrchestrator()

	results := []models.AnalysisResult{
		{ID: "rowcount_total_rows", Confidence: models.ConfidenceHigh},
		{ID: "rowcount_total_columns", Confidence: models.ConfidenceHigh},
		{ID: "action_breakdown", Confidence: models.ConfidenceHigh},
		{ID: "time_peak_day", Confidence: models.ConfidenceLow},
	}
	summary := o.Summarize(results)

	assert.Equal(t, 4, summary.TotalResults)
	assert.Equal(t, 3, summary.HighConfidenceResults)
	assert.Equal(t, []string{"rowcount", "action", "time"}, summary.AnalysisTypes)
	assert.Equal(t, models.ConfidenceHigh, summary.DataQuality) // 75% > 70%
}

func TestSummarizeQualityThresholds(t *testing.T) {
	o := newOrchestrator()

	mk := func(high, low int) []models.AnalysisResult {
		var results []models.AnalysisResult
		for i := 0; i < high; i++ {
			results = append(results, models.AnalysisResult{ID: "a_x", Confidence: models.ConfidenceHigh})
		}
		for i := 0; i < low; i++ {
			results = append(results, models.AnalysisResult{ID: "a_y", Confidence: models.ConfidenceLow})
		}
		return results
	}

	assert.Equal(t, models.ConfidenceHigh, o.Summarize(mk(8, 2)).DataQuality)
	assert.Equal(t, models.ConfidenceMedium, o.Summarize(mk(5, 5)).DataQuality)
	assert.Equal(t, models.ConfidenceLow, o.Summarize(mk(2, 8)).DataQuality)
	assert.Equal(t, models.ConfidenceLow, o.Summarize(nil).DataQuality)
}
