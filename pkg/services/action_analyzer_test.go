package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insightforge/insight-engine/pkg/models"
)

func actionTable(actions ...string) *models.Table {
	rows := make([]models.Row, len(actions))
	for i, action := range actions {
		rows[i] = models.Row{"action": models.StringValue(action)}
	}
	return &models.Table{
		Columns:  []models.Column{{Name: "action", Type: models.ColumnTypeString}},
		Rows:     rows,
		RowCount: len(rows),
	}
}

func findResult(t *testing.T, results []models.AnalysisResult, id string) models.AnalysisResult {
	t.Helper()
	for _, r := range results {
		if r.ID == id {
			return r
		}
	}
	t.Fatalf("no result with id %q", id)
	return models.AnalysisResult{}
}

func TestActionBreakdownPercentages(t *testing.T) {
	a := NewActionAnalyzer()

	results := a.Analyze(actionTable("purchase", "purchase", "view"))
	breakdown := findResult(t, results, "action_breakdown")

	require.Len(t, breakdown.ChartData, 2)
	assert.Equal(t, "purchase", breakdown.ChartData[0].Name)
	assert.Equal(t, 2.0, breakdown.ChartData[0].Value)
	assert.Equal(t, 66.7, *breakdown.ChartData[0].Percentage)
	assert.Equal(t, "view", breakdown.ChartData[1].Name)
	assert.Equal(t, 33.3, *breakdown.ChartData[1].Percentage)
	assert.Contains(t, breakdown.Insight, `"purchase"`)
	assert.Equal(t, models.ChartTypePie, breakdown.ChartType)
}

func TestActionBreakdownPercentagesSumToHundred(t *testing.T) {
	a := NewActionAnalyzer()

	results := a.Analyze(actionTable("a", "b", "b", "c", "c", "c", "d"))
	breakdown := findResult(t, results, "action_breakdown")

	var sum float64
	for _, point := range breakdown.ChartData {
		sum += *point.Percentage
	}
	assert.InDelta(t, 100.0, sum, 0.1)
}

func TestActionBreakdownMissingValuesBucketUnknown(t *testing.T) {
	a := NewActionAnalyzer()

	table := actionTable("view", "view")
	table.Rows = append(table.Rows, models.Row{}) // no action key at all
	table.RowCount = 3

	results := a.Analyze(table)
	breakdown := findResult(t, results, "action_breakdown")

	counts, ok := breakdown.Value.(map[string]int)
	require.True(t, ok)
	assert.Equal(t, 1, counts["unknown"])
	assert.Equal(t, 2, counts["view"])
}

func TestActionAuthenticatedShare(t *testing.T) {
	a := NewActionAnalyzer()

	table := &models.Table{
		Columns: []models.Column{
			{Name: "action", Type: models.ColumnTypeString},
			{Name: "user_id", Type: models.ColumnTypeString},
		},
		Rows: []models.Row{
			{"action": models.StringValue("view"), "user_id": models.StringValue("u1")},
			{"action": models.StringValue("view"), "user_id": models.StringValue("unknown")},
			{"action": models.StringValue("view"), "user_id": models.NullValue()},
			{"action": models.StringValue("view"), "user_id": models.StringValue("u2")},
		},
		RowCount: 4,
	}

	results := a.Analyze(table)
	auth := findResult(t, results, "action_authenticated_share")

	assert.Equal(t, 50.0, auth.Value)
	require.Len(t, auth.ChartData, 2)
	assert.Equal(t, 2.0, auth.ChartData[0].Value) // authenticated
	assert.Equal(t, 2.0, auth.ChartData[1].Value) // anonymous
}

func TestActionAnalyzerEmptyTable(t *testing.T) {
	a := NewActionAnalyzer()
	assert.Nil(t, a.Analyze(&models.Table{}))
	assert.Nil(t, a.Analyze(nil))
}

func TestActionAnalyzerEventFieldFallback(t *testing.T) {
	a := NewActionAnalyzer()

	table := &models.Table{
		Columns: []models.Column{{Name: "event", Type: models.ColumnTypeString}},
		Rows: []models.Row{
			{"event": models.StringValue("signup")},
			{"event": models.StringValue("signup")},
		},
		RowCount: 2,
	}

	results := a.Analyze(table)
	breakdown := findResult(t, results, "action_breakdown")
	assert.Contains(t, breakdown.Insight, `"signup"`)
}
