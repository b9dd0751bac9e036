package services

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/insightforge/insight-engine/pkg/models"
)

func eventTable(n int) *models.Table {
	rows := make([]models.Row, n)
	for i := range rows {
		action := "view"
		if i%3 == 0 {
			action = "purchase"
		}
		rows[i] = models.Row{
			"session_id": models.StringValue(fmt.Sprintf("s-%d", i/2)),
			"user_id":    models.StringValue(fmt.Sprintf("u-%d", i%4)),
			"action":     models.StringValue(action),
		}
	}
	return &models.Table{
		Columns: []models.Column{
			{Name: "session_id", Type: models.ColumnTypeString},
			{Name: "user_id", Type: models.ColumnTypeString},
			{Name: "action", Type: models.ColumnTypeString},
		},
		Rows:     rows,
		RowCount: n,
	}
}

func TestRowCountTotals(t *testing.T) {
	a := NewRowCountAnalyzer()

	results := a.Analyze(eventTable(12))

	totalRows := findResult(t, results, "rowcount_total_rows")
	assert.Equal(t, 12, totalRows.Value)
	assert.Contains(t, totalRows.Insight, "12 rows")

	totalCols := findResult(t, results, "rowcount_total_columns")
	assert.Equal(t, 3, totalCols.Value)
}

func TestRowCountFileSizePassthrough(t *testing.T) {
	a := NewRowCountAnalyzer()

	table := eventTable(4)
	table.SizeBytes = 2048

	results := a.Analyze(table)
	size := findResult(t, results, "rowcount_file_size")
	assert.Equal(t, int64(2048), size.Value)
	assert.Contains(t, size.Insight, "2.0 KB")
}

func TestRowCountCompleteness(t *testing.T) {
	a := NewRowCountAnalyzer()

	table := eventTable(4)
	table.Rows[0]["action"] = models.NullValue()
	table.Rows[1]["action"] = models.StringValue("N/A")
	table.Rows[2]["action"] = models.StringValue("n/a")

	results := a.Analyze(table)
	completeness := findResult(t, results, "rowcount_completeness")
	// 9 of 12 cells filled
	assert.Equal(t, 75.0, completeness.Value)
}

func TestRowCountCardinalities(t *testing.T) {
	a := NewRowCountAnalyzer()

	table := eventTable(12)
	table.Rows[0]["user_id"] = models.StringValue("unknown")
	table.Rows[1]["user_id"] = models.StringValue("Unknown")

	results := a.Analyze(table)

	sessions := findResult(t, results, "rowcount_unique_sessions")
	assert.Equal(t, 6, sessions.Value)

	// u-0 and u-1 replaced by "unknown" in rows 0 and 1 still appear in later
	// rows (i%4 cycles), so all four user ids remain distinct.
	users := findResult(t, results, "rowcount_unique_users")
	assert.Equal(t, 4, users.Value)
}

func TestRowCountCardinalityFoldsCase(t *testing.T) {
	a := NewRowCountAnalyzer()

	table := &models.Table{
		Columns: []models.Column{
			{Name: "user_id", Type: models.ColumnTypeString},
			{Name: "action", Type: models.ColumnTypeString},
		},
		Rows: []models.Row{
			{"user_id": models.StringValue("U1"), "action": models.StringValue("View")},
			{"user_id": models.StringValue("u1"), "action": models.StringValue("view")},
			{"user_id": models.StringValue("u2"), "action": models.StringValue("VIEW")},
		},
		RowCount: 3,
	}

	results := a.Analyze(table)

	users := findResult(t, results, "rowcount_unique_users")
	assert.Equal(t, 2, users.Value)
	assert.Contains(t, users.Description, "ignoring letter case")

	actions := findResult(t, results, "rowcount_unique_actions")
	assert.Equal(t, 1, actions.Value)
}

func TestRowCountActionMetrics(t *testing.T) {
	a := NewRowCountAnalyzer()

	results := a.Analyze(eventTable(12))

	actions := findResult(t, results, "rowcount_unique_actions")
	assert.Equal(t, 2, actions.Value)

	purchases := findResult(t, results, "rowcount_purchase_events")
	assert.Equal(t, 4, purchases.Value) // rows 0,3,6,9
}

func TestRowCountPurchaseSubstringMatch(t *testing.T) {
	a := NewRowCountAnalyzer()

	table := &models.Table{
		Columns: []models.Column{{Name: "action"}},
		Rows: []models.Row{
			{"action": models.StringValue("REPEAT_PURCHASE")},
			{"action": models.StringValue("purchase_completed")},
			{"action": models.StringValue("view")},
		},
		RowCount: 3,
	}

	results := a.Analyze(table)
	purchases := findResult(t, results, "rowcount_purchase_events")
	assert.Equal(t, 2, purchases.Value)
}

func TestRowCountSkipsAbsentColumns(t *testing.T) {
	a := NewRowCountAnalyzer()

	table := &models.Table{
		Columns:  []models.Column{{Name: "amount"}},
		Rows:     []models.Row{{"amount": models.NumberValue(5)}},
		RowCount: 1,
	}

	results := a.Analyze(table)
	for _, r := range results {
		assert.NotEqual(t, "rowcount_unique_sessions", r.ID)
		assert.NotEqual(t, "rowcount_unique_users", r.ID)
		assert.NotEqual(t, "rowcount_unique_actions", r.ID)
	}
}
