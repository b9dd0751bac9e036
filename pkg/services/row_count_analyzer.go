package services

import (
	"fmt"
	"strings"

	"github.com/insightforge/insight-engine/pkg/models"
)

// RowCountAnalyzer reports dataset-shape findings: row/column totals, source
// size, cell completeness, and cardinality of id-like and action-like
// columns.
type RowCountAnalyzer struct{}

// NewRowCountAnalyzer creates a row count analyzer.
func NewRowCountAnalyzer() *RowCountAnalyzer {
	return &RowCountAnalyzer{}
}

func (a *RowCountAnalyzer) Name() string { return "rowcount" }

func (a *RowCountAnalyzer) Analyze(table *models.Table) []models.AnalysisResult {
	if table == nil {
		return nil
	}

	results := []models.AnalysisResult{
		{
			ID:          "rowcount_total_rows",
			Title:       "Total Rows",
			Description: "Number of records in the dataset",
			Value:       len(table.Rows),
			Insight:     fmt.Sprintf("The dataset contains %s.", countNoun(len(table.Rows), "row")),
			Confidence:  models.ConfidenceHigh,
		},
		{
			ID:          "rowcount_total_columns",
			Title:       "Total Columns",
			Description: "Number of fields per record",
			Value:       len(table.Columns),
			Insight:     fmt.Sprintf("Each record has up to %s.", countNoun(len(table.Columns), "column")),
			Confidence:  models.ConfidenceHigh,
		},
	}

	if table.SizeBytes > 0 {
		results = append(results, models.AnalysisResult{
			ID:          "rowcount_file_size",
			Title:       "Source Size",
			Description: "Size of the uploaded source data",
			Value:       table.SizeBytes,
			Insight:     fmt.Sprintf("The source file is %s.", formatBytes(table.SizeBytes)),
			Confidence:  models.ConfidenceHigh,
		})
	}

	if len(table.Rows) > 0 && len(table.Columns) > 0 {
		results = append(results, a.completenessResult(table))
	}

	if col, ok := findColumn(table, sessionIDColumnPattern); ok {
		n := distinctKnownValues(table.Rows, col)
		results = append(results, models.AnalysisResult{
			ID:          "rowcount_unique_sessions",
			Title:       "Unique Sessions",
			Description: fmt.Sprintf("Distinct values in the %q column, ignoring letter case", col),
			Value:       n,
			Insight:     fmt.Sprintf("Activity spans %s.", countNoun(n, "distinct session")),
			Confidence:  models.ConfidenceHigh,
		})
	}

	if col, ok := findColumn(table, userIDColumnPattern); ok {
		n := distinctKnownValues(table.Rows, col)
		results = append(results, models.AnalysisResult{
			ID:          "rowcount_unique_users",
			Title:       "Unique Users",
			Description: fmt.Sprintf("Distinct values in the %q column, ignoring letter case", col),
			Value:       n,
			Insight:     fmt.Sprintf("Activity comes from %s.", countNoun(n, "distinct user")),
			Confidence:  models.ConfidenceHigh,
		})
	}

	if col, ok := findColumn(table, actionColumnPattern); ok {
		results = append(results, a.actionResults(table, col)...)
	}

	return results
}

func (a *RowCountAnalyzer) completenessResult(table *models.Table) models.AnalysisResult {
	filled := 0
	total := len(table.Rows) * len(table.Columns)
	for _, row := range table.Rows {
		for _, col := range table.Columns {
			if v, ok := row[col.Name]; ok && !v.IsEmpty() {
				filled++
			}
		}
	}
	pct := roundPercent(float64(filled) / float64(total) * 100)
	return models.AnalysisResult{
		ID:          "rowcount_completeness",
		Title:       "Data Completeness",
		Description: "Share of cells holding a usable value",
		Value:       pct,
		Insight:     fmt.Sprintf("%.1f%% of all cells contain data.", pct),
		Confidence:  models.ConfidenceHigh,
	}
}

func (a *RowCountAnalyzer) actionResults(table *models.Table, col string) []models.AnalysisResult {
	distinct := make(map[string]bool)
	purchases := 0
	for _, row := range table.Rows {
		v, ok := row[col]
		if !ok || v.IsEmpty() {
			continue
		}
		s := v.AsString()
		distinct[strings.ToLower(s)] = true
		if containsFold(s, "purchase") {
			purchases++
		}
	}

	return []models.AnalysisResult{
		{
			ID:          "rowcount_unique_actions",
			Title:       "Unique Actions",
			Description: fmt.Sprintf("Distinct values in the %q column, ignoring letter case", col),
			Value:       len(distinct),
			Insight:     fmt.Sprintf("The dataset records %s.", countNoun(len(distinct), "distinct action")),
			Confidence:  models.ConfidenceHigh,
		},
		{
			ID:          "rowcount_purchase_events",
			Title:       "Purchase Events",
			Description: "Rows whose action value contains \"purchase\"",
			Value:       purchases,
			Insight:     fmt.Sprintf("%s recorded.", countNoun(purchases, "purchase event")),
			Confidence:  models.ConfidenceHigh,
		},
	}
}

// distinctKnownValues counts distinct non-empty values in the column,
// excluding the "unknown" placeholder. Values are folded to lower case, the
// same rule every cardinality count here uses.
func distinctKnownValues(rows []models.Row, col string) int {
	distinct := make(map[string]bool)
	for _, row := range rows {
		v, ok := row[col]
		if !ok || v.IsEmpty() {
			continue
		}
		s := strings.ToLower(v.AsString())
		if s == "unknown" {
			continue
		}
		distinct[s] = true
	}
	return len(distinct)
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGTPE"[exp])
}
