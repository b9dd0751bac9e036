package services

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/jinzhu/inflection"

	"github.com/insightforge/insight-engine/pkg/models"
)

// Analyzer is one analysis strategy. Implementations are pure functions of
// the table: no mutation, no logging, no I/O. On empty or unusable data they
// return nil or explicit "no data" findings instead of failing; panics are
// contained by the orchestrator.
type Analyzer interface {
	// Name is the stable identifier used to prefix result IDs.
	Name() string

	// Analyze produces the analyzer's findings for the table.
	Analyze(table *models.Table) []models.AnalysisResult
}

// Ordered candidate keys per semantic role. Precedence order is part of the
// contract: the first key present in a row wins, even when a later candidate
// would parse better.
var (
	actionFields     = []string{"action", "event", "event_name", "activity"}
	userIDFields     = []string{"user_id", "userId", "uid"}
	timestampFields  = []string{"timestamp", "created_at", "date", "time", "event_time"}
	timeSpentFields  = []string{"time_spent_sec", "duration", "session_duration", "time_spent"}
	productFields    = []string{"product_name", "product", "item_name", "item", "name"}
	orderValueFields = []string{"total_order_value", "revenue", "price", "amount"}
	costFields       = []string{"cost", "cost_price", "wholesale_price"}
	quantityFields   = []string{"quantity", "qty", "count"}
)

// Column-name heuristics for id-like columns.
var (
	sessionIDColumnPattern = regexp.MustCompile(`(?i)session.*id`)
	userIDColumnPattern    = regexp.MustCompile(`(?i)user.*id`)
	actionColumnPattern    = regexp.MustCompile(`(?i)^(action|event|event_name|activity)$`)
)

// firstPresent resolves a semantic role for a row: the first candidate key
// that is present and non-empty.
func firstPresent(row models.Row, candidates []string) (models.Value, bool) {
	for _, key := range candidates {
		if v, ok := row[key]; ok && !v.IsEmpty() {
			return v, true
		}
	}
	return models.Value{}, false
}

// findColumn returns the name of the first column matching the pattern.
func findColumn(table *models.Table, pattern *regexp.Regexp) (string, bool) {
	for _, col := range table.Columns {
		if pattern.MatchString(col.Name) {
			return col.Name, true
		}
	}
	return "", false
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// roundPercent rounds to one decimal place, the precision used in chart data
// and insight text.
func roundPercent(x float64) float64 {
	return math.Round(x*10) / 10
}

// countNoun renders "1 row" / "42 rows" style phrases for insight text.
func countNoun(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", inflection.Singular(noun))
	}
	return fmt.Sprintf("%d %s", n, inflection.Plural(noun))
}

func percentPtr(p float64) *float64 {
	return &p
}
