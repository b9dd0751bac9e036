package services

import (
	"fmt"
	"strings"

	"github.com/insightforge/insight-engine/pkg/models"
)

// ActionAnalyzer breaks rows down by their action value and splits traffic
// into authenticated and anonymous events.
type ActionAnalyzer struct{}

// NewActionAnalyzer creates an action breakdown analyzer.
func NewActionAnalyzer() *ActionAnalyzer {
	return &ActionAnalyzer{}
}

func (a *ActionAnalyzer) Name() string { return "action" }

// unknownBucket collects rows with no usable action value.
const unknownBucket = "unknown"

func (a *ActionAnalyzer) Analyze(table *models.Table) []models.AnalysisResult {
	if table == nil || len(table.Rows) == 0 {
		return nil
	}

	results := []models.AnalysisResult{a.breakdownResult(table)}
	results = append(results, a.authenticationResult(table))
	return results
}

func (a *ActionAnalyzer) breakdownResult(table *models.Table) models.AnalysisResult {
	counts := make(map[string]int)
	var order []string
	for _, row := range table.Rows {
		bucket := unknownBucket
		if v, ok := firstPresent(row, actionFields); ok {
			bucket = v.AsString()
		}
		if _, seen := counts[bucket]; !seen {
			order = append(order, bucket)
		}
		counts[bucket]++
	}

	total := len(table.Rows)
	chart := make([]models.ChartPoint, 0, len(order))
	modal := order[0]
	for _, bucket := range order {
		pct := roundPercent(float64(counts[bucket]) / float64(total) * 100)
		chart = append(chart, models.ChartPoint{
			Name:       bucket,
			Value:      float64(counts[bucket]),
			Percentage: percentPtr(pct),
		})
		if counts[bucket] > counts[modal] {
			modal = bucket
		}
	}

	modalPct := roundPercent(float64(counts[modal]) / float64(total) * 100)
	return models.AnalysisResult{
		ID:          "action_breakdown",
		Title:       "Action Breakdown",
		Description: "Event counts and shares per action",
		Value:       counts,
		ChartType:   models.ChartTypePie,
		ChartData:   chart,
		Insight:     fmt.Sprintf("The most common action is %q (%.1f%% of %s).", modal, modalPct, countNoun(total, "event")),
		Confidence:  models.ConfidenceHigh,
	}
}

func (a *ActionAnalyzer) authenticationResult(table *models.Table) models.AnalysisResult {
	authenticated := 0
	for _, row := range table.Rows {
		v, ok := firstPresent(row, userIDFields)
		if ok && !strings.EqualFold(v.AsString(), unknownBucket) {
			authenticated++
		}
	}

	total := len(table.Rows)
	anonymous := total - authenticated
	authPct := roundPercent(float64(authenticated) / float64(total) * 100)
	anonPct := roundPercent(float64(anonymous) / float64(total) * 100)

	return models.AnalysisResult{
		ID:          "action_authenticated_share",
		Title:       "Authenticated Events",
		Description: "Events attributable to an identified user",
		Value:       authPct,
		ChartType:   models.ChartTypePie,
		ChartData: []models.ChartPoint{
			{Name: "authenticated", Value: float64(authenticated), Percentage: percentPtr(authPct)},
			{Name: "anonymous", Value: float64(anonymous), Percentage: percentPtr(anonPct)},
		},
		Insight:    fmt.Sprintf("%.1f%% of events come from authenticated users.", authPct),
		Confidence: models.ConfidenceHigh,
	}
}
