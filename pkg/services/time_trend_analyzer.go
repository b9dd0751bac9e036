package services

import (
	"fmt"

	"github.com/insightforge/insight-engine/pkg/models"
)

// TimeAnalyzer finds temporal peaks: the calendar day with the most purchase
// activity and the hour of day with the highest average engagement time.
type TimeAnalyzer struct{}

// NewTimeAnalyzer creates a time trend analyzer.
func NewTimeAnalyzer() *TimeAnalyzer {
	return &TimeAnalyzer{}
}

func (a *TimeAnalyzer) Name() string { return "time" }

const dayLayout = "2006-01-02"

func (a *TimeAnalyzer) Analyze(table *models.Table) []models.AnalysisResult {
	if table == nil || len(table.Rows) == 0 {
		return nil
	}

	return []models.AnalysisResult{
		a.peakDayResult(table),
		a.peakHourResult(table),
	}
}

// peakDayResult buckets purchase rows by calendar date and reports the first
// maximum in bucket-creation order.
func (a *TimeAnalyzer) peakDayResult(table *models.Table) models.AnalysisResult {
	counts := make(map[string]int)
	var order []string
	for _, row := range table.Rows {
		action, ok := firstPresent(row, actionFields)
		if !ok || !containsFold(action.AsString(), "purchase") {
			continue
		}
		ts, ok := firstPresent(row, timestampFields)
		if !ok {
			continue
		}
		t, ok := ts.AsTime()
		if !ok {
			continue
		}
		day := t.Format(dayLayout)
		if _, seen := counts[day]; !seen {
			order = append(order, day)
		}
		counts[day]++
	}

	if len(order) == 0 {
		return models.AnalysisResult{
			ID:          "time_peak_day",
			Title:       "Peak Purchase Day",
			Description: "Calendar day with the most purchase events",
			Insight:     "No purchase events with usable timestamps were found.",
			Confidence:  models.ConfidenceLow,
		}
	}

	peak := order[0]
	chart := make([]models.ChartPoint, 0, len(order))
	for _, day := range order {
		chart = append(chart, models.ChartPoint{Name: day, Value: float64(counts[day])})
		if counts[day] > counts[peak] {
			peak = day
		}
	}

	return models.AnalysisResult{
		ID:          "time_peak_day",
		Title:       "Peak Purchase Day",
		Description: "Calendar day with the most purchase events",
		Value:       peak,
		ChartType:   models.ChartTypeLine,
		ChartData:   chart,
		Insight:     fmt.Sprintf("Purchases peaked on %s with %s.", peak, countNoun(counts[peak], "purchase")),
		Confidence:  models.ConfidenceHigh,
	}
}

// peakHourResult averages the time-spent field per hour of day (0-23, in the
// timestamp's own offset) and reports the first maximum from hour 0 upward.
func (a *TimeAnalyzer) peakHourResult(table *models.Table) models.AnalysisResult {
	var sums, counts [24]float64
	for _, row := range table.Rows {
		ts, ok := firstPresent(row, timestampFields)
		if !ok {
			continue
		}
		t, ok := ts.AsTime()
		if !ok {
			continue
		}
		spentField, ok := firstPresent(row, timeSpentFields)
		if !ok {
			continue
		}
		spent, ok := spentField.AsNumber()
		if !ok {
			continue
		}
		hour := t.Hour()
		sums[hour] += spent
		counts[hour]++
	}

	peak := -1
	var peakAvg float64
	chart := make([]models.ChartPoint, 0, 24)
	for hour := 0; hour < 24; hour++ {
		if counts[hour] == 0 {
			continue
		}
		avg := sums[hour] / counts[hour]
		chart = append(chart, models.ChartPoint{
			Name:  fmt.Sprintf("%02d:00", hour),
			Value: roundPercent(avg),
		})
		if peak < 0 || avg > peakAvg {
			peak = hour
			peakAvg = avg
		}
	}

	if peak < 0 {
		return models.AnalysisResult{
			ID:          "time_peak_hour",
			Title:       "Peak Engagement Hour",
			Description: "Hour of day with the highest average time spent",
			Insight:     "No rows carry both a usable timestamp and a time-spent value.",
			Confidence:  models.ConfidenceLow,
		}
	}

	return models.AnalysisResult{
		ID:          "time_peak_hour",
		Title:       "Peak Engagement Hour",
		Description: "Hour of day with the highest average time spent",
		Value:       peak,
		ChartType:   models.ChartTypeBar,
		ChartData:   chart,
		Insight:     fmt.Sprintf("Engagement peaks at %02d:00 with an average of %.0f seconds spent.", peak, peakAvg),
		Confidence:  models.ConfidenceHigh,
	}
}
