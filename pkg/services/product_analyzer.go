package services

import (
	"fmt"
	"math"
	"sort"

	"github.com/insightforge/insight-engine/pkg/models"
)

// ProductAnalyzer ranks products: the most viewed, the most purchased, and
// the most profitable. Each ranking degrades to an explicit "no data" finding
// when its required fields are absent.
type ProductAnalyzer struct{}

// NewProductAnalyzer creates a product ranking analyzer.
func NewProductAnalyzer() *ProductAnalyzer {
	return &ProductAnalyzer{}
}

func (a *ProductAnalyzer) Name() string { return "product" }

const topProducts = 5

func (a *ProductAnalyzer) Analyze(table *models.Table) []models.AnalysisResult {
	if table == nil || len(table.Rows) == 0 {
		return nil
	}

	views := newOrderedTally()
	purchases := newOrderedTally()
	profits := newOrderedTally()

	for _, row := range table.Rows {
		product, ok := firstPresent(row, productFields)
		if !ok {
			continue
		}
		name := product.AsString()

		action, ok := firstPresent(row, actionFields)
		if !ok {
			continue
		}
		switch {
		case containsFold(action.AsString(), "view"):
			views.add(name, 1)
		case containsFold(action.AsString(), "purchase"):
			purchases.add(name, 1)
			if profit, ok := rowProfit(row); ok {
				profits.add(name, profit)
			}
		}
	}

	return []models.AnalysisResult{
		a.rankingResult("product_top_viewed", "Most Viewed Products",
			"Products ranked by view events", "view", views),
		a.rankingResult("product_top_purchased", "Most Purchased Products",
			"Products ranked by purchase events", "purchase", purchases),
		a.profitResult(profits),
	}
}

// rowProfit computes order_value - cost * quantity for a purchase row.
// Both an order-value field and a cost field must be present; quantity
// defaults to 1.
func rowProfit(row models.Row) (float64, bool) {
	orderField, ok := firstPresent(row, orderValueFields)
	if !ok {
		return 0, false
	}
	orderValue, ok := orderField.AsNumber()
	if !ok {
		return 0, false
	}
	costField, ok := firstPresent(row, costFields)
	if !ok {
		return 0, false
	}
	cost, ok := costField.AsNumber()
	if !ok {
		return 0, false
	}
	quantity := 1.0
	if qtyField, ok := firstPresent(row, quantityFields); ok {
		if qty, ok := qtyField.AsNumber(); ok {
			quantity = qty
		}
	}
	return orderValue - cost*quantity, true
}

func (a *ProductAnalyzer) rankingResult(id, title, description, verb string, tally *orderedTally) models.AnalysisResult {
	top := tally.top(topProducts)
	if len(top) == 0 {
		return models.AnalysisResult{
			ID:          id,
			Title:       title,
			Description: description,
			Insight:     fmt.Sprintf("No product %s data available.", verb),
			Confidence:  models.ConfidenceLow,
		}
	}

	chart := make([]models.ChartPoint, len(top))
	for i, entry := range top {
		chart[i] = models.ChartPoint{Name: entry.key, Value: entry.total}
	}
	return models.AnalysisResult{
		ID:          id,
		Title:       title,
		Description: description,
		Value:       top[0].key,
		ChartType:   models.ChartTypeBar,
		ChartData:   chart,
		Insight:     fmt.Sprintf("%q leads with %s.", top[0].key, countNoun(int(top[0].total), verb)),
		Confidence:  models.ConfidenceHigh,
	}
}

func (a *ProductAnalyzer) profitResult(profits *orderedTally) models.AnalysisResult {
	top := profits.top(topProducts)
	if len(top) == 0 {
		return models.AnalysisResult{
			ID:          "product_top_profit",
			Title:       "Most Profitable Products",
			Description: "Products ranked by total profit on purchases",
			Insight:     "No purchase rows carry both an order value and a cost.",
			Confidence:  models.ConfidenceLow,
		}
	}

	chart := make([]models.ChartPoint, len(top))
	for i, entry := range top {
		chart[i] = models.ChartPoint{Name: entry.key, Value: math.Round(entry.total)}
	}
	return models.AnalysisResult{
		ID:          "product_top_profit",
		Title:       "Most Profitable Products",
		Description: "Products ranked by total profit on purchases",
		Value:       top[0].key,
		ChartType:   models.ChartTypeBar,
		ChartData:   chart,
		Insight:     fmt.Sprintf("%q generated the highest profit (%.0f).", top[0].key, math.Round(top[0].total)),
		Confidence:  models.ConfidenceHigh,
	}
}

// orderedTally accumulates totals per key while remembering first-seen order
// so that ranking ties resolve deterministically.
type orderedTally struct {
	totals map[string]float64
	order  []string
}

func newOrderedTally() *orderedTally {
	return &orderedTally{totals: make(map[string]float64)}
}

func (t *orderedTally) add(key string, amount float64) {
	if _, seen := t.totals[key]; !seen {
		t.order = append(t.order, key)
	}
	t.totals[key] += amount
}

type tallyEntry struct {
	key   string
	total float64
}

// top returns the n largest entries, descending, first-seen order breaking
// ties.
func (t *orderedTally) top(n int) []tallyEntry {
	entries := make([]tallyEntry, 0, len(t.order))
	for _, key := range t.order {
		entries = append(entries, tallyEntry{key: key, total: t.totals[key]})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].total > entries[j].total
	})
	if len(entries) > n {
		entries = entries[:n]
	}
	return entries
}
