package services

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/insightforge/insight-engine/pkg/models"
)

// AnalysisOrchestrator runs the full analysis pass: validation, the analyzer
// chain with per-analyzer failure isolation, result sanitation, and the
// aggregate summary. It never returns an empty result list for a table with
// any usable data, and never panics out to the caller.
type AnalysisOrchestrator interface {
	// RunCompleteAnalysis analyzes the table and returns the ordered,
	// sanitized findings. Given the same unmutated table it returns the same
	// list.
	RunCompleteAnalysis(table *models.Table) []models.AnalysisResult

	// Summarize aggregates a result list into run-level statistics.
	Summarize(results []models.AnalysisResult) models.AnalysisSummary
}

type analysisOrchestrator struct {
	validator DataValidationService
	analyzers []Analyzer
	logger    *zap.Logger
}

// NewAnalysisOrchestrator creates an orchestrator over the standard analyzer
// chain, in fixed order: row counts, actions, time trends, products.
func NewAnalysisOrchestrator(validator DataValidationService, logger *zap.Logger) AnalysisOrchestrator {
	return &analysisOrchestrator{
		validator: validator,
		analyzers: []Analyzer{
			NewRowCountAnalyzer(),
			NewActionAnalyzer(),
			NewTimeAnalyzer(),
			NewProductAnalyzer(),
		},
		logger: logger.Named("analysis-orchestrator"),
	}
}

func (o *analysisOrchestrator) RunCompleteAnalysis(table *models.Table) (results []models.AnalysisResult) {
	defer func() {
		if r := recover(); r != nil {
			o.logger.Error("Analysis run panicked", zap.Any("panic", r))
			results = []models.AnalysisResult{basicSummaryResult(table, nil)}
		}
	}()

	validation := o.validator.Validate(table)
	if !validation.IsValid && tableIsEmpty(table) {
		o.logger.Warn("Table has no usable data; returning basic summary",
			zap.Strings("errors", validation.Errors))
		return []models.AnalysisResult{basicSummaryResult(table, &validation)}
	}
	if len(validation.Warnings) > 0 {
		o.logger.Info("Validation raised warnings",
			zap.Int("warnings", len(validation.Warnings)),
			zap.String("confidence", string(validation.Confidence)))
	}

	results = make([]models.AnalysisResult, 0, 16)
	for _, analyzer := range o.analyzers {
		results = append(results, o.runIsolated(analyzer, table)...)
	}

	if len(results) == 0 {
		results = append(results, basicSummaryResult(table, &validation))
	}

	return o.sanitize(results)
}

// runIsolated runs one analyzer, converting a panic into a single synthetic
// low-confidence finding so the remaining analyzers still run.
func (o *analysisOrchestrator) runIsolated(analyzer Analyzer, table *models.Table) (results []models.AnalysisResult) {
	defer func() {
		if r := recover(); r != nil {
			o.logger.Error("Analyzer failed",
				zap.String("analyzer", analyzer.Name()),
				zap.Any("panic", r))
			results = []models.AnalysisResult{{
				ID:          analyzer.Name() + "_error",
				Title:       "Analysis Step Failed",
				Description: fmt.Sprintf("The %s analyzer could not process this dataset", analyzer.Name()),
				Insight:     "This analysis step was skipped; the remaining findings are unaffected.",
				Confidence:  models.ConfidenceLow,
			}}
		}
	}()
	return analyzer.Analyze(table)
}

// sanitize drops findings that violate the mandatory-field contract.
func (o *analysisOrchestrator) sanitize(results []models.AnalysisResult) []models.AnalysisResult {
	clean := make([]models.AnalysisResult, 0, len(results))
	dropped := 0
	for _, r := range results {
		if r.WellFormed() {
			clean = append(clean, r)
		} else {
			dropped++
		}
	}
	if dropped > 0 {
		o.logger.Warn("Dropped malformed analysis results", zap.Int("dropped", dropped))
	}
	return clean
}

func (o *analysisOrchestrator) Summarize(results []models.AnalysisResult) models.AnalysisSummary {
	high := 0
	var types []string
	seen := make(map[string]bool)
	for _, r := range results {
		if r.Confidence == models.ConfidenceHigh {
			high++
		}
		prefix := r.ID
		if i := strings.Index(prefix, "_"); i > 0 {
			prefix = prefix[:i]
		}
		if prefix != "" && !seen[prefix] {
			seen[prefix] = true
			types = append(types, prefix)
		}
	}

	quality := models.ConfidenceLow
	if len(results) > 0 {
		ratio := float64(high) / float64(len(results))
		switch {
		case ratio > 0.7:
			quality = models.ConfidenceHigh
		case ratio > 0.4:
			quality = models.ConfidenceMedium
		}
	}

	return models.AnalysisSummary{
		TotalResults:          len(results),
		HighConfidenceResults: high,
		AnalysisTypes:         types,
		DataQuality:           quality,
	}
}

func tableIsEmpty(table *models.Table) bool {
	return table == nil || len(table.Rows) == 0 || len(table.Columns) == 0
}

// basicSummaryResult is the fallback finding returned when the table carries
// no analyzable data or a run degrades catastrophically.
func basicSummaryResult(table *models.Table, validation *models.ValidationResult) models.AnalysisResult {
	rows, cols := 0, 0
	if table != nil {
		rows = len(table.Rows)
		cols = len(table.Columns)
	}

	insight := fmt.Sprintf("The dataset holds %s across %s.", countNoun(rows, "row"), countNoun(cols, "column"))
	confidence := models.ConfidenceMedium
	if validation != nil && !validation.IsValid {
		confidence = models.ConfidenceLow
		if len(validation.Errors) > 0 {
			insight = fmt.Sprintf("No usable data was found: %s.", validation.Errors[0])
		}
	}

	return models.AnalysisResult{
		ID:          "summary_basic",
		Title:       "Dataset Summary",
		Description: "Basic shape of the supplied dataset",
		Value:       map[string]int{"rows": rows, "columns": cols},
		Insight:     insight,
		Confidence:  confidence,
	}
}
