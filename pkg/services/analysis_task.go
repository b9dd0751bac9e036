package services

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/insightforge/insight-engine/pkg/models"
)

// AnalysisTask runs one table through the orchestrator on the work queue.
// The engine has no cancellation primitive of its own; cancellation means
// never starting, or dropping the result.
type AnalysisTask struct {
	id           string
	table        *models.Table
	orchestrator AnalysisOrchestrator

	mu      sync.RWMutex
	results []models.AnalysisResult
	summary models.AnalysisSummary
}

// NewAnalysisTask creates a task that analyzes the given table.
func NewAnalysisTask(table *models.Table, orchestrator AnalysisOrchestrator) *AnalysisTask {
	return &AnalysisTask{
		id:           uuid.NewString(),
		table:        table,
		orchestrator: orchestrator,
	}
}

func (t *AnalysisTask) ID() string { return t.id }

func (t *AnalysisTask) Name() string { return "table-analysis" }

// Execute runs the analysis unless the context is already cancelled. The run
// itself is not interruptible; it completes in time bounded by table size.
func (t *AnalysisTask) Execute(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	results := t.orchestrator.RunCompleteAnalysis(t.table)
	summary := t.orchestrator.Summarize(results)

	if err := ctx.Err(); err != nil {
		return err
	}

	t.mu.Lock()
	t.results = results
	t.summary = summary
	t.mu.Unlock()
	return nil
}

// Results returns the findings and summary once Execute has completed.
func (t *AnalysisTask) Results() ([]models.AnalysisResult, models.AnalysisSummary) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.results, t.summary
}
