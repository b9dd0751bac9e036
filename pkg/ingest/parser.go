package ingest

import (
	"regexp"

	"github.com/insightforge/insight-engine/pkg/models"
	"github.com/insightforge/insight-engine/pkg/services"
)

// Parser builds engine tables from raw CSV or JSON input. Column types are
// inferred once from a bounded sample, and the table summary (column-role
// heuristics) is computed here at parse time; the engine only reads it.
type Parser struct {
	infer      services.TypeInferenceService
	sampleSize int
}

// NewParser creates a parser that infers column types from the first
// sampleSize non-empty values per column. A non-positive sampleSize falls
// back to 10.
func NewParser(infer services.TypeInferenceService, sampleSize int) *Parser {
	if sampleSize <= 0 {
		sampleSize = 10
	}
	return &Parser{infer: infer, sampleSize: sampleSize}
}

// Column-role heuristics applied at parse time.
var (
	userIDNamePattern    = regexp.MustCompile(`(?i)(user.*id|^uid$)`)
	eventNamePattern     = regexp.MustCompile(`(?i)(action|event|activity)`)
	timestampNamePattern = regexp.MustCompile(`(?i)(time|date|created|updated|timestamp)`)
)

// buildTable assembles the final table from ordered column names and rows:
// per-column type inference over sampled values plus the role summary.
func (p *Parser) buildTable(names []string, rows []models.Row) *models.Table {
	columns := make([]models.Column, len(names))
	for i, name := range names {
		samples := p.sampleColumn(rows, name)
		columns[i] = models.Column{
			Name:         name,
			Type:         p.infer.Infer(name, samples),
			SampleValues: samples,
		}
	}

	return &models.Table{
		Columns:  columns,
		Rows:     rows,
		RowCount: len(rows),
		Summary:  summarize(columns, len(rows)),
	}
}

// sampleColumn collects the first sampleSize non-empty values of a column.
func (p *Parser) sampleColumn(rows []models.Row, name string) []models.Value {
	samples := make([]models.Value, 0, p.sampleSize)
	for _, row := range rows {
		if v, ok := row[name]; ok && !v.IsEmpty() {
			samples = append(samples, v)
			if len(samples) == p.sampleSize {
				break
			}
		}
	}
	return samples
}

func summarize(columns []models.Column, rowCount int) models.TableSummary {
	summary := models.TableSummary{
		TotalRows:    rowCount,
		TotalColumns: len(columns),
	}
	for _, col := range columns {
		if userIDNamePattern.MatchString(col.Name) {
			summary.PossibleUserIDColumns = append(summary.PossibleUserIDColumns, col.Name)
		}
		if eventNamePattern.MatchString(col.Name) {
			summary.PossibleEventColumns = append(summary.PossibleEventColumns, col.Name)
		}
		if timestampNamePattern.MatchString(col.Name) || col.Type == models.ColumnTypeDate {
			summary.PossibleTimestampColumns = append(summary.PossibleTimestampColumns, col.Name)
		}
	}
	return summary
}
