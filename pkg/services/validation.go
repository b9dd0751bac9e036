package services

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/insightforge/insight-engine/pkg/models"
)

// DataValidationService assesses whether a table is fit for analysis. It
// accumulates fatal errors and non-fatal warnings across four independent
// checks and derives a deterministic confidence verdict from their counts.
// Validate never panics out to the caller; internal failures degrade to an
// invalid low-confidence verdict.
type DataValidationService interface {
	Validate(table *models.Table) models.ValidationResult
}

type dataValidationService struct {
	sampleRows int
	logger     *zap.Logger
}

// NewDataValidationService creates a validator that bounds its quality checks
// to sampleRows rows. A non-positive sampleRows falls back to 1000.
func NewDataValidationService(sampleRows int, logger *zap.Logger) DataValidationService {
	if sampleRows <= 0 {
		sampleRows = 1000
	}
	return &dataValidationService{
		sampleRows: sampleRows,
		logger:     logger.Named("data-validation"),
	}
}

// completeness thresholds, in percent.
const (
	completenessErrorBelow = 50.0
	completenessWarnBelow  = 80.0
)

// genericColumnNamePattern matches placeholder column names produced by
// header-less exports.
var genericColumnNamePattern = regexp.MustCompile(`(?i)^(unnamed.*|column\d+|field\d+)$`)

func (s *dataValidationService) Validate(table *models.Table) (result models.ValidationResult) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Validation panicked", zap.Any("panic", r))
			result = models.ValidationResult{
				IsValid:    false,
				Errors:     []string{fmt.Sprintf("validation failed: %v", r)},
				Warnings:   []string{},
				Confidence: models.ConfidenceLow,
			}
		}
	}()

	errs := []string{}
	warns := []string{}

	if table == nil {
		errs = append(errs, "no table provided")
	} else {
		s.checkStructure(table, &errs, &warns)
		s.checkCompleteness(table, &errs, &warns)
		s.checkColumns(table, &errs, &warns)
		s.checkRows(table, &errs, &warns)
	}

	return models.ValidationResult{
		IsValid:    len(errs) == 0,
		Errors:     errs,
		Warnings:   warns,
		Confidence: validationConfidence(len(errs), len(warns)),
	}
}

// validationConfidence derives the verdict from error/warning counts:
// any error is low, more than four warnings is low, more than one warning is
// medium, otherwise high.
func validationConfidence(errCount, warnCount int) models.Confidence {
	switch {
	case errCount > 0:
		return models.ConfidenceLow
	case warnCount > 4:
		return models.ConfidenceLow
	case warnCount > 1:
		return models.ConfidenceMedium
	default:
		return models.ConfidenceHigh
	}
}

func (s *dataValidationService) checkStructure(table *models.Table, errs, warns *[]string) {
	if len(table.Columns) == 0 {
		*errs = append(*errs, "table has no columns")
	}
	if len(table.Rows) == 0 {
		*errs = append(*errs, "table has no rows")
	} else if len(table.Rows) < 10 {
		*warns = append(*warns, fmt.Sprintf("only %d rows available; analysis will be limited", len(table.Rows)))
	}

	if len(table.Columns) == 0 || len(table.Rows) == 0 {
		return
	}

	declared := make(map[string]bool, len(table.Columns))
	for _, col := range table.Columns {
		declared[col.Name] = true
	}
	inconsistent := 0
	for _, row := range table.Rows {
		for key := range row {
			if !declared[key] {
				inconsistent++
				break
			}
		}
	}
	if inconsistent > 0 {
		*warns = append(*warns, fmt.Sprintf("%d rows contain fields not declared as columns", inconsistent))
	}
}

func (s *dataValidationService) checkCompleteness(table *models.Table, errs, warns *[]string) {
	if len(table.Columns) == 0 || len(table.Rows) == 0 {
		return
	}

	sample := table.Rows
	if len(sample) > s.sampleRows {
		sample = sample[:s.sampleRows]
	}

	filled := 0
	emptyByColumn := make(map[string]int, len(table.Columns))
	for _, row := range sample {
		for _, col := range table.Columns {
			v, ok := row[col.Name]
			if ok && !v.IsEmpty() {
				filled++
			} else {
				emptyByColumn[col.Name]++
			}
		}
	}

	totalCells := len(sample) * len(table.Columns)
	completeness := float64(filled) / float64(totalCells) * 100
	switch {
	case completeness < completenessErrorBelow:
		*errs = append(*errs, fmt.Sprintf("data is only %.1f%% complete; too sparse to analyze reliably", completeness))
	case completeness < completenessWarnBelow:
		*warns = append(*warns, fmt.Sprintf("data is %.1f%% complete; some findings may be skewed", completeness))
	}

	var deadColumns []string
	for _, col := range table.Columns {
		if emptyByColumn[col.Name] == len(sample) {
			deadColumns = append(deadColumns, col.Name)
		}
	}
	if len(deadColumns) > 0 {
		*warns = append(*warns, fmt.Sprintf("columns with no data: %s", strings.Join(deadColumns, ", ")))
	}
}

func (s *dataValidationService) checkColumns(table *models.Table, errs, warns *[]string) {
	if len(table.Columns) == 0 {
		return
	}

	seen := make(map[string]int, len(table.Columns))
	for _, col := range table.Columns {
		seen[col.Name]++
	}
	var duplicates []string
	for _, col := range table.Columns {
		if seen[col.Name] > 1 {
			duplicates = append(duplicates, col.Name)
			seen[col.Name] = 0 // report each duplicate name once
		}
	}
	if len(duplicates) > 0 {
		sort.Strings(duplicates)
		*errs = append(*errs, fmt.Sprintf("duplicate column names: %s", strings.Join(duplicates, ", ")))
	}

	var generic []string
	for _, col := range table.Columns {
		if genericColumnNamePattern.MatchString(col.Name) {
			generic = append(generic, col.Name)
		}
	}
	if len(generic) > 0 {
		*warns = append(*warns, fmt.Sprintf("generic column names suggest a missing header row: %s", strings.Join(generic, ", ")))
	}

	hasTimestampColumn := false
	for _, col := range table.Columns {
		if dateNamePattern.MatchString(col.Name) {
			hasTimestampColumn = true
			break
		}
	}
	if !hasTimestampColumn {
		*warns = append(*warns, "no timestamp-like column found; time-based analysis will be degraded")
	}
}

func (s *dataValidationService) checkRows(table *models.Table, errs, warns *[]string) {
	if len(table.Rows) == 0 || len(table.Columns) == 0 {
		return
	}

	emptyRows := 0
	for _, row := range table.Rows {
		if rowIsEmpty(row, table.Columns) {
			emptyRows++
		}
	}
	if emptyRows == len(table.Rows) {
		*errs = append(*errs, "all rows are empty")
	} else if emptyRows > 0 {
		*warns = append(*warns, fmt.Sprintf("%d empty rows found", emptyRows))
	}

	sample := table.Rows
	if len(sample) > s.sampleRows {
		sample = sample[:s.sampleRows]
	}
	seen := make(map[string]bool, len(sample))
	duplicates := 0
	for _, row := range sample {
		key := rowFingerprint(row, table.Columns)
		if seen[key] {
			duplicates++
		}
		seen[key] = true
	}
	if duplicates > 0 {
		*warns = append(*warns, fmt.Sprintf("%d duplicate rows found in the first %d rows", duplicates, len(sample)))
	}
}

func rowIsEmpty(row models.Row, columns []models.Column) bool {
	for _, col := range columns {
		if v, ok := row[col.Name]; ok && !v.IsEmpty() {
			return false
		}
	}
	return true
}

// rowFingerprint renders a row in declared column order for duplicate
// detection. The unit separator keeps adjacent cells from colliding.
func rowFingerprint(row models.Row, columns []models.Column) string {
	parts := make([]string, len(columns))
	for i, col := range columns {
		if v, ok := row[col.Name]; ok {
			parts[i] = v.AsString()
		}
	}
	return strings.Join(parts, "\x1f")
}
