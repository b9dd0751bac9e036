package services

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/insightforge/insight-engine/pkg/models"
)

// TypeInferenceService infers a column's type from a bounded sample of its
// values. Inference runs once at parse time; analyzers consume the result.
type TypeInferenceService interface {
	// Infer classifies the column from its name and non-empty sample values.
	Infer(columnName string, samples []models.Value) models.ColumnType
}

type typeInferenceService struct{}

// NewTypeInferenceService creates a type inference service.
func NewTypeInferenceService() TypeInferenceService {
	return &typeInferenceService{}
}

// typeMatchThreshold is the share of non-empty samples that must match a
// candidate type before it wins.
const typeMatchThreshold = 0.8

// booleanTokens are the string forms accepted as boolean cells.
var booleanTokens = map[string]bool{
	"true": true, "false": true,
	"yes": true, "no": true,
	"y": true, "n": true,
	"1": true, "0": true,
}

// dateNamePattern marks a column as date-typed from its name alone,
// regardless of how many sample values parse as dates.
var dateNamePattern = regexp.MustCompile(`(?i)(time|date|created|updated|timestamp)`)

// dateValuePatterns gate the (comparatively expensive) layout parse. A value
// must both match a known shape and parse to a real date.
var dateValuePatterns = []*regexp.Regexp{
	regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`),                     // ISO date
	regexp.MustCompile(`^\d{2}/\d{2}/\d{4}$`),                     // MM/DD/YYYY
	regexp.MustCompile(`^\d{2}-\d{2}-\d{4}$`),                     // DD-MM-YYYY
	regexp.MustCompile(`^\d{4}-\d{2}-\d{2}[T ]\d{2}:\d{2}:\d{2}`), // ISO datetime
}

// Infer applies the ordered classification rules: boolean, then number, then
// date, then string. Boolean runs before number on purpose; "1"/"0" columns
// would otherwise be misread as numeric. Empty samples default to string.
func (s *typeInferenceService) Infer(columnName string, samples []models.Value) models.ColumnType {
	nonEmpty := make([]models.Value, 0, len(samples))
	for _, v := range samples {
		if !v.IsEmpty() {
			nonEmpty = append(nonEmpty, v)
		}
	}
	if len(nonEmpty) == 0 {
		return models.ColumnTypeString
	}

	var boolCount, numCount, dateCount int
	for _, v := range nonEmpty {
		if isBooleanValue(v) {
			boolCount++
		}
		if isNumericValue(v) {
			numCount++
		}
		if isDateValue(v) {
			dateCount++
		}
	}

	total := float64(len(nonEmpty))
	switch {
	case float64(boolCount)/total >= typeMatchThreshold:
		return models.ColumnTypeBoolean
	case float64(numCount)/total >= typeMatchThreshold:
		return models.ColumnTypeNumber
	case dateNamePattern.MatchString(columnName) || float64(dateCount)/total >= typeMatchThreshold:
		return models.ColumnTypeDate
	default:
		return models.ColumnTypeString
	}
}

func isBooleanValue(v models.Value) bool {
	if v.Kind == models.ValueBool {
		return true
	}
	return booleanTokens[strings.ToLower(strings.TrimSpace(v.AsString()))]
}

func isNumericValue(v models.Value) bool {
	if v.Kind == models.ValueNumber {
		return true
	}
	if v.Kind != models.ValueString {
		return false
	}
	n, err := strconv.ParseFloat(strings.TrimSpace(v.Str), 64)
	return err == nil && !math.IsNaN(n) && !math.IsInf(n, 0)
}

func isDateValue(v models.Value) bool {
	if v.Kind == models.ValueTime {
		return true
	}
	if v.Kind != models.ValueString {
		return false
	}
	s := strings.TrimSpace(v.Str)
	for _, p := range dateValuePatterns {
		if p.MatchString(s) {
			_, ok := models.ParseTime(s)
			return ok
		}
	}
	return false
}
