package jsonutil

import (
	"encoding/json"

	"github.com/insightforge/insight-engine/pkg/models"
)

// CellValue converts a raw JSON cell into a models.Value, handling sources
// that mix strings, numbers, booleans, and nulls in the same column. Nested
// objects and arrays degrade to their raw string form.
func CellValue(raw json.RawMessage) models.Value {
	if len(raw) == 0 || string(raw) == "null" {
		return models.NullValue()
	}

	var strVal string
	if err := json.Unmarshal(raw, &strVal); err == nil {
		return models.StringValue(strVal)
	}

	var numVal float64
	if err := json.Unmarshal(raw, &numVal); err == nil {
		return models.NumberValue(numVal)
	}

	var boolVal bool
	if err := json.Unmarshal(raw, &boolVal); err == nil {
		return models.BoolValue(boolVal)
	}

	return models.StringValue(string(raw))
}
