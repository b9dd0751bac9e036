package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/insightforge/insight-engine/pkg/apperrors"
	"github.com/insightforge/insight-engine/pkg/models"
)

// FromCSV parses comma-separated data with a header row into a table.
// Records shorter than the header leave trailing cells absent; records longer
// than the header have their extra cells dropped.
func (p *Parser) FromCSV(r io.Reader) (*models.Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, apperrors.ErrNoUsableData
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	names := make([]string, len(header))
	for i, name := range header {
		name = strings.TrimSpace(name)
		if name == "" {
			name = fmt.Sprintf("column%d", i+1)
		}
		names[i] = name
	}

	var rows []models.Row
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV record %d: %w", len(rows)+2, err)
		}

		row := make(models.Row, len(names))
		for i, name := range names {
			if i >= len(record) {
				break
			}
			row[name] = parseCSVCell(record[i])
		}
		rows = append(rows, row)
	}

	return p.buildTable(names, rows), nil
}

// parseCSVCell coerces a raw CSV field: blanks become null, numerics become
// numbers, true/false become booleans, everything else stays a string.
// Timestamps stay strings here; date typing happens during inference and
// parsing happens lazily in the analyzers.
func parseCSVCell(s string) models.Value {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return models.NullValue()
	}
	if n, err := strconv.ParseFloat(trimmed, 64); err == nil && !math.IsNaN(n) && !math.IsInf(n, 0) {
		return models.NumberValue(n)
	}
	switch strings.ToLower(trimmed) {
	case "true":
		return models.BoolValue(true)
	case "false":
		return models.BoolValue(false)
	}
	return models.StringValue(trimmed)
}
