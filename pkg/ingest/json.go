package ingest

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/insightforge/insight-engine/pkg/apperrors"
	"github.com/insightforge/insight-engine/pkg/jsonutil"
	"github.com/insightforge/insight-engine/pkg/models"
)

// FromJSON parses an array of flat JSON objects into a table. The column set
// is the union of keys across all objects; keys are added in sorted order as
// they first appear so the column order does not depend on map iteration.
func (p *Parser) FromJSON(r io.Reader) (*models.Table, error) {
	var records []map[string]json.RawMessage
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("failed to decode JSON records: %w", err)
	}
	if len(records) == 0 {
		return nil, apperrors.ErrNoUsableData
	}

	var names []string
	seen := make(map[string]bool)
	rows := make([]models.Row, 0, len(records))

	for _, record := range records {
		keys := make([]string, 0, len(record))
		for key := range record {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		row := make(models.Row, len(record))
		for _, key := range keys {
			if !seen[key] {
				seen[key] = true
				names = append(names, key)
			}
			row[key] = jsonutil.CellValue(record[key])
		}
		rows = append(rows, row)
	}

	return p.buildTable(names, rows), nil
}
