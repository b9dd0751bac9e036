package ingest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insightforge/insight-engine/pkg/apperrors"
	"github.com/insightforge/insight-engine/pkg/models"
	"github.com/insightforge/insight-engine/pkg/services"
)

func newTestParser() *Parser {
	return NewParser(services.NewTypeInferenceService(), 10)
}

func TestFromCSV(t *testing.T) {
	p := newTestParser()

	input := strings.Join([]string{
		"user_id,action,timestamp,amount,active",
		"u1,view,2024-01-15,19.99,true",
		"u2,purchase,2024-01-16,5,false",
		"u1,view,2024-01-16,,true",
	}, "\n")

	table, err := p.FromCSV(strings.NewReader(input))
	require.NoError(t, err)

	require.Len(t, table.Columns, 5)
	assert.Equal(t, 3, table.RowCount)
	assert.Len(t, table.Rows, 3)

	types := map[string]models.ColumnType{}
	for _, col := range table.Columns {
		types[col.Name] = col.Type
	}
	assert.Equal(t, models.ColumnTypeString, types["user_id"])
	assert.Equal(t, models.ColumnTypeString, types["action"])
	assert.Equal(t, models.ColumnTypeDate, types["timestamp"])
	assert.Equal(t, models.ColumnTypeNumber, types["amount"])
	assert.Equal(t, models.ColumnTypeBoolean, types["active"])

	// cell coercion
	amount, ok := table.Rows[0]["amount"].AsNumber()
	require.True(t, ok)
	assert.Equal(t, 19.99, amount)
	assert.True(t, table.Rows[2]["amount"].IsEmpty())
	assert.Equal(t, models.ValueBool, table.Rows[0]["active"].Kind)
}

func TestFromCSVSummaryRoles(t *testing.T) {
	p := newTestParser()

	input := "user_id,action,created_at\nu1,view,2024-01-15\n"
	table, err := p.FromCSV(strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, []string{"user_id"}, table.Summary.PossibleUserIDColumns)
	assert.Equal(t, []string{"action"}, table.Summary.PossibleEventColumns)
	assert.Equal(t, []string{"created_at"}, table.Summary.PossibleTimestampColumns)
	assert.Equal(t, 1, table.Summary.TotalRows)
	assert.Equal(t, 3, table.Summary.TotalColumns)
}

func TestFromCSVEmptyInput(t *testing.T) {
	p := newTestParser()

	_, err := p.FromCSV(strings.NewReader(""))
	assert.ErrorIs(t, err, apperrors.ErrNoUsableData)
}

func TestFromCSVHeaderOnly(t *testing.T) {
	p := newTestParser()

	table, err := p.FromCSV(strings.NewReader("a,b,c\n"))
	require.NoError(t, err)
	assert.Equal(t, 0, table.RowCount)
	assert.Len(t, table.Columns, 3)
}

func TestFromCSVBlankHeaderNamesGetPlaceholders(t *testing.T) {
	p := newTestParser()

	table, err := p.FromCSV(strings.NewReader(",b,\nx,y,z\n"))
	require.NoError(t, err)
	assert.Equal(t, "column1", table.Columns[0].Name)
	assert.Equal(t, "b", table.Columns[1].Name)
	assert.Equal(t, "column3", table.Columns[2].Name)
}

func TestFromCSVRaggedRows(t *testing.T) {
	p := newTestParser()

	input := "a,b,c\n1,2\n1,2,3,4\n"
	table, err := p.FromCSV(strings.NewReader(input))
	require.NoError(t, err)

	require.Len(t, table.Rows, 2)
	_, hasC := table.Rows[0]["c"]
	assert.False(t, hasC)
	assert.Len(t, table.Rows[1], 3) // extra cell dropped
}
