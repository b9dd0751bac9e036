package models

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// ColumnType is the inferred type of a table column.
type ColumnType string

const (
	ColumnTypeString  ColumnType = "string"
	ColumnTypeNumber  ColumnType = "number"
	ColumnTypeDate    ColumnType = "date"
	ColumnTypeBoolean ColumnType = "boolean"
)

// ValueKind discriminates the closed set of cell value types.
type ValueKind int

const (
	ValueNull ValueKind = iota
	ValueString
	ValueNumber
	ValueBool
	ValueTime
)

// Value is a single table cell. Rows are permissive key/value mappings, so a
// cell is modeled as a closed sum type rather than interface{} to keep
// analyzer code exhaustive instead of coercion-driven.
type Value struct {
	Kind ValueKind
	Str  string
	Num  float64
	Bool bool
	Time time.Time
}

// NullValue returns the null cell value.
func NullValue() Value { return Value{Kind: ValueNull} }

// StringValue wraps s as a string cell.
func StringValue(s string) Value { return Value{Kind: ValueString, Str: s} }

// NumberValue wraps n as a numeric cell.
func NumberValue(n float64) Value { return Value{Kind: ValueNumber, Num: n} }

// BoolValue wraps b as a boolean cell.
func BoolValue(b bool) Value { return Value{Kind: ValueBool, Bool: b} }

// TimeValue wraps t as a timestamp cell.
func TimeValue(t time.Time) Value { return Value{Kind: ValueTime, Time: t} }

// IsEmpty reports whether the cell carries no usable data. Null cells, blank
// strings, and the "N/A" placeholder all count as empty.
func (v Value) IsEmpty() bool {
	if v.Kind == ValueNull {
		return true
	}
	if v.Kind == ValueString {
		s := strings.TrimSpace(v.Str)
		return s == "" || strings.EqualFold(s, "n/a")
	}
	return false
}

// AsString renders the cell for display and grouping.
func (v Value) AsString() string {
	switch v.Kind {
	case ValueString:
		return v.Str
	case ValueNumber:
		if v.Num == math.Trunc(v.Num) && math.Abs(v.Num) < 1e15 {
			return strconv.FormatInt(int64(v.Num), 10)
		}
		return strconv.FormatFloat(v.Num, 'g', -1, 64)
	case ValueBool:
		return strconv.FormatBool(v.Bool)
	case ValueTime:
		return v.Time.Format(time.RFC3339)
	default:
		return ""
	}
}

// AsNumber returns the cell as a finite float64. Numeric strings convert to
// preserve the permissive semantics of loosely typed source data.
func (v Value) AsNumber() (float64, bool) {
	switch v.Kind {
	case ValueNumber:
		return v.Num, !math.IsNaN(v.Num) && !math.IsInf(v.Num, 0)
	case ValueString:
		n, err := strconv.ParseFloat(strings.TrimSpace(v.Str), 64)
		if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
			return 0, false
		}
		return n, true
	case ValueBool:
		if v.Bool {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}

// AsTime returns the cell as a timestamp. String cells are parsed against the
// known date layouts; the parsed offset is kept as-is so hour bucketing does
// not depend on the host timezone.
func (v Value) AsTime() (time.Time, bool) {
	switch v.Kind {
	case ValueTime:
		return v.Time, true
	case ValueString:
		return ParseTime(v.Str)
	default:
		return time.Time{}, false
	}
}

// timeLayouts are the accepted date/datetime formats, most specific first.
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"01/02/2006",
	"02-01-2006",
}

// ParseTime parses s against the known date layouts.
func ParseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Column describes a single table column. Type is inferred once from a
// bounded sample of non-empty values and is never left unset.
type Column struct {
	Name         string     `json:"name"`
	Type         ColumnType `json:"type"`
	SampleValues []Value    `json:"-"`
}

// Row is one record keyed by column name. Rows may omit keys for missing
// cells; extra keys are tolerated but flagged by validation.
type Row map[string]Value

// TableSummary carries parse-time derived metadata: totals plus heuristic
// column-role classification used to steer the analyzers.
type TableSummary struct {
	TotalRows                int      `json:"total_rows"`
	TotalColumns             int      `json:"total_columns"`
	PossibleUserIDColumns    []string `json:"possible_user_id_columns,omitempty"`
	PossibleEventColumns     []string `json:"possible_event_columns,omitempty"`
	PossibleTimestampColumns []string `json:"possible_timestamp_columns,omitempty"`
}

// Table is the in-memory dataset the engine analyzes. The engine only reads
// it; ownership stays with the caller.
type Table struct {
	Columns   []Column     `json:"columns"`
	Rows      []Row        `json:"rows"`
	RowCount  int          `json:"row_count"`
	SizeBytes int64        `json:"size_bytes,omitempty"` // 0 when the source size is unknown
	Summary   TableSummary `json:"summary"`
}

// Fingerprint returns a cheap content key (row/column counts plus source
// size) used by the optional read-through result cache.
func (t *Table) Fingerprint() string {
	if t == nil {
		return "0:0:0"
	}
	return fmt.Sprintf("%d:%d:%d", t.RowCount, len(t.Columns), t.SizeBytes)
}
