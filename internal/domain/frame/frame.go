// Package frame holds the flat tables every collector produces: ordered
// column names and rows of loosely typed values, ready for a sink.
package frame

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"slices"
	"sort"
	"strconv"
	"strings"
)

// ErrWidth is returned when a row does not match the frame's columns.
var ErrWidth = errors.New("row width does not match columns")

// Frame is a table. Rows[i][j] is the value of Columns[j] in row i.
type Frame struct {
	Columns []string
	Rows    [][]any
}

// New creates an empty frame with the given columns.
func New(columns ...string) *Frame {
	return &Frame{Columns: slices.Clone(columns)}
}

// Len is the number of rows.
func (f *Frame) Len() int { return len(f.Rows) }

// Append adds a row.
func (f *Frame) Append(values ...any) error {
	if len(values) != len(f.Columns) {
		return fmt.Errorf("%w: got %d values for %d columns", ErrWidth, len(values), len(f.Columns))
	}
	f.Rows = append(f.Rows, slices.Clone(values))
	return nil
}

// AppendRecord adds a row from a map; missing columns are nil.
func (f *Frame) AppendRecord(rec map[string]any) {
	row := make([]any, len(f.Columns))
	for i, c := range f.Columns {
		row[i] = rec[c]
	}
	f.Rows = append(f.Rows, row)
}

// Index returns the position of col, or -1.
func (f *Frame) Index(col string) int { return slices.Index(f.Columns, col) }

// Has reports whether col exists.
func (f *Frame) Has(col string) bool { return f.Index(col) >= 0 }

// Value returns row i's value for col, nil when col is absent.
func (f *Frame) Value(i int, col string) any {
	j := f.Index(col)
	if j < 0 || i < 0 || i >= len(f.Rows) {
		return nil
	}
	return f.Rows[i][j]
}

// Set overwrites row i's value for an existing column.
func (f *Frame) Set(i int, col string, v any) {
	if j := f.Index(col); j >= 0 && i >= 0 && i < len(f.Rows) {
		f.Rows[i][j] = v
	}
}

// Rename renames columns in place; names not in m are kept.
func (f *Frame) Rename(m map[string]string) *Frame {
	for i, c := range f.Columns {
		if to, ok := m[c]; ok {
			f.Columns[i] = to
		}
	}
	return f
}

// LowerColumns lower-cases every column name in place.
func (f *Frame) LowerColumns() *Frame {
	for i, c := range f.Columns {
		f.Columns[i] = strings.ToLower(c)
	}
	return f
}

// Select returns a new frame with the listed columns that exist, in the
// order given.
func (f *Frame) Select(cols ...string) *Frame {
	idx := make([]int, 0, len(cols))
	out := New()
	for _, c := range cols {
		if j := f.Index(c); j >= 0 {
			idx = append(idx, j)
			out.Columns = append(out.Columns, c)
		}
	}
	out.Rows = make([][]any, 0, len(f.Rows))
	for _, r := range f.Rows {
		row := make([]any, len(idx))
		for k, j := range idx {
			row[k] = r[j]
		}
		out.Rows = append(out.Rows, row)
	}
	return out
}

// WithColumn sets col to fn(i) for every row, adding the column if needed.
func (f *Frame) WithColumn(col string, fn func(i int) any) *Frame {
	j := f.Index(col)
	if j < 0 {
		f.Columns = append(f.Columns, col)
		j = len(f.Columns) - 1
		for i := range f.Rows {
			f.Rows[i] = append(f.Rows[i], nil)
		}
	}
	for i := range f.Rows {
		f.Rows[i][j] = fn(i)
	}
	return f
}

// WithConstant sets col to v on every row.
func (f *Frame) WithConstant(col string, v any) *Frame {
	return f.WithColumn(col, func(int) any { return v })
}

// Filter returns a new frame with the rows keep accepts.
func (f *Frame) Filter(keep func(i int) bool) *Frame {
	out := New(f.Columns...)
	for i, r := range f.Rows {
		if keep(i) {
			out.Rows = append(out.Rows, slices.Clone(r))
		}
	}
	return out
}

// SortBy orders rows by a numeric column, stable, nils last.
func (f *Frame) SortBy(col string, desc bool) *Frame {
	j := f.Index(col)
	if j < 0 {
		return f
	}
	sort.SliceStable(f.Rows, func(a, b int) bool {
		x, okx := Float(f.Rows[a][j])
		y, oky := Float(f.Rows[b][j])
		switch {
		case !okx:
			return false
		case !oky:
			return true
		case desc:
			return x > y
		default:
			return x < y
		}
	})
	return f
}

// Concat appends other's rows, matching columns by name. Columns only one
// side has are filled with nil on the other.
func (f *Frame) Concat(other *Frame) *Frame {
	for _, c := range other.Columns {
		if !f.Has(c) {
			f.WithConstant(c, nil)
		}
	}
	for i := range other.Rows {
		rec := make(map[string]any, len(other.Columns))
		for j, c := range other.Columns {
			rec[c] = other.Rows[i][j]
		}
		f.AppendRecord(rec)
	}
	return f
}

// Records returns the rows as column->value maps.
func (f *Frame) Records() []map[string]any {
	out := make([]map[string]any, 0, len(f.Rows))
	for _, r := range f.Rows {
		rec := make(map[string]any, len(f.Columns))
		for j, c := range f.Columns {
			rec[c] = r[j]
		}
		out = append(out, rec)
	}
	return out
}

// Float converts numeric values, numeric strings and json.Number to float64.
// NaN and anything else report false.
func Float(v any) (float64, bool) {
	var x float64
	switch t := v.(type) {
	case float64:
		x = t
	case float32:
		x = float64(t)
	case int:
		x = float64(t)
	case int32:
		x = float64(t)
	case int64:
		x = float64(t)
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return 0, false
		}
		x = f
	case string:
		f, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(t), ",", ""), 64)
		if err != nil {
			return 0, false
		}
		x = f
	default:
		return 0, false
	}
	if math.IsNaN(x) {
		return 0, false
	}
	return x, true
}

// Int converts like Float and truncates.
func Int(v any) (int64, bool) {
	f, ok := Float(v)
	if !ok || math.IsInf(f, 0) {
		return 0, false
	}
	return int64(f), true
}

// String renders v as text; nil is "".
func String(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprint(t)
	}
}
