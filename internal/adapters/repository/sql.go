package repository

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/okian/wolfwise/internal/domain/frame"
)

// placeholder renders the n-th (1-based) bind parameter.
type placeholder func(n int) string

func dollar(n int) string { return "$" + strconv.Itoa(n) }
func question(int) string { return "?" }

// quote double-quotes an identifier. Names with quotes or control characters
// are rejected.
func quote(name string) (string, error) {
	if strings.TrimSpace(name) == "" || strings.ContainsAny(name, "\"\x00\n\r") {
		return "", fmt.Errorf("%w: %q", ErrInvalidIdentifier, name)
	}
	return `"` + name + `"`, nil
}

func quoteAll(names []string) ([]string, error) {
	out := make([]string, len(names))
	for i, n := range names {
		q, err := quote(n)
		if err != nil {
			return nil, err
		}
		out[i] = q
	}
	return out, nil
}

func deleteSQL(table string, p Partition, ph placeholder) (string, error) {
	t, err := quote(table)
	if err != nil {
		return "", err
	}
	if len(p) == 0 {
		return "DELETE FROM " + t, nil
	}
	cols, err := quoteAll(p.Columns())
	if err != nil {
		return "", err
	}
	conds := make([]string, len(cols))
	for i, c := range cols {
		conds[i] = c + " = " + ph(i+1)
	}
	return "DELETE FROM " + t + " WHERE " + strings.Join(conds, " AND "), nil
}

func insertSQL(table string, columns []string, ph placeholder) (string, error) {
	t, err := quote(table)
	if err != nil {
		return "", err
	}
	cols, err := quoteAll(columns)
	if err != nil {
		return "", err
	}
	params := make([]string, len(cols))
	for i := range cols {
		params[i] = ph(i + 1)
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", t, strings.Join(cols, ", "), strings.Join(params, ", ")), nil
}

func createSQL(table string, f *frame.Frame, ifNotExists bool) (string, error) {
	t, err := quote(table)
	if err != nil {
		return "", err
	}
	defs := make([]string, len(f.Columns))
	for j, c := range f.Columns {
		q, err := quote(c)
		if err != nil {
			return "", err
		}
		defs[j] = q + " " + columnType(f, j)
	}
	verb := "CREATE TABLE "
	if ifNotExists {
		verb = "CREATE TABLE IF NOT EXISTS "
	}
	return verb + t + " (" + strings.Join(defs, ", ") + ")", nil
}

func dropSQL(table string) (string, error) {
	t, err := quote(table)
	if err != nil {
		return "", err
	}
	return "DROP TABLE IF EXISTS " + t, nil
}

// columnType infers a column type from the non-nil values of column j:
// bigint when every value is an integer, boolean when every value is a
// bool, numeric when every value is a number, text otherwise.
func columnType(f *frame.Frame, j int) string {
	var ints, floats, bools, others int
	for _, r := range f.Rows {
		switch r[j].(type) {
		case nil:
		case int, int32, int64:
			ints++
		case float32, float64:
			floats++
		case bool:
			bools++
		case time.Time:
			return "timestamptz"
		default:
			others++
		}
	}
	switch {
	case others > 0 || (bools > 0 && ints+floats > 0):
		return "text"
	case bools > 0:
		return "boolean"
	case floats > 0:
		return "numeric"
	case ints > 0:
		return "bigint"
	default:
		return "text"
	}
}
