package statsapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/okian/wolfwise/internal/domain/frame"
)

// Response is the envelope every stats endpoint returns. Most endpoints use
// resultSets; a few return a single resultSet.
type Response struct {
	Resource   string      `json:"resource"`
	ResultSets []ResultSet `json:"resultSets"`
	ResultSet  *ResultSet  `json:"resultSet"`
}

// ResultSet is one named table of a response.
type ResultSet struct {
	Name    string   `json:"name"`
	Headers []string `json:"headers"`
	RowSet  [][]any  `json:"rowSet"`
}

// Decode parses a stats response. Numbers are kept exact: integers become
// int64 and everything else float64.
func Decode(body []byte) (*Response, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var r Response
	if err := dec.Decode(&r); err != nil {
		return nil, fmt.Errorf("decoding stats response: %w", err)
	}
	if r.ResultSet != nil {
		r.ResultSets = append(r.ResultSets, *r.ResultSet)
		r.ResultSet = nil
	}
	return &r, nil
}

// Frame returns the named result set as a frame. An empty name selects the
// first set.
func (r *Response) Frame(name string) (*frame.Frame, error) {
	for _, rs := range r.ResultSets {
		if name == "" || rs.Name == name {
			return rs.Frame()
		}
	}
	if name == "" {
		name = "<first>"
	}
	return nil, fmt.Errorf("%s: %w: %s", r.Resource, ErrNoResultSet, name)
}

// Frame converts the result set rows.
func (rs ResultSet) Frame() (*frame.Frame, error) {
	f := frame.New(rs.Headers...)
	for i, row := range rs.RowSet {
		if len(row) != len(rs.Headers) {
			return nil, fmt.Errorf("%s row %d: %w", rs.Name, i, ErrMalformedRow)
		}
		vals := make([]any, len(row))
		for j, v := range row {
			vals[j] = normalize(v)
		}
		if err := f.Append(vals...); err != nil {
			return nil, err
		}
	}
	return f, nil
}

func normalize(v any) any {
	n, ok := v.(json.Number)
	if !ok {
		return v
	}
	if i, err := strconv.ParseInt(n.String(), 10, 64); err == nil {
		return i
	}
	if f, err := n.Float64(); err == nil {
		return f
	}
	return n.String()
}
