package perftop

import (
	"math"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
)

// FilterNode keeps the single entity whose name starts with prefix.
func FilterNode(t MetricTable, prefix string) (MetricTable, error) {
	var matches []string
	for _, name := range t.Names() {
		if strings.HasPrefix(name, prefix) {
			matches = append(matches, name)
		}
	}
	switch len(matches) {
	case 0:
		return MetricTable{}, newError(ErrAmbiguous, "No matches for nodeName=%s", prefix)
	case 1:
		return MetricTable{matches[0]: t[matches[0]]}, nil
	}
	return MetricTable{}, newError(ErrAmbiguous, "Too many matches for nodeName=%s", prefix)
}

// FilterDimensions keeps the rows whose first column is one of allowed.
func FilterDimensions(t MetricTable, allowed []string) MetricTable {
	out := make(MetricTable, len(t))
	for name, record := range t {
		filtered := MetricRecord{Fields: record.Fields, Timestamp: record.Timestamp}
		for _, row := range record.Rows {
			if len(row) > 0 && indexOf(allowed, row[0].String()) >= 0 {
				filtered.Rows = append(filtered.Rows, row)
			}
		}
		out[name] = filtered
	}
	return out
}

// Flatten merges every entity into one table. Fields are the union in first
// appearance order plus a trailing node column; entities are visited in
// name order. Cells for fields an entity does not have are null.
func Flatten(t MetricTable) ShapedTable {
	var fields []string
	for _, name := range t.Names() {
		for _, f := range t[name].Fields {
			if indexOf(fields, f) < 0 {
				fields = append(fields, f)
			}
		}
	}

	shaped := ShapedTable{Fields: append(fields, EntityField)}
	for _, name := range t.Names() {
		record := t[name]
		for _, row := range record.Rows {
			out := make([]Value, len(shaped.Fields))
			for i, f := range fields {
				out[i] = Str("null")
				if j := record.Index(f); j >= 0 && j < len(row) {
					out[i] = row[j]
				}
			}
			out[len(fields)] = Str(name)
			shaped.Rows = append(shaped.Rows, out)
		}
	}
	return shaped
}

// SortBy returns a copy of s ordered by column, largest first. Cells that
// are not numbers go after all numbers and keep their relative order.
func SortBy(s ShapedTable, column string) (ShapedTable, error) {
	idx := s.Index(column)
	if idx < 0 {
		return s, newError(ErrConfig, "cannot sort by %s: no such column", column)
	}
	rows := make([][]Value, len(s.Rows))
	copy(rows, s.Rows)
	sort.SliceStable(rows, func(i, j int) bool {
		a, aok := sortKey(rows[i][idx])
		b, bok := sortKey(rows[j][idx])
		if aok != bok {
			return aok
		}
		return aok && a > b
	})
	return ShapedTable{Fields: s.Fields, Rows: rows}, nil
}

func sortKey(v Value) (float64, bool) {
	f, ok := v.Float()
	if !ok || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

// SumByDimension sums metric grouped by the value of dimension. Labels come
// back sorted. An empty dimension groups by node.
func SumByDimension(s ShapedTable, dimension, metric string) ([]string, []float64, error) {
	if dimension == "" {
		dimension = EntityField
	}
	dimIdx := s.Index(dimension)
	if dimIdx < 0 {
		return nil, nil, newError(ErrNoData, "dimension %s not in response", dimension)
	}
	metricIdx := s.Index(metric)
	if metricIdx < 0 {
		return nil, nil, newError(ErrNoData, "metric %s not in response", metric)
	}

	sums := map[string]float64{}
	for _, row := range s.Rows {
		sums[row[dimIdx].String()] += numeric(row[metricIdx])
	}
	labels := make([]string, 0, len(sums))
	for label := range sums {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	values := make([]float64, len(labels))
	for i, label := range labels {
		values[i] = RoundNumber(sums[label])
	}
	return labels, values, nil
}

// CommaDelimit renders rows for display, with thousands separators in every
// column that holds only numbers.
func CommaDelimit(rows [][]Value) [][]string {
	out := make([][]string, len(rows))
	if len(rows) == 0 {
		return out
	}
	width := 0
	for _, row := range rows {
		width = max(width, len(row))
	}
	numericCol := make([]bool, width)
	for col := range numericCol {
		numericCol[col] = true
		for _, row := range rows {
			if col >= len(row) || !row[col].IsNumber() {
				numericCol[col] = false
				break
			}
		}
	}
	for i, row := range rows {
		out[i] = make([]string, len(row))
		for col, v := range row {
			if numericCol[col] {
				f, _ := v.Float()
				out[i][col] = humanize.Commaf(f)
				continue
			}
			out[i][col] = v.String()
		}
	}
	return out
}
