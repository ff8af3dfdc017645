package perftop

import "sort"

// MetricRecord is the tabular payload for one entity (a node, or an RCA summary).
// Every row has exactly len(Fields) cells.
type MetricRecord struct {
	Fields    []string
	Rows      [][]Value
	Timestamp int64
}

// Index returns the position of field, or -1.
func (r MetricRecord) Index(field string) int {
	return indexOf(r.Fields, field)
}

// Empty reports whether the record has no fields to show.
func (r MetricRecord) Empty() bool {
	return len(r.Fields) == 0
}

// MetricTable maps entity id to its record.
type MetricTable map[string]MetricRecord

// Names returns the entity ids in lexical order.
func (t MetricTable) Names() []string {
	names := make([]string, 0, len(t))
	for name := range t {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ShapedTable is a MetricTable flattened into a single table.
type ShapedTable struct {
	Fields []string
	Rows   [][]Value
}

func (s ShapedTable) Index(field string) int {
	return indexOf(s.Fields, field)
}

func (s ShapedTable) Empty() bool {
	return len(s.Rows) == 0
}

// column returns the cells of field in row order.
func (s ShapedTable) column(field string) ([]Value, bool) {
	idx := s.Index(field)
	if idx < 0 {
		return nil, false
	}
	col := make([]Value, 0, len(s.Rows))
	for _, row := range s.Rows {
		col = append(col, row[idx])
	}
	return col, true
}

func indexOf(list []string, s string) int {
	for i, v := range list {
		if v == s {
			return i
		}
	}
	return -1
}

func copyRow(row []Value) []Value {
	out := make([]Value, len(row))
	copy(out, row)
	return out
}
