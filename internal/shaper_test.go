package perftop

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func nodeTable() MetricTable {
	return MetricTable{
		"node-a1": {Fields: []string{"Operation", "CPU"}, Rows: [][]Value{{Str("search"), Num(1)}, {Str("write"), Num(2)}}, Timestamp: 1},
		"node-a2": {Fields: []string{"Operation", "CPU"}, Rows: [][]Value{{Str("search"), Num(3)}}, Timestamp: 1},
		"node-b":  {Fields: []string{"Operation", "CPU"}, Rows: [][]Value{{Str("get"), Num(4)}}, Timestamp: 1},
	}
}

func TestFilterNode(t *testing.T) {
	tests := []struct {
		name    string
		prefix  string
		want    []string
		wantErr string
	}{
		{"single match", "node-b", []string{"node-b"}, ""},
		{"exact name", "node-a2", []string{"node-a2"}, ""},
		{"too many", "node-a", nil, "Too many matches for nodeName=node-a"},
		{"none", "other", nil, "No matches for nodeName=other"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FilterNode(nodeTable(), tt.prefix)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.True(t, IsCode(err, ErrAmbiguous))
				assert.Equal(t, tt.wantErr, err.Error())
				assert.Empty(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Names())
		})
	}
}

func TestFilterDimensions(t *testing.T) {
	got := FilterDimensions(nodeTable(), []string{"search", "get"})

	assert.Equal(t, [][]Value{{Str("search"), Num(1)}}, got["node-a1"].Rows)
	assert.Equal(t, [][]Value{{Str("search"), Num(3)}}, got["node-a2"].Rows)
	assert.Equal(t, [][]Value{{Str("get"), Num(4)}}, got["node-b"].Rows)
	assert.Equal(t, []string{"Operation", "CPU"}, got["node-a1"].Fields)
}

func TestFlatten(t *testing.T) {
	table := MetricTable{
		"node-b": {Fields: []string{"Operation", "Mem"}, Rows: [][]Value{{Str("write"), Num(2)}}},
		"node-a": {Fields: []string{"Operation", "CPU"}, Rows: [][]Value{{Str("search"), Num(1)}}},
		"node-c": {Fields: []string{"Operation", "CPU"}},
	}

	got := Flatten(table)

	assert.Equal(t, []string{"Operation", "CPU", "Mem", "node"}, got.Fields)
	assert.Equal(t, [][]Value{
		{Str("search"), Num(1), Str("null"), Str("node-a")},
		{Str("write"), Str("null"), Num(2), Str("node-b")},
	}, got.Rows)
}

func TestFlattenEmpty(t *testing.T) {
	got := Flatten(MetricTable{})
	assert.Equal(t, []string{"node"}, got.Fields)
	assert.True(t, got.Empty())
}

func TestSortBy(t *testing.T) {
	shaped := Flatten(nodeTable())

	sorted, err := SortBy(shaped, "CPU")
	require.NoError(t, err)
	col, ok := sorted.column("CPU")
	require.True(t, ok)
	assert.Equal(t, []Value{Num(4), Num(3), Num(2), Num(1)}, col)

	// input untouched
	col, _ = shaped.column("CPU")
	assert.Equal(t, []Value{Num(1), Num(2), Num(3), Num(4)}, col)

	_, err = SortBy(shaped, "Latency")
	assert.True(t, IsCode(err, ErrConfig))
}

func TestSortByMixedColumn(t *testing.T) {
	shaped := ShapedTable{
		Fields: []string{"name", "v"},
		Rows: [][]Value{
			{Str("a"), Str("N/A")},
			{Str("b"), Num(2)},
			{Str("c"), Str("null")},
			{Str("d"), Num(7)},
			{Str("e"), Str("N/A")},
			{Str("f"), Num(2)},
		},
	}

	sorted, err := SortBy(shaped, "v")
	require.NoError(t, err)
	names, _ := sorted.column("name")
	assert.Equal(t, []Value{Str("d"), Str("b"), Str("f"), Str("a"), Str("c"), Str("e")}, names)
}

func TestSortByStable(t *testing.T) {
	shaped := ShapedTable{
		Fields: []string{"name", "v"},
		Rows: [][]Value{
			{Str("a"), Num(1)},
			{Str("b"), Num(5)},
			{Str("c"), Num(1)},
		},
	}

	sorted, err := SortBy(shaped, "v")
	require.NoError(t, err)
	names, _ := sorted.column("name")
	assert.Equal(t, []Value{Str("b"), Str("a"), Str("c")}, names)
}

func TestSumByDimension(t *testing.T) {
	shaped := Flatten(nodeTable())

	tests := []struct {
		name       string
		dimension  string
		metric     string
		wantLabels []string
		wantValues []float64
		wantErr    bool
	}{
		{"by operation", "Operation", "CPU", []string{"get", "search", "write"}, []float64{4, 4, 2}, false},
		{"by node", "", "CPU", []string{"node-a1", "node-a2", "node-b"}, []float64{3, 3, 4}, false},
		{"missing dimension", "ShardID", "CPU", nil, nil, true},
		{"missing metric", "Operation", "Latency", nil, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			labels, values, err := SumByDimension(shaped, tt.dimension, tt.metric)
			if tt.wantErr {
				assert.True(t, IsCode(err, ErrNoData))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantLabels, labels)
			assert.Equal(t, tt.wantValues, values)
		})
	}
}

func TestSumByDimensionRounds(t *testing.T) {
	shaped := ShapedTable{
		Fields: []string{"Operation", "CPU", "node"},
		Rows: [][]Value{
			{Str("search"), Num(0.111), Str("n")},
			{Str("search"), Num(0.222), Str("n")},
			{Str("search"), Str("null"), Str("n")},
		},
	}

	_, values, err := SumByDimension(shaped, "Operation", "CPU")
	require.NoError(t, err)
	assert.Equal(t, []float64{0.33}, values)
}

func TestCommaDelimit(t *testing.T) {
	rows := [][]Value{
		{Str("search"), Num(1234567.5), Num(1000)},
		{Str("write"), Num(12), Str("null")},
	}

	assert.Equal(t, [][]string{
		{"search", "1,234,567.5", "1000"},
		{"write", "12", "null"},
	}, CommaDelimit(rows))
	assert.Empty(t, CommaDelimit(nil))
}
