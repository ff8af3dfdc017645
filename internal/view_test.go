package perftop

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
)

func TestRenderFrameWaiting(t *testing.T) {
	assert.Contains(t, renderFrame(nil, 40, 5), "Waiting for data...")
	assert.Equal(t, "", renderFrame(BarFrame{}, 0, 5))
}

func TestRenderBars(t *testing.T) {
	out := renderFrame(BarFrame{Labels: []string{"search", "write"}, Values: []float64{1500, 750}}, 40, 5)
	lines := strings.Split(out, "\n")

	assert.Len(t, lines, 2)
	assert.Contains(t, lines[0], "search")
	assert.Contains(t, lines[0], "1,500")
	assert.Contains(t, lines[1], "750")
	assert.Greater(t, strings.Count(lines[0], "█"), strings.Count(lines[1], "█"))
	for _, line := range lines {
		assert.LessOrEqual(t, lipgloss.Width(line), 40)
	}
}

func TestRenderBarsHeight(t *testing.T) {
	out := renderFrame(BarFrame{Labels: []string{"a", "b", "c"}, Values: []float64{1, 2, 3}}, 20, 2)
	assert.Len(t, strings.Split(out, "\n"), 2)
}

func TestRenderLines(t *testing.T) {
	frame := LineFrame{Series: []LineSeries{
		{Title: "node-1", Color: "red", Y: []float64{0, 1, 2, 3}},
		{Title: "node-2", Color: "#00ff00", Y: []float64{5, 5, 5, 5}},
	}}
	out := renderFrame(frame, 30, 4)

	assert.Contains(t, out, "node-1")
	assert.Contains(t, out, "node-2")
	assert.Contains(t, out, "▁▃▅█")
	assert.Len(t, strings.Split(out, "\n"), 4)

	// two lines per series, so only the first fits in 3
	assert.NotContains(t, renderFrame(frame, 30, 3), "node-2")
}

func TestSparkline(t *testing.T) {
	assert.Equal(t, "▁█", sparkline([]float64{0, 10}, 10))
	assert.Equal(t, "▁▁▁", sparkline([]float64{2, 2, 2}, 10))
	assert.Equal(t, "▁█", sparkline([]float64{9, 0, 10}, 2))
}

func TestRenderDonut(t *testing.T) {
	frame := donutFrame([]string{"healthy_nodes", "unhealthy_nodes"}, []float64{3, 2})
	out := renderFrame(frame, 40, 5)

	assert.Contains(t, out, "60.0%")
	assert.Contains(t, out, "40.0%")
	assert.Contains(t, out, "healthy_")
}

func TestRenderDonutNegativeValue(t *testing.T) {
	frame := donutFrame([]string{"a", "b"}, []float64{-1, 2})

	var out string
	assert.NotPanics(t, func() { out = renderFrame(frame, 40, 5) })
	lines := strings.Split(out, "\n")
	assert.Len(t, lines, 2)
	assert.Contains(t, lines[0], "0.0%")
	assert.Contains(t, lines[1], "100.0%")
	for _, line := range lines {
		assert.LessOrEqual(t, lipgloss.Width(line), 40)
	}
}

func TestRenderDonutOutOfRangePercent(t *testing.T) {
	frame := DonutFrame{Slices: []DonutSlice{
		{Label: "low", Percent: -50, Color: "red"},
		{Label: "high", Percent: 250, Color: "blue"},
	}}
	assert.NotPanics(t, func() { renderFrame(frame, 30, 5) })
}

func TestRenderTable(t *testing.T) {
	frame := TableFrame{
		Headers: []string{"Operation", "CPU_Utilization (%)", "node"},
		Rows:    [][]Value{{Str("search"), Num(12345), Str("node-1")}},
	}
	out := renderFrame(frame, 80, 10)

	assert.Contains(t, out, "CPU_Utilization (%)")
	assert.Contains(t, out, "12,345")
	assert.Contains(t, out, "node-1")
}

func TestWrapTableOverflow(t *testing.T) {
	var rows [][]Value
	for i := range 20 {
		rows = append(rows, []Value{Str("shard"), Num(float64(i))})
	}
	frame := TableFrame{Headers: []string{"name", "v"}, Rows: rows}

	out := NewWrapTable(frame).MaxHeight(8).MaxWidth(30).Render()
	assert.Contains(t, out, "more rows")

	all := NewWrapTable(frame).Render()
	assert.NotContains(t, all, "more rows")
	assert.Contains(t, all, "19")
}

func TestFit(t *testing.T) {
	assert.Equal(t, "abc  ", fit("abc", 5))
	assert.Equal(t, "abcd…", fit("abcdefgh", 5))
	assert.Equal(t, "a", fit("abc", 1))
	assert.Equal(t, "", fit("abc", 0))
}
