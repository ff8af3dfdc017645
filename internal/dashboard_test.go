package perftop

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gizak/termui/v3/widgets"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDashboard() (*Dashboard, []Widget) {
	d := &Dashboard{Name: "Test", Endpoint: "localhost:9600", GridOptions: GridOptions{Rows: 2, Cols: 2}}
	ws := []Widget{
		{ID: 0, Title: "CPU by operation", Kind: KindBar, Position: GridPosition{Row: 0, Col: 0, ColSpan: 2}},
		{ID: 1, Title: "Shards", Kind: KindTable, Position: GridPosition{Row: 1, Col: 0}},
		{ID: 2, Title: "Health", Kind: KindDonut, Position: GridPosition{Row: 1, Col: 1}},
	}
	return d, ws
}

func TestDashboardModelView(t *testing.T) {
	d, ws := testDashboard()
	var m tea.Model = newDashboardModel(d, ws)
	assert.Equal(t, "Initializing...", m.View())

	m, _ = m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	view := m.View()
	assert.Contains(t, view, "CPU by operation")
	assert.Contains(t, view, "Waiting for data...")
	assert.Contains(t, view, "perftop: Test @ localhost:9600")

	m, _ = m.Update(frameMsg{id: 0, frame: BarFrame{Labels: []string{"search"}, Values: []float64{4200}}})
	assert.Contains(t, m.View(), "4,200")
}

func TestDashboardModelFocus(t *testing.T) {
	d, ws := testDashboard()
	var m tea.Model = newDashboardModel(d, ws)

	tests := []struct {
		key  tea.KeyMsg
		want int
	}{
		{tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("l")}, 1},
		{tea.KeyMsg{Type: tea.KeyTab}, 2},
		{tea.KeyMsg{Type: tea.KeyRight}, 0},
		{tea.KeyMsg{Type: tea.KeyLeft}, 2},
		{tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("k")}, 1},
	}
	for _, tt := range tests {
		m, _ = m.Update(tt.key)
		assert.Equal(t, tt.want, m.(dashboardModel).selectedPane, tt.key.String())
	}

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestTermuiWidgetApply(t *testing.T) {
	t.Run("donut with zero total", func(t *testing.T) {
		tw := newTermuiWidget(Widget{Title: "Health", Kind: KindDonut})
		assert.False(t, tw.apply(donutFrame([]string{"a", "b"}, []float64{0, 0})))
		assert.False(t, tw.seen)

		assert.True(t, tw.apply(donutFrame([]string{"a", "b"}, []float64{1, 3})))
		pie := tw.drawable.(*widgets.PieChart)
		assert.Equal(t, []float64{25, 75}, pie.Data)
		assert.Equal(t, "b 75%", pie.LabelFormatter(1, 75))
	})

	t.Run("line needs two samples", func(t *testing.T) {
		tw := newTermuiWidget(Widget{Title: "CPU", Kind: KindLine})
		assert.False(t, tw.apply(LineFrame{Series: []LineSeries{{Title: "n", Y: []float64{1}}}}))
		assert.True(t, tw.apply(LineFrame{Series: []LineSeries{{Title: "n", Color: "red", Y: []float64{1, 2}}}}))
		assert.Equal(t, "CPU (n: 2)", tw.drawable.(*widgets.Plot).Title)
	})

	t.Run("table gets a header row", func(t *testing.T) {
		tw := newTermuiWidget(Widget{Title: "Shards", Kind: KindTable})
		require.True(t, tw.apply(TableFrame{Headers: []string{"name", "value"}, Rows: [][]Value{{Str("a"), Num(1000)}}}))
		assert.Equal(t, [][]string{{"name", "value"}, {"a", "1,000"}}, tw.drawable.(*widgets.Table).Rows)
	})

	t.Run("bars", func(t *testing.T) {
		tw := newTermuiWidget(Widget{Title: "CPU", Kind: KindBar})
		require.True(t, tw.apply(BarFrame{Labels: []string{"search"}, Values: []float64{3}}))
		bc := tw.drawable.(*widgets.BarChart)
		assert.Equal(t, []string{"search"}, bc.Labels)
		assert.Equal(t, []float64{3}, bc.Data)
	})
}
