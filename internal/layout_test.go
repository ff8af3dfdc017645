package perftop

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGridRect(t *testing.T) {
	grid := GridOptions{Rows: 12, Cols: 12}

	tests := []struct {
		name string
		pos  GridPosition
		want Rect
	}{
		{"top left quarter", GridPosition{Row: 0, Col: 0, RowSpan: 6, ColSpan: 6}, Rect{0, 0, 60, 30}},
		{"bottom right quarter", GridPosition{Row: 6, Col: 6, RowSpan: 6, ColSpan: 6}, Rect{60, 30, 120, 60}},
		{"zero span counts as one", GridPosition{Row: 0, Col: 0}, Rect{0, 0, 10, 5}},
		{"span clipped to grid", GridPosition{Row: 10, Col: 10, RowSpan: 6, ColSpan: 6}, Rect{100, 50, 120, 60}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GridRect(grid, tt.pos, 120, 60)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want.X1-tt.want.X0, got.Width())
		})
	}
}

func TestCanvas(t *testing.T) {
	c := NewCanvas(10, 3)
	c.Place(5, 1, "bb\nbb")
	c.Place(0, 0, "aaa\naaa")

	lines := strings.Split(c.String(), "\n")
	assert.Equal(t, []string{
		"aaa       ",
		"aaa  bb   ",
		"     bb   ",
	}, lines)
}

func TestPaneContentSize(t *testing.T) {
	w, h := NewPane("CPU", 20, 10).ContentSize()
	assert.Equal(t, 18, w)
	assert.Equal(t, 7, h)

	w, h = NewPane("", 1, 1).ContentSize()
	assert.Equal(t, 0, w)
	assert.Equal(t, 0, h)
}

func TestPaneRender(t *testing.T) {
	out := NewPane("CPU", 20, 6).SetContent("hello").SetFocused(true).Render()
	assert.Contains(t, out, "CPU")
	assert.Contains(t, out, "hello")
	assert.Empty(t, NewPane("tiny", 2, 2).Render())
}
