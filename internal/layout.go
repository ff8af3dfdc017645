package perftop

import (
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Rect is a cell rectangle on the terminal. X1 and Y1 are exclusive.
type Rect struct {
	X0, Y0, X1, Y1 int
}

func (r Rect) Width() int  { return r.X1 - r.X0 }
func (r Rect) Height() int { return r.Y1 - r.Y0 }

// GridRect maps a grid position onto a width x height screen divided into
// the rows and cols of g. Spans of 0 count as 1.
func GridRect(g GridOptions, p GridPosition, width, height int) Rect {
	rows, cols := max(g.Rows, 1), max(g.Cols, 1)
	rowSpan, colSpan := max(p.RowSpan, 1), max(p.ColSpan, 1)
	return Rect{
		X0: p.Col * width / cols,
		Y0: p.Row * height / rows,
		X1: min(p.Col+colSpan, cols) * width / cols,
		Y1: min(p.Row+rowSpan, rows) * height / rows,
	}
}

// Canvas places rendered blocks at absolute positions. Blocks are expected
// not to overlap; where they do, the leftmost block wins the row.
type Canvas struct {
	width  int
	height int
	blocks []block
}

type block struct {
	x, y  int
	lines []string
}

func NewCanvas(width, height int) *Canvas {
	return &Canvas{width: width, height: height}
}

// Place draws a rendered block with its top left corner at x, y.
func (c *Canvas) Place(x, y int, rendered string) {
	c.blocks = append(c.blocks, block{x: x, y: y, lines: strings.Split(rendered, "\n")})
}

func (c *Canvas) String() string {
	sort.SliceStable(c.blocks, func(i, j int) bool {
		return c.blocks[i].x < c.blocks[j].x
	})

	lines := make([]string, c.height)
	for row := range lines {
		var b strings.Builder
		col := 0
		for _, blk := range c.blocks {
			i := row - blk.y
			if i < 0 || i >= len(blk.lines) || blk.x < col {
				continue
			}
			b.WriteString(strings.Repeat(" ", blk.x-col))
			b.WriteString(blk.lines[i])
			col = blk.x + lipgloss.Width(blk.lines[i])
		}
		if col < c.width {
			b.WriteString(strings.Repeat(" ", c.width-col))
		}
		lines[row] = b.String()
	}
	return strings.Join(lines, "\n")
}
