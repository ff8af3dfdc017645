package perftop

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// WrapTable renders a table frame inside a fixed box. Rows that do not fit
// the height continue in another table to the right while there is width
// for it; whatever is left after that is summarised in a final line.
type WrapTable struct {
	headers     []string
	rows        [][]string
	maxHeight   int
	maxWidth    int
	borderStyle lipgloss.Style
	headerStyle lipgloss.Style
}

// NewWrapTable prepares a frame for display: numeric columns get thousands separators.
func NewWrapTable(frame TableFrame) *WrapTable {
	return &WrapTable{
		headers:     frame.Headers,
		rows:        CommaDelimit(frame.Rows),
		borderStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		headerStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true),
	}
}

// MaxHeight sets the maximum height constraint
func (wt *WrapTable) MaxHeight(height int) *WrapTable {
	wt.maxHeight = height
	return wt
}

// MaxWidth sets the maximum width constraint
func (wt *WrapTable) MaxWidth(width int) *WrapTable {
	wt.maxWidth = width
	return wt
}

func (wt *WrapTable) build(rows [][]string) string {
	headerStyle := wt.headerStyle
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(wt.borderStyle).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return lipgloss.NewStyle()
		}).
		Headers(wt.headers...).
		Rows(rows...).
		String()
}

func (wt *WrapTable) Render() string {
	if len(wt.rows) == 0 {
		return wt.build(nil)
	}

	// header, header separator, top and bottom border
	rowsPerTable := len(wt.rows)
	if wt.maxHeight > 0 {
		rowsPerTable = max(wt.maxHeight-4, 1)
	}
	if len(wt.rows) <= rowsPerTable {
		return wt.build(wt.rows)
	}

	var tables []string
	width := 0
	shown := 0
	for shown < len(wt.rows) {
		end := min(shown+rowsPerTable, len(wt.rows))
		t := wt.build(wt.rows[shown:end])
		w := lipgloss.Width(t)
		if wt.maxWidth > 0 && len(tables) > 0 && width+w > wt.maxWidth {
			break
		}
		tables = append(tables, t)
		width += w
		shown = end
	}

	out := lipgloss.JoinHorizontal(lipgloss.Top, tables...)
	if shown < len(wt.rows) {
		out += fmt.Sprintf("\n… %d more rows", len(wt.rows)-shown)
	}
	return out
}

// String is a convenience method that calls Render
func (wt *WrapTable) String() string {
	return wt.Render()
}
