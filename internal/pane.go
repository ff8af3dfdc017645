package perftop

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Pane is a bordered panel holding one widget.
//
//	pane := NewPane("CPU utilization by operation", 40, 10).
//	    SetContent(renderFrame(frame, 38, 7)).
//	    SetFocused(true)
//	fmt.Println(pane.Render())
//
// Width and height are the outer size, border included.
type Pane struct {
	title       string
	content     string
	width       int
	height      int
	borderStyle lipgloss.Style
	titleStyle  lipgloss.Style
	focused     bool
}

// NewPane creates a new pane with default styling
func NewPane(title string, width, height int) Pane {
	return Pane{
		title:  title,
		width:  width,
		height: height,
		borderStyle: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")),
		titleStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("33")).
			Bold(true),
	}
}

// SetContent sets the pane content
func (p Pane) SetContent(content string) Pane {
	p.content = content
	return p
}

// SetFocused sets the focus state
func (p Pane) SetFocused(focused bool) Pane {
	p.focused = focused
	if focused {
		p.borderStyle = p.borderStyle.BorderForeground(lipgloss.Color("170"))
	} else {
		p.borderStyle = p.borderStyle.BorderForeground(lipgloss.Color("240"))
	}
	return p
}

// ContentSize is the space left for content inside the border and title.
func (p Pane) ContentSize() (int, int) {
	w, h := p.width-2, p.height-2
	if p.title != "" {
		h--
	}
	return max(w, 0), max(h, 0)
}

func (p Pane) View() string {
	innerW, innerH := p.width-2, p.height-2
	if innerW < 1 || innerH < 1 {
		return ""
	}

	var b strings.Builder
	if p.title != "" {
		b.WriteString(p.titleStyle.MaxWidth(innerW).Render(p.title) + "\n")
	}
	contentW, contentH := p.ContentSize()
	b.WriteString(lipgloss.NewStyle().MaxWidth(contentW).MaxHeight(contentH).Render(p.content))

	return p.borderStyle.
		Width(innerW).
		Height(innerH).
		MaxHeight(p.height).
		Render(b.String())
}

// Render is a convenience method that calls View()
func (p Pane) Render() string {
	return p.View()
}
