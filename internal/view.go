package perftop

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
)

var (
	waitingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	valueStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	barStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
)

// renderFrame draws a frame into a width x height block of text.
func renderFrame(frame Frame, width, height int) string {
	if width < 1 || height < 1 {
		return ""
	}
	switch f := frame.(type) {
	case BarFrame:
		return renderBars(f, width, height)
	case LineFrame:
		return renderLines(f, width, height)
	case TableFrame:
		return NewWrapTable(f).MaxHeight(height).MaxWidth(width).Render()
	case DonutFrame:
		return renderDonut(f, width, height)
	}
	return waitingStyle.Render("Waiting for data...")
}

// renderBars draws one horizontal bar per label, scaled to the largest value.
func renderBars(f BarFrame, width, height int) string {
	if len(f.Labels) == 0 {
		return waitingStyle.Render("No data")
	}
	labelW, valueW := 0, 0
	top := 0.0
	values := make([]string, len(f.Values))
	for i, label := range f.Labels {
		labelW = max(labelW, lipgloss.Width(label))
		values[i] = humanize.Commaf(f.Values[i])
		valueW = max(valueW, len(values[i]))
		top = max(top, f.Values[i])
	}
	labelW = min(labelW, width/3)
	barW := max(width-labelW-valueW-2, 1)

	var lines []string
	for i, label := range f.Labels {
		if len(lines) == height {
			break
		}
		n := 0
		if top > 0 && f.Values[i] > 0 {
			n = int(math.Round(f.Values[i] / top * float64(barW)))
		}
		lines = append(lines, fmt.Sprintf("%s %s%s %s",
			labelStyle.Render(fit(label, labelW)),
			barStyle.Render(strings.Repeat("█", n)),
			strings.Repeat(" ", barW-n),
			valueStyle.Render(values[i])))
	}
	return strings.Join(lines, "\n")
}

var sparkBlocks = []rune("▁▂▃▄▅▆▇█")

// renderLines draws each series as a legend line and a sparkline of its newest samples.
func renderLines(f LineFrame, width, height int) string {
	if len(f.Series) == 0 {
		return waitingStyle.Render("No data")
	}
	var lines []string
	for _, s := range f.Series {
		if len(lines)+2 > height {
			break
		}
		style := lipgloss.NewStyle().Foreground(lipglossColor(s.Color))
		legend := fmt.Sprintf("%s %s %s", style.Render("●"), fit(s.Title, max(width-16, 4)), valueStyle.Render(humanize.Commaf(s.Last())))
		lines = append(lines, legend, style.Render(sparkline(s.Y, width)))
	}
	return strings.Join(lines, "\n")
}

func sparkline(y []float64, width int) string {
	if len(y) > width {
		y = y[len(y)-width:]
	}
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range y {
		lo, hi = min(lo, v), max(hi, v)
	}
	var b strings.Builder
	for _, v := range y {
		idx := 0
		if hi > lo {
			idx = int((v - lo) / (hi - lo) * float64(len(sparkBlocks)-1))
		}
		b.WriteRune(sparkBlocks[idx])
	}
	return b.String()
}

// renderDonut draws every slice as a percentage bar in the slice color.
func renderDonut(f DonutFrame, width, height int) string {
	if len(f.Slices) == 0 {
		return waitingStyle.Render("No data")
	}
	labelW := 0
	for _, s := range f.Slices {
		labelW = max(labelW, lipgloss.Width(s.Label))
	}
	labelW = min(labelW, width/3)
	barW := max(width-labelW-8, 1)

	var lines []string
	for _, s := range f.Slices {
		if len(lines) == height {
			break
		}
		n := 0
		if s.Percent > 0 {
			n = min(int(math.Round(s.Percent/100*float64(barW))), barW)
		}
		style := lipgloss.NewStyle().Foreground(lipglossColor(s.Color))
		lines = append(lines, fmt.Sprintf("%s %s%s %5.1f%%",
			labelStyle.Render(fit(s.Label, labelW)),
			style.Render(strings.Repeat("█", n)),
			strings.Repeat("░", barW-n),
			s.Percent))
	}
	return strings.Join(lines, "\n")
}

// fit pads or truncates s to exactly w cells.
func fit(s string, w int) string {
	if lipgloss.Width(s) > w {
		r := []rune(s)
		if w <= 1 {
			return string(r[:max(w, 0)])
		}
		for lipgloss.Width(string(r)) > w-1 {
			r = r[:len(r)-1]
		}
		return string(r) + "…"
	}
	return s + strings.Repeat(" ", w-lipgloss.Width(s))
}
