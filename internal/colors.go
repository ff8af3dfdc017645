package perftop

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	ui "github.com/gizak/termui/v3"
)

// named colors accepted in dashboard palettes, as xterm-256 indexes
var namedColors = map[string]int{
	"black":   0,
	"red":     1,
	"green":   2,
	"yellow":  3,
	"blue":    4,
	"magenta": 5,
	"cyan":    6,
	"white":   7,
	"grey":    8,
	"gray":    8,
}

// donutColors are cycled over donut slices.
var donutColors = []string{"red", "yellow", "green", "blue"}

// colorIndex resolves a palette entry to an xterm-256 color index.
// Accepts color names, "#rrggbb" and plain indexes.
func colorIndex(name string) (int, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	if idx, ok := namedColors[name]; ok {
		return idx, true
	}
	if strings.HasPrefix(name, "#") && len(name) == 7 {
		rgb, err := strconv.ParseUint(name[1:], 16, 32)
		if err != nil {
			return 0, false
		}
		r, g, b := int(rgb>>16&0xff), int(rgb>>8&0xff), int(rgb&0xff)
		return 16 + 36*(r/51) + 6*(g/51) + b/51, true
	}
	if idx, err := strconv.Atoi(name); err == nil && idx >= 0 && idx < 256 {
		return idx, true
	}
	return 0, false
}

// lipglossColor keeps hex colors as truecolor and maps everything else to an index.
func lipglossColor(name string) lipgloss.Color {
	if strings.HasPrefix(name, "#") {
		return lipgloss.Color(name)
	}
	if idx, ok := colorIndex(name); ok {
		return lipgloss.Color(strconv.Itoa(idx))
	}
	return lipgloss.Color("7")
}

func termuiColor(name string) ui.Color {
	if idx, ok := colorIndex(name); ok {
		return ui.Color(idx)
	}
	return ui.ColorWhite
}
