package perftop

import (
	"fmt"
	"math"
)

// WidgetKind is the chart type of a widget.
type WidgetKind int

const (
	KindBar WidgetKind = iota
	KindLine
	KindTable
	KindDonut
)

// String returns the dashboard config name of the kind.
func (k WidgetKind) String() string {
	switch k {
	case KindBar:
		return "bars"
	case KindLine:
		return "lines"
	case KindTable:
		return "tables"
	case KindDonut:
		return "donuts"
	}
	return fmt.Sprintf("WidgetKind(%d)", int(k))
}

// ParseWidgetKind accepts the config names: bars, lines, tables, donuts.
func ParseWidgetKind(s string) (WidgetKind, error) {
	for _, k := range []WidgetKind{KindBar, KindLine, KindTable, KindDonut} {
		if k.String() == s {
			return k, nil
		}
	}
	return 0, newError(ErrConfig, "unknown graph type %q", s)
}

// Frame is what one widget refresh hands to the render sink.
type Frame interface {
	Kind() WidgetKind
}

type BarFrame struct {
	Labels []string
	Values []float64
}

type LineFrame struct {
	Series []LineSeries
}

type TableFrame struct {
	Headers []string
	Rows    [][]Value
}

// DonutSlice is one category of a donut; Percent is 0-100.
type DonutSlice struct {
	Label   string
	Percent float64
	Color   string
}

type DonutFrame struct {
	Slices []DonutSlice
}

func (BarFrame) Kind() WidgetKind   { return KindBar }
func (LineFrame) Kind() WidgetKind  { return KindLine }
func (TableFrame) Kind() WidgetKind { return KindTable }
func (DonutFrame) Kind() WidgetKind { return KindDonut }

// Percentages returns each value's share of the total. Negative and NaN
// values count as 0, so every share is within 0-100. A zero total gives 0 for all.
func Percentages(values []float64) []float64 {
	sum := 0.0
	for _, v := range values {
		if v > 0 {
			sum += v
		}
	}
	out := make([]float64, len(values))
	if sum == 0 || math.IsInf(sum, 0) {
		return out
	}
	for i, v := range values {
		if v > 0 {
			out[i] = v / sum * 100
		}
	}
	return out
}

func donutFrame(labels []string, values []float64) DonutFrame {
	percents := Percentages(values)
	frame := DonutFrame{Slices: make([]DonutSlice, len(labels))}
	for i, label := range labels {
		frame.Slices[i] = DonutSlice{
			Label:   label,
			Percent: percents[i],
			Color:   donutColors[i%len(donutColors)],
		}
	}
	return frame
}
