package perftop

import (
	"fmt"
	"math/rand/v2"
	"sort"
)

// LineSeries is one line of a line widget: fixed x labels and a FIFO of
// samples of the same length.
type LineSeries struct {
	Title string
	Color string
	X     []string
	Y     []float64
}

// Push drops the oldest sample and appends v.
func (l *LineSeries) Push(v float64) {
	if len(l.Y) == 0 {
		return
	}
	copy(l.Y, l.Y[1:])
	l.Y[len(l.Y)-1] = v
}

// Last is the most recent sample.
func (l LineSeries) Last() float64 {
	if len(l.Y) == 0 {
		return 0
	}
	return l.Y[len(l.Y)-1]
}

// SeriesSet holds the line series of one widget, keyed by entity.
type SeriesSet struct {
	xAxis   []string
	palette []string
	rnd     *rand.Rand
	series  map[string]*LineSeries
}

// NewSeriesSet creates an empty set. Without an x axis, series keep
// DEFAULT_HISTORY samples labelled by age. rnd may be nil.
func NewSeriesSet(xAxis, palette []string, rnd *rand.Rand) *SeriesSet {
	if len(xAxis) == 0 {
		xAxis = make([]string, DEFAULT_HISTORY)
		for i := range xAxis {
			xAxis[i] = fmt.Sprint(i - DEFAULT_HISTORY + 1)
		}
	}
	return &SeriesSet{
		xAxis:   xAxis,
		palette: palette,
		rnd:     rnd,
		series:  map[string]*LineSeries{},
	}
}

// Update pushes one sample per key. Keys seen for the first time start a
// zero-filled series; series whose key is missing from values are dropped.
func (s *SeriesSet) Update(values map[string]float64) {
	for key := range s.series {
		if _, ok := values[key]; !ok {
			delete(s.series, key)
		}
	}
	for key, v := range values {
		line, ok := s.series[key]
		if !ok {
			line = &LineSeries{
				Title: key,
				Color: s.pickColor(),
				X:     s.xAxis,
				Y:     make([]float64, len(s.xAxis)),
			}
			s.series[key] = line
		}
		line.Push(v)
	}
}

// Snapshot copies every series, ordered by title.
func (s *SeriesSet) Snapshot() []LineSeries {
	keys := make([]string, 0, len(s.series))
	for key := range s.series {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	out := make([]LineSeries, 0, len(keys))
	for _, key := range keys {
		line := s.series[key]
		y := make([]float64, len(line.Y))
		copy(y, line.Y)
		out = append(out, LineSeries{Title: line.Title, Color: line.Color, X: line.X, Y: y})
	}
	return out
}

func (s *SeriesSet) pickColor() string {
	if len(s.palette) > 0 {
		return s.palette[s.intN(len(s.palette))]
	}
	return fmt.Sprintf("#%02x%02x%02x", s.intN(256), s.intN(256), s.intN(256))
}

func (s *SeriesSet) intN(n int) int {
	if s.rnd != nil {
		return s.rnd.IntN(n)
	}
	return rand.IntN(n)
}
