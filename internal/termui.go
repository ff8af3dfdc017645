package perftop

import (
	"context"
	"fmt"
	"strings"

	ui "github.com/gizak/termui/v3"
	"github.com/gizak/termui/v3/widgets"
	"golang.org/x/sync/errgroup"
)

// termuiSink queues frames for the termui event loop.
type termuiSink struct {
	frames chan frameMsg
	done   <-chan struct{}
}

func (s *termuiSink) Push(id int, frame Frame) {
	select {
	case s.frames <- frameMsg{id: id, frame: frame}:
	case <-s.done:
	}
}

// termuiWidget is one dashboard widget drawn with termui.
type termuiWidget struct {
	widget   Widget
	drawable ui.Drawable
	block    *ui.Block
	seen     bool
}

func newTermuiWidget(w Widget) *termuiWidget {
	tw := &termuiWidget{widget: w}
	switch w.Kind {
	case KindBar:
		bc := widgets.NewBarChart()
		bc.BarColors = []ui.Color{ui.ColorCyan}
		bc.NumStyles = []ui.Style{ui.NewStyle(ui.ColorBlack)}
		tw.drawable, tw.block = bc, &bc.Block
	case KindLine:
		plot := widgets.NewPlot()
		plot.AxesColor = ui.ColorWhite
		tw.drawable, tw.block = plot, &plot.Block
	case KindTable:
		tbl := widgets.NewTable()
		tbl.TextStyle = ui.NewStyle(ui.ColorWhite)
		tbl.RowSeparator = false
		tbl.FillRow = true
		tw.drawable, tw.block = tbl, &tbl.Block
	case KindDonut:
		pie := widgets.NewPieChart()
		tw.drawable, tw.block = pie, &pie.Block
	}
	tw.block.Title = w.Title
	return tw
}

// apply copies a frame into the termui widget. It reports false when the
// frame has nothing termui can draw.
func (tw *termuiWidget) apply(frame Frame) bool {
	switch f := frame.(type) {
	case BarFrame:
		bc := tw.drawable.(*widgets.BarChart)
		bc.Labels = f.Labels
		bc.Data = f.Values
		if n := len(f.Values); n > 0 {
			bc.BarWidth = max((tw.block.Inner.Dx()-n)/n, 3)
		}
	case LineFrame:
		if len(f.Series) == 0 || len(f.Series[0].Y) < 2 {
			return false
		}
		plot := tw.drawable.(*widgets.Plot)
		plot.Data = make([][]float64, len(f.Series))
		plot.LineColors = make([]ui.Color, len(f.Series))
		titles := make([]string, len(f.Series))
		for i, s := range f.Series {
			plot.Data[i] = s.Y
			plot.LineColors[i] = termuiColor(s.Color)
			titles[i] = fmt.Sprintf("%s: %s", s.Title, Num(s.Last()))
		}
		plot.Title = tw.widget.Title + " (" + strings.Join(titles, ", ") + ")"
	case TableFrame:
		tbl := tw.drawable.(*widgets.Table)
		tbl.Rows = append([][]string{append([]string(nil), f.Headers...)}, CommaDelimit(f.Rows)...)
	case DonutFrame:
		sum := 0.0
		for _, s := range f.Slices {
			sum += s.Percent
		}
		if sum == 0 {
			return false
		}
		pie := tw.drawable.(*widgets.PieChart)
		pie.Data = make([]float64, len(f.Slices))
		pie.Colors = make([]ui.Color, len(f.Slices))
		for i, s := range f.Slices {
			pie.Data[i] = s.Percent
			pie.Colors[i] = termuiColor(s.Color)
		}
		slices := f.Slices
		pie.LabelFormatter = func(i int, v float64) string {
			return fmt.Sprintf("%s %.0f%%", slices[i].Label, v)
		}
	default:
		return false
	}
	tw.seen = true
	return true
}

// RunTermuiDashboard draws the dashboard with termui until the user quits or ctx is done.
func RunTermuiDashboard(ctx context.Context, d *Dashboard, sched *Scheduler) error {
	if err := ui.Init(); err != nil {
		return fmt.Errorf("failed to initialize termui: %w", err)
	}
	defer ui.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	tws := map[int]*termuiWidget{}
	for _, w := range sched.Widgets() {
		tws[w.ID] = newTermuiWidget(w)
	}
	layout := func(width, height int) {
		for _, tw := range tws {
			r := GridRect(d.GridOptions, tw.widget.Position, width, height)
			tw.drawable.SetRect(r.X0, r.Y0, r.X1, r.Y1)
		}
	}
	render := func() {
		ui.Clear()
		for _, tw := range tws {
			if tw.seen {
				ui.Render(tw.drawable)
			} else {
				ui.Render(tw.block)
			}
		}
	}
	layout(ui.TerminalDimensions())
	render()

	sink := &termuiSink{frames: make(chan frameMsg), done: ctx.Done()}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return sched.Run(gctx, sink)
	})

	uiEvents := ui.PollEvents()
loop:
	for {
		select {
		case e := <-uiEvents:
			switch e.ID {
			case "q", "<Escape>", "<C-c>":
				break loop
			case "<Resize>":
				payload := e.Payload.(ui.Resize)
				layout(payload.Width, payload.Height)
				render()
			}
		case m := <-sink.frames:
			tw, ok := tws[m.id]
			if ok && tw.apply(m.frame) {
				ui.Render(tw.drawable)
			}
		case <-ctx.Done():
			break loop
		}
	}
	cancel()
	return g.Wait()
}
