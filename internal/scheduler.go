package perftop

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
)

// Sink receives frames from widget loops. Push is called from many goroutines.
type Sink interface {
	Push(id int, frame Frame)
}

// Widget is a dashboard widget: where it sits and what drives it.
type Widget struct {
	ID       int
	Title    string
	Kind     WidgetKind
	Position GridPosition
	Interval time.Duration
	Builder  Builder
}

// Scheduler runs one refresh loop per widget.
type Scheduler struct {
	widgets     []Widget
	log         Logger
	minInterval time.Duration
}

func NewScheduler(widgets []Widget, log Logger) *Scheduler {
	return &Scheduler{
		widgets:     widgets,
		log:         log,
		minInterval: RefreshDuration(0),
	}
}

// Widgets returns the widgets in dashboard order.
func (s *Scheduler) Widgets() []Widget {
	return s.widgets
}

// Run refreshes every widget immediately and then on its interval until ctx
// is cancelled. Each loop is sequential, so a widget never has two refreshes
// in flight and ticks that arrive during a slow refresh are dropped.
func (s *Scheduler) Run(ctx context.Context, sink Sink) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, w := range s.widgets {
		g.Go(func() error {
			return s.loop(ctx, w, sink)
		})
	}
	return g.Wait()
}

func (s *Scheduler) loop(ctx context.Context, w Widget, sink Sink) error {
	interval := max(w.Interval, s.minInterval)
	s.log.Debug("starting %s widget %q every %s", w.Kind, w.Title, interval)

	s.refresh(ctx, w, sink)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.refresh(ctx, w, sink)
		}
	}
}

func (s *Scheduler) refresh(ctx context.Context, w Widget, sink Sink) {
	frame, ok := w.Builder.Refresh(ctx)
	if ctx.Err() != nil {
		return
	}
	if ok {
		sink.Push(w.ID, frame)
	}
}
