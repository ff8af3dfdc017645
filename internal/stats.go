package perftop

import (
	"io"
	"net/http"
	"sort"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
)

// Stats counts what the dashboard itself is doing: fetches, parse failures,
// evictions and widget refreshes. A nil *Stats is valid and records nothing.
type Stats struct {
	gatherer      prometheus.Gatherer
	fetches       *prometheus.CounterVec
	fetchDuration prometheus.Histogram
	parseErrors   *prometheus.CounterVec
	evictions     prometheus.Counter
	refreshes     *prometheus.CounterVec
}

// NewStats registers the counters on reg. Dump, Totals and Handler read
// from gatherer, which is normally the registry behind reg.
func NewStats(reg prometheus.Registerer, gatherer prometheus.Gatherer) *Stats {
	s := &Stats{
		gatherer: gatherer,
		fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "perftop_fetch_total",
			Help: "Requests made to the Performance Analyzer endpoint.",
		}, []string{"result"}),
		fetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "perftop_fetch_duration_seconds",
			Help:    "Latency of requests to the Performance Analyzer endpoint.",
			Buckets: prometheus.DefBuckets,
		}),
		parseErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "perftop_parse_errors_total",
			Help: "Responses that could not be normalized.",
		}, []string{"source"}),
		evictions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "perftop_stale_evictions_total",
			Help: "Nodes removed from a widget because their data stopped changing.",
		}),
		refreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "perftop_widget_refresh_total",
			Help: "Widget refresh cycles by widget kind and result.",
		}, []string{"kind", "result"}),
	}
	reg.MustRegister(s.fetches, s.fetchDuration, s.parseErrors, s.evictions, s.refreshes)
	return s
}

func (s *Stats) observeFetch(d time.Duration, err error) {
	if s == nil {
		return
	}
	s.fetchDuration.Observe(d.Seconds())
	if err != nil {
		s.fetches.WithLabelValues("error").Inc()
		return
	}
	s.fetches.WithLabelValues("ok").Inc()
}

func (s *Stats) parseError(source string) {
	if s == nil {
		return
	}
	s.parseErrors.WithLabelValues(source).Inc()
}

func (s *Stats) eviction() {
	if s == nil {
		return
	}
	s.evictions.Inc()
}

func (s *Stats) refresh(kind WidgetKind, ok bool) {
	if s == nil {
		return
	}
	result := "ok"
	if !ok {
		result = "empty"
	}
	s.refreshes.WithLabelValues(kind.String(), result).Inc()
}

// Handler serves the counters in the Prometheus exposition format.
func (s *Stats) Handler() http.Handler {
	return promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})
}

// Dump writes every counter to w in the text exposition format.
func (s *Stats) Dump(w io.Writer) error {
	if s == nil {
		return nil
	}
	mfs, err := s.gatherer.Gather()
	if err != nil {
		return err
	}
	enc := expfmt.NewEncoder(w, expfmt.FmtText)
	for _, mf := range mfs {
		if err := enc.Encode(mf); err != nil {
			return err
		}
	}
	return nil
}

// Totals sums each counter family across its labels. Histograms report their sample count.
func (s *Stats) Totals() map[string]float64 {
	totals := map[string]float64{}
	if s == nil {
		return totals
	}
	mfs, err := s.gatherer.Gather()
	if err != nil {
		return totals
	}
	for _, mf := range mfs {
		totals[mf.GetName()] = familyTotal(mf)
	}
	return totals
}

func familyTotal(mf *dto.MetricFamily) float64 {
	total := 0.0
	for _, m := range mf.GetMetric() {
		switch mf.GetType() {
		case dto.MetricType_COUNTER:
			total += m.GetCounter().GetValue()
		case dto.MetricType_HISTOGRAM:
			total += float64(m.GetHistogram().GetSampleCount())
		case dto.MetricType_GAUGE:
			total += m.GetGauge().GetValue()
		}
	}
	return total
}

// Summary is a one-line rendering of Totals for the exit log.
func (s *Stats) Summary() string {
	totals := s.Totals()
	names := make([]string, 0, len(totals))
	for name := range totals {
		names = append(names, name)
	}
	sort.Strings(names)
	out := ""
	for i, name := range names {
		if i > 0 {
			out += " "
		}
		out += name + "=" + formatTotal(totals[name])
	}
	return out
}

func formatTotal(f float64) string {
	return Num(f).String()
}
