package perftop

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatsCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	stats := NewStats(reg, reg)

	stats.observeFetch(10*time.Millisecond, nil)
	stats.observeFetch(20*time.Millisecond, errors.New("refused"))
	stats.parseError("metrics")
	stats.eviction()
	stats.refresh(KindTable, true)
	stats.refresh(KindTable, false)
	stats.refresh(KindDonut, true)

	assert.Equal(t, 1.0, testutil.ToFloat64(stats.fetches.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(stats.fetches.WithLabelValues("error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(stats.parseErrors.WithLabelValues("metrics")))
	assert.Equal(t, 1.0, testutil.ToFloat64(stats.evictions))
	assert.Equal(t, 1.0, testutil.ToFloat64(stats.refreshes.WithLabelValues("tables", "empty")))

	totals := stats.Totals()
	assert.Equal(t, 2.0, totals["perftop_fetch_total"])
	assert.Equal(t, 2.0, totals["perftop_fetch_duration_seconds"])
	assert.Equal(t, 3.0, totals["perftop_widget_refresh_total"])

	assert.Contains(t, stats.Summary(), "perftop_fetch_total=2 ")
	assert.Contains(t, stats.Summary(), "perftop_stale_evictions_total=1")
}

func TestStatsWrappedRegisterer(t *testing.T) {
	reg := prometheus.NewRegistry()
	stats := NewStats(prometheus.WrapRegistererWith(prometheus.Labels{"cluster": "logs"}, reg), reg)
	stats.parseError("units")

	var buf bytes.Buffer
	require.NoError(t, stats.Dump(&buf))
	assert.Contains(t, buf.String(), `perftop_parse_errors_total{cluster="logs",source="units"} 1`)
	assert.Equal(t, 1.0, stats.Totals()["perftop_parse_errors_total"])
}

func TestStatsNil(t *testing.T) {
	var stats *Stats
	assert.NotPanics(t, func() {
		stats.observeFetch(time.Second, nil)
		stats.parseError("rca")
		stats.eviction()
		stats.refresh(KindLine, true)
	})
	assert.Empty(t, stats.Totals())
	assert.Equal(t, "", stats.Summary())
	assert.NoError(t, stats.Dump(io.Discard))
}

func TestStatsDump(t *testing.T) {
	reg := prometheus.NewRegistry()
	stats := NewStats(reg, reg)
	stats.refresh(KindBar, true)

	var buf bytes.Buffer
	require.NoError(t, stats.Dump(&buf))
	assert.Contains(t, buf.String(), "# TYPE perftop_widget_refresh_total counter")
	assert.Contains(t, buf.String(), `perftop_widget_refresh_total{kind="bars",result="ok"} 1`)
}

func TestStatsHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	stats := NewStats(reg, reg)
	stats.eviction()

	srv := httptest.NewServer(stats.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "perftop_stale_evictions_total 1")
}
