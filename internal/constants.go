package perftop

import (
	"time"
)

const (
	// MIN_REFRESH_INTERVAL is the floor applied to every widget's refresh interval in milliseconds
	MIN_REFRESH_INTERVAL = 5000

	// STALE_ITERATIONS is the number of polls without timestamp progress after which an entity is dropped
	STALE_ITERATIONS = 3

	// FETCH_TIMEOUT is the per-request timeout in seconds
	FETCH_TIMEOUT = 10

	// DEFAULT_HISTORY is the number of line samples kept when a widget defines no x axis
	DEFAULT_HISTORY = 30
)

const (
	DefaultEndpoint = "localhost"

	// EntityField is the synthetic column appended to flattened rows.
	EntityField = "node"

	// RCASeparator joins an RCA dimension and graph parameter into a series key.
	RCASeparator = " - "

	apiPrefix       = "/_opendistro"
	metricsPath     = "/_performanceanalyzer/metrics"
	metricUnitsPath = "/_performanceanalyzer/metrics/units"
	rcaPath         = "/_opendistro/_performanceanalyzer/rca"
)

// RefreshDuration clamps a configured interval in milliseconds to MIN_REFRESH_INTERVAL
func RefreshDuration(ms int) time.Duration {
	if ms < MIN_REFRESH_INTERVAL {
		ms = MIN_REFRESH_INTERVAL
	}
	return time.Duration(ms) * time.Millisecond
}

// FetchTimeout returns FETCH_TIMEOUT as a time.Duration
func FetchTimeout() time.Duration {
	return time.Duration(FETCH_TIMEOUT) * time.Second
}
