package perftop

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

const temperaturePayload = `{"AllTemperatureDimensions":[{"NodeLevelDimensionalSummary":[
	{"dimension":"Heap_AllocRate","mean":"1","total":"2","numShards":"1","timestamp":900,"NodeLevelZoneSummary":[]},
	{"dimension":"CPU_Utilization","mean":"4.5","total":"120.333","numShards":"3","timestamp":1000,
	 "NodeLevelZoneSummary":[
		{"zone":"HOT","all_shards":[
			{"index_name":"logs","shard_id":0,"temperature":[{"dimension":"CPU_Utilization","value":"9"},{"dimension":"Heap_AllocRate","value":"2.5"}]},
			{"index_name":"logs","shard_id":1,"temperature":[{"dimension":"CPU_Utilization","value":"8"}]}]},
		{"zone":"WARM","all_shards":[{"index_name":"metrics","shard_id":2,"temperature":[]}]},
		{"zone":"LUKEWARM","all_shards":[]},
		{"zone":"COLD","all_shards":[]}]}]}]}`

const heapPayload = `{"HighHeapUsageClusterRca":[{"rca_name":"HighHeapUsageClusterRca","state":"unhealthy","timestamp":2000,
	"HotClusterSummary":[{"number_of_nodes":5,"number_of_unhealthy_nodes":2,
		"HotNodeSummary":[{"node_id":"abc","host_address":"10.0.0.1",
			"HotResourceSummary":[{"resource_type":"old gen","resource_metric":"heap","threshold":0.65,"value":0.875,
				"TopConsumerSummary":[{"name":"CACHE_FIELDDATA_SIZE","value":5432},{"name":"CACHE_REQUEST_SIZE","value":12.5}]}]}]}]}]}`

const healthyHeapPayload = `{"HighHeapUsageClusterRca":[{"rca_name":"HighHeapUsageClusterRca","state":"healthy","timestamp":2000}]}`

func parseFixture(t *testing.T, raw string) any {
	t.Helper()
	doc, err := ParseRCA(raw)
	require.NoError(t, err)
	return doc
}

// fakeData serves canned responses. The last table (or doc) repeats once
// the list is used up.
type fakeData struct {
	mu        sync.Mutex
	tables    []MetricTable
	docs      []any
	units     map[string]string
	queries   []MetricQuery
	rcaCalls  int
	unitCalls int
}

func (f *fakeData) NodeMetrics(_ context.Context, q MetricQuery) MetricTable {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, q)
	if len(f.tables) == 0 {
		return MetricTable{}
	}
	t := f.tables[0]
	if len(f.tables) > 1 {
		f.tables = f.tables[1:]
	}
	return t
}

func (f *fakeData) Units(context.Context) map[string]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.unitCalls++
	return f.units
}

func (f *fakeData) RCA(context.Context, RCAProfile, RCAQuery) any {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rcaCalls++
	if len(f.docs) == 0 {
		return nil
	}
	d := f.docs[0]
	if len(f.docs) > 1 {
		f.docs = f.docs[1:]
	}
	return d
}

func (f *fakeData) Endpoint() string {
	return "fake:9600"
}

func cpuRecord(ts int64, rows ...[]Value) MetricRecord {
	return MetricRecord{Fields: []string{"Operation", "CPU_Utilization"}, Rows: rows, Timestamp: ts}
}
