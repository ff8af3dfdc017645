package perftop

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/PaesslerAG/jsonpath"
)

const (
	TemperatureProfile = "AllTemperatureDimensions"
	HeapUsageProfile   = "HighHeapUsageClusterRca"
)

// RCAQuery selects one RCA payload. A nil Local uses the profile default.
type RCAQuery struct {
	Name  string
	Local *bool
}

// RCARequest is what a widget wants out of an RCA payload.
type RCARequest struct {
	Dimensions  []string
	GraphParams string
}

// Key identifies the request for staleness tracking and line series.
func (r RCARequest) Key() string {
	return strings.Join(r.Dimensions, ",") + RCASeparator + r.GraphParams
}

// RCAProfile extracts widget data from one kind of RCA payload.
type RCAProfile interface {
	Name() string
	Path(q RCAQuery) string
	Extract(doc any, req RCARequest, kind WidgetKind) (MetricRecord, error)
}

// ProfileFor returns the profile for an RCA name. "" selects the temperature profile.
func ProfileFor(name string) (RCAProfile, error) {
	switch name {
	case "", TemperatureProfile:
		return temperatureProfile{}, nil
	case HeapUsageProfile:
		return heapProfile{}, nil
	}
	return nil, newError(ErrConfig, "unsupported RCA name %q", name)
}

// ParseRCA decodes an RCA response body, rejecting empty bodies and error envelopes.
func ParseRCA(raw string) (any, error) {
	if _, err := decodeEnvelope(raw); err != nil {
		return nil, err
	}
	var doc any
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, wrapError(err, ErrMalformed, "HTTP(S) response was not in JSON format: %s", raw)
	}
	return doc, nil
}

func rcaRequestPath(name string, local *bool) string {
	path := fmt.Sprintf("%s?name=%s", rcaPath, name)
	if local != nil {
		path += fmt.Sprintf("&local=%t", *local)
	}
	return path
}

func singleGraphParam(req RCARequest) error {
	if len(strings.Split(req.GraphParams, ",")) > 1 {
		return newError(ErrAmbiguous, "too many graph parameters to plot: %s", req.GraphParams)
	}
	return nil
}

type temperatureProfile struct{}

func (temperatureProfile) Name() string { return TemperatureProfile }

func (p temperatureProfile) Path(q RCAQuery) string {
	name := q.Name
	if name == "" {
		name = p.Name()
	}
	local := q.Local
	if local == nil {
		t := true
		local = &t
	}
	return rcaRequestPath(name, local)
}

func (p temperatureProfile) Extract(doc any, req RCARequest, kind WidgetKind) (MetricRecord, error) {
	raw, err := jsonpath.Get("$.AllTemperatureDimensions[0].NodeLevelDimensionalSummary", doc)
	if err != nil {
		return MetricRecord{}, wrapError(err, ErrMalformed, "no NodeLevelDimensionalSummary in %s payload", p.Name())
	}
	summaries := asSlice(raw)
	if len(summaries) == 0 {
		return MetricRecord{}, newError(ErrNoData, "failed to retrieve data for %s", p.Name())
	}
	if err := singleGraphParam(req); err != nil {
		return MetricRecord{}, err
	}

	for _, s := range summaries {
		summary := asMap(s)
		dim, ok := summary["dimension"].(string)
		if !ok || indexOf(req.Dimensions, dim) < 0 {
			continue
		}
		record := MetricRecord{Timestamp: jsonTimestamp(summary["timestamp"])}
		zones := asSlice(summary["NodeLevelZoneSummary"])

		switch kind {
		case KindLine:
			record.Fields = []string{dim + RCASeparator + req.GraphParams}
			record.Rows = [][]Value{{leaf(summary, req.GraphParams)}}
		case KindDonut:
			row := []Value{}
			for _, z := range zones {
				zone := asMap(z)
				record.Fields = append(record.Fields, fmt.Sprint(zone["zone"]))
				row = append(row, FormatNumber(len(asSlice(zone["all_shards"]))))
			}
			record.Rows = [][]Value{row}
		case KindTable:
			record.Fields, record.Rows = zoneShards(zones, req.GraphParams)
		default:
			return MetricRecord{}, newError(ErrConfig, "%s cannot be drawn as %s", p.Name(), kind)
		}
		return record, nil
	}
	return MetricRecord{}, newError(ErrNoData, "no %s summary for dimension %s", p.Name(), strings.Join(req.Dimensions, ","))
}

// zoneShards tabulates every shard in the named zone: index, shard and one
// column per temperature dimension of the first shard.
func zoneShards(zones []any, zoneName string) ([]string, [][]Value) {
	for _, z := range zones {
		zone := asMap(z)
		if zone["zone"] != zoneName {
			continue
		}
		shards := asSlice(zone["all_shards"])
		if len(shards) == 0 {
			return nil, nil
		}
		fields := []string{"index_name", "shard_id"}
		for _, t := range asSlice(asMap(shards[0])["temperature"]) {
			fields = append(fields, fmt.Sprint(asMap(t)["dimension"]))
		}
		var rows [][]Value
		for _, s := range shards {
			shard := asMap(s)
			row := []Value{cell(shard["index_name"]), cell(shard["shard_id"])}
			for _, t := range asSlice(shard["temperature"]) {
				row = append(row, FormatNumber(asMap(t)["value"]))
			}
			rows = append(rows, padRow(row, len(fields)))
		}
		return fields, rows
	}
	return nil, nil
}

type heapProfile struct{}

func (heapProfile) Name() string { return HeapUsageProfile }

func (p heapProfile) Path(q RCAQuery) string {
	name := q.Name
	if name == "" {
		name = p.Name()
	}
	return rcaRequestPath(name, q.Local)
}

func (p heapProfile) Extract(doc any, req RCARequest, kind WidgetKind) (MetricRecord, error) {
	raw, err := jsonpath.Get("$.HighHeapUsageClusterRca[0]", doc)
	if err != nil {
		return MetricRecord{}, wrapError(err, ErrMalformed, "no %s element in payload", p.Name())
	}
	element := asMap(raw)
	if len(element) == 0 {
		return MetricRecord{}, newError(ErrNoData, "failed to retrieve data for %s", p.Name())
	}
	if err := singleGraphParam(req); err != nil {
		return MetricRecord{}, err
	}

	record := MetricRecord{Timestamp: jsonTimestamp(element["timestamp"])}
	cluster := asMap(first(element["HotClusterSummary"]))
	if cluster == nil {
		return record, newError(ErrNoData, "the state of heap usage is healthy")
	}
	node := asMap(first(cluster["HotNodeSummary"]))
	resource := asMap(first(node["HotResourceSummary"]))

	switch kind {
	case KindLine:
		dim := p.Name()
		if len(req.Dimensions) > 0 && req.Dimensions[0] != "" {
			dim = req.Dimensions[0]
		}
		record.Fields = []string{dim + RCASeparator + req.GraphParams}
		record.Rows = [][]Value{{leaf(resource, req.GraphParams)}}
	case KindDonut:
		total, _ := jsonFloat(cluster["number_of_nodes"])
		unhealthy, _ := jsonFloat(cluster["number_of_unhealthy_nodes"])
		record.Fields = []string{"healthy_nodes", "unhealthy_nodes"}
		record.Rows = [][]Value{{FormatNumber(total - unhealthy), FormatNumber(unhealthy)}}
	case KindTable:
		switch req.GraphParams {
		case "TopConsumerSummary":
			record.Fields = []string{"name", "value"}
			for _, c := range asSlice(resource["TopConsumerSummary"]) {
				consumer := asMap(c)
				record.Rows = append(record.Rows, []Value{cell(consumer["name"]), FormatNumber(consumer["value"])})
			}
		case "generalSummary":
			record.Fields = []string{"rca_name", "node_id", "host_address", "resource_type", "resource_metric", "threshold", "value"}
			record.Rows = [][]Value{{
				cell(element["rca_name"]),
				cell(node["node_id"]),
				cell(node["host_address"]),
				cell(resource["resource_type"]),
				cell(resource["resource_metric"]),
				FormatNumber(resource["threshold"]),
				FormatNumber(resource["value"]),
			}}
		default:
			return record, newError(ErrConfig, "unsupported table for %s: %s", p.Name(), req.GraphParams)
		}
	default:
		return record, newError(ErrConfig, "%s cannot be drawn as %s", p.Name(), kind)
	}
	return record, nil
}

// leaf is obj[key] through the canonical formatter, or "null" when absent.
func leaf(obj map[string]any, key string) Value {
	v, ok := obj[key]
	if !ok {
		return Str("null")
	}
	return FormatNumber(v)
}

// cell converts an identifier-like JSON leaf without rounding.
func cell(raw any) Value {
	switch t := raw.(type) {
	case nil:
		return Str("null")
	case string:
		return Str(t)
	case float64:
		return Num(t)
	}
	return Str(fmt.Sprint(raw))
}

func padRow(row []Value, n int) []Value {
	for len(row) < n {
		row = append(row, Str("null"))
	}
	return row[:n]
}

func asMap(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

func asSlice(v any) []any {
	s, _ := v.([]any)
	return s
}

// first unwraps a summary that may be either an object or a list of objects.
func first(v any) any {
	if s, ok := v.([]any); ok {
		if len(s) == 0 {
			return nil
		}
		return s[0]
	}
	return v
}
