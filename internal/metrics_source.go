package perftop

import (
	"encoding/json"
	"fmt"
	"strings"
)

// MetricQuery selects what the metrics API returns. Each field is a
// comma-separated list, passed to the endpoint verbatim.
type MetricQuery struct {
	Metrics    string
	Aggregates string
	Dimensions string
}

// Path is the request path for q, with or without the /_opendistro prefix.
func (q MetricQuery) Path(legacy bool) string {
	return fmt.Sprintf("%s?metrics=%s&agg=%s&dim=%s&nodes=all",
		metricsEndpoint(legacy), q.Metrics, q.Aggregates, q.Dimensions)
}

func (q MetricQuery) String() string {
	return fmt.Sprintf("metrics: %s agg: %s dim: %s", q.Metrics, q.Aggregates, q.Dimensions)
}

func metricsEndpoint(legacy bool) string {
	if legacy {
		return metricsPath
	}
	return apiPrefix + metricsPath
}

func unitsEndpoint(legacy bool) string {
	if legacy {
		return metricUnitsPath
	}
	return apiPrefix + metricUnitsPath
}

type nodeField struct {
	Name *string `json:"name"`
}

type nodeData struct {
	Fields  *[]nodeField `json:"fields"`
	Records *[][]any     `json:"records"`
}

type nodeResponse struct {
	Data      *nodeData `json:"data"`
	Timestamp any       `json:"timestamp"`
}

// ParseNodeMetrics normalizes a metrics API response into a MetricTable.
// The whole response fails when it is not JSON or is a bare error envelope.
// Nodes with an unexpected shape are skipped and reported to log.
func ParseNodeMetrics(raw string, log Logger) (MetricTable, error) {
	top, err := decodeEnvelope(raw)
	if err != nil {
		return MetricTable{}, err
	}

	table := MetricTable{}
	for name, msg := range top {
		record, err := parseNode(name, msg)
		if err != nil {
			log.Error("%v", err)
			continue
		}
		table[name] = record
	}
	return table, nil
}

// decodeEnvelope decodes the top-level object of an API response and rejects
// {"error": ...} envelopes.
func decodeEnvelope(raw string) (map[string]json.RawMessage, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, newError(ErrNoData, "HTTP(S) response was empty")
	}
	var top map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &top); err != nil {
		return nil, wrapError(err, ErrMalformed, "HTTP(S) response was not in JSON format: %s", raw)
	}
	if _, ok := top["error"]; ok && len(top) == 1 {
		return nil, newError(ErrMalformed, "failed to retrieve data, HTTP(S) response was: %s", raw)
	}
	return top, nil
}

func parseNode(name string, msg json.RawMessage) (MetricRecord, error) {
	var node nodeResponse
	if err := json.Unmarshal(msg, &node); err != nil {
		return MetricRecord{}, wrapError(err, ErrMalformed, "data returned for nodeName=%s was in an unexpected format: %s", name, msg)
	}
	if node.Data == nil || (node.Data.Fields == nil && node.Data.Records == nil) {
		return MetricRecord{}, newError(ErrMalformed, "data returned for nodeName=%s was in an unexpected format: %s", name, msg)
	}

	record := MetricRecord{Timestamp: jsonTimestamp(node.Timestamp)}
	if node.Data.Fields != nil {
		for _, f := range *node.Data.Fields {
			if f.Name == nil {
				record.Fields = append(record.Fields, "N/A")
				continue
			}
			record.Fields = append(record.Fields, *f.Name)
		}
	}
	if node.Data.Records != nil {
		for i, rec := range *node.Data.Records {
			if len(rec) != len(record.Fields) {
				return MetricRecord{}, newError(ErrMalformed, "record %d for nodeName=%s has %d values for %d fields", i, name, len(rec), len(record.Fields))
			}
			row := make([]Value, len(rec))
			for j, cell := range rec {
				row[j] = FormatNumber(cell)
			}
			record.Rows = append(record.Rows, row)
		}
	}
	return record, nil
}

// ParseUnits normalizes the units API response into field name -> unit.
func ParseUnits(raw string) (map[string]string, error) {
	top, err := decodeEnvelope(raw)
	if err != nil {
		return map[string]string{}, err
	}
	units := make(map[string]string, len(top))
	for field, msg := range top {
		var unit any
		if err := json.Unmarshal(msg, &unit); err != nil {
			continue
		}
		switch u := unit.(type) {
		case string:
			units[field] = u
		case nil:
		default:
			units[field] = fmt.Sprint(u)
		}
	}
	return units, nil
}
