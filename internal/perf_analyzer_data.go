package perftop

import (
	"context"
)

// Data is where widgets get their numbers from.
// Failures are reported to the log and come back as empty results.
type Data interface {
	NodeMetrics(ctx context.Context, q MetricQuery) MetricTable
	Units(ctx context.Context) map[string]string
	RCA(ctx context.Context, profile RCAProfile, q RCAQuery) any
	Endpoint() string
}

// PerfAnalyzerData reads the metrics and RCA APIs of one Performance Analyzer endpoint.
type PerfAnalyzerData struct {
	fetcher *Fetcher
	legacy  bool
	log     Logger
	stats   *Stats
}

// NewPerfAnalyzerData creates a Data for endpoint. With legacy set the
// metrics API is requested without the /_opendistro prefix.
func NewPerfAnalyzerData(endpoint string, legacy bool, log Logger, stats *Stats) (*PerfAnalyzerData, error) {
	fetcher, err := NewFetcher(endpoint, log, stats)
	if err != nil {
		return nil, err
	}
	return &PerfAnalyzerData{fetcher: fetcher, legacy: legacy, log: log, stats: stats}, nil
}

func (p *PerfAnalyzerData) Endpoint() string {
	return p.fetcher.Endpoint()
}

func (p *PerfAnalyzerData) NodeMetrics(ctx context.Context, q MetricQuery) MetricTable {
	body := p.fetcher.Fetch(ctx, q.Path(p.legacy))
	if body == "" {
		return MetricTable{}
	}
	table, err := ParseNodeMetrics(body, p.log)
	if err != nil {
		p.stats.parseError("metrics")
		p.log.Error("Failed to retrieve data for metrics: %v", err)
		return MetricTable{}
	}
	return table
}

func (p *PerfAnalyzerData) Units(ctx context.Context) map[string]string {
	body := p.fetcher.Fetch(ctx, unitsEndpoint(p.legacy))
	if body == "" {
		p.log.Error("Failed to retrieve units for metrics. HTTP(S) response was empty.")
		return map[string]string{}
	}
	units, err := ParseUnits(body)
	if err != nil {
		p.stats.parseError("units")
		p.log.Error("Failed to retrieve units for metrics: %v", err)
		return map[string]string{}
	}
	return units
}

func (p *PerfAnalyzerData) RCA(ctx context.Context, profile RCAProfile, q RCAQuery) any {
	body := p.fetcher.Fetch(ctx, profile.Path(q))
	if body == "" {
		p.log.Error("empty response from server")
		return nil
	}
	doc, err := ParseRCA(body)
	if err != nil {
		p.stats.parseError("rca")
		p.log.Error("Failed to retrieve data for %s: %v", profile.Name(), err)
		return nil
	}
	return doc
}

// Check makes one units request to see whether the endpoint answers at all.
// The dashboard starts either way; this only puts the outcome in the log.
func (p *PerfAnalyzerData) Check(ctx context.Context) error {
	body, err := p.fetcher.Get(ctx, unitsEndpoint(p.legacy))
	if err != nil {
		return err
	}
	if _, err := ParseUnits(body); err != nil {
		return err
	}
	p.log.Info("Found Performance Analyzer at %s", p.Endpoint())
	return nil
}
