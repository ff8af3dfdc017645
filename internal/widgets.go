package perftop

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
)

// Builder produces the frames of one widget. Refresh fetches and shapes;
// it reports false, after logging why, when there is nothing to draw.
type Builder interface {
	Kind() WidgetKind
	Refresh(ctx context.Context) (Frame, bool)
}

// QueryParams are the metrics API parameters of one widget.
type QueryParams struct {
	Metrics          string   `mapstructure:"metrics" yaml:"metrics"`
	Aggregates       string   `mapstructure:"aggregates" yaml:"aggregates"`
	Dimensions       string   `mapstructure:"dimensions" yaml:"dimensions"`
	SortBy           string   `mapstructure:"sortBy" yaml:"sortBy,omitempty"`
	NodeName         string   `mapstructure:"nodeName" yaml:"nodeName,omitempty"`
	DimensionFilters []string `mapstructure:"dimensionFilters" yaml:"dimensionFilters,omitempty"`
}

func (q QueryParams) query() MetricQuery {
	return MetricQuery{Metrics: q.Metrics, Aggregates: q.Aggregates, Dimensions: q.Dimensions}
}

// selectRows applies the node and dimension filters of q.
func (q QueryParams) selectRows(t MetricTable) (MetricTable, error) {
	if q.NodeName != "" {
		var err error
		if t, err = FilterNode(t, q.NodeName); err != nil {
			return t, err
		}
	}
	if len(q.DimensionFilters) > 0 {
		t = FilterDimensions(t, q.DimensionFilters)
	}
	return t, nil
}

// metricWidget is the fetch and prune half shared by the metrics builders.
type metricWidget struct {
	data   Data
	params QueryParams
	stale  *StalenessTracker
	log    Logger
	stats  *Stats
}

func newMetricWidget(data Data, params QueryParams, log Logger, stats *Stats) metricWidget {
	return metricWidget{
		data:   data,
		params: params,
		stale:  NewStalenessTracker(true, log, stats),
		log:    log,
		stats:  stats,
	}
}

// flatten prunes stale nodes, applies the filters and flattens.
func (m metricWidget) flatten(t MetricTable) (ShapedTable, error) {
	t, err := m.params.selectRows(m.stale.Prune(t))
	if err != nil {
		return ShapedTable{}, err
	}
	shaped := Flatten(t)
	if shaped.Empty() {
		return shaped, newError(ErrNoData, "no rows")
	}
	return shaped, nil
}

func (m metricWidget) fetch(ctx context.Context) MetricTable {
	return m.data.NodeMetrics(ctx, m.params.query())
}

func (m metricWidget) report(kind WidgetKind, err error) {
	m.stats.refresh(kind, err == nil)
	if err == nil {
		return
	}
	if IsCode(err, ErrAmbiguous) {
		m.log.Error("%v", err)
		return
	}
	m.log.Error("Metric was not found for request with queryParams: endpoint: %s %s (%v)",
		m.data.Endpoint(), m.params.query(), err)
}

// BarBuilder sums one metric per dimension value.
type BarBuilder struct {
	metricWidget
}

func NewBarBuilder(data Data, params QueryParams, log Logger, stats *Stats) *BarBuilder {
	return &BarBuilder{newMetricWidget(data, params, log, stats)}
}

func (b *BarBuilder) Kind() WidgetKind { return KindBar }

func (b *BarBuilder) Refresh(ctx context.Context) (Frame, bool) {
	frame, err := b.shape(b.fetch(ctx))
	b.report(KindBar, err)
	return frame, err == nil
}

func (b *BarBuilder) shape(t MetricTable) (BarFrame, error) {
	shaped, err := b.flatten(t)
	if err != nil {
		return BarFrame{}, err
	}
	labels, values, err := SumByDimension(shaped, b.params.Dimensions, b.params.Metrics)
	if err != nil {
		return BarFrame{}, err
	}
	return BarFrame{Labels: labels, Values: values}, nil
}

// DonutBuilder shows each dimension value's share of one metric.
type DonutBuilder struct {
	metricWidget
}

func NewDonutBuilder(data Data, params QueryParams, log Logger, stats *Stats) *DonutBuilder {
	return &DonutBuilder{newMetricWidget(data, params, log, stats)}
}

func (b *DonutBuilder) Kind() WidgetKind { return KindDonut }

func (b *DonutBuilder) Refresh(ctx context.Context) (Frame, bool) {
	frame, err := b.shape(b.fetch(ctx))
	b.report(KindDonut, err)
	return frame, err == nil
}

func (b *DonutBuilder) shape(t MetricTable) (DonutFrame, error) {
	shaped, err := b.flatten(t)
	if err != nil {
		return DonutFrame{}, err
	}
	labels, values, err := SumByDimension(shaped, b.params.Dimensions, b.params.Metrics)
	if err != nil {
		return DonutFrame{}, err
	}
	return donutFrame(labels, values), nil
}

// TableBuilder lists every row, largest sortBy first.
type TableBuilder struct {
	metricWidget
	columns []string
	headers []string
}

// NewTableBuilder creates a table whose headers carry the unit of each column where units knows it.
func NewTableBuilder(data Data, params QueryParams, units map[string]string, log Logger, stats *Stats) *TableBuilder {
	columns := tableColumns(params)
	return &TableBuilder{
		metricWidget: newMetricWidget(data, params, log, stats),
		columns:      columns,
		headers:      withUnits(columns, units),
	}
}

func tableColumns(params QueryParams) []string {
	var columns []string
	for _, list := range []string{params.Dimensions, params.Metrics} {
		for _, c := range strings.Split(list, ",") {
			if c = strings.TrimSpace(c); c != "" {
				columns = append(columns, c)
			}
		}
	}
	return append(columns, EntityField)
}

func withUnits(columns []string, units map[string]string) []string {
	headers := make([]string, len(columns))
	for i, c := range columns {
		headers[i] = c
		if unit, ok := units[c]; ok && unit != "" {
			headers[i] = fmt.Sprintf("%s (%s)", c, unit)
		}
	}
	return headers
}

func (b *TableBuilder) Kind() WidgetKind { return KindTable }

func (b *TableBuilder) Refresh(ctx context.Context) (Frame, bool) {
	frame, err := b.shape(b.fetch(ctx))
	b.report(KindTable, err)
	return frame, err == nil
}

func (b *TableBuilder) shape(t MetricTable) (TableFrame, error) {
	shaped, err := b.flatten(t)
	if err != nil {
		return TableFrame{}, err
	}
	if b.params.SortBy != "" {
		sorted, err := SortBy(shaped, b.params.SortBy)
		if err != nil {
			b.log.Warn("%v", err)
		} else {
			shaped = sorted
		}
	}
	return TableFrame{Headers: b.headers, Rows: project(shaped, b.columns)}, nil
}

// project reorders rows to columns. Rows are kept as they are when the
// response does not have every column.
func project(s ShapedTable, columns []string) [][]Value {
	idx := make([]int, len(columns))
	for i, c := range columns {
		if idx[i] = s.Index(c); idx[i] < 0 {
			return s.Rows
		}
	}
	rows := make([][]Value, len(s.Rows))
	for r, row := range s.Rows {
		rows[r] = make([]Value, len(idx))
		for i, j := range idx {
			rows[r][i] = row[j]
		}
	}
	return rows
}

// LineBuilder draws one line per node: the sum of the metric over that node's rows.
type LineBuilder struct {
	metricWidget
	series *SeriesSet
}

func NewLineBuilder(data Data, params QueryParams, xAxis, colors []string, rnd *rand.Rand, log Logger, stats *Stats) *LineBuilder {
	return &LineBuilder{
		metricWidget: newMetricWidget(data, params, log, stats),
		series:       NewSeriesSet(xAxis, colors, rnd),
	}
}

func (b *LineBuilder) Kind() WidgetKind { return KindLine }

func (b *LineBuilder) Refresh(ctx context.Context) (Frame, bool) {
	frame, err := b.shape(b.fetch(ctx))
	b.report(KindLine, err)
	return frame, err == nil
}

func (b *LineBuilder) shape(t MetricTable) (LineFrame, error) {
	t, err := b.params.selectRows(b.stale.Prune(t))
	if err != nil {
		return LineFrame{}, err
	}
	if len(t) == 0 {
		return LineFrame{}, newError(ErrNoData, "no nodes")
	}
	values := make(map[string]float64, len(t))
	for name, record := range t {
		idx := record.Index(b.params.Metrics)
		sum := 0.0
		for _, row := range record.Rows {
			if idx >= 0 {
				sum += numeric(row[idx])
			}
		}
		values[name] = RoundNumber(sum)
	}
	b.series.Update(values)
	return LineFrame{Series: b.series.Snapshot()}, nil
}
