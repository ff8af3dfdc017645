package perftop

import (
	"context"
	"math/rand/v2"
	"strconv"
)

// rcaWidget is the fetch and extract half shared by the RCA builders.
type rcaWidget struct {
	data    Data
	profile RCAProfile
	query   RCAQuery
	request RCARequest
	stale   *StalenessTracker
	log     Logger
	stats   *Stats
}

func newRCAWidget(data Data, profile RCAProfile, query RCAQuery, request RCARequest, log Logger, stats *Stats) rcaWidget {
	return rcaWidget{
		data:    data,
		profile: profile,
		query:   query,
		request: request,
		// tracked only: RCA records are never evicted
		stale: NewStalenessTracker(false, log, stats),
		log:   log,
		stats: stats,
	}
}

// extract pulls the record for kind out of doc and tracks its freshness.
func (r rcaWidget) extract(doc any, kind WidgetKind) (MetricRecord, error) {
	if doc == nil {
		return MetricRecord{}, newError(ErrNoData, "no RCA payload")
	}
	record, err := r.profile.Extract(doc, r.request, kind)
	if err != nil {
		return record, err
	}
	if record.Empty() {
		return record, newError(ErrNoData, "no fields")
	}
	if err := r.stale.Check(r.request.Key(), record); err != nil {
		return MetricRecord{}, err
	}
	return record, nil
}

func (r rcaWidget) fetch(ctx context.Context) any {
	return r.data.RCA(ctx, r.profile, r.query)
}

func (r rcaWidget) report(kind WidgetKind, err error) {
	r.stats.refresh(kind, err == nil)
	if err == nil {
		return
	}
	local := "default"
	if r.query.Local != nil {
		local = strconv.FormatBool(*r.query.Local)
	}
	r.log.Error("Metric was not found for request with queryParams: endpoint: %s name: %s local: %s (%v)",
		r.data.Endpoint(), r.profile.Name(), local, err)
}

// RCALineBuilder follows one RCA value over time.
type RCALineBuilder struct {
	rcaWidget
	series *SeriesSet
}

func NewRCALineBuilder(data Data, profile RCAProfile, query RCAQuery, request RCARequest, xAxis, colors []string, rnd *rand.Rand, log Logger, stats *Stats) *RCALineBuilder {
	return &RCALineBuilder{
		rcaWidget: newRCAWidget(data, profile, query, request, log, stats),
		series:    NewSeriesSet(xAxis, colors, rnd),
	}
}

func (b *RCALineBuilder) Kind() WidgetKind { return KindLine }

func (b *RCALineBuilder) Refresh(ctx context.Context) (Frame, bool) {
	frame, err := b.shape(b.fetch(ctx))
	b.report(KindLine, err)
	return frame, err == nil
}

func (b *RCALineBuilder) shape(doc any) (LineFrame, error) {
	record, err := b.extract(doc, KindLine)
	if err != nil {
		return LineFrame{}, err
	}
	values := make(map[string]float64, len(record.Fields))
	for i, field := range record.Fields {
		if len(record.Rows) > 0 && i < len(record.Rows[0]) {
			values[field] = numeric(record.Rows[0][i])
		}
	}
	b.series.Update(values)
	return LineFrame{Series: b.series.Snapshot()}, nil
}

// RCATableBuilder tabulates an RCA summary under configured columns.
type RCATableBuilder struct {
	rcaWidget
	columns []string
}

func NewRCATableBuilder(data Data, profile RCAProfile, query RCAQuery, request RCARequest, columns []string, log Logger, stats *Stats) *RCATableBuilder {
	return &RCATableBuilder{
		rcaWidget: newRCAWidget(data, profile, query, request, log, stats),
		columns:   columns,
	}
}

func (b *RCATableBuilder) Kind() WidgetKind { return KindTable }

func (b *RCATableBuilder) Refresh(ctx context.Context) (Frame, bool) {
	frame, err := b.shape(b.fetch(ctx))
	b.report(KindTable, err)
	return frame, err == nil
}

func (b *RCATableBuilder) shape(doc any) (TableFrame, error) {
	record, err := b.extract(doc, KindTable)
	if err != nil {
		return TableFrame{}, err
	}
	return TableFrame{Headers: b.columns, Rows: padColumns(record, b.columns)}, nil
}

// padColumns inserts a 0 cell at the position of every column the record
// has no field for.
func padColumns(record MetricRecord, columns []string) [][]Value {
	rows := make([][]Value, len(record.Rows))
	for r, row := range record.Rows {
		rows[r] = copyRow(row)
	}
	for i, column := range columns {
		if record.Index(column) >= 0 {
			continue
		}
		for r, row := range rows {
			if i > len(row) {
				rows[r] = append(row, Num(0))
				continue
			}
			row = append(row, Value{})
			copy(row[i+1:], row[i:])
			row[i] = Num(0)
			rows[r] = row
		}
	}
	return rows
}

// RCADonutBuilder shows the share of each RCA category.
type RCADonutBuilder struct {
	rcaWidget
}

func NewRCADonutBuilder(data Data, profile RCAProfile, query RCAQuery, request RCARequest, log Logger, stats *Stats) *RCADonutBuilder {
	return &RCADonutBuilder{newRCAWidget(data, profile, query, request, log, stats)}
}

func (b *RCADonutBuilder) Kind() WidgetKind { return KindDonut }

func (b *RCADonutBuilder) Refresh(ctx context.Context) (Frame, bool) {
	frame, err := b.shape(b.fetch(ctx))
	b.report(KindDonut, err)
	return frame, err == nil
}

func (b *RCADonutBuilder) shape(doc any) (DonutFrame, error) {
	record, err := b.extract(doc, KindDonut)
	if err != nil {
		return DonutFrame{}, err
	}
	values := make([]float64, len(record.Fields))
	if len(record.Rows) > 0 {
		for i := range values {
			if i < len(record.Rows[0]) {
				values[i] = numeric(record.Rows[0][i])
			}
		}
	}
	return donutFrame(record.Fields, values), nil
}
