package perftop

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

//go:embed presets/*.json
var presets embed.FS

// Mode selects which API a dashboard reads.
type Mode string

const (
	ModeMetrics Mode = "metrics"
	ModeRCA     Mode = "rca"
)

func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(s)) {
	case ModeMetrics:
		return ModeMetrics, nil
	case ModeRCA:
		return ModeRCA, nil
	}
	return "", newError(ErrConfig, "unknown mode %q, expected metrics or rca", s)
}

type GridOptions struct {
	Rows int `mapstructure:"rows" yaml:"rows"`
	Cols int `mapstructure:"cols" yaml:"cols"`
}

type GridPosition struct {
	Row     int `mapstructure:"row" yaml:"row"`
	Col     int `mapstructure:"col" yaml:"col"`
	RowSpan int `mapstructure:"rowSpan" yaml:"rowSpan"`
	ColSpan int `mapstructure:"colSpan" yaml:"colSpan"`
}

// WidgetOptions are the render options of one widget.
type WidgetOptions struct {
	Label           string       `mapstructure:"label" yaml:"label,omitempty"`
	RefreshInterval int          `mapstructure:"refreshInterval" yaml:"refreshInterval"`
	GridPosition    GridPosition `mapstructure:"gridPosition" yaml:"gridPosition"`
	XAxis           []string     `mapstructure:"xAxis" yaml:"xAxis,omitempty"`
	Colors          []string     `mapstructure:"colors" yaml:"colors,omitempty"`
	Columns         string       `mapstructure:"columns" yaml:"columns,omitempty"`
}

// GraphConfig is one metrics mode widget.
type GraphConfig struct {
	QueryParams QueryParams   `mapstructure:"queryParams" yaml:"queryParams"`
	Options     WidgetOptions `mapstructure:"options" yaml:"options"`
}

// RCAGraphConfig is one RCA mode widget.
type RCAGraphConfig struct {
	GraphType   string        `mapstructure:"graphType" yaml:"graphType"`
	Dimension   []string      `mapstructure:"dimension" yaml:"dimension"`
	GraphParams string        `mapstructure:"graphParams" yaml:"graphParams"`
	Options     WidgetOptions `mapstructure:"options" yaml:"options"`
}

// RCAParams pick the RCA payload for every widget of an RCA dashboard.
type RCAParams struct {
	Name  string `mapstructure:"name" yaml:"name"`
	Local *bool  `mapstructure:"local" yaml:"local,omitempty"`
}

// Dashboard is a loaded dashboard configuration. It is not modified after loading.
type Dashboard struct {
	Name        string                            `yaml:"name"`
	Endpoint    string                            `yaml:"endpoint"`
	Mode        Mode                              `yaml:"mode"`
	GridOptions GridOptions                       `yaml:"gridOptions"`
	Graphs      map[string]map[string]GraphConfig `yaml:"graphs,omitempty"`
	RCAParams   RCAParams                         `yaml:"queryParams,omitempty"`
	RCAGraphs   []RCAGraphConfig                  `yaml:"rcaGraphs,omitempty"`
}

// LoadOptions are the command line overrides for a dashboard.
type LoadOptions struct {
	Dashboard string
	Endpoint  string
	NodeName  string
	Mode      string
}

// Presets lists the dashboards built into the binary.
func Presets() []string {
	entries, err := fs.ReadDir(presets, "presets")
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), path.Ext(e.Name())))
	}
	sort.Strings(names)
	return names
}

func readDashboard(name string) ([]byte, string, error) {
	if raw, err := presets.ReadFile("presets/" + name + ".json"); err == nil {
		return raw, name, nil
	}
	raw, err := os.ReadFile(name)
	if err != nil {
		return nil, "", wrapError(err, ErrConfig, "dashboard %q is neither a preset (%s) nor a readable file", name, strings.Join(Presets(), ", "))
	}
	return raw, strings.TrimSuffix(path.Base(name), path.Ext(name)), nil
}

// LoadDashboard reads a preset or dashboard file, substitutes #nodeName and
// decodes it. Command line values win over the file; the endpoint defaults
// to localhost.
func LoadDashboard(opts LoadOptions) (*Dashboard, error) {
	raw, name, err := readDashboard(opts.Dashboard)
	if err != nil {
		return nil, err
	}
	raw = bytes.ReplaceAll(raw, []byte("#nodeName"), []byte(opts.NodeName))

	v := viper.New()
	v.SetConfigType("json")
	v.SetDefault("endpoint", DefaultEndpoint)
	if err := v.ReadConfig(bytes.NewReader(raw)); err != nil {
		return nil, wrapError(err, ErrConfig, "failed to parse dashboard %s", name)
	}

	d := &Dashboard{Name: name, Endpoint: v.GetString("endpoint")}
	if opts.Endpoint != "" {
		d.Endpoint = opts.Endpoint
	}
	if err := v.UnmarshalKey("gridOptions", &d.GridOptions); err != nil {
		return nil, wrapError(err, ErrConfig, "invalid gridOptions")
	}

	d.Mode = ModeMetrics
	if _, isList := v.Get("graphs").([]any); isList && v.IsSet("queryParams") {
		d.Mode = ModeRCA
	}
	if opts.Mode != "" {
		if d.Mode, err = ParseMode(opts.Mode); err != nil {
			return nil, err
		}
	}

	switch d.Mode {
	case ModeRCA:
		if err := v.UnmarshalKey("queryParams", &d.RCAParams); err != nil {
			return nil, wrapError(err, ErrConfig, "invalid queryParams")
		}
		if err := v.UnmarshalKey("graphs", &d.RCAGraphs); err != nil {
			return nil, wrapError(err, ErrConfig, "invalid graphs for rca mode")
		}
		for i := range d.RCAGraphs {
			d.RCAGraphs[i].Dimension = splitList(d.RCAGraphs[i].Dimension)
		}
	default:
		if err := v.UnmarshalKey("graphs", &d.Graphs); err != nil {
			return nil, wrapError(err, ErrConfig, "invalid graphs for metrics mode")
		}
	}
	return d, nil
}

func splitList(items []string) []string {
	var out []string
	for _, item := range items {
		for _, s := range strings.Split(item, ",") {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}

// Validate checks the dashboard. Problems that stop the dashboard from being
// drawn come back as err; problems worth a log line come back as warnings.
func (d *Dashboard) Validate() (warnings error, err error) {
	var fatal, warn *multierror.Error

	if d.GridOptions.Rows < 1 || d.GridOptions.Cols < 1 {
		fatal = multierror.Append(fatal, fmt.Errorf("gridOptions needs rows and cols of at least 1, got %dx%d", d.GridOptions.Rows, d.GridOptions.Cols))
	}

	switch d.Mode {
	case ModeRCA:
		if _, perr := ProfileFor(d.RCAParams.Name); perr != nil {
			fatal = multierror.Append(fatal, perr)
		}
		if len(d.RCAGraphs) == 0 {
			fatal = multierror.Append(fatal, fmt.Errorf("dashboard has no graphs"))
		}
		for i, g := range d.RCAGraphs {
			title := fmt.Sprintf("graphs[%d]", i)
			kind, kerr := ParseWidgetKind(g.GraphType)
			if kerr != nil {
				fatal = multierror.Append(fatal, fmt.Errorf("%s: %w", title, kerr))
				continue
			}
			if kind == KindBar {
				fatal = multierror.Append(fatal, fmt.Errorf("%s: bars are not supported in rca mode", title))
			}
			if kind == KindTable && g.Options.Columns == "" {
				fatal = multierror.Append(fatal, fmt.Errorf("%s: tables need options.columns", title))
			}
			if strings.Contains(g.GraphParams, ",") {
				warn = multierror.Append(warn, fmt.Errorf("%s: too many graph parameters to plot", title))
			}
			fatal = appendPosition(fatal, title, g.Options.GridPosition, d.GridOptions)
		}
	default:
		if len(d.Graphs) == 0 {
			fatal = multierror.Append(fatal, fmt.Errorf("dashboard has no graphs"))
		}
		for _, typ := range sortedKeys(d.Graphs) {
			kind, kerr := ParseWidgetKind(typ)
			if kerr != nil {
				fatal = multierror.Append(fatal, kerr)
				continue
			}
			for _, name := range sortedKeys(d.Graphs[typ]) {
				g := d.Graphs[typ][name]
				title := typ + "." + name
				switch kind {
				case KindBar, KindLine, KindDonut:
					if len(strings.Split(g.QueryParams.Metrics, ",")) > 1 {
						warn = multierror.Append(warn, fmt.Errorf("%s: only one metric is supported for %s graphs", title, kind))
					}
					if len(strings.Split(g.QueryParams.Dimensions, ",")) > 1 {
						warn = multierror.Append(warn, fmt.Errorf("%s: only one dimension is supported for %s graphs", title, kind))
					}
				case KindTable:
					if g.QueryParams.SortBy == "" {
						warn = multierror.Append(warn, fmt.Errorf("%s: provide \"sortBy\" field for the table graph", title))
					}
				}
				if g.QueryParams.Metrics == "" {
					fatal = multierror.Append(fatal, fmt.Errorf("%s: queryParams.metrics is required", title))
				}
				fatal = appendPosition(fatal, title, g.Options.GridPosition, d.GridOptions)
			}
		}
	}
	return warn.ErrorOrNil(), fatal.ErrorOrNil()
}

func appendPosition(errs *multierror.Error, title string, p GridPosition, g GridOptions) *multierror.Error {
	rowSpan, colSpan := max(p.RowSpan, 1), max(p.ColSpan, 1)
	if p.Row < 0 || p.Col < 0 || p.Row+rowSpan > g.Rows || p.Col+colSpan > g.Cols {
		return multierror.Append(errs, fmt.Errorf("%s: gridPosition %+v does not fit a %dx%d grid", title, p, g.Rows, g.Cols))
	}
	return errs
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Widgets builds one widget per configured graph. Widget kinds are resolved
// here, once. Units are only fetched when a table needs them.
func (d *Dashboard) Widgets(ctx context.Context, data Data, log Logger, stats *Stats) ([]Widget, error) {
	if d.Mode == ModeRCA {
		return d.rcaWidgets(data, log, stats)
	}

	for _, typ := range sortedKeys(d.Graphs) {
		if _, err := ParseWidgetKind(typ); err != nil {
			return nil, err
		}
	}

	var units map[string]string
	var widgets []Widget
	for _, typ := range []string{"bars", "lines", "tables", "donuts"} {
		graphs, ok := d.Graphs[typ]
		if !ok {
			continue
		}
		kind, _ := ParseWidgetKind(typ)
		if kind == KindTable && units == nil {
			units = data.Units(ctx)
		}
		for _, name := range sortedKeys(graphs) {
			g := graphs[name]
			var b Builder
			switch kind {
			case KindBar:
				b = NewBarBuilder(data, g.QueryParams, log, stats)
			case KindLine:
				b = NewLineBuilder(data, g.QueryParams, g.Options.XAxis, g.Options.Colors, nil, log, stats)
			case KindTable:
				b = NewTableBuilder(data, g.QueryParams, units, log, stats)
			case KindDonut:
				b = NewDonutBuilder(data, g.QueryParams, log, stats)
			}
			widgets = append(widgets, newWidget(len(widgets), firstNonEmpty(g.Options.Label, name), kind, g.Options, b))
		}
	}
	return widgets, nil
}

func (d *Dashboard) rcaWidgets(data Data, log Logger, stats *Stats) ([]Widget, error) {
	profile, err := ProfileFor(d.RCAParams.Name)
	if err != nil {
		return nil, err
	}
	query := RCAQuery{Name: d.RCAParams.Name, Local: d.RCAParams.Local}

	widgets := make([]Widget, 0, len(d.RCAGraphs))
	for i, g := range d.RCAGraphs {
		kind, err := ParseWidgetKind(g.GraphType)
		if err != nil {
			return nil, err
		}
		req := RCARequest{Dimensions: g.Dimension, GraphParams: g.GraphParams}
		var b Builder
		switch kind {
		case KindLine:
			b = NewRCALineBuilder(data, profile, query, req, g.Options.XAxis, g.Options.Colors, nil, log, stats)
		case KindTable:
			b = NewRCATableBuilder(data, profile, query, req, splitList([]string{g.Options.Columns}), log, stats)
		case KindDonut:
			b = NewRCADonutBuilder(data, profile, query, req, log, stats)
		default:
			return nil, newError(ErrConfig, "graphs[%d]: %s are not supported in rca mode", i, kind)
		}
		widgets = append(widgets, newWidget(i, firstNonEmpty(g.Options.Label, req.Key()), kind, g.Options, b))
	}
	return widgets, nil
}

func newWidget(id int, title string, kind WidgetKind, opts WidgetOptions, b Builder) Widget {
	return Widget{
		ID:       id,
		Title:    title,
		Kind:     kind,
		Position: opts.GridPosition,
		Interval: RefreshDuration(opts.RefreshInterval),
		Builder:  b,
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// WriteYAML dumps the resolved dashboard.
func (d *Dashboard) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(d); err != nil {
		return err
	}
	return enc.Close()
}
