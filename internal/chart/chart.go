// Package chart renders an assembled taxonomy tree as a self-contained HTML
// page holding a plotly.js sunburst or icicle chart.
//
// plotly.js is loaded from a CDN; the page only supplies the trace columns
// (labels, parents, values) and layout. Values are percentages of all
// classified reads, and so is the colour scale.
package chart

import (
	"fmt"
	"html/template"
	"io"
	"strings"

	"krakviz/internal/report"
	"krakviz/internal/taxtree"
)

// DefaultPlotlyURL is the plotly.js bundle referenced by rendered pages.
const DefaultPlotlyURL = "https://cdn.plot.ly/plotly-2.35.2.min.js"

// Kind selects the chart type.
type Kind string

const (
	Sunburst Kind = "sunburst"
	Icicle   Kind = "icicle"
)

// ParseKind maps "sunburst" / "icicle".
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case Sunburst, Icicle:
		return k, nil
	}
	return "", fmt.Errorf("invalid chart kind %q (want sunburst | icicle)", s)
}

// Options are the display settings of one chart. Zero Width/Height/Title
// fall back to the kind's defaults.
type Options struct {
	Title        string
	Width        int
	Height       int
	ColorByValue bool
	PlotlyURL    string
}

// Defaults returns the display settings used when nothing is configured.
func Defaults(k Kind) Options {
	if k == Icicle {
		return Options{Title: "Icicle chart", Width: 900, Height: 2000, ColorByValue: true}
	}
	return Options{Title: "Sunburst chart", Width: 1100, Height: 700, ColorByValue: true}
}

func (o Options) withDefaults(k Kind) Options {
	d := Defaults(k)
	if o.Title == "" {
		o.Title = d.Title
	}
	if o.Width <= 0 {
		o.Width = d.Width
	}
	if o.Height <= 0 {
		o.Height = d.Height
	}
	if o.PlotlyURL == "" {
		o.PlotlyURL = DefaultPlotlyURL
	}
	return o
}

// Data is the column form plotly consumes: aligned labels, parents and
// values. Counts are the raw read counts, shown on hover.
type Data struct {
	Labels  []string
	Parents []string
	Values  []float64
	Counts  []int
}

// FromTree converts t into chart columns, with each value expressed as a
// percentage of total.
func FromTree(t *taxtree.Tree, total int) Data {
	return Data{
		Labels:  append([]string(nil), t.Names...),
		Parents: append([]string(nil), t.Parents...),
		Values:  report.Percentages(t, total),
		Counts:  append([]int(nil), t.Values...),
	}
}

func (d Data) validate() error {
	n := len(d.Labels)
	if len(d.Parents) != n || len(d.Values) != n || (d.Counts != nil && len(d.Counts) != n) {
		return fmt.Errorf("chart columns differ in length (labels=%d parents=%d values=%d counts=%d)",
			n, len(d.Parents), len(d.Values), len(d.Counts))
	}
	return nil
}

type marker struct {
	Colors     []float64      `json:"colors,omitempty"`
	Colorscale string         `json:"colorscale,omitempty"`
	ShowScale  bool           `json:"showscale,omitempty"`
	ColorBar   map[string]any `json:"colorbar,omitempty"`
}

type trace struct {
	Type          string    `json:"type"`
	Labels        []string  `json:"labels"`
	Parents       []string  `json:"parents"`
	Values        []float64 `json:"values"`
	CustomData    []int     `json:"customdata,omitempty"`
	HoverTemplate string    `json:"hovertemplate"`
	Marker        *marker   `json:"marker,omitempty"`
	Root          any       `json:"root,omitempty"`
}

type layout struct {
	Title  map[string]string `json:"title"`
	Width  int               `json:"width"`
	Height int               `json:"height"`
	Margin map[string]int    `json:"margin,omitempty"`
}

type page struct {
	Title     string
	PlotlyURL string
	Traces    []trace
	Layout    layout
}

var pageTmpl = template.Must(template.New("chart").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<script src="{{.PlotlyURL}}"></script>
</head>
<body>
<div id="chart"></div>
<script>
Plotly.newPlot("chart", {{.Traces}}, {{.Layout}});
</script>
</body>
</html>
`))

// Render writes the HTML page for d to w.
func Render(w io.Writer, k Kind, d Data, o Options) error {
	if _, err := ParseKind(string(k)); err != nil {
		return err
	}
	if err := d.validate(); err != nil {
		return err
	}
	o = o.withDefaults(k)

	tr := trace{
		Type:          string(k),
		Labels:        d.Labels,
		Parents:       d.Parents,
		Values:        d.Values,
		HoverTemplate: "%{label}<br>%{value:.2f}%<extra></extra>",
	}
	if d.Counts != nil {
		tr.CustomData = d.Counts
		tr.HoverTemplate = "%{label}<br>%{value:.2f}% (%{customdata} reads)<extra></extra>"
	}
	if o.ColorByValue {
		tr.Marker = &marker{
			Colors:     d.Values,
			Colorscale: "Plasma",
			ShowScale:  true,
			ColorBar:   map[string]any{"title": map[string]string{"text": "Percent"}},
		}
	}
	lay := layout{Title: map[string]string{"text": o.Title}, Width: o.Width, Height: o.Height}
	if k == Icicle {
		tr.Root = map[string]string{"color": "lightgrey"}
		lay.Margin = map[string]int{"t": 50, "l": 25, "r": 25, "b": 25}
	}

	return pageTmpl.Execute(w, page{
		Title:     o.Title,
		PlotlyURL: o.PlotlyURL,
		Traces:    []trace{tr},
		Layout:    lay,
	})
}
