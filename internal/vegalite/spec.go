// Package vegalite models the subset of the Vega-Lite v5 grammar the sales
// charts use: a data source, an ordered transform pipeline, a mark with its
// encoding (or a list of layers), and the style config.
package vegalite

import (
	"encoding/json"
)

// SchemaURL is the Vega-Lite schema every spec declares.
const SchemaURL = "https://vega.github.io/schema/vega-lite/v5.json"

// WidthContainer sizes the view to its mount element.
const WidthContainer = "container"

// Spec is a single- or multi-layer chart specification.
type Spec struct {
	Schema    string      `json:"$schema"`
	Title     string      `json:"title,omitempty"`
	Width     string      `json:"width,omitempty"`
	Height    int         `json:"height,omitempty"`
	Autosize  *Autosize   `json:"autosize,omitempty"`
	Data      *Data       `json:"data,omitempty"`
	Transform []Transform `json:"transform,omitempty"`
	Mark      *Mark       `json:"mark,omitempty"`
	Encoding  *Encoding   `json:"encoding,omitempty"`
	Layer     []Layer     `json:"layer,omitempty"`
	Resolve   *Resolve    `json:"resolve,omitempty"`
	Config    *Config     `json:"config,omitempty"`
}

// Autosize controls how the view fits its container.
type Autosize struct {
	Type     string `json:"type"`
	Contains string `json:"contains,omitempty"`
}

// FitPadding is the responsive sizing shared by every chart.
func FitPadding() *Autosize {
	return &Autosize{Type: "fit", Contains: "padding"}
}

// Data references an external dataset.
type Data struct {
	URL    string  `json:"url"`
	Format *Format `json:"format,omitempty"`
}

// Format describes how the dataset is parsed.
type Format struct {
	Type string `json:"type"`
}

// CSV is a data reference to a delimited file.
func CSV(url string) *Data {
	return &Data{URL: url, Format: &Format{Type: "csv"}}
}

// Mark is a mark type with optional properties. A mark with no properties
// serializes as the bare type string.
type Mark struct {
	Type        string
	Point       bool
	InnerRadius float64
}

// MarshalJSON implements json.Marshaler.
func (m Mark) MarshalJSON() ([]byte, error) {
	if !m.Point && m.InnerRadius == 0 {
		return json.Marshal(m.Type)
	}
	out := struct {
		Type        string  `json:"type"`
		Point       bool    `json:"point,omitempty"`
		InnerRadius float64 `json:"innerRadius,omitempty"`
	}{m.Type, m.Point, m.InnerRadius}
	return json.Marshal(out)
}

// Mark types.
const (
	MarkBar  = "bar"
	MarkLine = "line"
	MarkArc  = "arc"
)

// Measurement types.
const (
	Nominal      = "nominal"
	Ordinal      = "ordinal"
	Quantitative = "quantitative"
)

// Encoding maps visual channels to fields.
type Encoding struct {
	X       *Channel  `json:"x,omitempty"`
	Y       *Channel  `json:"y,omitempty"`
	Theta   *Channel  `json:"theta,omitempty"`
	Color   *Channel  `json:"color,omitempty"`
	Tooltip []Channel `json:"tooltip,omitempty"`
}

// Channels returns every channel definition, tooltips included.
func (e *Encoding) Channels() []Channel {
	if e == nil {
		return nil
	}
	var out []Channel
	for _, c := range []*Channel{e.X, e.Y, e.Theta, e.Color} {
		if c != nil {
			out = append(out, *c)
		}
	}
	return append(out, e.Tooltip...)
}

// Channel is a field definition for one encoding channel.
type Channel struct {
	Field     string  `json:"field,omitempty"`
	Type      string  `json:"type,omitempty"`
	Aggregate string  `json:"aggregate,omitempty"`
	Title     string  `json:"title,omitempty"`
	Format    string  `json:"format,omitempty"`
	Sort      any     `json:"sort,omitempty"`
	Stack     string  `json:"stack,omitempty"`
	Axis      *Axis   `json:"axis,omitempty"`
	Legend    *Legend `json:"legend,omitempty"`

	// HideLegend emits "legend": null.
	HideLegend bool `json:"-"`
}

// MarshalJSON implements json.Marshaler.
func (c Channel) MarshalJSON() ([]byte, error) {
	type plain Channel
	if !c.HideLegend {
		return json.Marshal(plain(c))
	}
	return json.Marshal(struct {
		plain
		Legend *Legend `json:"legend"`
	}{plain: plain(c)})
}

// Axis configures a positional channel's axis.
type Axis struct {
	Title      string `json:"title,omitempty"`
	LabelAngle int    `json:"labelAngle,omitempty"`
}

// Legend configures a color legend.
type Legend struct {
	Title string `json:"title,omitempty"`
}

// Layer is one layer of a layered spec.
type Layer struct {
	Mark     *Mark     `json:"mark"`
	Encoding *Encoding `json:"encoding,omitempty"`
}

// Resolve controls scale sharing between layers.
type Resolve struct {
	Scale map[string]string `json:"scale,omitempty"`
}

// Config is the chart style config.
type Config struct {
	// Background is always serialized; nil means transparent.
	Background *string      `json:"background"`
	Axis       AxisConfig   `json:"axis"`
	Legend     LegendConfig `json:"legend"`
	Title      TitleConfig  `json:"title"`
}

// AxisConfig styles every axis.
type AxisConfig struct {
	LabelColor  string `json:"labelColor"`
	TitleColor  string `json:"titleColor"`
	GridColor   string `json:"gridColor"`
	DomainColor string `json:"domainColor"`
	TickColor   string `json:"tickColor"`
}

// LegendConfig styles every legend.
type LegendConfig struct {
	LabelColor string `json:"labelColor"`
	TitleColor string `json:"titleColor"`
}

// TitleConfig styles chart titles.
type TitleConfig struct {
	Color    string `json:"color"`
	FontSize int    `json:"fontSize"`
}

// JSON serializes the spec after validating it.
func (s *Spec) JSON() ([]byte, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return json.Marshal(s)
}

// Marks returns every mark in the spec, one per layer for layered specs.
func (s *Spec) Marks() []Mark {
	if s.Mark != nil {
		return []Mark{*s.Mark}
	}
	out := make([]Mark, 0, len(s.Layer))
	for _, l := range s.Layer {
		if l.Mark != nil {
			out = append(out, *l.Mark)
		}
	}
	return out
}

// Encodings returns the top-level encoding or each layer's encoding.
func (s *Spec) Encodings() []*Encoding {
	if len(s.Layer) == 0 {
		return []*Encoding{s.Encoding}
	}
	out := make([]*Encoding, 0, len(s.Layer))
	for _, l := range s.Layer {
		out = append(out, l.Encoding)
	}
	return out
}
