// Package render embeds every chart spec into its mount point, one after the
// other, turning a failed embed into an inline message on that mount.
package render

import (
	"context"
	"fmt"
	"html"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/junkd0g/vgcharts/internal/charts"
	"github.com/junkd0g/vgcharts/internal/theme"
	"github.com/junkd0g/vgcharts/internal/vegalite"
)

// EmbedOptions are the fixed renderer options.
type EmbedOptions struct {
	Actions      bool   `json:"actions"`
	Renderer     string `json:"renderer"`
	DefaultStyle bool   `json:"defaultStyle"`
}

// DefaultEmbedOptions hides the action menu and renders SVG.
func DefaultEmbedOptions() EmbedOptions {
	return EmbedOptions{Actions: false, Renderer: "svg", DefaultStyle: true}
}

// Mount is a placeholder element a chart renders into.
type Mount interface {
	ID() string
	Clear()
	// ShowError replaces the mount's content with an HTML message.
	ShowError(message string)
}

// Document looks up mounts by id.
type Document interface {
	Mount(id string) (Mount, bool)
}

// Embedder hands a spec to the chart renderer.
type Embedder interface {
	Embed(ctx context.Context, m Mount, spec *vegalite.Spec, opts EmbedOptions) error
}

// EmbedFunc adapts a function to Embedder.
type EmbedFunc func(ctx context.Context, m Mount, spec *vegalite.Spec, opts EmbedOptions) error

func (f EmbedFunc) Embed(ctx context.Context, m Mount, spec *vegalite.Spec, opts EmbedOptions) error {
	return f(ctx, m, spec, opts)
}

// Status is the outcome for one mount.
type Status string

const (
	StatusRendered Status = "rendered"
	StatusSkipped  Status = "skipped"
	StatusFailed   Status = "failed"
)

// Outcome records what happened to one chart.
type Outcome struct {
	ID     string
	Status Status
	Err    error
}

// Report summarizes one render pass.
type Report struct {
	PassID   string
	Theme    theme.Theme
	Outcomes []Outcome
}

// Count returns how many charts ended with status s.
func (r *Report) Count(s Status) int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Status == s {
			n++
		}
	}
	return n
}

// ErrorMessage is the inline message shown in a mount whose chart failed.
func ErrorMessage(dataURL string) string {
	return fmt.Sprintf(`<p style="color:#ff6b6b;margin:0">Chart failed to load. Check <code>%s</code> path and use Live Server / GitHub Pages.</p>`,
		html.EscapeString(dataURL))
}

// Orchestrator renders the chart catalog into a document.
type Orchestrator struct {
	doc     Document
	embed   Embedder
	charts  []charts.Chart
	dataURL string
	opts    EmbedOptions
	logger  *zap.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithCharts replaces the default catalog.
func WithCharts(cs []charts.Chart) Option {
	return func(o *Orchestrator) { o.charts = cs }
}

// WithDataURL sets the dataset location passed to every builder.
func WithDataURL(url string) Option {
	return func(o *Orchestrator) {
		if url != "" {
			o.dataURL = url
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.logger = l
		}
	}
}

// New creates an orchestrator over doc.
func New(doc Document, embed Embedder, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		doc:     doc,
		embed:   embed,
		charts:  charts.All(),
		dataURL: charts.DefaultDataURL,
		opts:    DefaultEmbedOptions(),
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// RenderAll builds and embeds every chart in order under t. A chart that
// fails is reported and logged; the pass always continues.
func (o *Orchestrator) RenderAll(ctx context.Context, t theme.Theme) *Report {
	report := &Report{PassID: uuid.NewString(), Theme: t}
	log := o.logger.With(zap.String("pass", report.PassID), zap.String("theme", t.String()))
	log.Debug("Render pass started", zap.Int("charts", len(o.charts)))

	for _, c := range o.charts {
		report.Outcomes = append(report.Outcomes, o.renderOne(ctx, log, c, t))
	}

	log.Info("Render pass finished",
		zap.Int("rendered", report.Count(StatusRendered)),
		zap.Int("skipped", report.Count(StatusSkipped)),
		zap.Int("failed", report.Count(StatusFailed)))
	return report
}

// Render embeds a single chart. An id that is not in the catalog, or whose
// mount is absent, is skipped.
func (o *Orchestrator) Render(ctx context.Context, id string, t theme.Theme) Outcome {
	for _, c := range o.charts {
		if c.ID == id {
			return o.renderOne(ctx, o.logger, c, t)
		}
	}
	o.logger.Debug("Chart not in catalog", zap.String("chart", id))
	return Outcome{ID: id, Status: StatusSkipped}
}

// RenderFunc adapts RenderAll to the theme controller's callback. It fails
// only when the context is done.
func (o *Orchestrator) RenderFunc() theme.RenderFunc {
	return func(ctx context.Context, t theme.Theme) error {
		o.RenderAll(ctx, t)
		return ctx.Err()
	}
}

func (o *Orchestrator) renderOne(ctx context.Context, log *zap.Logger, c charts.Chart, t theme.Theme) (out Outcome) {
	out = Outcome{ID: c.ID}
	m, ok := o.doc.Mount(c.ID)
	if !ok || m == nil {
		out.Status = StatusSkipped
		log.Debug("Mount missing, skipping", zap.String("chart", c.ID))
		return out
	}
	m.Clear()

	defer func() {
		if r := recover(); r != nil {
			out.Status = StatusFailed
			out.Err = fmt.Errorf("embed panicked: %v", r)
			m.ShowError(ErrorMessage(o.dataURL))
			log.Error("Chart failed to render", zap.String("chart", c.ID), zap.Error(out.Err))
		}
	}()

	if err := ctx.Err(); err != nil {
		out.Status = StatusFailed
		out.Err = err
		m.ShowError(ErrorMessage(o.dataURL))
		return out
	}

	spec := c.Build(charts.Options{Theme: t, DataURL: o.dataURL})
	if err := o.embed.Embed(ctx, m, spec, o.opts); err != nil {
		out.Status = StatusFailed
		out.Err = err
		m.ShowError(ErrorMessage(o.dataURL))
		log.Error("Chart failed to render", zap.String("chart", c.ID), zap.Error(err))
		return out
	}

	out.Status = StatusRendered
	log.Debug("Chart rendered", zap.String("chart", c.ID))
	return out
}
