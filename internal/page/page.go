// Package page writes the static chart page: one section per chart, the
// theme toggle, the contact form, and a vega-embed call per rendered spec.
package page

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/junkd0g/vgcharts/internal/charts"
	"github.com/junkd0g/vgcharts/internal/render"
	"github.com/junkd0g/vgcharts/internal/theme"
	"github.com/junkd0g/vgcharts/internal/vegalite"
)

// Config configures the generated page.
type Config struct {
	Title       string
	Description string
	Theme       theme.Theme
	DataURL     string
	// Mounts lists the chart sections present on the page. Nil means all.
	Mounts []string
	// Now supplies the footer year.
	Now func() time.Time
}

// DefaultConfig returns a page with every chart under the dark theme.
func DefaultConfig() Config {
	return Config{
		Title:       "Video Game Sales",
		Description: "Who sells, where, and on which platform.",
		Theme:       theme.Dark,
		DataURL:     charts.DefaultDataURL,
		Now:         time.Now,
	}
}

// Section is one chart mount on the page.
type Section struct {
	id          string
	title       string
	description string
	content     string
	spec        []byte
}

func (s *Section) ID() string { return s.id }

func (s *Section) Clear() {
	s.content = ""
	s.spec = nil
}

func (s *Section) ShowError(message string) {
	s.content = message
	s.spec = nil
}

// Spec returns the embedded spec JSON, or nil when the section holds none.
func (s *Section) Spec() []byte { return s.spec }

// Content returns the section's static inner HTML.
func (s *Section) Content() string { return s.content }

// Document is an HTML page that is both the orchestrator's render.Document
// and its render.Embedder.
type Document struct {
	cfg      Config
	sections []*Section
	byID     map[string]*Section
	opts     render.EmbedOptions
}

var (
	_ render.Document = (*Document)(nil)
	_ render.Embedder = (*Document)(nil)
)

// New creates a document with one empty section per configured mount.
func New(cfg Config) *Document {
	def := DefaultConfig()
	if cfg.Title == "" {
		cfg.Title = def.Title
	}
	if cfg.DataURL == "" {
		cfg.DataURL = def.DataURL
	}
	if cfg.Now == nil {
		cfg.Now = def.Now
	}
	if cfg.Mounts == nil {
		cfg.Mounts = charts.IDs()
	}
	cfg.Theme = theme.FromStored(cfg.Theme.String())

	d := &Document{
		cfg:  cfg,
		byID: make(map[string]*Section, len(cfg.Mounts)),
		opts: render.DefaultEmbedOptions(),
	}
	for _, id := range cfg.Mounts {
		s := &Section{id: id, title: id}
		if c, err := charts.Lookup(id); err == nil {
			s.title, s.description = c.Title, c.Description
		}
		d.sections = append(d.sections, s)
		d.byID[id] = s
	}
	return d
}

// Config returns the page configuration.
func (d *Document) Config() Config { return d.cfg }

// Mount implements render.Document.
func (d *Document) Mount(id string) (render.Mount, bool) {
	s, ok := d.byID[id]
	if !ok {
		return nil, false
	}
	return s, true
}

// Section returns the section with the given id.
func (d *Document) Section(id string) (*Section, bool) {
	s, ok := d.byID[id]
	return s, ok
}

// Embed validates and serializes spec into the mount. A spec that fails
// validation is returned as an error so the caller shows the inline message.
func (d *Document) Embed(ctx context.Context, m render.Mount, spec *vegalite.Spec, opts render.EmbedOptions) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s, ok := d.byID[m.ID()]
	if !ok {
		return fmt.Errorf("mount %q is not on this page", m.ID())
	}
	b, err := spec.JSON()
	if err != nil {
		return fmt.Errorf("embed %s: %w", m.ID(), err)
	}
	s.spec = b
	s.content = ""
	d.opts = opts
	return nil
}

// WriteSite writes index.html and specs/<mount>.vl.json for every section
// that holds a spec.
func (d *Document) WriteSite(dir string) ([]string, error) {
	var written []string
	for _, s := range d.sections {
		if s.spec == nil {
			continue
		}
		path := filepath.Join(dir, "specs", s.id+".vl.json")
		if err := writeFileBytes(path, s.spec); err != nil {
			return written, fmt.Errorf("failed to write spec: %w", err)
		}
		written = append(written, path)
	}

	html, err := d.HTML()
	if err != nil {
		return written, err
	}
	index := filepath.Join(dir, "index.html")
	if err := writeFileBytes(index, []byte(html)); err != nil {
		return written, fmt.Errorf("failed to write HTML file: %w", err)
	}
	return append(written, index), nil
}

func writeFileBytes(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
