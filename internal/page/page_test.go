package page

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/junkd0g/vgcharts/internal/charts"
	"github.com/junkd0g/vgcharts/internal/contact"
	"github.com/junkd0g/vgcharts/internal/render"
	"github.com/junkd0g/vgcharts/internal/theme"
	"github.com/junkd0g/vgcharts/internal/vegalite"
)

func fixedClock() time.Time { return time.Date(2031, time.March, 4, 0, 0, 0, 0, time.UTC) }

func renderPage(t *testing.T, cfg Config, opts ...render.Option) (*Document, *render.Report) {
	t.Helper()
	doc := New(cfg)
	report := render.New(doc, doc, opts...).RenderAll(context.Background(), cfg.Theme)
	return doc, report
}

func TestWriteSite(t *testing.T) {
	dir := t.TempDir()
	doc, report := renderPage(t, Config{Theme: theme.Light, Now: fixedClock})
	assert.Equal(t, 8, report.Count(render.StatusRendered))

	written, err := doc.WriteSite(dir)
	require.NoError(t, err)
	assert.Len(t, written, 9)

	for _, id := range charts.IDs() {
		b, err := os.ReadFile(filepath.Join(dir, "specs", id+".vl.json"))
		require.NoError(t, err)

		var spec map[string]any
		require.NoError(t, json.Unmarshal(b, &spec))
		assert.Equal(t, vegalite.SchemaURL, spec["$schema"])
	}

	index, err := os.ReadFile(filepath.Join(dir, "index.html"))
	require.NoError(t, err)
	html := string(index)
	assert.Contains(t, html, `<html lang="en" data-theme="light">`)
	assert.Contains(t, html, `aria-pressed="true"`)
	assert.Contains(t, html, `<span id="year">2031</span>`)
	assert.Contains(t, html, `id="contactForm"`)
	assert.Contains(t, html, "vega-embed@6")
	for _, id := range charts.IDs() {
		assert.Contains(t, html, `<div id="`+id+`" class="chart">`)
	}
}

func TestDarkPage(t *testing.T) {
	doc, _ := renderPage(t, Config{Theme: theme.Dark, Now: fixedClock})
	html, err := doc.HTML()
	require.NoError(t, err)
	assert.Contains(t, html, "<html lang=\"en\">\n")
	assert.Contains(t, html, `aria-pressed="false"`)
}

func TestScriptCarriesFormRules(t *testing.T) {
	doc, _ := renderPage(t, Config{Now: fixedClock})
	html, err := doc.HTML()
	require.NoError(t, err)

	start := strings.Index(html, "const page = ")
	require.GreaterOrEqual(t, start, 0)
	line := html[start+len("const page = "):]
	line = line[:strings.Index(line, ";\n")]

	var data pageData
	require.NoError(t, json.Unmarshal([]byte(line), &data))
	assert.Equal(t, contact.EmailPattern, data.Form.EmailPattern)
	assert.Equal(t, contact.SuccessNote, data.Form.SuccessNote)
	assert.Equal(t, render.DefaultEmbedOptions(), data.Options)
	assert.Len(t, data.Specs, 8)
	assert.Contains(t, data.Configs, "light")
	assert.Contains(t, data.Configs, "dark")
}

func TestInvalidSpecShowsInlineError(t *testing.T) {
	broken := charts.Chart{
		ID: charts.V2,
		Build: func(o charts.Options) *vegalite.Spec {
			s := charts.PSPActionTrend(o)
			s.Mark = nil
			return s
		},
	}
	good, err := charts.Lookup(charts.V1)
	require.NoError(t, err)

	doc, report := renderPage(t, Config{Now: fixedClock, DataURL: "data/games.csv"},
		render.WithCharts([]charts.Chart{good, broken}), render.WithDataURL("data/games.csv"))
	assert.Equal(t, 1, report.Count(render.StatusRendered))
	assert.Equal(t, 1, report.Count(render.StatusFailed))
	assert.ErrorIs(t, report.Outcomes[1].Err, vegalite.ErrInvalidSpec)

	s, ok := doc.Section(charts.V2)
	require.True(t, ok)
	assert.Nil(t, s.Spec())
	assert.Equal(t, render.ErrorMessage("data/games.csv"), s.Content())

	written, err := doc.WriteSite(t.TempDir())
	require.NoError(t, err)
	assert.Len(t, written, 2)
}

func TestMissingSections(t *testing.T) {
	doc, report := renderPage(t, Config{Now: fixedClock, Mounts: []string{charts.V1, charts.F3}})
	assert.Equal(t, 2, report.Count(render.StatusRendered))
	assert.Equal(t, 6, report.Count(render.StatusSkipped))

	_, ok := doc.Mount(charts.V2)
	assert.False(t, ok)
}

func TestEmbedUnknownMount(t *testing.T) {
	doc := New(Config{Mounts: []string{charts.V1}})
	err := doc.Embed(context.Background(), &Section{id: "elsewhere"}, charts.GenrePlatformSales(charts.Options{}), render.DefaultEmbedOptions())
	assert.Error(t, err)
}

func TestRerenderReplacesContent(t *testing.T) {
	doc := New(Config{Now: fixedClock})
	o := render.New(doc, doc)

	o.RenderAll(context.Background(), theme.Dark)
	s, _ := doc.Section(charts.V1)
	dark := string(s.Spec())

	o.RenderAll(context.Background(), theme.Light)
	light := string(s.Spec())
	assert.NotEqual(t, dark, light)
	assert.Contains(t, light, "#566079")
}
