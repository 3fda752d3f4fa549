package page

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/junkd0g/vgcharts/internal/render"
	"github.com/junkd0g/vgcharts/internal/theme"
)

// Build renders every chart into a fresh page under t and writes the site to
// dir. Chart failures are in the report; only write failures are errors.
func Build(ctx context.Context, cfg Config, t theme.Theme, dir string, logger *zap.Logger) (*render.Report, []string, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg.Theme = t
	doc := New(cfg)
	o := render.New(doc, doc, render.WithDataURL(doc.cfg.DataURL), render.WithLogger(logger))

	report := o.RenderAll(ctx, t)
	written, err := doc.WriteSite(dir)
	if err != nil {
		return report, written, fmt.Errorf("write site to %s: %w", dir, err)
	}
	logger.Info("Site written",
		zap.String("dir", dir),
		zap.String("pass", report.PassID),
		zap.Int("files", len(written)))
	return report, written, nil
}

// Renderer rebuilds the site to dir on every pass, for use as the theme
// controller's re-render callback.
func Renderer(cfg Config, dir string, logger *zap.Logger) theme.RenderFunc {
	return func(ctx context.Context, t theme.Theme) error {
		_, _, err := Build(ctx, cfg, t, dir, logger)
		return err
	}
}
