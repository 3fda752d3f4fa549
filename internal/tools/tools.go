package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/junkd0g/vgcharts/internal/charts"
	"github.com/junkd0g/vgcharts/internal/config"
	"github.com/junkd0g/vgcharts/internal/contact"
	"github.com/junkd0g/vgcharts/internal/dataflow"
	"github.com/junkd0g/vgcharts/internal/diagram"
	"github.com/junkd0g/vgcharts/internal/page"
	"github.com/junkd0g/vgcharts/internal/render"
	"github.com/junkd0g/vgcharts/internal/theme"
)

const defaultPreviewLimit = 20

// Handlers serves the vgcharts tools from one configuration.
type Handlers struct {
	cfg    *config.Config
	logger *zap.Logger
}

// New creates the tool handlers. A nil logger discards output.
func New(cfg *config.Config, logger *zap.Logger) *Handlers {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handlers{cfg: cfg, logger: logger}
}

// Register registers all tools with the MCP server.
func Register(s *server.MCPServer, h *Handlers) {
	registerBuildChartSpecTool(s, h)
	registerGenerateSiteTool(s, h)
	registerToggleThemeTool(s, h)
	registerValidateContactTool(s, h)
	registerPreviewChartTool(s, h)
	registerPipelineDiagramTool(s, h)
}

func chartArg() mcp.ToolOption {
	return mcp.WithString("chart",
		mcp.Required(),
		mcp.Description("Chart mount id: "+strings.Join(charts.IDs(), ", ")),
	)
}

func themeArg() mcp.ToolOption {
	return mcp.WithString("theme",
		mcp.Description("dark or light. Defaults to the persisted theme"),
	)
}

func registerBuildChartSpecTool(s *server.MCPServer, h *Handlers) {
	tool := mcp.NewTool("build_chart_spec",
		mcp.WithDescription("Builds the Vega-Lite v5 specification for one chart and returns it as JSON."),
		chartArg(),
		themeArg(),
	)
	s.AddTool(tool, h.BuildChartSpec)
}

func registerGenerateSiteTool(s *server.MCPServer, h *Handlers) {
	tool := mcp.NewTool("generate_site",
		mcp.WithDescription("Renders all eight charts into a static page and writes index.html plus one spec file per chart."),
		mcp.WithString("output_dir",
			mcp.Description("Directory to write the site to. Defaults to the configured output_dir"),
		),
		themeArg(),
	)
	s.AddTool(tool, h.GenerateSite)
}

func registerToggleThemeTool(s *server.MCPServer, h *Handlers) {
	tool := mcp.NewTool("toggle_theme",
		mcp.WithDescription("Flips the persisted theme between dark and light and rebuilds the site under the new theme."),
		mcp.WithString("output_dir",
			mcp.Description("Directory of the site to rebuild. Defaults to the configured output_dir"),
		),
	)
	s.AddTool(tool, h.ToggleTheme)
}

func registerValidateContactTool(s *server.MCPServer, h *Handlers) {
	tool := mcp.NewTool("validate_contact",
		mcp.WithDescription("Validates contact form input and reports every failing field."),
		mcp.WithString("name", mcp.Description("Sender name")),
		mcp.WithString("email", mcp.Description("Sender email")),
		mcp.WithString("message", mcp.Description("Message body")),
	)
	s.AddTool(tool, h.ValidateContact)
}

func registerPreviewChartTool(s *server.MCPServer, h *Handlers) {
	tool := mcp.NewTool("preview_chart",
		mcp.WithDescription("Runs a chart's transform pipeline over a local CSV or XLSX copy of the dataset and returns the first rows."),
		chartArg(),
		mcp.WithString("dataset",
			mcp.Description("Path to the dataset file. Defaults to the configured dataset_path"),
		),
		mcp.WithNumber("limit",
			mcp.Description(fmt.Sprintf("Maximum rows to return (default %d)", defaultPreviewLimit)),
		),
	)
	s.AddTool(tool, h.PreviewChart)
}

func registerPipelineDiagramTool(s *server.MCPServer, h *Handlers) {
	tool := mcp.NewTool("pipeline_diagram",
		mcp.WithDescription("Draws a chart's data pipeline (source, transform steps, marks). Supports PNG and SVG output formats."),
		chartArg(),
		mcp.WithString("output_path",
			mcp.Description("The output path for the diagram file. Supports .png and .svg extensions. Defaults to <output_dir>/<chart>.png"),
		),
	)
	s.AddTool(tool, h.PipelineDiagram)
}

func stringArg(request mcp.CallToolRequest, name string) string {
	v, _ := request.Params.Arguments[name].(string)
	return strings.TrimSpace(v)
}

func (h *Handlers) lookupChart(request mcp.CallToolRequest) (charts.Chart, *mcp.CallToolResult) {
	id := stringArg(request, "chart")
	if id == "" {
		return charts.Chart{}, newToolResultError("chart is required")
	}
	c, err := charts.Lookup(id)
	if err != nil {
		return charts.Chart{}, newToolResultError(err.Error())
	}
	return c, nil
}

// resolveTheme uses the explicit argument when given, else the stored theme.
func (h *Handlers) resolveTheme(request mcp.CallToolRequest) (theme.Theme, error) {
	if v := stringArg(request, "theme"); v != "" {
		return theme.Parse(v)
	}
	return theme.Current(theme.NewFileStore(h.cfg.ThemeFile))
}

func (h *Handlers) pageConfig() page.Config {
	cfg := page.DefaultConfig()
	cfg.Title = h.cfg.Title
	cfg.DataURL = h.cfg.DataURL
	return cfg
}

func (h *Handlers) outputDir(request mcp.CallToolRequest) string {
	if dir := stringArg(request, "output_dir"); dir != "" {
		return dir
	}
	return h.cfg.OutputDir
}

// BuildChartSpec handles build_chart_spec.
func (h *Handlers) BuildChartSpec(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	c, errResult := h.lookupChart(request)
	if errResult != nil {
		return errResult, nil
	}
	t, err := h.resolveTheme(request)
	if err != nil {
		return newToolResultError(err.Error()), nil
	}

	spec := c.Build(charts.Options{Theme: t, DataURL: h.cfg.DataURL})
	b, err := spec.JSON()
	if err != nil {
		return newToolResultError(fmt.Sprintf("failed to build spec: %v", err)), nil
	}

	var out strings.Builder
	if err := json.Indent(&out, b, "", "  "); err != nil {
		return newToolResultError(fmt.Sprintf("failed to format spec: %v", err)), nil
	}
	return mcp.NewToolResultText(out.String()), nil
}

// GenerateSite handles generate_site.
func (h *Handlers) GenerateSite(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	t, err := h.resolveTheme(request)
	if err != nil {
		return newToolResultError(err.Error()), nil
	}
	dir := h.outputDir(request)

	report, written, err := page.Build(ctx, h.pageConfig(), t, dir, h.logger)
	if err != nil {
		return newToolResultError(fmt.Sprintf("failed to generate site: %v", err)), nil
	}
	return mcp.NewToolResultText(buildSummary(report, dir, written)), nil
}

// ToggleTheme handles toggle_theme.
func (h *Handlers) ToggleTheme(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	dir := h.outputDir(request)
	store := theme.NewFileStore(h.cfg.ThemeFile)
	ind := &theme.PressedState{}
	c := theme.NewController(
		store,
		page.Renderer(h.pageConfig(), dir, h.logger),
		theme.WithIndicator(ind),
		theme.WithLogger(h.logger),
	)
	if _, err := c.Load(); err != nil {
		return newToolResultError(err.Error()), nil
	}
	next, err := c.Toggle(ctx)
	if err != nil {
		return newToolResultError(fmt.Sprintf("theme is now %s but the rebuild failed: %v", next, err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Theme is now %s (aria-pressed=%t), saved to %s. Site rebuilt in %s.",
		next, ind.Pressed(), store.Path(), dir)), nil
}

// ValidateContact handles validate_contact. A failing form is a normal
// result, not a tool error.
func (h *Handlers) ValidateContact(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	res := contact.Validate(contact.Fields{
		Name:    stringArg(request, "name"),
		Email:   stringArg(request, "email"),
		Message: stringArg(request, "message"),
	})
	b, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return newToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(b)), nil
}

// PreviewChart handles preview_chart.
func (h *Handlers) PreviewChart(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	c, errResult := h.lookupChart(request)
	if errResult != nil {
		return errResult, nil
	}
	path := stringArg(request, "dataset")
	if path == "" {
		path = h.cfg.DatasetPath
	}
	limit := defaultPreviewLimit
	if n, ok := request.Params.Arguments["limit"].(float64); ok && n > 0 {
		limit = int(n)
	}

	rows, err := dataflow.Load(path)
	if err != nil {
		return newToolResultError(fmt.Sprintf("failed to load dataset: %v", err)), nil
	}
	out, err := dataflow.Preview(c.Build(charts.Options{DataURL: h.cfg.DataURL}), rows)
	if err != nil {
		return newToolResultError(fmt.Sprintf("failed to run pipeline: %v", err)), nil
	}
	h.logger.Debug("Chart previewed", zap.String("chart", c.ID), zap.Int("in", len(rows)), zap.Int("out", len(out)))

	total := len(out)
	if len(out) > limit {
		out = out[:limit]
	}
	b, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return newToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("%s: %d rows after transforms (showing %d)\n\n%s", c.ID, total, len(out), b)), nil
}

// PipelineDiagram handles pipeline_diagram.
func (h *Handlers) PipelineDiagram(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	c, errResult := h.lookupChart(request)
	if errResult != nil {
		return errResult, nil
	}
	outputPath := filepath.Join(h.cfg.OutputDir, c.ID+".png")
	if op := stringArg(request, "output_path"); op != "" {
		outputPath = op
	}

	spec := c.Build(charts.Options{DataURL: h.cfg.DataURL})
	if err := diagram.Generate(c.ID, spec, outputPath); err != nil {
		return newToolResultError(fmt.Sprintf("failed to generate diagram: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Pipeline diagram generated successfully!\n\nOutput: %s\nSteps: %d", outputPath, len(spec.Transform))), nil
}

func newToolResultError(message string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{
				Type: "text",
				Text: message,
			},
		},
		IsError: true,
	}
}

func buildSummary(report *render.Report, dir string, written []string) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Site generated successfully!\n\nOutput: %s\nTheme: %s\nFiles written: %d\n\nCharts:\n", dir, report.Theme, len(written)))
	for _, o := range report.Outcomes {
		if o.Err != nil {
			sb.WriteString(fmt.Sprintf("  - %s: %s (%v)\n", o.ID, o.Status, o.Err))
			continue
		}
		sb.WriteString(fmt.Sprintf("  - %s: %s\n", o.ID, o.Status))
	}
	return sb.String()
}
