package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/junkd0g/vgcharts/internal/charts"
	"github.com/junkd0g/vgcharts/internal/contact"
	"github.com/junkd0g/vgcharts/internal/dataflow"
	"github.com/junkd0g/vgcharts/internal/diagram"
	"github.com/junkd0g/vgcharts/internal/page"
	"github.com/junkd0g/vgcharts/internal/render"
	"github.com/junkd0g/vgcharts/internal/theme"
)

var errInvalidForm = errors.New("contact form is invalid")

func (a *app) pageConfig() page.Config {
	cfg := page.DefaultConfig()
	cfg.Title = a.cfg.Title
	cfg.DataURL = a.cfg.DataURL
	return cfg
}

func (a *app) store() *theme.FileStore {
	return theme.NewFileStore(a.cfg.ThemeFile)
}

// resolveTheme prefers --theme, then the persisted value.
func (a *app) resolveTheme() (theme.Theme, error) {
	if a.themeName != "" {
		return theme.Parse(a.themeName)
	}
	return theme.Current(a.store())
}

func (a *app) buildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Render every chart and write the static site",
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := a.resolveTheme()
			if err != nil {
				return err
			}
			report, written, err := page.Build(cmd.Context(), a.pageConfig(), t, a.cfg.OutputDir, a.logger)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote %d files to %s (theme %s)\n", len(written), a.cfg.OutputDir, t)
			for _, o := range report.Outcomes {
				fmt.Fprintf(out, "  %-6s %s\n", o.ID, o.Status)
			}
			if n := report.Count(render.StatusFailed); n > 0 {
				fmt.Fprintf(out, "%d chart(s) failed; the page shows an inline message for them\n", n)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&a.themeName, "theme", "", "dark or light (default: persisted theme)")
	return cmd
}

func (a *app) specCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:       "spec <chart>",
		Short:     "Print one chart's Vega-Lite spec",
		Args:      cobra.ExactArgs(1),
		ValidArgs: charts.IDs(),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := charts.Lookup(args[0])
			if err != nil {
				return err
			}
			t, err := a.resolveTheme()
			if err != nil {
				return err
			}
			spec := c.Build(charts.Options{Theme: t, DataURL: a.cfg.DataURL})
			if err := spec.Validate(); err != nil {
				return err
			}
			b, err := json.MarshalIndent(spec, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal spec: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(b))
			return nil
		},
	}
	cmd.Flags().StringVar(&a.themeName, "theme", "", "dark or light (default: persisted theme)")
	return cmd
}

func (a *app) themeShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the persisted theme",
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := theme.Current(a.store())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), t)
			return nil
		},
	}
}

func (a *app) themeToggleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "toggle",
		Short: "Flip the theme, persist it and rebuild the site",
		RunE: func(cmd *cobra.Command, args []string) error {
			store := a.store()
			ind := &theme.PressedState{}
			c := theme.NewController(store,
				page.Renderer(a.pageConfig(), a.cfg.OutputDir, a.logger),
				theme.WithIndicator(ind),
				theme.WithLogger(a.logger))
			if _, err := c.Load(); err != nil {
				return err
			}
			next, err := c.Toggle(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), next)
			fmt.Fprintf(cmd.ErrOrStderr(), "toggle pressed=%t, saved to %s\n", ind.Pressed(), store.Path())
			return nil
		},
	}
}

func (a *app) configInitCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the effective configuration to the --config path",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(a.configPath); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", a.configPath)
			}
			if err := a.cfg.Save(a.configPath); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), a.configPath)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")
	return cmd
}

func (a *app) validateCmd() *cobra.Command {
	var f contact.Fields
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate contact form input",
		RunE: func(cmd *cobra.Command, args []string) error {
			res := contact.Validate(f)
			out := cmd.OutOrStdout()
			if res.OK() {
				fmt.Fprintln(out, res.Note)
				return nil
			}
			fields := make([]string, 0, len(res.Errors))
			for k := range res.Errors {
				fields = append(fields, k)
			}
			sort.Strings(fields)
			for _, k := range fields {
				fmt.Fprintf(out, "%s: %s\n", k, res.Errors[k])
			}
			return errInvalidForm
		},
	}
	cmd.Flags().StringVar(&f.Name, "name", "", "Sender name")
	cmd.Flags().StringVar(&f.Email, "email", "", "Sender email")
	cmd.Flags().StringVar(&f.Message, "message", "", "Message body")
	return cmd
}

func (a *app) previewCmd() *cobra.Command {
	var (
		dataset string
		limit   int
	)
	cmd := &cobra.Command{
		Use:   "preview <chart>",
		Short: "Run a chart's transforms over a local copy of the dataset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := charts.Lookup(args[0])
			if err != nil {
				return err
			}
			if dataset == "" {
				dataset = a.cfg.DatasetPath
			}
			rows, err := dataflow.Load(dataset)
			if err != nil {
				return err
			}
			out, err := dataflow.Preview(c.Build(charts.Options{DataURL: a.cfg.DataURL}), rows)
			if err != nil {
				return err
			}
			a.logger.Debug("Chart previewed", zap.String("chart", c.ID), zap.Int("rows", len(out)))

			if limit > 0 && len(out) > limit {
				out = out[:limit]
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			for _, r := range out {
				if err := enc.Encode(r); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&dataset, "dataset", "", "CSV or XLSX dataset (default: dataset_path from config)")
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum rows to print (0 for all)")
	return cmd
}

func (a *app) diagramCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "diagram <chart>",
		Short: "Draw a chart's data pipeline as PNG or SVG",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := charts.Lookup(args[0])
			if err != nil {
				return err
			}
			if output == "" {
				output = filepath.Join(a.cfg.OutputDir, c.ID+".png")
			}
			if err := diagram.Generate(c.ID, c.Build(charts.Options{DataURL: a.cfg.DataURL}), output); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), output)
			return nil
		},
	}
	cmd.Flags().StringVar(&output, "file", "", "Output file, .png or .svg (default: <out>/<chart>.png)")
	return cmd
}
