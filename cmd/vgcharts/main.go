package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/junkd0g/vgcharts/internal/config"
	"github.com/junkd0g/vgcharts/internal/logging"
)

// app carries what every command needs once flags are parsed.
type app struct {
	configPath string
	verbose    bool
	outDir     string
	themeName  string

	cfg    *config.Config
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "vgcharts",
		Short: "Video game sales charts as Vega-Lite specs",
		Long: `vgcharts builds the eight video game sales charts as Vega-Lite v5
specifications and writes them, with a static page that embeds them, to disk.

The page carries a dark/light theme toggle and a front-end-only contact form.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.configPath)
			if err != nil {
				return err
			}
			if a.outDir != "" {
				cfg.OutputDir = a.outDir
			}
			a.cfg = cfg

			logger, err := logging.New(cfg.Logging.Level, a.verbose)
			if err != nil {
				return err
			}
			a.logger = logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "vgcharts.yaml", "Config file")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable verbose logging")
	root.PersistentFlags().StringVarP(&a.outDir, "out", "o", "", "Output directory (default: output_dir from config)")

	themeCmd := &cobra.Command{
		Use:   "theme",
		Short: "Show or toggle the persisted theme",
	}
	themeCmd.AddCommand(a.themeShowCmd(), a.themeToggleCmd())

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file",
	}
	configCmd.AddCommand(a.configInitCmd())

	root.AddCommand(
		a.buildCmd(),
		a.specCmd(),
		themeCmd,
		configCmd,
		a.validateCmd(),
		a.previewCmd(),
		a.diagramCmd(),
	)
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
