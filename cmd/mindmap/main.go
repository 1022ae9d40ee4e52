// Command mindmap serves an interactive, expandable mind-map canvas and
// offers console views of the same data.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/ritzau/mindmap/pkg/config"
	"github.com/ritzau/mindmap/pkg/dataset"
	"github.com/ritzau/mindmap/pkg/layout"
	"github.com/ritzau/mindmap/pkg/logging"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			os.Exit(130) // Standard shell convention for SIGINT
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// app carries the configuration resolved before any command runs
type app struct {
	configPath string
	cfg        *config.Config
}

func newRootCommand() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "mindmap",
		Short: "Interactive expandable mind-map canvas",
		Long: `mindmap serves a canvas where clicking a node reveals its children
and clicking it again hides every descendant.

Configuration is read from defaults, an optional mindmap.toml, MINDMAP_*
environment variables and flags, in increasing priority.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd.Flags())
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.serve(cmd.Context())
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", config.DefaultFile, "config file (TOML)")
	pf.String("dataset", dataset.DefaultRef, "dataset: builtin:<name> or a .toml/.json file")
	pf.String("layout", layout.DefaultPreset, fmt.Sprintf("layout preset %v", layout.PresetNames()))
	pf.Float64("spacing", 0, "horizontal distance between siblings (0 = preset)")
	pf.Float64("offset", 0, "vertical distance between parent and children (0 = preset)")
	pf.String("direction", "", "children below (down) or above (up) the parent")
	pf.String("offsets", "", "honor explicit child offsets: on or off (default: preset)")
	pf.String("verbosity", "", "log level: trace, debug, info, warn, error")
	pf.CountP("verbose", "v", "increase log verbosity (-v debug, -vv trace)")
	pf.String("log-format", "text", "log format: text or json")

	addServeFlags(root.Flags())

	root.AddCommand(
		newServeCommand(a),
		newTreeCommand(a),
		newClickCommand(a),
	)
	return root
}

// setup loads configuration and configures logging
func (a *app) setup(flags *pflag.FlagSet) error {
	cfg, err := config.LoadFile(flags, a.configPath)
	if err != nil {
		return err
	}

	level, err := cfg.LogLevel()
	if err != nil {
		return err
	}
	logging.Configure(os.Stderr, level, cfg.JSONLogs())
	logging.Debug("configuration loaded", "dataset", cfg.Dataset, "layout", cfg.Layout)

	a.cfg = cfg
	return nil
}

// load resolves the configured dataset and layout
func (a *app) load() (*dataset.Dataset, layout.Config, error) {
	lc, err := a.cfg.LayoutConfig()
	if err != nil {
		return nil, layout.Config{}, err
	}
	ds, err := dataset.Load(a.cfg.Dataset)
	if err != nil {
		return nil, layout.Config{}, err
	}
	return ds, lc, nil
}
