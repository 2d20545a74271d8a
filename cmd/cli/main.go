package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"solar-battery-sim/internal/config"
	"solar-battery-sim/internal/data"
	"solar-battery-sim/internal/logging"
	"solar-battery-sim/internal/model"
)

var (
	cfgPath  string
	dataPath string
	logLevel string

	log zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "cli",
	Short: "Simulate a home battery against measured PV production and consumption",
	Example: `  cli simulate --config examples/config.yaml --out results/simulation.csv
  cli sweep --config examples/config.yaml --capacities 2.5,5,10 --powers 2.5,5
  cli potential --config examples/config.yaml
  cli columns --data examples/data/sample_day.csv`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		log = logging.NewWithWriter("cli", os.Stderr)
		return logging.SetLevel(logLevel)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "examples/config.yaml", "path to YAML config")
	rootCmd.PersistentFlags().StringVarP(&dataPath, "data", "d", "", "input CSV/JSON (overrides input.path)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadRun reads the config and its dataset and returns the battery at the
// dataset's step.
func loadRun() (*config.Config, *data.Dataset, model.BatteryConfig, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, nil, model.BatteryConfig{}, fmt.Errorf("load config: %w", err)
	}
	if dataPath != "" {
		abs, err := filepath.Abs(dataPath)
		if err != nil {
			return nil, nil, model.BatteryConfig{}, err
		}
		cfg.Input.Path = abs
	}
	ds, err := cfg.LoadDataset()
	if err != nil {
		return nil, nil, model.BatteryConfig{}, err
	}
	log.Debug().
		Str("input", cfg.Input.Path).
		Int("steps", len(ds.Production)).
		Float64("step_hours", ds.StepHours).
		Msg("dataset loaded")
	return cfg, ds, cfg.Battery.ToModel(ds.StepHours), nil
}
