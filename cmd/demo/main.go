package main

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"solar-battery-sim/internal/config"
	"solar-battery-sim/internal/model"
	"solar-battery-sim/internal/simulation"
)

// Demo:
//   - Build a synthetic summer day: a PV bell curve and a household load with
//     morning and evening peaks
//   - Instantiate a battery (defaults or --config)
//   - Print the steps where the battery does something, then the summary
var opts struct {
	cfgPath string
	days    int
	peakKW  float64
	step    float64
	rows    int
	outCSV  string
}

var rootCmd = &cobra.Command{
	Use:          "demo",
	Short:        "Simulate a battery on a synthetic PV and load profile",
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	f := rootCmd.Flags()
	f.StringVar(&opts.cfgPath, "config", "", "path to YAML config (optional, only the battery is used)")
	f.IntVar(&opts.days, "days", 1, "number of days to simulate")
	f.Float64Var(&opts.peakKW, "peak-kw", 4, "PV peak power (kW)")
	f.Float64Var(&opts.step, "step-hours", 0.25, "step length (hours)")
	f.IntVarP(&opts.rows, "rows", "n", 24, "number of active steps to print")
	f.StringVar(&opts.outCSV, "out", "", "optional path to write the ledger CSV")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	// Defaults (can be overridden via --config).
	battery := config.BatteryConfig{
		Name:        "demo 5 kWh",
		CapacityKWh: config.Float(5),
		MaxPowerKW:  config.Float(2.5),
		Efficiency:  config.Float(0.95),
		MinSOC:      config.Float(0.1),
		MaxSOC:      config.Float(1),
	}
	if opts.cfgPath != "" {
		cfg, err := config.Load(opts.cfgPath)
		if err != nil {
			return err
		}
		battery = cfg.Battery
	}
	cfg := battery.WithDefaults().ToModel(opts.step)

	start := time.Date(2024, 6, 21, 0, 0, 0, 0, time.UTC)
	production, consumption := syntheticDay(start, opts.days, opts.step, opts.peakKW)

	res, err := simulation.Simulate(production, consumption, cfg)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "time\tpv_wh\tload_wh\taction\tstored_wh\tdelivered_wh\timported_wh\texported_wh\tsoc")
	printed := 0
	for _, r := range res.Ledger {
		if r.Action == model.ActionIdle {
			continue
		}
		if printed == opts.rows {
			break
		}
		printed++
		fmt.Fprintf(tw, "%s\t%.0f\t%.0f\t%s\t%.0f\t%.0f\t%.0f\t%.0f\t%.1f%%\n",
			r.Time.Format("Jan 02 15:04"), r.ProductionWh, r.ConsumptionWh, r.Action,
			r.StoredWh, r.DeliveredWh, r.ImportedWh, r.ExportedWh, r.SOCEndPct)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s: %s\n", cfg.Name, res)
	fmt.Fprintf(w, "imported %.1f kWh instead of %.1f kWh, %.2f full cycles\n",
		res.EnergyImportedWh/1000, res.BaselineImportedWh/1000, res.EquivalentFullCycles)

	if opts.outCSV != "" {
		if err := os.MkdirAll(filepath.Dir(opts.outCSV), 0o755); err != nil {
			return err
		}
		if err := simulation.WriteLedgerCSV(opts.outCSV, res.Ledger); err != nil {
			return err
		}
		fmt.Fprintf(w, "wrote ledger to %s\n", opts.outCSV)
	}
	return nil
}

// syntheticDay returns days of PV (a sine between 06:00 and 21:00 peaking at
// peakKW) and a load of 300 W base with peaks at 07:30 and 19:30, in Wh per step.
func syntheticDay(start time.Time, days int, stepHours, peakKW float64) (model.Series, model.Series) {
	perDay := int(math.Round(24 / stepHours))
	n := perDay * days
	pv := make([]float64, n)
	load := make([]float64, n)
	for i := 0; i < n; i++ {
		h := math.Mod(float64(i)*stepHours, 24) + stepHours/2
		if h > 6 && h < 21 {
			pv[i] = peakKW * 1000 * math.Sin(math.Pi*(h-6)/15) * stepHours
		}
		w := 300 + 1200*math.Exp(-math.Pow(h-7.5, 2)/0.5) + 1800*math.Exp(-math.Pow(h-19.5, 2)/1.5)
		load[i] = w * stepHours
	}
	step := time.Duration(stepHours * float64(time.Hour))
	return model.SeriesFromValues(start, step, pv), model.SeriesFromValues(start, step, load)
}
