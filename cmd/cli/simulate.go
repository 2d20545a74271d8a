package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"solar-battery-sim/internal/simulation"
)

var simulateOpts struct {
	out   string
	start string
	end   string
	n     int
}

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run one simulation and write the per-step ledger as CSV",
	RunE:  runSimulate,
}

func init() {
	f := simulateCmd.Flags()
	f.StringVarP(&simulateOpts.out, "out", "o", "", "output CSV path (default: output.path from config)")
	f.StringVar(&simulateOpts.start, "start", "", "only write ledger rows at or after this time (RFC 3339 or YYYY-MM-DD)")
	f.StringVar(&simulateOpts.end, "end", "", "only write ledger rows before this time")
	f.IntVarP(&simulateOpts.n, "n", "n", 0, "limit to the first N steps (0=all)")
	rootCmd.AddCommand(simulateCmd)
}

func runSimulate(cmd *cobra.Command, args []string) error {
	cfg, ds, battery, err := loadRun()
	if err != nil {
		return err
	}
	production, consumption := ds.Production, ds.Consumption
	if n := simulateOpts.n; n > 0 && n < len(production) {
		production, consumption = production[:n], consumption[:n]
	}

	res, err := simulation.Simulate(production, consumption, battery)
	if err != nil {
		return err
	}

	from, err := parseTime(simulateOpts.start)
	if err != nil {
		return fmt.Errorf("--start: %w", err)
	}
	to, err := parseTime(simulateOpts.end)
	if err != nil {
		return fmt.Errorf("--end: %w", err)
	}
	rows := simulation.Window(res.Ledger, from, to)

	outPath := simulateOpts.out
	if outPath == "" {
		outPath = cfg.Resolve(cfg.Output.Path)
	}
	if outPath != "" {
		// ensure output dir exists
		if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
			return err
		}
		if err := simulation.WriteLedgerCSV(outPath, rows); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d rows to %s\n", len(rows), outPath)
	}

	printSummary(cmd, battery.Name, res)
	return nil
}

func printSummary(cmd *cobra.Command, name string, res *simulation.Result) {
	w := cmd.OutOrStdout()
	if name != "" {
		fmt.Fprintf(w, "Battery: %s\n", name)
	}
	fmt.Fprintf(w, "Production=%.1f kWh Consumption=%.1f kWh\n", res.TotalProductionWh/1000, res.TotalConsumptionWh/1000)
	fmt.Fprintf(w, "Imported=%.1f kWh (baseline %.1f) Exported=%.1f kWh (baseline %.1f)\n",
		res.EnergyImportedWh/1000, res.BaselineImportedWh/1000,
		res.EnergyExportedWh/1000, res.BaselineExportedWh/1000)
	fmt.Fprintf(w, "Stored=%.1f kWh Restituted=%.1f kWh Losses=%.1f kWh Cycles=%.2f\n",
		res.EnergyStoredWh/1000, res.EnergyRestitutedWh/1000, res.LossesWh/1000, res.EquivalentFullCycles)
	fmt.Fprintf(w, "Self-consumption=%.1f%% (baseline %.1f%%) Self-sufficiency=%.1f%% (baseline %.1f%%)\n",
		res.SelfConsumptionRate*100, res.BaselineSelfConsumptionRate*100,
		res.SelfSufficiencyRate*100, res.BaselineSelfSufficiencyRate*100)
	fmt.Fprintf(w, "Peak production=%.2f kW Peak consumption=%.2f kW Final SOC=%.1f%%\n",
		res.PeakProductionKW, res.PeakConsumptionKW, res.FinalSOCPct)
}

func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	return time.Parse("2006-01-02", s)
}
