package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"solar-battery-sim/internal/analysis"
	"solar-battery-sim/internal/data"
)

var potentialCmd = &cobra.Command{
	Use:   "potential",
	Short: "Summarise daily surplus and deficit and suggest a capacity",
	RunE:  runPotential,
}

var columnsCmd = &cobra.Command{
	Use:   "columns",
	Short: "List the columns of a CSV file",
	RunE:  runColumns,
}

func init() {
	rootCmd.AddCommand(potentialCmd)
	rootCmd.AddCommand(columnsCmd)
}

func runPotential(cmd *cobra.Command, args []string) error {
	_, ds, _, err := loadRun()
	if err != nil {
		return err
	}
	p := analysis.ComputePotential(ds.Production, ds.Consumption, ds.StepHours)

	w := cmd.OutOrStdout()
	if !p.StartUTC.IsZero() {
		fmt.Fprintf(w, "Window: %s .. %s\n", p.StartUTC.Format("2006-01-02 15:04"), p.EndUTC.Format("2006-01-02 15:04"))
	}
	fmt.Fprintf(w, "Days=%d Production=%.1f kWh Consumption=%.1f kWh\n", p.Days, p.TotalProductionWh/1000, p.TotalConsumptionWh/1000)
	fmt.Fprintf(w, "Daily surplus: mean=%.2f p50=%.2f p95=%.2f kWh\n", p.MeanDailySurplusWh/1000, p.P50DailySurplusWh/1000, p.P95DailySurplusWh/1000)
	fmt.Fprintf(w, "Daily deficit: mean=%.2f p50=%.2f p95=%.2f kWh\n", p.MeanDailyDeficitWh/1000, p.P50DailyDeficitWh/1000, p.P95DailyDeficitWh/1000)
	fmt.Fprintf(w, "Shiftable: mean=%.2f p95=%.2f kWh\n", p.MeanDailyShiftableWh/1000, p.P95DailyShiftableWh/1000)
	fmt.Fprintf(w, "Suggested capacity: %.1f kWh\n", p.SuggestedCapacityKWh)
	return nil
}

func runColumns(cmd *cobra.Command, args []string) error {
	path := dataPath
	if len(args) > 0 {
		path = args[0]
	}
	if path == "" {
		return fmt.Errorf("--data is required")
	}
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	cols, delim, err := data.Columns(f, 0)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "delimiter %q\n", string(delim))
	for i, c := range cols {
		fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\n", i, c)
	}
	return nil
}
