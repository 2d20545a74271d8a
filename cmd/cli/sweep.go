package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"solar-battery-sim/internal/analysis"
)

var sweepOpts struct {
	capacities []float64
	powers     []float64
	parallel   int
	top        int
}

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Rank battery sizes by self-sufficiency over the same data",
	RunE:  runSweep,
}

func init() {
	f := sweepCmd.Flags()
	f.Float64SliceVar(&sweepOpts.capacities, "capacities", []float64{2.5, 5, 7.5, 10, 15}, "usable capacities to try (kWh)")
	f.Float64SliceVar(&sweepOpts.powers, "powers", nil, "power ratings to try (kW, default: config)")
	f.IntVar(&sweepOpts.parallel, "parallel", 0, "concurrent simulations (0=GOMAXPROCS)")
	f.IntVar(&sweepOpts.top, "top", 0, "only print the best N (0=all)")
	rootCmd.AddCommand(sweepCmd)
}

func runSweep(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	_, ds, battery, err := loadRun()
	if err != nil {
		return err
	}

	start := time.Now()
	cands, err := analysis.Sweep(ctx, ds.Production, ds.Consumption, battery, analysis.SweepParams{
		CapacitiesKWh: sweepOpts.capacities,
		PowersKW:      sweepOpts.powers,
		Parallelism:   sweepOpts.parallel,
	})
	if err != nil {
		return err
	}
	log.Info().Int("candidates", len(cands)).Dur("elapsed", time.Since(start)).Msg("sweep done")

	ranked := analysis.RankBySelfSufficiency(cands)
	if sweepOpts.top > 0 && sweepOpts.top < len(ranked) {
		ranked = ranked[:sweepOpts.top]
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "rank\tcapacity_kwh\tpower_kw\tself_sufficiency\tgain\tself_consumption\timported_kwh\tcycles")
	for _, r := range ranked {
		fmt.Fprintf(tw, "%d\t%.2f\t%.2f\t%.1f%%\t+%.1f%%\t%.1f%%\t%.1f\t%.2f\n",
			r.Rank,
			r.Battery.CapacityKWh,
			r.Battery.MaxDischargeKW,
			r.SelfSufficiencyRate*100,
			r.GainRate*100,
			r.SelfConsumptionRate*100,
			r.EnergyImportedWh/1000,
			r.EquivalentFullCycles,
		)
	}
	return tw.Flush()
}
