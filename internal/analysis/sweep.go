package analysis

import (
	"context"
	"errors"
	"fmt"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"

	"solar-battery-sim/internal/model"
	"solar-battery-sim/internal/simulation"
)

// SweepParams is the grid of battery sizes to evaluate. Every capacity is
// combined with every power; an empty PowersKW keeps the base power limits.
type SweepParams struct {
	CapacitiesKWh []float64
	PowersKW      []float64
	// Parallelism bounds concurrent simulations; <= 0 means GOMAXPROCS.
	Parallelism int
}

// Candidate is one evaluated battery. Only the aggregate figures are kept.
type Candidate struct {
	Rank    int
	Battery model.BatteryConfig
	simulation.Metrics
	FinalSOCPct float64
	// GainRate is the self-sufficiency gained over the site without a battery.
	GainRate float64
}

func (p SweepParams) Validate() error {
	if len(p.CapacitiesKWh) == 0 {
		return fmt.Errorf("%w: at least one capacity is required", model.ErrInvalidConfig)
	}
	for _, kw := range p.PowersKW {
		if kw < 0 || math.IsNaN(kw) {
			return fmt.Errorf("%w: sweep power must be >= 0, got %v", model.ErrInvalidConfig, kw)
		}
	}
	return nil
}

// Configs expands the grid over base, capacities outermost.
func (p SweepParams) Configs(base model.BatteryConfig) []model.BatteryConfig {
	var out []model.BatteryConfig
	add := func(cfg model.BatteryConfig, grid int) {
		if cfg.Name == "" || grid > 1 {
			cfg.Name = fmt.Sprintf("%gkWh/%gkW", cfg.CapacityKWh, cfg.MaxDischargeKW)
		}
		out = append(out, cfg)
	}
	for _, capKWh := range p.CapacitiesKWh {
		cfg := base
		cfg.CapacityKWh = capKWh
		if len(p.PowersKW) == 0 {
			add(cfg, len(p.CapacitiesKWh))
			continue
		}
		for _, kw := range p.PowersKW {
			cfg.MaxChargeKW = kw
			cfg.MaxDischargeKW = kw
			add(cfg, len(p.CapacitiesKWh)*len(p.PowersKW))
		}
	}
	return out
}

// Sweep simulates every battery of the grid over the same series. Candidates
// come back in grid order; use RankBySelfSufficiency to order them.
func Sweep(ctx context.Context, production, consumption model.Series, base model.BatteryConfig, params SweepParams) ([]Candidate, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return Compare(ctx, production, consumption, params.Configs(base), params.Parallelism)
}

// Compare simulates each configuration over the same series concurrently,
// keeping the input order. The first failure cancels the remaining runs.
func Compare(ctx context.Context, production, consumption model.Series, configs []model.BatteryConfig, parallelism int) ([]Candidate, error) {
	if len(configs) == 0 {
		return nil, errors.New("no battery configuration to simulate")
	}
	if parallelism <= 0 {
		parallelism = runtime.GOMAXPROCS(0)
	}

	out := make([]Candidate, len(configs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(parallelism)
	for i, cfg := range configs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := simulation.Simulate(production, consumption, cfg)
			if err != nil {
				return fmt.Errorf("%s: %w", label(cfg, i), err)
			}
			out[i] = Candidate{
				Battery:     cfg,
				Metrics:     res.Metrics,
				FinalSOCPct: res.FinalSOCPct,
				GainRate:    res.SelfSufficiencyRate - res.BaselineSelfSufficiencyRate,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func label(cfg model.BatteryConfig, i int) string {
	if cfg.Name != "" {
		return cfg.Name
	}
	return fmt.Sprintf("battery #%d", i)
}
