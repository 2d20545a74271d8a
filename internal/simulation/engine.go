package simulation

import (
	"fmt"

	"solar-battery-sim/internal/model"
)

// Engine runs simulations. It holds no state between runs, so one value can
// serve concurrent callers.
type Engine struct{}

func New() *Engine { return &Engine{} }

// Simulate runs the dispatch pass and derives the metrics in one call.
func Simulate(production, consumption model.Series, cfg model.BatteryConfig) (*Result, error) {
	return New().Run(production, consumption, cfg)
}

// Run executes the dispatch pass and aggregates its metrics. It either returns a
// complete Result or an error wrapping one of the model error kinds.
func (e *Engine) Run(production, consumption model.Series, cfg model.BatteryConfig) (*Result, error) {
	tr, err := e.Dispatch(production, consumption, cfg)
	if err != nil {
		return nil, err
	}
	m, err := Aggregate(tr.Totals, production, consumption, cfg)
	if err != nil {
		return nil, err
	}
	return &Result{
		SOCTrajectoryPct: tr.SOCPct,
		Ledger:           tr.Ledger,
		Totals:           tr.Totals,
		Metrics:          m,
		FinalSOCPct:      tr.FinalSOCPct,
	}, nil
}

// Dispatch is the single forward pass over both series. The state of charge is
// local to the call and starts at the configured initial level (MinSOC by default).
func (e *Engine) Dispatch(production, consumption model.Series, cfg model.BatteryConfig) (*Trajectory, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := model.CheckAligned(production, consumption, cfg.StepDuration()); err != nil {
		return nil, err
	}
	if err := production.Validate("production"); err != nil {
		return nil, err
	}
	if err := consumption.Validate("consumption"); err != nil {
		return nil, err
	}

	lim := newLimits(cfg)
	soc := cfg.InitialSOCWh()

	tr := &Trajectory{
		SOCPct: make([]float64, 0, len(production)),
		Ledger: make([]LedgerRow, 0, len(production)),
	}
	acc := &tr.Totals

	for idx := range production {
		p, c := production[idx].Wh, consumption[idx].Wh
		startPct := lim.percent(soc)

		out := lim.step(soc, p, c)
		soc = out.SOCWh

		acc.add(out, p, c)
		pct := lim.percent(soc)
		tr.SOCPct = append(tr.SOCPct, pct)

		tr.Ledger = append(tr.Ledger, LedgerRow{
			Index: idx,
			Time:  production[idx].Time,

			ProductionWh:  p,
			ConsumptionWh: c,

			Action: model.ActionFromFlows(out.StoredWh, out.DrawnWh),

			ChargedWh:   out.ChargedWh,
			StoredWh:    out.StoredWh,
			DrawnWh:     out.DrawnWh,
			DeliveredWh: out.DeliveredWh,

			ImportedWh:     out.ImportedWh,
			ExportedWh:     out.ExportedWh,
			SelfConsumedWh: out.SelfConsumedWh,

			SOCStartPct: startPct,
			SOCEndPct:   pct,
			SOCWh:       soc,
		})
	}

	tr.FinalSOCPct = lim.percent(soc)
	return tr, nil
}

// Trajectory is the raw output of Dispatch, before any ratio is derived.
type Trajectory struct {
	SOCPct      []float64
	Ledger      []LedgerRow
	Totals      Accumulators
	FinalSOCPct float64
}

// Accumulators are the running totals of one pass. Every field only grows.
type Accumulators struct {
	ChargedWh      float64 // grid-side, before charge losses
	StoredWh       float64 // battery-side
	DrawnWh        float64 // battery-side
	RestoredWh     float64 // grid-side, after discharge losses
	ImportedWh     float64
	ExportedWh     float64
	SelfConsumedWh float64
	ProductionWh   float64
	ConsumptionWh  float64
}

func (a *Accumulators) add(out stepOutcome, productionWh, consumptionWh float64) {
	a.ChargedWh += out.ChargedWh
	a.StoredWh += out.StoredWh
	a.DrawnWh += out.DrawnWh
	a.RestoredWh += out.DeliveredWh
	a.ImportedWh += out.ImportedWh
	a.ExportedWh += out.ExportedWh
	a.SelfConsumedWh += out.SelfConsumedWh
	a.ProductionWh += productionWh
	a.ConsumptionWh += consumptionWh
}

// Result is the immutable outcome of one simulation.
type Result struct {
	// SOCTrajectoryPct has one value per input step, in percent of capacity.
	SOCTrajectoryPct []float64
	Ledger           []LedgerRow
	Totals           Accumulators
	Metrics
	FinalSOCPct float64
}

func (r *Result) String() string {
	return fmt.Sprintf("steps=%d self_consumption=%.1f%% (baseline %.1f%%) self_sufficiency=%.1f%% (baseline %.1f%%)",
		len(r.SOCTrajectoryPct),
		r.SelfConsumptionRate*100, r.BaselineSelfConsumptionRate*100,
		r.SelfSufficiencyRate*100, r.BaselineSelfSufficiencyRate*100)
}
