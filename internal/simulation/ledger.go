package simulation

import (
	"time"

	"solar-battery-sim/internal/model"
)

// LedgerRow is one row of per-step output.
// This is the primary artifact for "what happened" in a simulation.
type LedgerRow struct {
	Index int
	Time  time.Time

	ProductionWh  float64
	ConsumptionWh float64

	Action model.Action

	ChargedWh   float64
	StoredWh    float64
	DrawnWh     float64
	DeliveredWh float64

	ImportedWh     float64
	ExportedWh     float64
	SelfConsumedWh float64

	SOCStartPct float64
	SOCEndPct   float64
	SOCWh       float64
}

// Window selects the rows whose timestamp falls in [from, to). A zero bound is
// open. Rows without a timestamp are only kept when both bounds are open.
func Window(ledger []LedgerRow, from, to time.Time) []LedgerRow {
	if from.IsZero() && to.IsZero() {
		return ledger
	}
	out := make([]LedgerRow, 0, len(ledger))
	for _, r := range ledger {
		if r.Time.IsZero() {
			continue
		}
		if !from.IsZero() && r.Time.Before(from) {
			continue
		}
		if !to.IsZero() && !r.Time.Before(to) {
			continue
		}
		out = append(out, r)
	}
	return out
}
