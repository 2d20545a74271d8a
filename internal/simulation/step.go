package simulation

import (
	"math"

	"solar-battery-sim/internal/model"
)

// limits holds the per-run constants of the dispatch rule, all in Wh.
type limits struct {
	minWh       float64
	maxWh       float64
	capacityWh  float64
	chargeWh    float64 // grid-side energy per step allowed by the charge rating
	dischargeWh float64 // grid-side energy per step allowed by the discharge rating
	efficiency  float64
}

func newLimits(cfg model.BatteryConfig) limits {
	return limits{
		minWh:       cfg.MinSOCWh(),
		maxWh:       cfg.MaxSOCWh(),
		capacityWh:  cfg.CapacityWh(),
		chargeWh:    cfg.MaxChargeWhPerStep(),
		dischargeWh: cfg.MaxDischargeWhPerStep(),
		efficiency:  cfg.Efficiency,
	}
}

// stepOutcome is everything one step moved. Grid-side quantities are measured
// at the household bus, battery-side quantities inside the cell.
type stepOutcome struct {
	ChargedWh   float64 // grid-side surplus sent to the battery
	StoredWh    float64 // battery-side energy added
	DrawnWh     float64 // battery-side energy removed
	DeliveredWh float64 // grid-side energy that reached the load

	ImportedWh     float64
	ExportedWh     float64
	SelfConsumedWh float64

	// SOCRawWh is the state of charge before clamping to the SOC window.
	SOCRawWh float64
	SOCWh    float64
}

// step applies the dispatch rule to one interval, starting from socWh.
func (l limits) step(socWh, productionWh, consumptionWh float64) stepOutcome {
	var out stepOutcome
	surplus := productionWh - consumptionWh

	if surplus >= 0 {
		headroom := math.Max(0, l.maxWh-socWh) / l.efficiency
		out.ChargedWh = math.Min(surplus, math.Min(l.chargeWh, headroom))
		out.StoredWh = out.ChargedWh * l.efficiency
		socWh += out.StoredWh

		if residual := surplus - out.ChargedWh; residual > 0 {
			out.ExportedWh = residual
		}
		out.SelfConsumedWh = consumptionWh
	} else {
		deficit := -surplus
		request := math.Min(deficit, l.dischargeWh)
		available := math.Max(0, socWh-l.minWh)
		out.DrawnWh = math.Min(request/l.efficiency, available)
		socWh -= out.DrawnWh
		out.DeliveredWh = out.DrawnWh * l.efficiency

		if residual := deficit - out.DeliveredWh; residual > 0 {
			out.ImportedWh = residual
		}
		out.SelfConsumedWh = productionWh + out.DeliveredWh
	}

	out.SOCRawWh = socWh
	out.SOCWh = math.Max(l.minWh, math.Min(l.maxWh, socWh))
	return out
}

func (l limits) percent(socWh float64) float64 {
	return socWh / l.capacityWh * 100
}
