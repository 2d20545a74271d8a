package simulation

import (
	"fmt"
	"math"

	"solar-battery-sim/internal/model"
)

// Metrics are the aggregate figures derived from one pass and the raw series.
// Rates are fractions in [0, 1].
type Metrics struct {
	TotalProductionWh  float64
	TotalConsumptionWh float64

	EnergyImportedWh   float64
	EnergyExportedWh   float64
	EnergyStoredWh     float64
	EnergyRestitutedWh float64
	SelfConsumedWh     float64

	SelfConsumptionRate float64
	SelfSufficiencyRate float64

	// Baseline figures describe the same site without a battery.
	BaselineSelfConsumedWh      float64
	BaselineImportedWh          float64
	BaselineExportedWh          float64
	BaselineSelfConsumptionRate float64
	BaselineSelfSufficiencyRate float64

	PeakProductionKW  float64
	PeakConsumptionKW float64

	LossesWh             float64
	EquivalentFullCycles float64
}

// Aggregate derives the ratio metrics. It fails with ErrDegenerateInput when
// either total is zero, because both rate families would divide by it.
func Aggregate(acc Accumulators, production, consumption model.Series, cfg model.BatteryConfig) (Metrics, error) {
	if len(production) != len(consumption) {
		return Metrics{}, fmt.Errorf("%w: production has %d steps, consumption has %d", model.ErrMisalignedSeries, len(production), len(consumption))
	}
	if !(cfg.StepHours > 0) {
		return Metrics{}, fmt.Errorf("%w: step_hours must be > 0, got %v", model.ErrInvalidConfig, cfg.StepHours)
	}
	if acc.ProductionWh == 0 {
		return Metrics{}, fmt.Errorf("%w: total production is zero", model.ErrDegenerateInput)
	}
	if acc.ConsumptionWh == 0 {
		return Metrics{}, fmt.Errorf("%w: total consumption is zero", model.ErrDegenerateInput)
	}

	m := Metrics{
		TotalProductionWh:  acc.ProductionWh,
		TotalConsumptionWh: acc.ConsumptionWh,

		EnergyImportedWh:   acc.ImportedWh,
		EnergyExportedWh:   acc.ExportedWh,
		EnergyStoredWh:     acc.StoredWh,
		EnergyRestitutedWh: acc.RestoredWh,
		SelfConsumedWh:     acc.SelfConsumedWh,

		SelfConsumptionRate: acc.SelfConsumedWh / acc.ProductionWh,
		SelfSufficiencyRate: acc.SelfConsumedWh / acc.ConsumptionWh,

		LossesWh: (acc.ChargedWh - acc.StoredWh) + (acc.DrawnWh - acc.RestoredWh),
	}

	for i := range production {
		p, c := production[i].Wh, consumption[i].Wh
		m.BaselineSelfConsumedWh += math.Min(p, c)
		m.BaselineImportedWh += math.Max(c-p, 0)
		m.BaselineExportedWh += math.Max(p-c, 0)
	}
	m.BaselineSelfConsumptionRate = m.BaselineSelfConsumedWh / acc.ProductionWh
	m.BaselineSelfSufficiencyRate = m.BaselineSelfConsumedWh / acc.ConsumptionWh

	perHour := 1 / cfg.StepHours
	m.PeakProductionKW = production.Peak() * perHour / 1000
	m.PeakConsumptionKW = consumption.Peak() * perHour / 1000

	if window := cfg.MaxSOCWh() - cfg.MinSOCWh(); window > 0 {
		m.EquivalentFullCycles = (acc.StoredWh + acc.DrawnWh) / 2 / window
	}
	return m, nil
}
