package models

import (
	"time"

	"solar-battery-sim/internal/analysis"
	"solar-battery-sim/internal/simulation"
)

// SimulationResponse represents the response from a simulation run
type SimulationResponse struct {
	ID               string            `json:"id,omitempty"`
	Status           string            `json:"status"`
	ExpiresAt        *time.Time        `json:"expires_at,omitempty"`
	Summary          SimulationSummary `json:"summary"`
	SOCTrajectoryPct []float64         `json:"soc_trajectory_pct"`
	Ledger           []LedgerRow       `json:"ledger,omitempty"`
}

// SimulationSummary contains aggregated simulation results
type SimulationSummary struct {
	Battery   BatterySpecs `json:"battery"`
	Steps     int          `json:"steps"`
	StepHours float64      `json:"step_hours"`
	Window    *TimeWindow  `json:"window,omitempty"`

	TotalProductionWh  float64 `json:"total_production_wh"`
	TotalConsumptionWh float64 `json:"total_consumption_wh"`
	EnergyImportedWh   float64 `json:"energy_imported_wh"`
	EnergyExportedWh   float64 `json:"energy_exported_wh"`
	EnergyStoredWh     float64 `json:"energy_stored_wh"`
	EnergyRestitutedWh float64 `json:"energy_restituted_wh"`
	SelfConsumedWh     float64 `json:"self_consumed_wh"`

	SelfConsumptionRate float64 `json:"self_consumption_rate"`
	SelfSufficiencyRate float64 `json:"self_sufficiency_rate"`

	BaselineImportedWh          float64 `json:"baseline_imported_wh"`
	BaselineExportedWh          float64 `json:"baseline_exported_wh"`
	BaselineSelfConsumptionRate float64 `json:"baseline_self_consumption_rate"`
	BaselineSelfSufficiencyRate float64 `json:"baseline_self_sufficiency_rate"`

	PeakProductionKW  float64 `json:"peak_production_kw"`
	PeakConsumptionKW float64 `json:"peak_consumption_kw"`

	LossesWh             float64 `json:"losses_wh"`
	EquivalentFullCycles float64 `json:"equivalent_full_cycles"`
	FinalSOCPct          float64 `json:"final_soc_pct"`
}

// NewSimulationSummary flattens the aggregate figures for the wire. Steps,
// StepHours, Window and FinalSOCPct are left to the caller.
func NewSimulationSummary(m simulation.Metrics, battery BatterySpecs) SimulationSummary {
	return SimulationSummary{
		Battery: battery,

		TotalProductionWh:  m.TotalProductionWh,
		TotalConsumptionWh: m.TotalConsumptionWh,
		EnergyImportedWh:   m.EnergyImportedWh,
		EnergyExportedWh:   m.EnergyExportedWh,
		EnergyStoredWh:     m.EnergyStoredWh,
		EnergyRestitutedWh: m.EnergyRestitutedWh,
		SelfConsumedWh:     m.SelfConsumedWh,

		SelfConsumptionRate: m.SelfConsumptionRate,
		SelfSufficiencyRate: m.SelfSufficiencyRate,

		BaselineImportedWh:          m.BaselineImportedWh,
		BaselineExportedWh:          m.BaselineExportedWh,
		BaselineSelfConsumptionRate: m.BaselineSelfConsumptionRate,
		BaselineSelfSufficiencyRate: m.BaselineSelfSufficiencyRate,

		PeakProductionKW:  m.PeakProductionKW,
		PeakConsumptionKW: m.PeakConsumptionKW,

		LossesWh:             m.LossesWh,
		EquivalentFullCycles: m.EquivalentFullCycles,
	}
}

// TimeWindow represents a time range
type TimeWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// LedgerRow represents one step of the simulation ledger
type LedgerRow struct {
	Index          int        `json:"index"`
	Time           *time.Time `json:"time,omitempty"`
	ProductionWh   float64    `json:"production_wh"`
	ConsumptionWh  float64    `json:"consumption_wh"`
	Action         string     `json:"action"` // "CHARGING", "DISCHARGING", "IDLE"
	ChargedWh      float64    `json:"charged_wh"`
	StoredWh       float64    `json:"stored_wh"`
	DrawnWh        float64    `json:"drawn_wh"`
	DeliveredWh    float64    `json:"delivered_wh"`
	ImportedWh     float64    `json:"imported_wh"`
	ExportedWh     float64    `json:"exported_wh"`
	SelfConsumedWh float64    `json:"self_consumed_wh"`
	SOCStartPct    float64    `json:"soc_start_pct"`
	SOCEndPct      float64    `json:"soc_end_pct"`
	SOCWh          float64    `json:"soc_wh"`
}

func NewLedger(rows []simulation.LedgerRow) []LedgerRow {
	out := make([]LedgerRow, len(rows))
	for i, r := range rows {
		row := LedgerRow{
			Index:          r.Index,
			ProductionWh:   r.ProductionWh,
			ConsumptionWh:  r.ConsumptionWh,
			Action:         string(r.Action),
			ChargedWh:      r.ChargedWh,
			StoredWh:       r.StoredWh,
			DrawnWh:        r.DrawnWh,
			DeliveredWh:    r.DeliveredWh,
			ImportedWh:     r.ImportedWh,
			ExportedWh:     r.ExportedWh,
			SelfConsumedWh: r.SelfConsumedWh,
			SOCStartPct:    r.SOCStartPct,
			SOCEndPct:      r.SOCEndPct,
			SOCWh:          r.SOCWh,
		}
		if !r.Time.IsZero() {
			t := r.Time
			row.Time = &t
		}
		out[i] = row
	}
	return out
}

// LedgerResponse is a period of a stored run
type LedgerResponse struct {
	ID     string      `json:"id"`
	Count  int         `json:"count"`
	Ledger []LedgerRow `json:"ledger"`
}

// CompareResponse represents the response from a comparison
type CompareResponse struct {
	Comparison []ComparisonResult `json:"comparison"`
}

// ComparisonResult contains results for one variation
type ComparisonResult struct {
	Name    string            `json:"name"`
	Summary SimulationSummary `json:"summary"`
}

// SizingResponse ranks the evaluated battery sizes
type SizingResponse struct {
	Potential analysis.Potential `json:"potential"`
	Rankings  []Ranking          `json:"rankings"`
}

// Ranking represents one ranked battery size
type Ranking struct {
	Rank                 int     `json:"rank"`
	Name                 string  `json:"name"`
	CapacityKWh          float64 `json:"capacity_kwh"`
	PowerKW              float64 `json:"power_kw"`
	SelfSufficiencyRate  float64 `json:"self_sufficiency_rate"`
	SelfConsumptionRate  float64 `json:"self_consumption_rate"`
	GainRate             float64 `json:"gain_rate"`
	EnergyImportedWh     float64 `json:"energy_imported_wh"`
	EquivalentFullCycles float64 `json:"equivalent_full_cycles"`
}

// BatteryInfo represents information about a battery preset
type BatteryInfo struct {
	ID    string       `json:"id"`
	Name  string       `json:"name"`
	File  string       `json:"file"`
	Specs BatterySpecs `json:"specs"`
}

// BatterySpecs contains battery specifications
type BatterySpecs struct {
	Name           string   `json:"name,omitempty"`
	CapacityKWh    float64  `json:"capacity_kwh"`
	MaxChargeKW    float64  `json:"max_charge_kw"`
	MaxDischargeKW float64  `json:"max_discharge_kw"`
	Efficiency     float64  `json:"efficiency"`
	MinSOC         float64  `json:"min_soc"`
	MaxSOC         float64  `json:"max_soc"`
	InitialSOC     *float64 `json:"initial_soc,omitempty"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information
type ErrorDetail struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}
