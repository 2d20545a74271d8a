package models

import (
	"time"

	"solar-battery-sim/internal/config"
)

// SimulateRequest represents the request body for running one simulation
type SimulateRequest struct {
	Config  SimulationConfig `json:"config"`
	Series  SeriesInput      `json:"series" binding:"required"`
	Options SimulateOptions  `json:"options,omitempty"`
}

// SimulationConfig selects the battery. Battery fields override the preset.
type SimulationConfig struct {
	BatteryFile string               `json:"battery_file,omitempty"` // preset id, e.g. "home_5kwh"
	Battery     config.BatteryConfig `json:"battery,omitempty"`
	StepHours   float64              `json:"step_hours,omitempty"` // default: 0.25
}

// SeriesInput carries both series in Wh per step
type SeriesInput struct {
	Start         *time.Time `json:"start,omitempty"`
	ProductionWh  []float64  `json:"production_wh" binding:"required"`
	ConsumptionWh []float64  `json:"consumption_wh" binding:"required"`
}

// SimulateOptions contains optional simulation parameters
type SimulateOptions struct {
	IncludeLedger bool `json:"include_ledger,omitempty"`
}

// CompareRequest runs several battery variations over the same series
type CompareRequest struct {
	Config     SimulationConfig `json:"config"`
	Series     SeriesInput      `json:"series" binding:"required"`
	Variations []Variation      `json:"variations" binding:"required,min=1"`
}

// Variation defines a variation to test. Its config is merged over the base.
type Variation struct {
	Name   string           `json:"name"`
	Config SimulationConfig `json:"config"`
}

// SizingRequest sweeps battery sizes over the same series
type SizingRequest struct {
	Config        SimulationConfig `json:"config"`
	Series        SeriesInput      `json:"series" binding:"required"`
	CapacitiesKWh []float64        `json:"capacities_kwh" binding:"required,min=1"`
	PowersKW      []float64        `json:"powers_kw,omitempty"`
	Limit         int              `json:"limit,omitempty"` // default: all
}

// UploadForm holds the multipart fields of POST /api/v1/simulate/upload.
// The CSV itself is the "file" part.
type UploadForm struct {
	TimeColumn        string  `form:"time_column"`
	ProductionColumn  string  `form:"production_column"`
	ConsumptionColumn string  `form:"consumption_column"`
	Unit              string  `form:"unit"`
	Delimiter         string  `form:"delimiter"`
	StepHours         float64 `form:"step_hours"`
	Timezone          string  `form:"timezone"`

	BatteryFile    string   `form:"battery_file"`
	Name           string   `form:"name"`
	CapacityKWh    *float64 `form:"capacity_kwh"`
	MaxPowerKW     *float64 `form:"max_power_kw"`
	MaxChargeKW    *float64 `form:"max_charge_kw"`
	MaxDischargeKW *float64 `form:"max_discharge_kw"`
	Efficiency     *float64 `form:"efficiency"`
	MinSOC         *float64 `form:"min_soc"`
	MaxSOC         *float64 `form:"max_soc"`
	InitialSOC     *float64 `form:"initial_soc"`

	IncludeLedger bool `form:"include_ledger"`
}

// Input returns the CSV settings of the form.
func (f UploadForm) Input() config.InputConfig {
	return config.InputConfig{
		Delimiter:         f.Delimiter,
		TimeColumn:        f.TimeColumn,
		ProductionColumn:  f.ProductionColumn,
		ConsumptionColumn: f.ConsumptionColumn,
		Unit:              f.Unit,
		StepHours:         f.StepHours,
		Timezone:          f.Timezone,
	}
}

// Battery returns the battery part of the form.
func (f UploadForm) Battery() config.BatteryConfig {
	return config.BatteryConfig{
		Name:           f.Name,
		CapacityKWh:    f.CapacityKWh,
		MaxPowerKW:     f.MaxPowerKW,
		MaxChargeKW:    f.MaxChargeKW,
		MaxDischargeKW: f.MaxDischargeKW,
		Efficiency:     f.Efficiency,
		MinSOC:         f.MinSOC,
		MaxSOC:         f.MaxSOC,
		InitialSOC:     f.InitialSOC,
	}
}

// LedgerQuery selects a period of a stored run
type LedgerQuery struct {
	Start  string `form:"start"` // RFC 3339 or YYYY-MM-DD
	End    string `form:"end"`
	Format string `form:"format"` // "json" (default) or "csv"
}
