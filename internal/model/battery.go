package model

import (
	"fmt"
	"math"
	"time"
)

// BatteryConfig defines the physical parameters of a home battery.
// Units:
// - CapacityKWh: usable kWh
// - MaxChargeKW / MaxDischargeKW: kW
// - Efficiency: 0..1, applied once per direction
// - MinSOC / MaxSOC / InitialSOC: fraction 0..1 of capacity
// - StepHours: length of one series step in hours (0.25 for 15 min data)
type BatteryConfig struct {
	Name           string
	CapacityKWh    float64
	MaxChargeKW    float64
	MaxDischargeKW float64
	Efficiency     float64
	MinSOC         float64
	MaxSOC         float64
	StepHours      float64

	// InitialSOC is optional. When nil the run starts at MinSOC so that every
	// Wh restored is explained by a Wh stored during the same run.
	InitialSOC *float64
}

func (c BatteryConfig) Validate() error {
	if !(c.CapacityKWh > 0) || math.IsInf(c.CapacityKWh, 1) {
		return fmt.Errorf("%w: capacity_kwh must be > 0, got %v", ErrInvalidConfig, c.CapacityKWh)
	}
	if c.MaxChargeKW < 0 || math.IsNaN(c.MaxChargeKW) {
		return fmt.Errorf("%w: max_charge_kw must be >= 0, got %v", ErrInvalidConfig, c.MaxChargeKW)
	}
	if c.MaxDischargeKW < 0 || math.IsNaN(c.MaxDischargeKW) {
		return fmt.Errorf("%w: max_discharge_kw must be >= 0, got %v", ErrInvalidConfig, c.MaxDischargeKW)
	}
	if !(c.Efficiency > 0 && c.Efficiency <= 1) {
		return fmt.Errorf("%w: efficiency must be in (0, 1], got %v", ErrInvalidConfig, c.Efficiency)
	}
	if !(c.MinSOC >= 0 && c.MinSOC < c.MaxSOC && c.MaxSOC <= 1) {
		return fmt.Errorf("%w: min_soc/max_soc must satisfy 0<=min_soc<max_soc<=1, got %v/%v", ErrInvalidConfig, c.MinSOC, c.MaxSOC)
	}
	if !(c.StepHours > 0) || math.IsInf(c.StepHours, 1) {
		return fmt.Errorf("%w: step_hours must be > 0, got %v", ErrInvalidConfig, c.StepHours)
	}
	if c.InitialSOC != nil {
		s := *c.InitialSOC
		if !(s >= c.MinSOC && s <= c.MaxSOC) {
			return fmt.Errorf("%w: initial_soc must be within [min_soc, max_soc], got %v", ErrInvalidConfig, s)
		}
	}
	return nil
}

func (c BatteryConfig) CapacityWh() float64 { return c.CapacityKWh * 1000 }

func (c BatteryConfig) MinSOCWh() float64 { return c.MinSOC * c.CapacityWh() }

func (c BatteryConfig) MaxSOCWh() float64 { return c.MaxSOC * c.CapacityWh() }

// MaxChargeWhPerStep is the grid-side energy the charge rating allows in one step.
func (c BatteryConfig) MaxChargeWhPerStep() float64 { return c.MaxChargeKW * 1000 * c.StepHours }

// MaxDischargeWhPerStep is the grid-side energy the discharge rating allows in one step.
func (c BatteryConfig) MaxDischargeWhPerStep() float64 { return c.MaxDischargeKW * 1000 * c.StepHours }

func (c BatteryConfig) StepDuration() time.Duration {
	return time.Duration(c.StepHours * float64(time.Hour))
}

func (c BatteryConfig) InitialSOCWh() float64 {
	if c.InitialSOC == nil {
		return c.MinSOCWh()
	}
	return *c.InitialSOC * c.CapacityWh()
}

// Float returns a pointer to v, for optional fields such as InitialSOC.
func Float(v float64) *float64 { return &v }
