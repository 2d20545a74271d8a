package model

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var validConfig = BatteryConfig{
	CapacityKWh:    10,
	MaxChargeKW:    5,
	MaxDischargeKW: 4,
	Efficiency:     0.92,
	MinSOC:         0.1,
	MaxSOC:         0.9,
	StepHours:      0.25,
}

func TestBatteryConfig_Validate(t *testing.T) {
	assert.NoError(t, validConfig.Validate())

	zeroPower := validConfig
	zeroPower.MaxChargeKW = 0
	zeroPower.MaxDischargeKW = 0
	assert.NoError(t, zeroPower.Validate())

	cases := map[string]func(c *BatteryConfig){
		"zero capacity":        func(c *BatteryConfig) { c.CapacityKWh = 0 },
		"negative capacity":    func(c *BatteryConfig) { c.CapacityKWh = -1 },
		"nan capacity":         func(c *BatteryConfig) { c.CapacityKWh = math.NaN() },
		"negative charge":      func(c *BatteryConfig) { c.MaxChargeKW = -0.1 },
		"negative discharge":   func(c *BatteryConfig) { c.MaxDischargeKW = -0.1 },
		"zero efficiency":      func(c *BatteryConfig) { c.Efficiency = 0 },
		"efficiency above one": func(c *BatteryConfig) { c.Efficiency = 1.01 },
		"min equals max":       func(c *BatteryConfig) { c.MinSOC = 0.9 },
		"min above max":        func(c *BatteryConfig) { c.MinSOC = 0.95 },
		"max above one":        func(c *BatteryConfig) { c.MaxSOC = 1.1 },
		"negative min":         func(c *BatteryConfig) { c.MinSOC = -0.1 },
		"zero step":            func(c *BatteryConfig) { c.StepHours = 0 },
		"initial below min":    func(c *BatteryConfig) { c.InitialSOC = Float(0.05) },
		"initial above max":    func(c *BatteryConfig) { c.InitialSOC = Float(0.95) },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			c := validConfig
			mutate(&c)
			assert.ErrorIs(t, c.Validate(), ErrInvalidConfig)
		})
	}
}

func TestBatteryConfig_DerivedLimits(t *testing.T) {
	c := validConfig
	assert.InDelta(t, 10000, c.CapacityWh(), 1e-9)
	assert.InDelta(t, 1000, c.MinSOCWh(), 1e-9)
	assert.InDelta(t, 9000, c.MaxSOCWh(), 1e-9)
	assert.InDelta(t, 1250, c.MaxChargeWhPerStep(), 1e-9)
	assert.InDelta(t, 1000, c.MaxDischargeWhPerStep(), 1e-9)
	assert.Equal(t, 15*time.Minute, c.StepDuration())
	assert.InDelta(t, 1000, c.InitialSOCWh(), 1e-9)

	c.InitialSOC = Float(0.5)
	assert.InDelta(t, 5000, c.InitialSOCWh(), 1e-9)
}

func TestActionFromFlows(t *testing.T) {
	assert.Equal(t, ActionCharging, ActionFromFlows(1, 0))
	assert.Equal(t, ActionDischarging, ActionFromFlows(0, 1))
	assert.Equal(t, ActionIdle, ActionFromFlows(0, 0))
}
