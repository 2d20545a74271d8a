package model

// Action is a human-friendly battery mode for a step.
// Keep these values stable; they are intended for CSV output.
type Action string

const (
	ActionCharging    Action = "CHARGING"
	ActionIdle        Action = "IDLE"
	ActionDischarging Action = "DISCHARGING"
)

// ActionFromFlows classifies a step by the battery-side energy moved in it.
func ActionFromFlows(storedWh, drawnWh float64) Action {
	switch {
	case storedWh > 0:
		return ActionCharging
	case drawnWh > 0:
		return ActionDischarging
	default:
		return ActionIdle
	}
}
