package data

import (
	"fmt"
	"strings"
)

// Unit is the unit of the values in an input column.
type Unit string

const (
	UnitWh  Unit = "wh"  // energy per step
	UnitKWh Unit = "kwh" // energy per step
	UnitW   Unit = "w"   // mean power over the step
	UnitKW  Unit = "kw"  // mean power over the step
)

func ParseUnit(s string) (Unit, error) {
	switch u := Unit(strings.ToLower(strings.TrimSpace(s))); u {
	case "":
		return UnitWh, nil
	case UnitWh, UnitKWh, UnitW, UnitKW:
		return u, nil
	default:
		return "", fmt.Errorf("unsupported unit %q (want wh, kwh, w or kw)", s)
	}
}

// ToWhPerStep converts v to watt-hours over one step of stepHours.
func (u Unit) ToWhPerStep(v, stepHours float64) float64 {
	switch u {
	case UnitKWh:
		return v * 1000
	case UnitW:
		return v * stepHours
	case UnitKW:
		return v * 1000 * stepHours
	default:
		return v
	}
}
