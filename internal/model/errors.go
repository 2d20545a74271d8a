package model

import "errors"

// Error kinds surfaced by the simulation. Callers match them with errors.Is;
// the concrete error always wraps exactly one of these with a detail message.
var (
	// ErrMisalignedSeries: production and consumption differ in length or timestamps,
	// or timestamps are not evenly spaced at the configured step.
	ErrMisalignedSeries = errors.New("misaligned series")

	// ErrInvalidConfig: a battery parameter is outside its allowed range.
	ErrInvalidConfig = errors.New("invalid battery config")

	// ErrDegenerateInput: total production or total consumption is zero, so the
	// ratio metrics are undefined.
	ErrDegenerateInput = errors.New("degenerate input")

	// ErrInvalidSeries: a series holds a negative or non-finite energy value.
	ErrInvalidSeries = errors.New("invalid series")
)
