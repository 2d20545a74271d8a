package model

import (
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/floats"
)

// Point is one step of a series: the energy (Wh) measured over the step that
// starts at Time. Time may be zero when the caller only has values.
type Point struct {
	Time time.Time
	Wh   float64
}

// Series is an ordered energy series, one Point per step.
type Series []Point

// SeriesFromValues builds a series of evenly spaced points starting at start.
func SeriesFromValues(start time.Time, step time.Duration, values []float64) Series {
	s := make(Series, len(values))
	for i, v := range values {
		t := time.Time{}
		if !start.IsZero() {
			t = start.Add(time.Duration(i) * step)
		}
		s[i] = Point{Time: t, Wh: v}
	}
	return s
}

func (s Series) Values() []float64 {
	out := make([]float64, len(s))
	for i, p := range s {
		out[i] = p.Wh
	}
	return out
}

func (s Series) Total() float64 {
	if len(s) == 0 {
		return 0
	}
	return floats.Sum(s.Values())
}

// Peak is the largest per-step energy, 0 for an empty series.
func (s Series) Peak() float64 {
	if len(s) == 0 {
		return 0
	}
	return floats.Max(s.Values())
}

// Validate rejects negative or non-finite values.
func (s Series) Validate(name string) error {
	for i, p := range s {
		if p.Wh < 0 || math.IsNaN(p.Wh) || math.IsInf(p.Wh, 0) {
			return fmt.Errorf("%w: %s[%d] = %v", ErrInvalidSeries, name, i, p.Wh)
		}
	}
	return nil
}

// CheckAligned verifies that both series cover the same steps. When timestamps
// are present they must match pointwise, increase strictly and be spaced by step.
func CheckAligned(production, consumption Series, step time.Duration) error {
	if len(production) != len(consumption) {
		return fmt.Errorf("%w: production has %d steps, consumption has %d", ErrMisalignedSeries, len(production), len(consumption))
	}
	for i := range production {
		pt, ct := production[i].Time, consumption[i].Time
		if !pt.Equal(ct) {
			return fmt.Errorf("%w: step %d timestamps differ (%s vs %s)", ErrMisalignedSeries, i, pt.Format(time.RFC3339), ct.Format(time.RFC3339))
		}
		if i == 0 {
			continue
		}
		prev := production[i-1].Time
		if pt.IsZero() != prev.IsZero() {
			return fmt.Errorf("%w: steps %d and %d mix timestamped and untimed points", ErrMisalignedSeries, i-1, i)
		}
		if pt.IsZero() {
			continue
		}
		d := pt.Sub(prev)
		if d <= 0 {
			return fmt.Errorf("%w: timestamps not strictly increasing at step %d", ErrMisalignedSeries, i)
		}
		if diff := d - step; diff > time.Second || diff < -time.Second {
			return fmt.Errorf("%w: step %d spacing %s, expected %s", ErrMisalignedSeries, i, d, step)
		}
	}
	return nil
}
