package model

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var t0 = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

func TestSeries_TotalsAndPeak(t *testing.T) {
	s := SeriesFromValues(t0, 15*time.Minute, []float64{10, 40, 25})
	assert.InDelta(t, 75, s.Total(), 1e-12)
	assert.InDelta(t, 40, s.Peak(), 1e-12)
	assert.Equal(t, t0.Add(30*time.Minute), s[2].Time)

	var empty Series
	assert.Zero(t, empty.Total())
	assert.Zero(t, empty.Peak())
}

func TestSeries_Validate(t *testing.T) {
	assert.NoError(t, SeriesFromValues(t0, time.Hour, []float64{0, 1}).Validate("p"))
	assert.ErrorIs(t, SeriesFromValues(t0, time.Hour, []float64{0, -1}).Validate("p"), ErrInvalidSeries)
	assert.ErrorIs(t, SeriesFromValues(t0, time.Hour, []float64{math.NaN()}).Validate("p"), ErrInvalidSeries)
	assert.ErrorIs(t, SeriesFromValues(t0, time.Hour, []float64{math.Inf(1)}).Validate("p"), ErrInvalidSeries)
}

func TestCheckAligned(t *testing.T) {
	step := 15 * time.Minute
	a := SeriesFromValues(t0, step, []float64{1, 2, 3})

	assert.NoError(t, CheckAligned(a, SeriesFromValues(t0, step, []float64{3, 2, 1}), step))
	assert.NoError(t, CheckAligned(
		SeriesFromValues(time.Time{}, 0, []float64{1, 2}),
		SeriesFromValues(time.Time{}, 0, []float64{1, 2}),
		step,
	))

	assert.ErrorIs(t, CheckAligned(a, a[:2], step), ErrMisalignedSeries)
	assert.ErrorIs(t, CheckAligned(a, SeriesFromValues(t0.Add(step), step, []float64{1, 2, 3}), step), ErrMisalignedSeries)
	assert.ErrorIs(t, CheckAligned(a, a, time.Hour), ErrMisalignedSeries)

	backwards := Series{{Time: t0.Add(step), Wh: 1}, {Time: t0, Wh: 1}}
	assert.ErrorIs(t, CheckAligned(backwards, backwards, step), ErrMisalignedSeries)

	partial := Series{{Wh: 1}, {Time: t0, Wh: 1}}
	assert.ErrorIs(t, CheckAligned(partial, partial, step), ErrMisalignedSeries)
	trailing := Series{{Time: t0, Wh: 1}, {Wh: 1}}
	assert.ErrorIs(t, CheckAligned(trailing, trailing, step), ErrMisalignedSeries)
}
