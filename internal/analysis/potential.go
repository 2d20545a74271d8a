package analysis

import (
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"

	"solar-battery-sim/internal/model"
)

// Potential summarises how much a battery could shift on a site, independent
// of any battery size. It is computed on whole days: energy left over after
// direct use (surplus) and energy still missing (deficit).
type Potential struct {
	StartUTC time.Time `json:"start_utc"`
	EndUTC   time.Time `json:"end_utc"`

	Days      int     `json:"days"`
	StepHours float64 `json:"step_hours"`

	TotalProductionWh  float64 `json:"total_production_wh"`
	TotalConsumptionWh float64 `json:"total_consumption_wh"`

	MeanDailySurplusWh float64 `json:"mean_daily_surplus_wh"`
	P50DailySurplusWh  float64 `json:"p50_daily_surplus_wh"`
	P95DailySurplusWh  float64 `json:"p95_daily_surplus_wh"`

	MeanDailyDeficitWh float64 `json:"mean_daily_deficit_wh"`
	P50DailyDeficitWh  float64 `json:"p50_daily_deficit_wh"`
	P95DailyDeficitWh  float64 `json:"p95_daily_deficit_wh"`

	// ShiftableWh is the energy a perfect, unbounded battery could move per
	// day: min(surplus, deficit), assuming surplus comes before the deficit.
	MeanDailyShiftableWh float64 `json:"mean_daily_shiftable_wh"`
	P95DailyShiftableWh  float64 `json:"p95_daily_shiftable_wh"`

	// SuggestedCapacityKWh covers the shiftable energy of 95% of the days,
	// before round-trip losses.
	SuggestedCapacityKWh float64 `json:"suggested_capacity_kwh"`
}

type day struct {
	surplus, deficit float64
}

// ComputePotential groups the steps by UTC calendar day when timestamps are
// present, or in blocks of 24h worth of steps otherwise.
func ComputePotential(production, consumption model.Series, stepHours float64) Potential {
	p := Potential{StepHours: stepHours}
	n := len(production)
	if len(consumption) < n {
		n = len(consumption)
	}
	if n == 0 || !(stepHours > 0) {
		return p
	}
	p.StartUTC = production[0].Time
	if !production[n-1].Time.IsZero() {
		p.EndUTC = production[n-1].Time.Add(time.Duration(stepHours * float64(time.Hour)))
	}

	perDay := int(math.Round(24 / stepHours))
	if perDay < 1 {
		perDay = 1
	}

	var (
		days    []day
		current day
		key     time.Time
	)
	for i := 0; i < n; i++ {
		pw, cw := production[i].Wh, consumption[i].Wh
		p.TotalProductionWh += pw
		p.TotalConsumptionWh += cw

		var k time.Time
		if ts := production[i].Time; !ts.IsZero() {
			k = ts.UTC().Truncate(24 * time.Hour)
		} else {
			k = time.Unix(int64(i/perDay)*86400, 0).UTC()
		}
		if i > 0 && !k.Equal(key) {
			days = append(days, current)
			current = day{}
		}
		key = k

		if pw > cw {
			current.surplus += pw - cw
		} else {
			current.deficit += cw - pw
		}
	}
	days = append(days, current)
	p.Days = len(days)

	surplus := make([]float64, len(days))
	deficit := make([]float64, len(days))
	shift := make([]float64, len(days))
	for i, d := range days {
		surplus[i] = d.surplus
		deficit[i] = d.deficit
		shift[i] = math.Min(d.surplus, d.deficit)
	}
	sort.Float64s(surplus)
	sort.Float64s(deficit)
	sort.Float64s(shift)

	p.MeanDailySurplusWh = stat.Mean(surplus, nil)
	p.P50DailySurplusWh = quantile(surplus, 0.5)
	p.P95DailySurplusWh = quantile(surplus, 0.95)
	p.MeanDailyDeficitWh = stat.Mean(deficit, nil)
	p.P50DailyDeficitWh = quantile(deficit, 0.5)
	p.P95DailyDeficitWh = quantile(deficit, 0.95)
	p.MeanDailyShiftableWh = stat.Mean(shift, nil)
	p.P95DailyShiftableWh = quantile(shift, 0.95)
	p.SuggestedCapacityKWh = p.P95DailyShiftableWh / 1000
	return p
}

// quantile expects sorted input.
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	return stat.Quantile(q, stat.Empirical, sorted, nil)
}
