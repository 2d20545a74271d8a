// Package metrics exposes simulation counters to Prometheus.
package metrics

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels for simulations_total.
const (
	OutcomeOK         = "ok"
	OutcomeInvalid    = "invalid"
	OutcomeDegenerate = "degenerate"
	OutcomeError      = "error"
)

// Recorder records simulation runs.
type Recorder struct {
	runs     *prometheus.CounterVec
	duration *prometheus.HistogramVec
	steps    prometheus.Histogram
	stored   prometheus.Gauge

	gatherer prometheus.Gatherer
}

// NewRecorder registers the simulation metrics on reg. A nil reg uses the
// default registry. Collectors that are already registered are reused.
func NewRecorder(reg prometheus.Registerer) (*Recorder, error) {
	var gatherer prometheus.Gatherer = prometheus.DefaultGatherer
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	} else if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	runs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "simulations_total",
		Help: "Total number of simulation runs by outcome",
	}, []string{"kind", "outcome"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "simulation_duration_seconds",
		Help:    "Wall time of one simulation run",
		Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
	}, []string{"kind"})
	steps := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "simulation_steps",
		Help:    "Number of time steps per simulation run",
		Buckets: []float64{24, 96, 672, 2976, 8760, 35040, 105120},
	})
	stored := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "simulation_results_stored",
		Help: "Number of simulation results kept for ledger export",
	})

	var err error
	if runs, err = register(reg, runs); err != nil {
		return nil, err
	}
	if duration, err = register(reg, duration); err != nil {
		return nil, err
	}
	if steps, err = register(reg, steps); err != nil {
		return nil, err
	}
	if stored, err = register(reg, stored); err != nil {
		return nil, err
	}
	return &Recorder{runs: runs, duration: duration, steps: steps, stored: stored, gatherer: gatherer}, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// ObserveRun records one run of kind ("simulate", "sweep", ...) that took d
// over the given number of steps.
func (r *Recorder) ObserveRun(kind, outcome string, steps int, d time.Duration) {
	if r == nil {
		return
	}
	r.runs.WithLabelValues(kind, outcome).Inc()
	r.duration.WithLabelValues(kind).Observe(d.Seconds())
	if outcome == OutcomeOK && steps > 0 {
		r.steps.Observe(float64(steps))
	}
}

// SetStored reports the size of the result store.
func (r *Recorder) SetStored(n int) {
	if r == nil {
		return
	}
	r.stored.Set(float64(n))
}

// Handler serves the registry the recorder was built on.
func (r *Recorder) Handler() http.Handler {
	if r == nil || r.gatherer == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(r.gatherer, promhttp.HandlerOpts{})
}
