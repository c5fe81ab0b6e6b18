// Package metrics holds the Prometheus collectors exported by the optimizer.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "policyevo"

var (
	// RunsTotal counts finished runs by mode (optimize, blend) and result.
	RunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "runs_total",
		Help:      "Number of finished runs by mode and result.",
	}, []string{"mode", "result"})

	// RunDuration observes wall-clock run time by mode.
	RunDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "run_duration_seconds",
		Help:      "Run latency in seconds by mode.",
		Buckets:   prometheus.ExponentialBuckets(0.01, 2, 15),
	}, []string{"mode"})

	// GenerationsTotal counts ranked generations across all runs.
	GenerationsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "generations_total",
		Help:      "Number of ranked generations.",
	})

	// EliteWidth is the rank-1 tier width of the latest ranked generation.
	EliteWidth = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "elite_width",
		Help:      "Rank-1 tier width of the latest ranked generation.",
	})

	// BestUtility is the best utility per objective in the latest ranked
	// generation.
	BestUtility = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "best_utility",
		Help:      "Best utility of the latest ranked generation by objective.",
	}, []string{"objective"})

	// Temperature is the annealing temperature of the latest generation.
	Temperature = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "temperature",
		Help:      "Annealing temperature of the latest ranked generation.",
	})
)

var registerOnce sync.Once

// Register registers every collector with the default registry. It is safe
// to call more than once.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(RunsTotal, RunDuration, GenerationsTotal, EliteWidth, BestUtility, Temperature)
	})
}

// Result labels a run outcome.
func Result(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// ObserveRun records a finished run of mode that took d.
func ObserveRun(mode string, err error, d time.Duration) {
	RunsTotal.WithLabelValues(mode, Result(err)).Inc()
	RunDuration.WithLabelValues(mode).Observe(d.Seconds())
}
