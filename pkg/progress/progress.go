// Package progress turns per-generation statistics into logs, metrics and
// published events.
package progress

import (
	"context"

	"k8s.io/klog/v2"

	"github.com/policyevo/policyevo/pkg/evolution"
	"github.com/policyevo/policyevo/pkg/metrics"
)

// LogObserver logs a line per generation at the given verbosity and always
// logs the final generation.
type LogObserver struct {
	Verbosity klog.Level
	// Every limits intermediate lines to one per Every generations. Zero logs
	// every generation.
	Every int
}

var _ evolution.Observer = LogObserver{}

func (o LogObserver) ObserveGeneration(ctx context.Context, stats evolution.GenerationStats) {
	if !stats.Final && o.Every > 0 && stats.Generation%o.Every != 0 {
		return
	}
	logger := klog.FromContext(ctx)
	if !stats.Final {
		logger = logger.V(int(o.Verbosity))
	}
	logger.Info("Generation ranked",
		"generation", stats.Generation,
		"final", stats.Final,
		"temperature", stats.Temperature,
		"mutations", stats.MutationCount,
		"eliteWidth", stats.EliteWidth,
		"tiers", stats.Tiers,
		"bestUtility1", stats.BestUtility1,
		"bestUtility2", stats.BestUtility2)
}

// MetricsObserver mirrors generation statistics into the Prometheus
// collectors of package metrics.
type MetricsObserver struct{}

var _ evolution.Observer = MetricsObserver{}

func (MetricsObserver) ObserveGeneration(_ context.Context, stats evolution.GenerationStats) {
	metrics.GenerationsTotal.Inc()
	metrics.EliteWidth.Set(float64(stats.EliteWidth))
	metrics.Temperature.Set(stats.Temperature)
	metrics.BestUtility.WithLabelValues("1").Set(stats.BestUtility1)
	metrics.BestUtility.WithLabelValues("2").Set(stats.BestUtility2)
}
