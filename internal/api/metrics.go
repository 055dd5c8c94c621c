// Package api provides the HTTP and WebSocket server for the risk
// simulation engine.
package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	simulationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "risk",
		Subsystem: "simulations",
		Name:      "total",
		Help:      "Simulation runs by outcome status.",
	}, []string{"status"})

	simulationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "risk",
		Subsystem: "simulations",
		Name:      "duration_seconds",
		Help:      "Wall time of simulation runs.",
		Buckets:   prometheus.ExponentialBuckets(0.005, 2, 14),
	})

	simulatedPaths = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "risk",
		Subsystem: "simulations",
		Name:      "paths_total",
		Help:      "Total simulated equity paths.",
	})
)
