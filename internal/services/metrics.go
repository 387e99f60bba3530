package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus instrumentation for analysis and validation runs. Metrics are
// registered on the default registry, exposed through /metrics in cmd/web.
var (
	validationRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gml",
		Subsystem: "validation",
		Name:      "runs_total",
		Help:      "Validation runs by outcome (valid or invalid).",
	}, []string{"result"})

	validationChecksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gml",
		Subsystem: "validation",
		Name:      "checks_total",
		Help:      "Individual consistency checks by status.",
	}, []string{"status"})

	analysisDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "gml",
		Subsystem: "analysis",
		Name:      "duration_seconds",
		Help:      "Analyzer run duration by analysis kind.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"analysis"})

	analysisErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gml",
		Subsystem: "analysis",
		Name:      "errors_total",
		Help:      "Analyzer failures by analysis kind.",
	}, []string{"analysis"})
)
