package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("scorer.pipeline")

var (
	// evaluationsTotal counts evaluations by objective key and outcome (pass, gate_fail).
	evaluationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "scorer",
		Name:      "evaluations_total",
		Help:      "Total evaluations by objective and outcome",
	}, []string{"objective", "outcome"})

	// gateFailuresTotal counts individual failed gates.
	gateFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "scorer",
		Name:      "gate_failures_total",
		Help:      "Total hard gate failures by objective and gate id",
	}, []string{"objective", "gate"})

	publishFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "scorer",
		Name:      "publish_failures_total",
		Help:      "Total publisher errors and panics",
	})

	evaluationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "scorer",
		Name:      "evaluation_duration_seconds",
		Help:      "Wall time from collection to scored result, excluding publishers",
		Buckets:   []float64{0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.05, 0.1},
	})
)
