package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/danielpatrickdp/objective-scoring/scorer/internal/evidence"
	"github.com/danielpatrickdp/objective-scoring/scorer/internal/logging"
	"github.com/danielpatrickdp/objective-scoring/scorer/internal/objective"
	"github.com/danielpatrickdp/objective-scoring/scorer/internal/scoring"
)

// Pipeline runs collect, bundle, evaluate and publish for one session at a time.
// It is safe for concurrent use once constructed.
type Pipeline struct {
	collector  *evidence.Collector
	publishers []Publisher
	logger     *slog.Logger
	now        func() time.Time
}

// New builds a pipeline around collector. A nil collector uses the default config.
func New(collector *evidence.Collector, cfg Config) *Pipeline {
	if collector == nil {
		collector = evidence.NewCollector(evidence.DefaultCollectorConfig())
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.New("pipeline")
	}
	now := cfg.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &Pipeline{
		collector:  collector,
		publishers: append([]Publisher(nil), cfg.Publishers...),
		logger:     logger,
		now:        now,
	}
}

// #region run
// Run scores one session against spec and fans the record out to publishers.
// The returned result depends only on results and spec.
func (p *Pipeline) Run(ctx context.Context, results evidence.SessionCheckResults, spec *objective.Spec) scoring.Result {
	key := ""
	if spec != nil {
		key = spec.Key()
	}
	ctx, span := tracer.Start(ctx, "pipeline.Run",
		trace.WithAttributes(
			attribute.String("scorer.run_id", results.RunID),
			attribute.String("scorer.objective", key),
		),
	)
	defer span.End()

	start := time.Now()
	items := p.collector.Collect(results)
	collectedAt := results.CollectedAt
	if collectedAt.IsZero() {
		collectedAt = p.now()
	}
	bundle := evidence.BuildBundle(results.RunID, items, collectedAt)
	result := scoring.Evaluate(bundle, spec)
	evaluationDuration.Observe(time.Since(start).Seconds())

	outcome := "pass"
	if !result.Passed {
		outcome = "gate_fail"
		for _, g := range result.Failures {
			gateFailuresTotal.WithLabelValues(key, g).Inc()
		}
	}
	evaluationsTotal.WithLabelValues(key, outcome).Inc()
	span.SetAttributes(
		attribute.Bool("scorer.passed", result.Passed),
		attribute.Int("scorer.evidence_items", bundle.Len()),
		attribute.String("scorer.fingerprint", result.BundleFingerprint),
	)
	logging.LogDecision(ctx, p.logger, result)

	rec := Record{
		Result:      cloneResult(result),
		SessionID:   results.SessionID,
		CollectedAt: collectedAt,
		Evidence:    bundle.Items(),
	}
	for _, pub := range p.publishers {
		if err := p.publish(ctx, pub, rec); err != nil {
			publishFailuresTotal.Inc()
			span.RecordError(err)
			p.logger.Warn("publish failed", "run_id", result.RunID, "error", err)
		}
	}
	return result
}

// #endregion run

// #region helpers
func cloneResult(r scoring.Result) scoring.Result {
	r.Failures = append([]string{}, r.Failures...)
	r.AttributionRefs = append([]string{}, r.AttributionRefs...)
	return r
}

func (p *Pipeline) publish(ctx context.Context, pub Publisher, rec Record) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("publisher panic: %v", r)
		}
	}()
	return pub.Publish(ctx, rec)
}

// #endregion helpers
