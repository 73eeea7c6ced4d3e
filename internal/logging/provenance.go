package logging

import (
	"context"
	"log/slog"

	"github.com/danielpatrickdp/objective-scoring/scorer/internal/scoring"
)

// #region log-decision
// LogDecision writes one structured line describing an evaluation outcome.
// Passing runs log at Info, gate failures at Warn.
func LogDecision(ctx context.Context, logger *slog.Logger, r scoring.Result) {
	if logger == nil {
		logger = slog.Default()
	}
	level := slog.LevelInfo
	decision := "pass"
	if !r.Passed {
		level = slog.LevelWarn
		decision = "gate_fail"
	}

	logger.LogAttrs(ctx, level, "evaluation",
		slog.String("decision", decision),
		slog.String("run_id", r.RunID),
		slog.String("objective", objectiveKey(r)),
		slog.String("fingerprint", shortHash(r.BundleFingerprint)),
		slog.Any("failures", r.Failures),
		slog.Group("score",
			slog.Float64("correctness", r.ScoreVector.Correctness),
			slog.Float64("safety", r.ScoreVector.Safety),
			slog.Float64("cost", r.ScoreVector.Cost),
			slog.Float64("latency", r.ScoreVector.Latency),
			slog.Float64("maintainability", r.ScoreVector.Maintainability),
			slog.Float64("human_time", r.ScoreVector.HumanTime),
		),
		slog.Int("attribution_refs", len(r.AttributionRefs)),
	)
}

// #endregion log-decision

// #region helpers
func objectiveKey(r scoring.Result) string {
	if r.ObjectiveID == "" {
		return ""
	}
	return r.ObjectiveID + "@" + r.ObjectiveVersion
}

func shortHash(s string) string {
	if len(s) > 12 {
		return s[:12]
	}
	return s
}

// #endregion helpers
