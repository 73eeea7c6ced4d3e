package scoring

import "github.com/danielpatrickdp/objective-scoring/scorer/internal/objective"

// #region score-vector
// ScoreVector is the six-dimension outcome of an evaluation.
// Values produced by Evaluate are always within [0, 1] and never rounded.
type ScoreVector struct {
	Correctness     float64 `json:"correctness"`
	Safety          float64 `json:"safety"`
	Cost            float64 `json:"cost"`
	Latency         float64 `json:"latency"`
	Maintainability float64 `json:"maintainability"`
	HumanTime       float64 `json:"human_time"`
}

// Zero returns the all-zero vector.
func Zero() ScoreVector {
	return ScoreVector{}
}

// Get returns the raw value for a dimension. Unknown dimensions read as 0.
func (v ScoreVector) Get(d objective.Dimension) float64 {
	switch d {
	case objective.Correctness:
		return v.Correctness
	case objective.Safety:
		return v.Safety
	case objective.Cost:
		return v.Cost
	case objective.Latency:
		return v.Latency
	case objective.Maintainability:
		return v.Maintainability
	case objective.HumanTime:
		return v.HumanTime
	}
	return 0
}

// IsZero reports whether every dimension is exactly 0.
func (v ScoreVector) IsZero() bool {
	return v == ScoreVector{}
}

// fromTotals assembles a clamped vector; dimensions missing from totals are 0.
func fromTotals(totals map[objective.Dimension]float64) ScoreVector {
	return ScoreVector{
		Correctness:     clamp(totals[objective.Correctness]),
		Safety:          clamp(totals[objective.Safety]),
		Cost:            clamp(totals[objective.Cost]),
		Latency:         clamp(totals[objective.Latency]),
		Maintainability: clamp(totals[objective.Maintainability]),
		HumanTime:       clamp(totals[objective.HumanTime]),
	}
}

// #endregion score-vector

// #region result
// Result is the terminal outcome of evaluating one bundle against one spec.
// When Failures is non-empty, Passed is false and ScoreVector is zero.
type Result struct {
	Passed            bool        `json:"passed"`
	ScoreVector       ScoreVector `json:"score_vector"`
	Failures          []string    `json:"failures"`
	AttributionRefs   []string    `json:"attribution_refs"`
	RunID             string      `json:"run_id"`
	BundleFingerprint string      `json:"bundle_fingerprint"`
	ObjectiveID       string      `json:"objective_id"`
	ObjectiveVersion  string      `json:"objective_version"`
}

// #endregion result
