package scoring

import (
	"github.com/danielpatrickdp/objective-scoring/scorer/internal/evidence"
	"github.com/danielpatrickdp/objective-scoring/scorer/internal/objective"
)

// #region evaluate

// Evaluate scores a bundle against a spec: hard gates first, then the weighted
// shaped reward. It is pure; equal inputs give equal results.
// A nil bundle has no evidence; a nil spec has no gates and no terms.
func Evaluate(bundle *evidence.Bundle, spec *objective.Spec) Result {
	var gates []objective.GateSpec
	var terms []objective.ShapedTermSpec
	result := Result{
		Failures:          []string{},
		AttributionRefs:   []string{},
		RunID:             bundle.RunID(),
		BundleFingerprint: bundle.Fingerprint(),
	}
	if spec != nil {
		gates = spec.Gates()
		terms = spec.ShapedTerms()
		result.ObjectiveID = spec.ObjectiveID()
		result.ObjectiveVersion = spec.Version()
	}

	// --- Hard gate pass ---
	// Every gate is checked so the caller sees all failures, not just the first.
	for _, g := range gates {
		it, ok := bundle.Lookup(g.EvidenceSource)
		if !ok || !g.Passes(it.Value) {
			result.Failures = append(result.Failures, g.ID)
		}
	}
	if len(result.Failures) > 0 {
		result.ScoreVector = Zero()
		return result
	}

	// --- Shaped reward ---
	totals := make(map[objective.Dimension]float64, len(objective.Dimensions()))
	seen := make(map[string]bool)
	for _, t := range terms {
		it, ok := bundle.Lookup(t.EvidenceSource)
		if !ok {
			continue
		}
		adjusted := clamp(it.Value)
		if t.Direction == objective.Minimize {
			adjusted = 1.0 - adjusted
		}
		contribution := clamp(t.Weight * adjusted)
		totals[t.Dimension] += contribution

		if contribution > 0.0 && !seen[it.ItemID] {
			seen[it.ItemID] = true
			result.AttributionRefs = append(result.AttributionRefs, it.ItemID)
		}
	}

	result.Passed = true
	result.ScoreVector = fromTotals(totals)
	return result
}

// #endregion evaluate

// #region helpers

// clamp restricts v to [0, 1]. NaN maps to 0.
func clamp(v float64) float64 {
	if !(v > 0) {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// #endregion helpers
