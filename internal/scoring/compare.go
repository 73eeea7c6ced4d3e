package scoring

import "github.com/danielpatrickdp/objective-scoring/scorer/internal/objective"

// Compare orders two vectors lexicographically over priority. The first
// dimension that differs decides; later dimensions are only consulted on exact
// equality. Returns -1 if a < b, +1 if a > b, 0 if equal on every listed dimension.
func Compare(a, b ScoreVector, priority []objective.Dimension) int {
	for _, d := range priority {
		av, bv := a.Get(d), b.Get(d)
		switch {
		case av < bv:
			return -1
		case av > bv:
			return 1
		}
	}
	return 0
}

// CompareResults orders two results under a spec's priority. A passing result
// always outranks a failing one.
func CompareResults(a, b Result, spec *objective.Spec) int {
	if a.Passed != b.Passed {
		if a.Passed {
			return 1
		}
		return -1
	}
	priority := objective.Dimensions()
	if spec != nil {
		priority = spec.LexicographicPriority()
	}
	return Compare(a.ScoreVector, b.ScoreVector, priority)
}
