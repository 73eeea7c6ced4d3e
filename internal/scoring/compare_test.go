package scoring

import (
	"testing"

	"github.com/danielpatrickdp/objective-scoring/scorer/internal/objective"
)

func TestCompare(t *testing.T) {
	priority := []objective.Dimension{objective.Correctness, objective.Cost}
	tests := []struct {
		name string
		a, b ScoreVector
		want int
	}{
		{"first-dimension-decides", ScoreVector{Correctness: 0.9}, ScoreVector{Correctness: 0.8, Cost: 1}, 1},
		{"tie-falls-through", ScoreVector{Correctness: 0.5, Cost: 0.2}, ScoreVector{Correctness: 0.5, Cost: 0.3}, -1},
		{"unlisted-dimensions-ignored", ScoreVector{Correctness: 0.5, Safety: 1}, ScoreVector{Correctness: 0.5}, 0},
		{"no-rounding", ScoreVector{Correctness: 0.5000000000000001}, ScoreVector{Correctness: 0.5}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Compare(tt.a, tt.b, priority); got != tt.want {
				t.Errorf("Compare = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestCompareResults(t *testing.T) {
	spec := objective.MustNew(objective.Definition{
		ObjectiveID:           "obj",
		Version:               "1",
		LexicographicPriority: []objective.Dimension{objective.Latency},
	})
	pass := Result{Passed: true, ScoreVector: ScoreVector{Latency: 0.1}}
	better := Result{Passed: true, ScoreVector: ScoreVector{Latency: 0.2, Correctness: 0}}
	fail := Result{Passed: false}

	if CompareResults(pass, fail, spec) != 1 || CompareResults(fail, pass, spec) != -1 {
		t.Error("passing result must outrank failing result")
	}
	if CompareResults(pass, better, spec) != -1 {
		t.Error("expected latency to decide")
	}
	if CompareResults(fail, fail, nil) != 0 {
		t.Error("equal results should compare equal")
	}
}

func TestScoreVectorGet(t *testing.T) {
	v := ScoreVector{Correctness: 0.1, Safety: 0.2, Cost: 0.3, Latency: 0.4, Maintainability: 0.5, HumanTime: 0.6}
	want := []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6}
	for i, d := range objective.Dimensions() {
		if got := v.Get(d); got != want[i] {
			t.Errorf("Get(%s) = %v, want %v", d, got, want[i])
		}
	}
	if v.Get("speed") != 0 {
		t.Error("unknown dimension should read 0")
	}
}
