package replay

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/danielpatrickdp/objective-scoring/scorer/internal/evidence"
	"github.com/danielpatrickdp/objective-scoring/scorer/internal/objective"
	"github.com/danielpatrickdp/objective-scoring/scorer/internal/scoring"
)

// helper: one gate over validator_result and one correctness term over tests.
func gatedSpec(t *testing.T) *objective.Spec {
	t.Helper()
	spec, err := objective.New(objective.Definition{
		ObjectiveID: "harness",
		Version:     "1",
		Gates: []objective.GateSpec{
			{ID: "validators-pass", Type: objective.GateThreshold, Threshold: 0.9, EvidenceSource: evidence.SourceValidatorResult},
		},
		ShapedTerms: []objective.ShapedTermSpec{
			{ID: "tests", Weight: 1, Direction: objective.Maximize, EvidenceSource: evidence.SourceTestOutput, Dimension: objective.Correctness},
		},
	})
	if err != nil {
		t.Fatalf("objective.New: %v", err)
	}
	return spec
}

// helper: a run whose validator rate and test ratio are given.
func run(id string, validatorRate float64, passedTests int) FixtureRun {
	return FixtureRun{
		Checks: evidence.SessionCheckResults{
			RunID:       id,
			CollectedAt: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
			GateChecks:  []evidence.GateCheckResult{{GateID: "schema", PassRate: validatorRate, CheckCount: 10}},
			TestSuites:  []evidence.TestSuiteResult{{Suite: "unit", TotalTests: 4, PassedTests: passedTests}},
		},
	}
}

func defaultCollector() *evidence.Collector {
	return evidence.NewCollector(evidence.DefaultCollectorConfig())
}

// 1. Matching expectation: no diffs.
func TestReplay_Match(t *testing.T) {
	r := run("r1", 1.0, 2)
	r.Expected = Expectation{
		Passed:          true,
		ScoreVector:     &scoring.ScoreVector{Correctness: 0.5},
		AttributionRefs: []string{"test_output:unit"},
	}

	results := Replay(gatedSpec(t), defaultCollector(), []FixtureRun{r})
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if !results[0].Match {
		t.Errorf("expected match, diffs=%v", results[0].Diffs)
	}
	if results[0].RunID != "r1" {
		t.Errorf("expected run id r1, got %s", results[0].RunID)
	}
}

// 2. Every mismatching field is reported.
func TestReplay_Divergence(t *testing.T) {
	r := run("r2", 0.5, 4)
	r.Expected = Expectation{
		Passed:          true,
		Failures:        []string{},
		ScoreVector:     &scoring.ScoreVector{Correctness: 1},
		AttributionRefs: []string{"test_output:unit"},
	}

	got := Replay(gatedSpec(t), defaultCollector(), []FixtureRun{r})[0]
	if got.Match {
		t.Fatal("expected divergence")
	}
	want := []string{"passed:", "failures:", "correctness:", "attribution_refs:"}
	if len(got.Diffs) != len(want) {
		t.Fatalf("expected %d diffs, got %v", len(want), got.Diffs)
	}
	for i, prefix := range want {
		if !strings.HasPrefix(got.Diffs[i], prefix) {
			t.Errorf("diff %d: expected prefix %q, got %q", i, prefix, got.Diffs[i])
		}
	}
}

// 3. Omitted vector and refs are not compared.
func TestReplay_PartialExpectation(t *testing.T) {
	r := run("r3", 0.5, 4)
	r.Expected = Expectation{Failures: []string{"validators-pass"}}

	got := Replay(gatedSpec(t), defaultCollector(), []FixtureRun{r})[0]
	if !got.Match {
		t.Errorf("expected match, diffs=%v", got.Diffs)
	}
}

// 4. Concurrent replay is indistinguishable from sequential replay.
func TestReplayConcurrent_MatchesSequential(t *testing.T) {
	spec := gatedSpec(t)
	var runs []FixtureRun
	for i := 0; i < 64; i++ {
		runs = append(runs, run(fmt.Sprintf("r-%02d", i), float64(i%10)/10, i%5))
	}

	want := Replay(spec, defaultCollector(), runs)
	for _, limit := range []int{0, 1, 4} {
		got, err := ReplayConcurrent(context.Background(), spec, defaultCollector(), runs, limit)
		if err != nil {
			t.Fatalf("limit %d: %v", limit, err)
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Fatalf("limit %d: concurrent replay diverged (-seq +conc):\n%s", limit, diff)
		}
	}
}

// 5. A cancelled context aborts concurrent replay.
func TestReplayConcurrent_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ReplayConcurrent(ctx, gatedSpec(t), defaultCollector(), []FixtureRun{run("x", 1, 1)}, 1)
	if err == nil {
		t.Fatal("expected error from cancelled context")
	}
}

// 6. Summary counts.
func TestSummarize(t *testing.T) {
	results := []ReplayResult{
		{Result: scoring.Result{Passed: true}, Match: true},
		{Result: scoring.Result{Passed: false}, Match: true},
		{Result: scoring.Result{Passed: false}, Match: false},
	}
	want := ReplaySummary{TotalRuns: 3, Passed: 1, GateFailed: 2, Matched: 2, Diverged: 1}
	if diff := cmp.Diff(want, Summarize(results)); diff != "" {
		t.Errorf("summary mismatch (-want +got):\n%s", diff)
	}
}

// 7. Recorded evidence bypasses the collector.
func TestReplay_RecordedEvidence(t *testing.T) {
	r := FixtureRun{
		Checks: evidence.SessionCheckResults{RunID: "exported"},
		Evidence: []evidence.Item{
			{Source: evidence.SourceValidatorResult, Value: 0.95, ItemID: "validator_result:schema"},
			{Source: evidence.SourceTestOutput, Value: 0.25, ItemID: "test_output:unit"},
		},
		Expected: Expectation{
			Passed:          true,
			ScoreVector:     &scoring.ScoreVector{Correctness: 0.25},
			AttributionRefs: []string{"test_output:unit"},
		},
	}
	got := Replay(gatedSpec(t), defaultCollector(), []FixtureRun{r})[0]
	if !got.Match {
		t.Fatalf("expected match, diffs=%v", got.Diffs)
	}
	if got.Result.BundleFingerprint != evidence.Fingerprint("exported", r.Evidence) {
		t.Error("fingerprint should cover the recorded items")
	}
}
