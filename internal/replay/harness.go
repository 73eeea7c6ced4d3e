package replay

import (
	"context"
	"fmt"
	"math"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/danielpatrickdp/objective-scoring/scorer/internal/evidence"
	"github.com/danielpatrickdp/objective-scoring/scorer/internal/objective"
	"github.com/danielpatrickdp/objective-scoring/scorer/internal/scoring"
)

// ScoreTolerance bounds the per-dimension difference accepted when comparing
// a replayed vector against a recorded one.
const ScoreTolerance = 1e-9

// #region types

// ReplayResult captures the outcome of replaying one recorded run.
type ReplayResult struct {
	RunID    string
	Result   scoring.Result
	Expected Expectation
	Match    bool
	Diffs    []string
}

// ReplaySummary provides aggregate stats from a replay run.
type ReplaySummary struct {
	TotalRuns  int
	Passed     int
	GateFailed int
	Matched    int
	Diverged   int
}

// #endregion types

// #region replay

// Replay scores every run in order, in-memory, with no side effects.
func Replay(spec *objective.Spec, collector *evidence.Collector, runs []FixtureRun) []ReplayResult {
	results := make([]ReplayResult, len(runs))
	for i, run := range runs {
		results[i] = replayOne(spec, collector, run)
	}
	return results
}

// ReplayConcurrent is Replay fanned out over at most limit goroutines. The
// output is identical to Replay's; only wall time differs. limit <= 0 means
// no limit.
func ReplayConcurrent(ctx context.Context, spec *objective.Spec, collector *evidence.Collector, runs []FixtureRun, limit int) ([]ReplayResult, error) {
	results := make([]ReplayResult, len(runs))
	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i := range runs {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = replayOne(spec, collector, runs[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("replay: %w", err)
	}
	return results, nil
}

// RunFixture validates the fixture's objective and replays its runs.
func RunFixture(ctx context.Context, f *Fixture, limit int) ([]ReplayResult, error) {
	spec, err := f.Spec()
	if err != nil {
		return nil, err
	}
	return ReplayConcurrent(ctx, spec, evidence.NewCollector(f.CollectorConfig()), f.Runs, limit)
}

// Summarize computes aggregate stats from replay results.
func Summarize(results []ReplayResult) ReplaySummary {
	s := ReplaySummary{TotalRuns: len(results)}
	for _, r := range results {
		if r.Result.Passed {
			s.Passed++
		} else {
			s.GateFailed++
		}
		if r.Match {
			s.Matched++
		} else {
			s.Diverged++
		}
	}
	return s
}

// #endregion replay

// #region compare

func replayOne(spec *objective.Spec, collector *evidence.Collector, run FixtureRun) ReplayResult {
	items := run.Evidence
	if items == nil {
		items = collector.Collect(run.Checks)
	}
	bundle := evidence.BuildBundle(run.Checks.RunID, items, run.Checks.CollectedAt)
	result := scoring.Evaluate(bundle, spec)

	diffs := compare(run.Expected, result)
	return ReplayResult{
		RunID:    run.Checks.RunID,
		Result:   result,
		Expected: run.Expected,
		Match:    len(diffs) == 0,
		Diffs:    diffs,
	}
}

func compare(want Expectation, got scoring.Result) []string {
	var diffs []string
	if want.Passed != got.Passed {
		diffs = append(diffs, fmt.Sprintf("passed: want %t, got %t", want.Passed, got.Passed))
	}
	wantFailures := want.Failures
	if wantFailures == nil {
		wantFailures = []string{}
	}
	if !slices.Equal(wantFailures, got.Failures) {
		diffs = append(diffs, fmt.Sprintf("failures: want %v, got %v", wantFailures, got.Failures))
	}
	if want.ScoreVector != nil {
		for _, d := range objective.Dimensions() {
			w, g := want.ScoreVector.Get(d), got.ScoreVector.Get(d)
			if math.Abs(w-g) > ScoreTolerance {
				diffs = append(diffs, fmt.Sprintf("%s: want %g, got %g", d, w, g))
			}
		}
	}
	if want.AttributionRefs != nil && !slices.Equal(want.AttributionRefs, got.AttributionRefs) {
		diffs = append(diffs, fmt.Sprintf("attribution_refs: want %v, got %v", want.AttributionRefs, got.AttributionRefs))
	}
	return diffs
}

// #endregion compare
