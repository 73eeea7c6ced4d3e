package replay

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/danielpatrickdp/objective-scoring/scorer/internal/evidence"
	"github.com/danielpatrickdp/objective-scoring/scorer/internal/objective"
	"github.com/danielpatrickdp/objective-scoring/scorer/internal/scoring"
)

// #region fixture-types

// Fixture is the top-level JSON structure for a replay fixture: one objective,
// the collector settings, and a list of recorded runs with their expected outcome.
type Fixture struct {
	Description string               `json:"description"`
	Objective   objective.Definition `json:"objective"`
	Collector   *FixtureCollector    `json:"collector,omitempty"`
	Runs        []FixtureRun         `json:"runs"`
}

// FixtureCollector mirrors evidence.CollectorConfig with JSON tags.
type FixtureCollector struct {
	CostBudgetUSD        float64 `json:"cost_budget_usd"`
	LatencyBudgetSeconds float64 `json:"latency_budget_seconds"`
	StrictStaticAnalysis bool    `json:"strict_static_analysis"`
}

// FixtureRun is one recorded session and what scoring it must produce.
// When Evidence is set the run replays those items directly and only the
// identity fields of Checks are used; exported runs take this form.
type FixtureRun struct {
	Checks   evidence.SessionCheckResults `json:"checks"`
	Evidence []evidence.Item              `json:"evidence,omitempty"`
	Expected Expectation                  `json:"expected"`
}

// Expectation is the recorded outcome of a run. ScoreVector and
// AttributionRefs are only compared when present.
type Expectation struct {
	Passed          bool                 `json:"passed"`
	Failures        []string             `json:"failures"`
	ScoreVector     *scoring.ScoreVector `json:"score_vector,omitempty"`
	AttributionRefs []string             `json:"attribution_refs,omitempty"`
}

// #endregion fixture-types

// #region fixture-loader

// LoadFixture reads and parses a JSON fixture file. The objective is not
// validated here; call Spec for that.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	return &f, nil
}

// Spec validates and freezes the fixture's objective.
func (f *Fixture) Spec() (*objective.Spec, error) {
	spec, err := objective.New(f.Objective)
	if err != nil {
		return nil, fmt.Errorf("fixture objective: %w", err)
	}
	return spec, nil
}

// CollectorConfig converts the fixture collector section. Absent means defaults.
func (f *Fixture) CollectorConfig() evidence.CollectorConfig {
	if f.Collector == nil {
		return evidence.DefaultCollectorConfig()
	}
	return evidence.CollectorConfig{
		CostBudgetUSD:        f.Collector.CostBudgetUSD,
		LatencyBudgetSeconds: f.Collector.LatencyBudgetSeconds,
		StrictStaticAnalysis: f.Collector.StrictStaticAnalysis,
	}
}

// #endregion fixture-loader

// #region fixture-writer

// RecordedRun builds a fixture run from a stored evaluation so it can be
// replayed later against the same objective.
func RecordedRun(result scoring.Result, sessionID string, collectedAt time.Time, items []evidence.Item) FixtureRun {
	vec := result.ScoreVector
	return FixtureRun{
		Checks: evidence.SessionCheckResults{
			RunID:       result.RunID,
			SessionID:   sessionID,
			CollectedAt: collectedAt,
		},
		Evidence: append([]evidence.Item{}, items...),
		Expected: Expectation{
			Passed:          result.Passed,
			Failures:        append([]string{}, result.Failures...),
			ScoreVector:     &vec,
			AttributionRefs: append([]string{}, result.AttributionRefs...),
		},
	}
}

// WriteFixture writes f as indented JSON.
func WriteFixture(path string, f *Fixture) error {
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal fixture: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write fixture %s: %w", path, err)
	}
	return nil
}

// #endregion fixture-writer
