package evidence

import "time"

// #region sources
// Source keys for normalized evidence items.
const (
	SourceValidatorResult  = "validator_result"
	SourceTestOutput       = "test_output"
	SourceStaticAnalysis   = "static_analysis"
	SourceCostTelemetry    = "cost_telemetry"
	SourceLatencyTelemetry = "latency_telemetry"
)

// #endregion sources

// #region item
// Item is a single normalized measurement. Value is always within [0, 1].
type Item struct {
	Source string  `json:"source"`
	Value  float64 `json:"value"`
	ItemID string  `json:"item_id"`
}

// #endregion item

// #region check-results
// GateCheckResult is the outcome of one validator gate for a session.
type GateCheckResult struct {
	GateID     string  `json:"gate_id"`
	Passed     bool    `json:"passed"`
	PassRate   float64 `json:"pass_rate"`
	CheckCount int     `json:"check_count"`
	PassCount  int     `json:"pass_count"`
}

// TestSuiteResult summarizes one test-suite run.
type TestSuiteResult struct {
	Suite           string  `json:"suite"`
	TotalTests      int     `json:"total_tests"`
	PassedTests     int     `json:"passed_tests"`
	FailedTests     int     `json:"failed_tests"`
	PassRate        float64 `json:"pass_rate"`
	DurationSeconds float64 `json:"duration_seconds"`
}

// StaticAnalysisResult summarizes one static-analysis tool run.
type StaticAnalysisResult struct {
	Tool         string  `json:"tool"`
	FilesChecked int     `json:"files_checked"`
	ErrorCount   int     `json:"error_count"`
	WarningCount int     `json:"warning_count"`
	CleanRate    float64 `json:"clean_rate"`
}

// SessionCheckResults bundles every raw check result gathered for one run.
// CostUSD and LatencySeconds are nil when telemetry is unavailable.
type SessionCheckResults struct {
	RunID          string                 `json:"run_id"`
	SessionID      string                 `json:"session_id"`
	CollectedAt    time.Time              `json:"collected_at"`
	GateChecks     []GateCheckResult      `json:"gate_checks"`
	TestSuites     []TestSuiteResult      `json:"test_suites"`
	StaticAnalysis []StaticAnalysisResult `json:"static_analysis"`
	CostUSD        *float64               `json:"cost_usd,omitempty"`
	LatencySeconds *float64               `json:"latency_seconds,omitempty"`
}

// #endregion check-results

// #region config
// CollectorConfig holds normalization knobs for raw telemetry.
type CollectorConfig struct {
	CostBudgetUSD        float64 // cost at which cost_telemetry saturates to 1.0; <= 0 disables
	LatencyBudgetSeconds float64 // latency at which latency_telemetry saturates; <= 0 disables
	StrictStaticAnalysis bool    // zero errors always yields a clean rate of 1.0
}

// DefaultCollectorConfig returns sensible defaults.
func DefaultCollectorConfig() CollectorConfig {
	return CollectorConfig{
		CostBudgetUSD:        1.0,
		LatencyBudgetSeconds: 600,
		StrictStaticAnalysis: true,
	}
}

// #endregion config
