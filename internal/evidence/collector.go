package evidence

import (
	"math"
	"sort"
)

// #region collector

// Collector maps raw session check results into normalized evidence items.
type Collector struct {
	config CollectorConfig
}

// NewCollector creates a Collector with the given configuration.
func NewCollector(config CollectorConfig) *Collector {
	return &Collector{config: config}
}

// Config returns the normalization settings in effect.
func (c *Collector) Config() CollectorConfig {
	return c.config
}

// #endregion collector

// #region collect

// Collect normalizes every usable record into an Item. Output is ordered by
// source key, then by input order. Malformed records are dropped, never reported.
func (c *Collector) Collect(results SessionCheckResults) []Item {
	items := make([]Item, 0, len(results.GateChecks)+len(results.TestSuites)+len(results.StaticAnalysis)+2)

	for _, g := range results.GateChecks {
		if it, ok := gateItem(g); ok {
			items = append(items, it)
		}
	}
	for _, s := range results.TestSuites {
		if it, ok := testSuiteItem(s); ok {
			items = append(items, it)
		}
	}
	for _, a := range results.StaticAnalysis {
		if it, ok := c.staticAnalysisItem(a); ok {
			items = append(items, it)
		}
	}
	if it, ok := telemetryItem(SourceCostTelemetry, results.CostUSD, c.config.CostBudgetUSD); ok {
		items = append(items, it)
	}
	if it, ok := telemetryItem(SourceLatencyTelemetry, results.LatencySeconds, c.config.LatencyBudgetSeconds); ok {
		items = append(items, it)
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Source < items[j].Source
	})
	return items
}

// #endregion collect

// #region mappers

// gateItem uses the normalized pass rate when the gate ran countable checks,
// otherwise the binary pass flag.
func gateItem(g GateCheckResult) (Item, bool) {
	if g.GateID == "" || g.CheckCount < 0 || g.PassCount < 0 {
		return Item{}, false
	}
	value := 0.0
	if g.CheckCount == 0 {
		if g.Passed {
			value = 1.0
		}
	} else {
		if !finite(g.PassRate) {
			return Item{}, false
		}
		value = clamp(g.PassRate)
	}
	return Item{
		Source: SourceValidatorResult,
		Value:  value,
		ItemID: itemID(SourceValidatorResult, g.GateID),
	}, true
}

// testSuiteItem scores passed/total. An empty suite scores 1.0.
func testSuiteItem(s TestSuiteResult) (Item, bool) {
	if s.Suite == "" || s.TotalTests < 0 || s.PassedTests < 0 {
		return Item{}, false
	}
	value := 1.0
	if s.TotalTests > 0 {
		value = clamp(float64(s.PassedTests) / float64(s.TotalTests))
	}
	return Item{
		Source: SourceTestOutput,
		Value:  value,
		ItemID: itemID(SourceTestOutput, s.Suite),
	}, true
}

func (c *Collector) staticAnalysisItem(a StaticAnalysisResult) (Item, bool) {
	if a.Tool == "" || a.ErrorCount < 0 {
		return Item{}, false
	}
	var value float64
	switch {
	case c.config.StrictStaticAnalysis && a.ErrorCount == 0:
		value = 1.0
	case finite(a.CleanRate):
		value = clamp(a.CleanRate)
	default:
		return Item{}, false
	}
	return Item{
		Source: SourceStaticAnalysis,
		Value:  value,
		ItemID: itemID(SourceStaticAnalysis, a.Tool),
	}, true
}

// telemetryItem normalizes a raw scalar against its budget. Absent telemetry
// or a disabled budget omits the item rather than zeroing it.
func telemetryItem(source string, raw *float64, budget float64) (Item, bool) {
	if raw == nil || budget <= 0 || !finite(*raw) || !finite(budget) {
		return Item{}, false
	}
	return Item{
		Source: source,
		Value:  clamp(*raw / budget),
		ItemID: source,
	}, true
}

// #endregion mappers

// #region helpers

func itemID(source, name string) string {
	return source + ":" + name
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// clamp restricts v to [0, 1].
func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// #endregion helpers
