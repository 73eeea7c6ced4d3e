package objective

// DefaultRangeMax is the upper bound used by RANGE gates without range_max.
const DefaultRangeMax = 1.0

// Passes reports whether an evidence value satisfies the gate.
// REGEX has no meaning over a scalar and fails closed; New rejects it anyway.
func (g GateSpec) Passes(value float64) bool {
	switch g.Type {
	case GateThreshold:
		return value >= g.Threshold
	case GateBoolean:
		return value > 0.0
	case GateRange:
		return g.Threshold <= value && value <= g.rangeMax()
	case GateRegex:
		return false
	default:
		return false
	}
}

func (g GateSpec) rangeMax() float64 {
	if g.RangeMax == nil {
		return DefaultRangeMax
	}
	return *g.RangeMax
}

// clone copies the gate so RangeMax is not shared with the source.
func (g GateSpec) clone() GateSpec {
	if g.RangeMax != nil {
		v := *g.RangeMax
		g.RangeMax = &v
	}
	return g
}
