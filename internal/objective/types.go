package objective

// #region gate-type
// GateType enumerates hard-gate comparison kinds.
type GateType string

const (
	GateThreshold GateType = "THRESHOLD"
	GateBoolean   GateType = "BOOLEAN"
	GateRange     GateType = "RANGE"
	GateRegex     GateType = "REGEX" // declared for compatibility; rejected by New
)

// #endregion gate-type

// #region direction
// Direction says whether a shaped term rewards high or low evidence values.
type Direction string

const (
	Maximize Direction = "maximize"
	Minimize Direction = "minimize"
)

// #endregion direction

// #region dimension
// Dimension names one axis of the score vector.
type Dimension string

const (
	Correctness     Dimension = "correctness"
	Safety          Dimension = "safety"
	Cost            Dimension = "cost"
	Latency         Dimension = "latency"
	Maintainability Dimension = "maintainability"
	HumanTime       Dimension = "human_time"
)

// Dimensions returns all six dimensions in canonical order.
func Dimensions() []Dimension {
	return []Dimension{Correctness, Safety, Cost, Latency, Maintainability, HumanTime}
}

// Valid reports whether d is one of the six known dimensions.
func (d Dimension) Valid() bool {
	switch d {
	case Correctness, Safety, Cost, Latency, Maintainability, HumanTime:
		return true
	}
	return false
}

// #endregion dimension

// #region gate-spec
// GateSpec is a hard pass/fail rule over one evidence source.
// Weight is informational and never affects pass/fail.
type GateSpec struct {
	ID             string   `yaml:"id" json:"id" validate:"required"`
	Type           GateType `yaml:"gate_type" json:"gate_type" validate:"required,oneof=THRESHOLD BOOLEAN RANGE REGEX"`
	Threshold      float64  `yaml:"threshold" json:"threshold"`
	EvidenceSource string   `yaml:"evidence_source" json:"evidence_source" validate:"required"`
	Weight         float64  `yaml:"weight" json:"weight" validate:"gte=0"`
	RangeMax       *float64 `yaml:"range_max,omitempty" json:"range_max,omitempty"`
	RegexPattern   string   `yaml:"regex_pattern,omitempty" json:"regex_pattern,omitempty"`
}

// #endregion gate-spec

// #region shaped-term-spec
// ShapedTermSpec is a weighted, directional contribution to one score dimension.
type ShapedTermSpec struct {
	ID             string    `yaml:"id" json:"id" validate:"required"`
	Weight         float64   `yaml:"weight" json:"weight" validate:"gt=0,lte=1"`
	Direction      Direction `yaml:"direction" json:"direction" validate:"required,oneof=maximize minimize"`
	EvidenceSource string    `yaml:"evidence_source" json:"evidence_source" validate:"required"`
	Dimension      Dimension `yaml:"score_dimension" json:"score_dimension" validate:"required,dimension"`
}

// #endregion shaped-term-spec

// #region definition
// Definition is the authored form of an objective. New turns it into a frozen Spec.
type Definition struct {
	ObjectiveID           string           `yaml:"objective_id" json:"objective_id" validate:"required"`
	Version               string           `yaml:"version" json:"version" validate:"required"`
	Gates                 []GateSpec       `yaml:"gates" json:"gates" validate:"dive"`
	ShapedTerms           []ShapedTermSpec `yaml:"shaped_terms" json:"shaped_terms" validate:"dive"`
	ScoreRange            []float64        `yaml:"score_range,omitempty" json:"score_range,omitempty" validate:"omitempty,len=2"`
	LexicographicPriority []Dimension      `yaml:"lexicographic_priority,omitempty" json:"lexicographic_priority,omitempty" validate:"dive,dimension"`
}

// #endregion definition
