package objective

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// WeightSumEpsilon is the tolerance for per-dimension shaped-term weight sums.
const WeightSumEpsilon = 1e-6

// #region validator
// specValidate checks Definition struct tags. It is configured once in init
// and safe for concurrent use.
var specValidate *validator.Validate

func init() {
	specValidate = validator.New()
	specValidate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	if err := specValidate.RegisterValidation("dimension", validateDimension); err != nil {
		panic(fmt.Sprintf("register dimension validator: %v", err))
	}
}

func validateDimension(fl validator.FieldLevel) bool {
	return Dimension(fl.Field().String()).Valid()
}

// #endregion validator

// #region spec
// Spec is a validated, frozen objective definition. It has no mutators;
// every accessor returns a copy.
type Spec struct {
	objectiveID string
	version     string
	gates       []GateSpec
	shapedTerms []ShapedTermSpec
	scoreRange  [2]float64
	priority    []Dimension
}

// New validates def and builds a Spec. All problems are reported together in
// a *ValidationError wrapping ErrInvalidSpec.
func New(def Definition) (*Spec, error) {
	var fields []FieldError
	fields = append(fields, structErrors(def)...)
	fields = append(fields, semanticErrors(def)...)
	if len(fields) > 0 {
		return nil, &ValidationError{ObjectiveID: def.ObjectiveID, Fields: fields}
	}

	s := &Spec{
		objectiveID: def.ObjectiveID,
		version:     def.Version,
		gates:       make([]GateSpec, len(def.Gates)),
		shapedTerms: make([]ShapedTermSpec, len(def.ShapedTerms)),
		scoreRange:  [2]float64{0, 1},
	}
	for i, g := range def.Gates {
		s.gates[i] = g.clone()
	}
	copy(s.shapedTerms, def.ShapedTerms)
	if len(def.ScoreRange) == 2 {
		s.scoreRange = [2]float64{def.ScoreRange[0], def.ScoreRange[1]}
	}
	if len(def.LexicographicPriority) > 0 {
		s.priority = append([]Dimension(nil), def.LexicographicPriority...)
	} else {
		s.priority = Dimensions()
	}
	return s, nil
}

// MustNew is New for static definitions known to be valid; it panics otherwise.
func MustNew(def Definition) *Spec {
	s, err := New(def)
	if err != nil {
		panic(err)
	}
	return s
}

// #endregion spec

// #region accessors

// ObjectiveID returns the objective identifier.
func (s *Spec) ObjectiveID() string { return s.objectiveID }

// Version returns the objective version.
func (s *Spec) Version() string { return s.version }

// Key returns "id@version".
func (s *Spec) Key() string { return s.objectiveID + "@" + s.version }

// Gates returns the gates in declared order.
func (s *Spec) Gates() []GateSpec {
	out := make([]GateSpec, len(s.gates))
	for i, g := range s.gates {
		out[i] = g.clone()
	}
	return out
}

// ShapedTerms returns the shaped terms in declared order.
func (s *Spec) ShapedTerms() []ShapedTermSpec {
	out := make([]ShapedTermSpec, len(s.shapedTerms))
	copy(out, s.shapedTerms)
	return out
}

// ScoreRange returns the declared [min, max] score range.
func (s *Spec) ScoreRange() (float64, float64) {
	return s.scoreRange[0], s.scoreRange[1]
}

// LexicographicPriority returns the dimension order used to compare score vectors.
func (s *Spec) LexicographicPriority() []Dimension {
	return append([]Dimension(nil), s.priority...)
}

// Definition returns the authored form of the spec, with defaults filled in.
func (s *Spec) Definition() Definition {
	return Definition{
		ObjectiveID:           s.objectiveID,
		Version:               s.version,
		Gates:                 s.Gates(),
		ShapedTerms:           s.ShapedTerms(),
		ScoreRange:            []float64{s.scoreRange[0], s.scoreRange[1]},
		LexicographicPriority: s.LexicographicPriority(),
	}
}

// #endregion accessors

// #region validation

// structErrors runs the tag-based rules.
func structErrors(def Definition) []FieldError {
	err := specValidate.Struct(def)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []FieldError{{Field: "definition", Reason: err.Error()}}
	}
	fields := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, FieldError{Field: fieldPath(fe.Namespace()), Reason: tagReason(fe)})
	}
	return fields
}

// semanticErrors covers rules that span fields or elements.
func semanticErrors(def Definition) []FieldError {
	var fields []FieldError

	if len(def.ScoreRange) == 2 && !(def.ScoreRange[0] < def.ScoreRange[1]) {
		fields = append(fields, FieldError{Field: "score_range", Reason: "min must be below max"})
	}

	seenGates := make(map[string]bool, len(def.Gates))
	for i, g := range def.Gates {
		path := fmt.Sprintf("gates[%d]", i)
		if g.ID != "" && seenGates[g.ID] {
			fields = append(fields, FieldError{Field: path + ".id", Reason: fmt.Sprintf("duplicate gate id %q", g.ID)})
		}
		seenGates[g.ID] = true

		if !finite(g.Threshold) {
			fields = append(fields, FieldError{Field: path + ".threshold", Reason: "must be finite"})
		}
		switch g.Type {
		case GateRegex:
			fields = append(fields, FieldError{
				Field:  path + ".gate_type",
				Reason: "REGEX gates cannot be evaluated against numeric evidence",
				Err:    ErrUnsupportedGateType,
			})
		case GateRange:
			if g.RangeMax != nil && (!finite(*g.RangeMax) || *g.RangeMax < g.Threshold) {
				fields = append(fields, FieldError{Field: path + ".range_max", Reason: "must be finite and not below threshold"})
			}
		}
	}

	seenTerms := make(map[string]bool, len(def.ShapedTerms))
	for i, t := range def.ShapedTerms {
		if t.ID != "" && seenTerms[t.ID] {
			fields = append(fields, FieldError{Field: fmt.Sprintf("shaped_terms[%d].id", i), Reason: fmt.Sprintf("duplicate term id %q", t.ID)})
		}
		seenTerms[t.ID] = true
	}

	seenDims := make(map[Dimension]bool, len(def.LexicographicPriority))
	for i, d := range def.LexicographicPriority {
		if seenDims[d] {
			fields = append(fields, FieldError{Field: fmt.Sprintf("lexicographic_priority[%d]", i), Reason: fmt.Sprintf("duplicate dimension %q", d)})
		}
		seenDims[d] = true
	}

	return append(fields, weightSumErrors(def.ShapedTerms)...)
}

// weightSumErrors requires the weights of every referenced dimension to sum to 1.0.
func weightSumErrors(terms []ShapedTermSpec) []FieldError {
	sums := make(map[Dimension]float64)
	for _, t := range terms {
		if !t.Dimension.Valid() {
			continue
		}
		sums[t.Dimension] += t.Weight
	}

	var fields []FieldError
	for _, d := range Dimensions() {
		sum, ok := sums[d]
		if !ok {
			continue
		}
		if math.IsNaN(sum) || math.Abs(sum-1.0) > WeightSumEpsilon {
			fields = append(fields, FieldError{
				Field:  "shaped_terms",
				Reason: fmt.Sprintf("weights for dimension %q sum to %g, want 1.0", d, sum),
				Err:    ErrWeightSum,
			})
		}
	}
	return fields
}

// fieldPath drops the root struct name from a validator namespace.
func fieldPath(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func tagReason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "len":
		return fmt.Sprintf("must have exactly %s elements", fe.Param())
	case "dimension":
		return fmt.Sprintf("unknown dimension %q", fe.Value())
	default:
		return fmt.Sprintf("failed %q check", fe.Tag())
	}
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// #endregion validation
