package objective

import (
	"errors"
	"fmt"
	"strings"
)

// #region sentinels
var (
	// ErrInvalidSpec is wrapped by every ValidationError.
	ErrInvalidSpec = errors.New("invalid objective spec")
	// ErrUnsupportedGateType marks gates whose type cannot be evaluated over a scalar.
	ErrUnsupportedGateType = errors.New("unsupported gate type")
	// ErrWeightSum marks a dimension whose shaped-term weights do not sum to 1.0.
	ErrWeightSum = errors.New("shaped term weights do not sum to 1.0")
)

// #endregion sentinels

// #region validation-error

// FieldError is one rejected field of a Definition.
type FieldError struct {
	Field  string
	Reason string
	Err    error // optional sentinel, e.g. ErrWeightSum
}

func (e FieldError) String() string {
	return e.Field + ": " + e.Reason
}

// ValidationError reports every problem found while building a Spec.
type ValidationError struct {
	ObjectiveID string
	Fields      []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.String()
	}
	return fmt.Sprintf("%s %q: %s", ErrInvalidSpec, e.ObjectiveID, strings.Join(parts, "; "))
}

// Unwrap exposes ErrInvalidSpec plus any field sentinels to errors.Is.
func (e *ValidationError) Unwrap() []error {
	errs := []error{ErrInvalidSpec}
	for _, f := range e.Fields {
		if f.Err != nil {
			errs = append(errs, f.Err)
		}
	}
	return errs
}

// #endregion validation-error
