package store

import (
	"errors"
	"time"

	"github.com/danielpatrickdp/objective-scoring/scorer/internal/scoring"
)

// ErrNotFound is returned when no evaluation matches the lookup.
var ErrNotFound = errors.New("evaluation not found")

// #region evaluation-record
// EvaluationRecord is one persisted evaluation.
type EvaluationRecord struct {
	ID          string
	SessionID   string
	Result      scoring.Result
	CollectedAt time.Time
	CreatedAt   time.Time
}

// #endregion evaluation-record
