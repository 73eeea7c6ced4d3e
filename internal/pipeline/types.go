package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/danielpatrickdp/objective-scoring/scorer/internal/evidence"
	"github.com/danielpatrickdp/objective-scoring/scorer/internal/scoring"
)

// #region record
// Record is what a publisher receives after each evaluation: the result plus
// the evidence it was computed from.
type Record struct {
	Result      scoring.Result
	SessionID   string
	CollectedAt time.Time
	Evidence    []evidence.Item
}

// #endregion record

// #region publisher
// Publisher is a downstream consumer of evaluation records (results store,
// trainer feed). Errors are logged and counted by the pipeline; they never
// change the result handed back to the caller.
type Publisher interface {
	Publish(ctx context.Context, rec Record) error
}

// PublisherFunc adapts a function to Publisher.
type PublisherFunc func(ctx context.Context, rec Record) error

// Publish calls f.
func (f PublisherFunc) Publish(ctx context.Context, rec Record) error {
	return f(ctx, rec)
}

// #endregion publisher

// #region config
// Config wires a pipeline's side effects.
type Config struct {
	Publishers []Publisher
	Logger     *slog.Logger
	// Now stamps bundles whose input carries no collection time.
	Now func() time.Time
}

// #endregion config
