package deviceflow

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/halcyonlab/entra-token-util/internal/metrics"
)

// Option configures the flow orchestrator.
type Option func(*Flow)

// WithLogger sets the structured logger. Defaults to a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(f *Flow) {
		f.logger = logger
	}
}

// WithMetrics attaches Prometheus instrumentation to the flow.
func WithMetrics(m *metrics.Metrics) Option {
	return func(f *Flow) {
		f.metrics = m
	}
}

// WithClock replaces the wall clock, letting tests control expiry checks
// without real sleeping.
func WithClock(now func() time.Time) Option {
	return func(f *Flow) {
		f.now = now
	}
}

// WithSleeper replaces the inter-poll wait used by Wait. The function must
// return early with ctx.Err() when the context is cancelled.
func WithSleeper(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(f *Flow) {
		f.sleep = sleep
	}
}
