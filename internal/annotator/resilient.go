package annotator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// ErrUnavailable is returned once the retry budget is exhausted. Call
// sites treat it as a signal to fail open: continue with an empty code
// set and flag the run as having degraded evidence.
var ErrUnavailable = errors.New("risk annotator unavailable")

// Resilient wraps an Annotator with a per-attempt timeout and a small
// fixed retry budget. Screening must never block past the configured
// deadline on an annotation call.
type Resilient struct {
	inner       Annotator
	timeout     time.Duration
	maxAttempts int
	logger      *zap.Logger
}

// NewResilient wraps inner with timeout/retry handling.
func NewResilient(inner Annotator, timeout time.Duration, maxAttempts int, logger *zap.Logger) *Resilient {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resilient{
		inner:       inner,
		timeout:     timeout,
		maxAttempts: maxAttempts,
		logger:      logger,
	}
}

// Annotate implements Annotator. Caller cancellation is respected
// between attempts; attempt failures are retried up to the budget.
func (r *Resilient) Annotate(ctx context.Context, req Request) ([]RiskCode, error) {
	var lastErr error
	for attempt := 1; attempt <= r.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		attemptCtx, cancel := context.WithTimeout(ctx, r.timeout)
		codes, err := r.inner.Annotate(attemptCtx, req)
		cancel()
		if err == nil {
			return codes, nil
		}
		lastErr = err
		r.logger.Warn("annotation attempt failed",
			zap.String("source", req.Source),
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", r.maxAttempts),
			zap.Error(err))
	}
	return nil, fmt.Errorf("%w after %d attempts: %v", ErrUnavailable, r.maxAttempts, lastErr)
}
