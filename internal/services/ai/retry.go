// File: internal/services/ai/retry.go
package ai

import (
	"context"
	"errors"
	"time"
)

// retry runs call up to cfg.MaxRetries times. Each attempt gets its own
// cfg.Timeout when set; ctx bounds the whole loop.
func retry(ctx context.Context, cfg *Config, logger Logger, operation string, call func(ctx context.Context) error) error {
	attempts := cfg.MaxRetries
	if attempts < 1 {
		attempts = 1
	}
	var lastErr *AIError
	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			logger.Debug("retrying responder call", "operation", operation, "attempt", attempt, "max_retries", attempts)
			select {
			case <-ctx.Done():
				return classify(operation, ctx.Err())
			case <-time.After(time.Duration(attempt-1) * cfg.RetryDelay):
			}
		}

		attemptCtx, cancel := ctx, context.CancelFunc(func() {})
		if cfg.Timeout > 0 {
			attemptCtx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		}
		err := call(attemptCtx)
		cancel()
		if err == nil {
			if attempt > 1 {
				logger.Info("responder call succeeded after retry", "operation", operation, "attempts", attempt)
			}
			return nil
		}

		lastErr = classify(operation, err)
		if ctx.Err() != nil {
			return classify(operation, ctx.Err())
		}
		if !lastErr.Retryable() && !errors.Is(err, context.DeadlineExceeded) {
			return lastErr
		}
		if attempt < attempts {
			logger.Warn("responder call failed, retrying", "operation", operation, "attempt", attempt, "error", err)
		}
	}
	logger.Error("responder call failed after all retries", "operation", operation, "attempts", attempts, "error", lastErr)
	return lastErr
}
