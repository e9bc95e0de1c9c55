package api

import (
	"context"
	"time"
)

const (
	defaultMaxRetries = 2
	defaultBaseDelay  = 1 * time.Second
	defaultCapDelay   = 5 * time.Second
)

// RetryPolicy wraps an operation with bounded exponential backoff.
// MaxRetries counts additional attempts after the first, so the default
// policy issues at most three requests.
type RetryPolicy struct {
	MaxRetries int
	BaseDelay  time.Duration
	CapDelay   time.Duration
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries: defaultMaxRetries,
		BaseDelay:  defaultBaseDelay,
		CapDelay:   defaultCapDelay,
	}
}

// Do runs op until it succeeds, fails terminally, or retries are
// exhausted; the last error is returned. Terminal errors (see
// IsRetryable) are raised immediately.
func (p RetryPolicy) Do(ctx context.Context, op func(ctx context.Context) error) error {
	var lastErr error
	for attempt := 0; attempt <= p.MaxRetries; attempt++ {
		lastErr = op(ctx)
		if lastErr == nil {
			return nil
		}
		if !IsRetryable(lastErr) {
			return lastErr
		}
		if attempt == p.MaxRetries {
			break
		}

		timer := time.NewTimer(p.backoff(attempt))
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		}
	}
	return lastErr
}

// backoff returns min(BaseDelay * 2^attempt, CapDelay).
func (p RetryPolicy) backoff(attempt int) time.Duration {
	d := p.BaseDelay
	for i := 0; i < attempt; i++ {
		d *= 2
		if d >= p.CapDelay {
			return p.CapDelay
		}
	}
	if d > p.CapDelay {
		return p.CapDelay
	}
	return d
}
