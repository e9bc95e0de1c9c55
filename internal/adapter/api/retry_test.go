package api

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastPolicy() RetryPolicy {
	return RetryPolicy{MaxRetries: 2, BaseDelay: time.Millisecond, CapDelay: 5 * time.Millisecond}
}

func TestRetry_TransientFailuresThenSuccess(t *testing.T) {
	attempts := 0
	err := fastPolicy().Do(context.Background(), func(ctx context.Context) error {
		attempts++
		if attempts <= 2 {
			return &Error{StatusCode: 500}
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, attempts, "two 500s then success resolves on the second retry")
}

func TestRetry_ClientErrorIsTerminal(t *testing.T) {
	attempts := 0
	err := fastPolicy().Do(context.Background(), func(ctx context.Context) error {
		attempts++
		return &Error{StatusCode: 404, Message: "not found"}
	})

	require.Error(t, err)
	assert.Equal(t, 1, attempts, "4xx is never retried")
	assert.Equal(t, 404, StatusCode(err))
}

func TestRetry_ExhaustionReturnsLastError(t *testing.T) {
	attempts := 0
	last := errors.New("still down")
	err := fastPolicy().Do(context.Background(), func(ctx context.Context) error {
		attempts++
		if attempts == 3 {
			return last
		}
		return errors.New("down")
	})

	require.ErrorIs(t, err, last)
	assert.Equal(t, 3, attempts)
}

func TestRetry_NetworkErrorsAreRetryable(t *testing.T) {
	assert.True(t, IsRetryable(errors.New("connection refused")))
	assert.True(t, IsRetryable(&Error{StatusCode: 503}))
	assert.False(t, IsRetryable(&Error{StatusCode: 401}))
	assert.False(t, IsRetryable(&Error{StatusCode: 422}))
}

func TestRetry_BackoffDoublesUpToCap(t *testing.T) {
	p := RetryPolicy{MaxRetries: 5, BaseDelay: time.Second, CapDelay: 5 * time.Second}

	assert.Equal(t, 1*time.Second, p.backoff(0))
	assert.Equal(t, 2*time.Second, p.backoff(1))
	assert.Equal(t, 4*time.Second, p.backoff(2))
	assert.Equal(t, 5*time.Second, p.backoff(3), "delay is capped")
	assert.Equal(t, 5*time.Second, p.backoff(10))
}

func TestRetry_ContextCancelDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	p := RetryPolicy{MaxRetries: 2, BaseDelay: time.Minute, CapDelay: time.Minute}
	done := make(chan error, 1)
	go func() {
		done <- p.Do(ctx, func(ctx context.Context) error {
			return errors.New("down")
		})
	}()

	cancel()
	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("retry did not observe cancellation")
	}
}
