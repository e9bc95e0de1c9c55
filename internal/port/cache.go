package port

import (
	"context"
	"time"
)

type Cache interface {
	// Get returns the cached payload for key, or ok=false when absent or expired
	Get(ctx context.Context, key string) (payload []byte, ok bool, err error)

	// Set stores payload under key for ttl
	Set(ctx context.Context, key string, payload []byte, ttl time.Duration) error

	// Clear drops every entry
	Clear(ctx context.Context) error
}
