package metadata

import "context"

// Repository is the local key-value store behind the session cache.
type Repository interface {
	// Get returns (nil, nil) for a missing key.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set inserts or overwrites key.
	Set(ctx context.Context, key string, value []byte) error
	// DeletePrefix removes every key that starts with prefix.
	DeletePrefix(ctx context.Context, prefix string) error
}
