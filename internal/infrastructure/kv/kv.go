package kv

import (
	"context"
	"errors"
	"time"
)

// ErrMiss is returned by Get and Take when the key is absent or expired.
var ErrMiss = errors.New("kv: key not found")

// Store is the key-value storage used for session snapshots and short-lived
// tokens. A zero ttl means the value does not expire.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	// Take returns the value and deletes the key in one step. Of concurrent
	// callers at most one gets the value.
	Take(ctx context.Context, key string) ([]byte, error)
}
