// Package cachestore provides the string-keyed TTL stores behind the recommendation cache.
package cachestore

import (
	"context"
	"errors"
	"time"
)

// ErrMiss reports an absent or expired key. Absence means "unknown", never "empty".
var ErrMiss = errors.New("cachestore: miss")

type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	Close() error
}
