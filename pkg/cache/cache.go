package cache

import (
	"context"
	"errors"
	"strings"
	"time"
)

// ErrCacheMiss is returned by Get when the key is absent or expired.
var ErrCacheMiss = errors.New("cache: key not found")

// Service stores JSON-encoded values under string keys. Every backend
// encodes on Set and decodes into the caller's destination on Get, so
// a typed struct round-trips the same way through memory and Redis.
type Service interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string, dest any) error
	Delete(ctx context.Context, keys ...string) error
	Exists(ctx context.Context, keys ...string) (bool, error)
	Close() error
}

// Key joins segments into a colon-delimited cache key.
func Key(parts ...string) string {
	return strings.Join(parts, ":")
}
