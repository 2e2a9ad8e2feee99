package cache

import "time"

// BytesCache holds rendered response bodies keyed by request identity.
// Implementations are safe for concurrent use by handler goroutines.
type BytesCache interface {
	GetBytes(key string) (b []byte, ok bool, err error)
	SetBytes(key string, value []byte, ttl time.Duration) error
}
