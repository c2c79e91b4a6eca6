package cache

import "time"

// BytesCache is a minimal cache API storing raw bytes with TTL. The summary
// endpoint uses it to absorb dashboard polling without re-reading the store.
type BytesCache interface {
	GetBytes(key string) (b []byte, ok bool, err error)
	SetBytes(key string, value []byte, ttl time.Duration) error
}
