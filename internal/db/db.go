package db

import (
	"context"
	"time"
)

// Store is the database facade combining the sub-interfaces consumers depend on.
type Store interface {
	Pinger
	KVStore
	ListStore
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// KVStore provides counter and key-value operations.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	// IncrExpire atomically increments key and sets its TTL, returning the new value.
	IncrExpire(ctx context.Context, key string, ttl time.Duration) (int64, error)
}

// ListStore provides capped list operations, newest element first.
type ListStore interface {
	// PushCapped prepends value and trims the list to its newest maxLen elements.
	PushCapped(ctx context.Context, key string, value []byte, maxLen int64) error
	// Range returns elements between start and stop inclusive (negative indexes count from the tail).
	Range(ctx context.Context, key string, start, stop int64) ([][]byte, error)
}
