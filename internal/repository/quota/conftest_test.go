package quota

import (
	"context"
	"errors"
	"time"

	domquota "github.com/kailas-cloud/stylist/internal/domain/quota"
)

var errUnavailable = errors.New("connection refused")

// mockStore implements the consumer interface for tests.
type mockStore struct {
	getFn        func(ctx context.Context, key string) ([]byte, error)
	incrExpireFn func(ctx context.Context, key string, ttl time.Duration) (int64, error)
	pushCappedFn func(ctx context.Context, key string, value []byte, maxLen int64) error
	rangeFn      func(ctx context.Context, key string, start, stop int64) ([][]byte, error)
}

func (m *mockStore) Get(ctx context.Context, key string) ([]byte, error) {
	if m.getFn != nil {
		return m.getFn(ctx, key)
	}
	return nil, nil
}

func (m *mockStore) IncrExpire(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	if m.incrExpireFn != nil {
		return m.incrExpireFn(ctx, key, ttl)
	}
	return 1, nil
}

func (m *mockStore) PushCapped(ctx context.Context, key string, value []byte, maxLen int64) error {
	if m.pushCappedFn != nil {
		return m.pushCappedFn(ctx, key, value, maxLen)
	}
	return nil
}

func (m *mockStore) Range(ctx context.Context, key string, start, stop int64) ([][]byte, error) {
	if m.rangeFn != nil {
		return m.rangeFn(ctx, key, start, stop)
	}
	return nil, nil
}

// failingBackend fails every call, standing in for an unreachable Redis.
type failingBackend struct{}

func (failingBackend) Increment(context.Context, string, time.Duration) (int64, error) {
	return 0, errUnavailable
}

func (failingBackend) Count(context.Context, string) (int64, error) { return 0, errUnavailable }

func (failingBackend) Append(context.Context, string, domquota.Record, int) error {
	return errUnavailable
}

func (failingBackend) Recent(context.Context, string, int) ([]domquota.Record, error) {
	return nil, errUnavailable
}
