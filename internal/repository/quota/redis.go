// Package quota persists per-user search counters and search history.
package quota

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/kailas-cloud/stylist/internal/db"
	domquota "github.com/kailas-cloud/stylist/internal/domain/quota"
)

// store is the consumer interface for quota operations (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	IncrExpire(ctx context.Context, key string, ttl time.Duration) (int64, error)
	PushCapped(ctx context.Context, key string, value []byte, maxLen int64) error
	Range(ctx context.Context, key string, start, stop int64) ([][]byte, error)
}

// RedisStore keeps counters and history in Redis.
// Errors are returned to the caller; recovery is FallbackStore's job.
type RedisStore struct {
	store  store
	prefix string
}

// NewRedisStore creates a Redis-backed quota store. prefix is prepended to every key.
func NewRedisStore(s store, prefix string) *RedisStore {
	return &RedisStore{store: s, prefix: prefix}
}

// Increment bumps the user's counter and refreshes its expiry window.
func (r *RedisStore) Increment(ctx context.Context, userID string, window time.Duration) (int64, error) {
	key := r.countKey(userID)
	// Every increment restarts the window.
	n, err := r.store.IncrExpire(ctx, key, window)
	if err != nil {
		return 0, fmt.Errorf("quota INCR %s: %w", key, err)
	}
	return n, nil
}

// Count returns the user's counter. Returns 0 if the key does not exist.
func (r *RedisStore) Count(ctx context.Context, userID string) (int64, error) {
	key := r.countKey(userID)
	data, err := r.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("quota GET %s: %w", key, err)
	}

	n, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("quota GET %s parse: %w", key, err)
	}
	return n, nil
}

// Append stores a search record at the head of the user's history.
func (r *RedisStore) Append(ctx context.Context, userID string, rec domquota.Record, maxLen int) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal search record: %w", err)
	}
	key := r.historyKey(userID)
	if err := r.store.PushCapped(ctx, key, data, int64(maxLen)); err != nil {
		return fmt.Errorf("quota LPUSH %s: %w", key, err)
	}
	return nil
}

// Recent returns up to n records, newest first.
func (r *RedisStore) Recent(ctx context.Context, userID string, n int) ([]domquota.Record, error) {
	if n <= 0 {
		return nil, nil
	}
	key := r.historyKey(userID)
	raw, err := r.store.Range(ctx, key, 0, int64(n-1))
	if err != nil {
		return nil, fmt.Errorf("quota LRANGE %s: %w", key, err)
	}

	out := make([]domquota.Record, 0, len(raw))
	for i, item := range raw {
		var rec domquota.Record
		if err := json.Unmarshal(item, &rec); err != nil {
			return nil, fmt.Errorf("decode search record %d of %s: %w", i, key, err)
		}
		out = append(out, rec)
	}
	return out, nil
}

func (r *RedisStore) countKey(userID string) string {
	return fmt.Sprintf("%ssearch:%s:count", r.prefix, userID)
}

func (r *RedisStore) historyKey(userID string) string {
	return fmt.Sprintf("%ssearch:%s", r.prefix, userID)
}
