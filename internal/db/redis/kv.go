package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/stylist/internal/db"
)

// Get retrieves a value by key.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	cmd := s.b().Get().Key(key).Build()
	data, err := s.do(ctx, cmd).AsBytes()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			return nil, db.ErrKeyNotFound
		}
		return nil, &db.Error{Op: db.OpGet, Err: err}
	}
	return data, nil
}

// IncrExpire increments a counter and resets its TTL inside one MULTI/EXEC
// round-trip, so either both commands apply or neither does.
func (s *Store) IncrExpire(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	cmds := []rueidis.Completed{
		s.b().Multi().Build(),
		s.b().Incr().Key(key).Build(),
		s.b().Expire().Key(key).Seconds(int64(ttl.Seconds())).Build(),
		s.b().Exec().Build(),
	}
	ops := [...]string{db.OpMulti, db.OpIncr, db.OpExpire, db.OpExec}

	results := s.client.DoMulti(ctx, cmds...)
	for i, res := range results {
		if err := res.Error(); err != nil {
			return 0, &db.Error{Op: ops[i], Err: fmt.Errorf("key %s: %w", key, err)}
		}
	}

	replies, err := results[len(results)-1].ToArray()
	if err != nil {
		return 0, &db.Error{Op: db.OpExec, Err: fmt.Errorf("key %s: %w", key, err)}
	}
	if len(replies) != 2 {
		return 0, &db.Error{Op: db.OpExec, Err: fmt.Errorf("key %s: expected 2 replies, got %d", key, len(replies))}
	}
	n, err := replies[0].AsInt64()
	if err != nil {
		return 0, &db.Error{Op: db.OpIncr, Err: fmt.Errorf("key %s: %w", key, err)}
	}
	if err := replies[1].Error(); err != nil {
		return 0, &db.Error{Op: db.OpExpire, Err: fmt.Errorf("key %s: %w", key, err)}
	}
	return n, nil
}
