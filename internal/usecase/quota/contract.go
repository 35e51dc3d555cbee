package quota

import (
	"context"
	"time"

	domquota "github.com/kailas-cloud/stylist/internal/domain/quota"
)

// Store persists per-user counters and search history.
type Store interface {
	Increment(ctx context.Context, userID string, window time.Duration) (int64, error)
	Count(ctx context.Context, userID string) (int64, error)
	Append(ctx context.Context, userID string, rec domquota.Record, maxLen int) error
	Recent(ctx context.Context, userID string, n int) ([]domquota.Record, error)
}
