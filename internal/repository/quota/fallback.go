package quota

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	domquota "github.com/kailas-cloud/stylist/internal/domain/quota"
)

// Backend is the operation set shared by every quota store.
type Backend interface {
	Increment(ctx context.Context, userID string, window time.Duration) (int64, error)
	Count(ctx context.Context, userID string) (int64, error)
	Append(ctx context.Context, userID string, rec domquota.Record, maxLen int) error
	Recent(ctx context.Context, userID string, n int) ([]domquota.Record, error)
}

// FallbackStore tries the primary backend on every call and serves from the
// fallback when it fails. Primary errors are logged and never returned.
type FallbackStore struct {
	primary   Backend
	fallback  Backend
	fallbacks *prometheus.CounterVec
	logger    *zap.Logger
}

// NewFallbackStore creates the fallback chain.
// fallbacks is a counter vec with label "operation", passed explicitly; it may be nil.
func NewFallbackStore(primary, fallback Backend, fallbacks *prometheus.CounterVec, logger *zap.Logger) *FallbackStore {
	return &FallbackStore{
		primary:   primary,
		fallback:  fallback,
		fallbacks: fallbacks,
		logger:    logger,
	}
}

// Increment implements Backend.
func (f *FallbackStore) Increment(ctx context.Context, userID string, window time.Duration) (int64, error) {
	n, err := f.primary.Increment(ctx, userID, window)
	if err == nil {
		return n, nil
	}
	f.degrade("increment", userID, err)
	return f.fallback.Increment(ctx, userID, window) //nolint:wrapcheck // same contract
}

// Count implements Backend.
func (f *FallbackStore) Count(ctx context.Context, userID string) (int64, error) {
	n, err := f.primary.Count(ctx, userID)
	if err == nil {
		return n, nil
	}
	f.degrade("count", userID, err)
	return f.fallback.Count(ctx, userID) //nolint:wrapcheck // same contract
}

// Append implements Backend.
func (f *FallbackStore) Append(ctx context.Context, userID string, rec domquota.Record, maxLen int) error {
	err := f.primary.Append(ctx, userID, rec, maxLen)
	if err == nil {
		return nil
	}
	f.degrade("append", userID, err)
	return f.fallback.Append(ctx, userID, rec, maxLen) //nolint:wrapcheck // same contract
}

// Recent implements Backend.
func (f *FallbackStore) Recent(ctx context.Context, userID string, n int) ([]domquota.Record, error) {
	recs, err := f.primary.Recent(ctx, userID, n)
	if err == nil {
		return recs, nil
	}
	f.degrade("recent", userID, err)
	return f.fallback.Recent(ctx, userID, n) //nolint:wrapcheck // same contract
}

func (f *FallbackStore) degrade(op, userID string, err error) {
	if f.fallbacks != nil {
		f.fallbacks.WithLabelValues(op).Inc()
	}
	f.logger.Warn("Quota store unavailable, using in-memory fallback",
		zap.String("operation", op),
		zap.String("user_id", userID),
		zap.Error(err),
	)
}
