package quota

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kailas-cloud/stylist/internal/domain"
	domquota "github.com/kailas-cloud/stylist/internal/domain/quota"
)

const (
	defaultLimit       = 5
	defaultWindow      = time.Hour
	defaultHistorySize = 100
)

// Service enforces the per-user search allowance and keeps search history.
type Service struct {
	store       Store
	limit       int64
	window      time.Duration
	historySize int
	tracked     prometheus.Counter
}

// New creates a quota Service with default limit (5), window (1h) and history size (100).
func New(store Store) *Service {
	return &Service{
		store:       store,
		limit:       defaultLimit,
		window:      defaultWindow,
		historySize: defaultHistorySize,
	}
}

// WithLimit sets the number of searches allowed per window.
func (s *Service) WithLimit(limit int64) *Service {
	if limit > 0 {
		s.limit = limit
	}
	return s
}

// WithWindow sets the counter expiry window. The window restarts on every tracked search.
func (s *Service) WithWindow(window time.Duration) *Service {
	if window > 0 {
		s.window = window
	}
	return s
}

// WithHistorySize caps the number of records kept per user.
func (s *Service) WithHistorySize(n int) *Service {
	if n > 0 {
		s.historySize = n
	}
	return s
}

// WithTrackedCounter counts successfully tracked searches.
func (s *Service) WithTrackedCounter(c prometheus.Counter) *Service {
	s.tracked = c
	return s
}

// Limit returns the configured allowance.
func (s *Service) Limit() int64 { return s.limit }

// CheckSearchLimit reports whether the user is below the limit. It never mutates state.
func (s *Service) CheckSearchLimit(ctx context.Context, userID string) (bool, error) {
	count, err := s.GetSearchCount(ctx, userID)
	if err != nil {
		return false, err
	}
	return count < s.limit, nil
}

// GetSearchCount returns the user's counter in the current window, 0 if absent.
func (s *Service) GetSearchCount(ctx context.Context, userID string) (int64, error) {
	if userID == "" {
		return 0, fmt.Errorf("user id is required: %w", domain.ErrInvalidInput)
	}
	count, err := s.store.Count(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("get search count: %w", err)
	}
	return count, nil
}

// Status returns the allowance view for the user.
func (s *Service) Status(ctx context.Context, userID string) (domquota.Status, error) {
	count, err := s.GetSearchCount(ctx, userID)
	if err != nil {
		return domquota.Status{}, err
	}
	return domquota.NewStatus(count, s.limit), nil
}

// TrackSearch increments the counter and appends the record to the user's history.
// Calls beyond the limit are still recorded; enforcement is the caller's decision.
// The two writes are independent: a failed append leaves the increment in place.
func (s *Service) TrackSearch(ctx context.Context, userID string, rec domquota.Record) error {
	if userID == "" {
		return fmt.Errorf("user id is required: %w", domain.ErrInvalidInput)
	}
	if rec.UserID == "" {
		rec.UserID = userID
	}

	if _, err := s.store.Increment(ctx, userID, s.window); err != nil {
		return fmt.Errorf("increment search count: %w", err)
	}
	if err := s.store.Append(ctx, userID, rec, s.historySize); err != nil {
		return fmt.Errorf("append search record: %w", err)
	}

	if s.tracked != nil {
		s.tracked.Inc()
	}
	return nil
}

// TrackIfAllowed records the search only when the user is below the limit.
// Returns domain.ErrQuotaExceeded otherwise.
func (s *Service) TrackIfAllowed(ctx context.Context, userID string, rec domquota.Record) error {
	ok, err := s.CheckSearchLimit(ctx, userID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("user %s: %w", userID, domain.ErrQuotaExceeded)
	}
	return s.TrackSearch(ctx, userID, rec)
}

// History returns the user's tracked searches, newest first.
func (s *Service) History(ctx context.Context, userID string) ([]domquota.Record, error) {
	if userID == "" {
		return nil, fmt.Errorf("user id is required: %w", domain.ErrInvalidInput)
	}
	recs, err := s.store.Recent(ctx, userID, s.historySize)
	if err != nil {
		return nil, fmt.Errorf("get search history: %w", err)
	}
	return recs, nil
}
