package quota

import (
	"context"
	"sync"
	"time"

	domquota "github.com/kailas-cloud/stylist/internal/domain/quota"
)

type counter struct {
	value     int64
	expiresAt time.Time
}

// MemoryStore keeps counters and history in process memory.
// State is lost on restart and is not shared between instances.
type MemoryStore struct {
	mu       sync.Mutex
	counters map[string]counter
	records  map[string][]domquota.Record
	now      func() time.Time
}

// NewMemoryStore creates an empty in-memory quota store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		counters: make(map[string]counter),
		records:  make(map[string][]domquota.Record),
		now:      time.Now,
	}
}

// WithClock overrides the time source.
func (m *MemoryStore) WithClock(now func() time.Time) *MemoryStore {
	m.now = now
	return m
}

// Increment bumps the user's counter and refreshes its expiry window.
func (m *MemoryStore) Increment(_ context.Context, userID string, window time.Duration) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	c := m.liveCounter(userID, now)
	c.value++
	c.expiresAt = now.Add(window)
	m.counters[userID] = c
	return c.value, nil
}

// Count returns the user's counter, 0 once the window has elapsed.
func (m *MemoryStore) Count(_ context.Context, userID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.liveCounter(userID, m.now()).value, nil
}

// Append stores a search record at the head of the user's history.
func (m *MemoryStore) Append(_ context.Context, userID string, rec domquota.Record, maxLen int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	list := append([]domquota.Record{rec}, m.records[userID]...)
	if len(list) > maxLen {
		list = list[:maxLen]
	}
	m.records[userID] = list
	return nil
}

// Recent returns up to n records, newest first.
func (m *MemoryStore) Recent(_ context.Context, userID string, n int) ([]domquota.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	list := m.records[userID]
	if n < len(list) {
		list = list[:n]
	}
	out := make([]domquota.Record, len(list))
	copy(out, list)
	return out, nil
}

// liveCounter returns the counter, dropping it if expired. Caller holds mu.
func (m *MemoryStore) liveCounter(userID string, now time.Time) counter {
	c, ok := m.counters[userID]
	if !ok {
		return counter{}
	}
	if !c.expiresAt.IsZero() && !now.Before(c.expiresAt) {
		delete(m.counters, userID)
		return counter{}
	}
	return c
}
