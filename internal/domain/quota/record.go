// Package quota describes tracked searches and the per-user search allowance.
package quota

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Query summarizes what the user submitted for a tracked search.
type Query struct {
	InspirationImages int    `json:"inspirationImages"`
	ProfileImage      bool   `json:"profileImage"`
	StyleDescription  string `json:"styleDescription"`
}

// Record is one tracked search. Records are append-only.
type Record struct {
	ID        string          `json:"id"`
	UserID    string          `json:"userId"`
	Timestamp time.Time       `json:"timestamp"`
	Query     Query           `json:"query"`
	Results   json.RawMessage `json:"results,omitempty"`
}

// NewRecord creates a record with a fresh identifier. A zero timestamp means now.
func NewRecord(userID string, ts time.Time, q Query, results json.RawMessage) Record {
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	return Record{
		ID:        uuid.NewString(),
		UserID:    userID,
		Timestamp: ts,
		Query:     q,
		Results:   results,
	}
}
