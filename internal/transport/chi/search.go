package chi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/stylist/internal/domain"
	domquota "github.com/kailas-cloud/stylist/internal/domain/quota"
	"github.com/kailas-cloud/stylist/internal/logger"
)

type searchRequest struct {
	Query string `json:"query"`
	// Queries is nil when absent and empty when sent as [].
	Queries []string `json:"queries"`
}

type trackRequest struct {
	Timestamp *time.Time      `json:"timestamp,omitempty"`
	Query     domquota.Query  `json:"query"`
	Results   json.RawMessage `json:"results,omitempty"`
}

type trackResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	UserID  string `json:"userId"`
}

// Search handles POST /search with either a single query or a batch.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := decodeJSON(r, &req); err != nil {
		s.handleError(w, r, err, "Invalid request body")
		return
	}

	if req.Queries != nil {
		if len(req.Queries) == 0 {
			writeError(w, http.StatusBadRequest, "At least one query is required", "")
			return
		}
		results, err := s.search.BatchSearch(r.Context(), req.Queries)
		if err != nil {
			s.handleError(w, r, err, "Batch search failed")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"results": results})
		return
	}

	results, err := s.search.SearchProducts(r.Context(), req.Query)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			writeError(w, http.StatusBadRequest, "Query parameter is required", "")
			return
		}
		s.handleError(w, r, err, "Search failed")
		return
	}
	if len(results) == 0 {
		writeError(w, http.StatusNotFound, "No results found", "")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": results})
}

// SearchLimit handles GET /search/limit.
func (s *Server) SearchLimit(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	if s.devBypass {
		writeJSON(w, http.StatusOK, domquota.UnlimitedStatus())
		return
	}

	status, err := s.quota.Status(r.Context(), userID)
	if err != nil {
		s.handleError(w, r, err, "Failed to check search limit")
		return
	}
	writeJSON(w, http.StatusOK, status)
}

// TrackSearch handles POST /search/track.
func (s *Server) TrackSearch(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	var req trackRequest
	if err := decodeJSON(r, &req); err != nil {
		s.handleError(w, r, err, "Invalid request body")
		return
	}

	var ts time.Time
	if req.Timestamp != nil {
		ts = req.Timestamp.UTC()
	}
	rec := domquota.NewRecord(userID, ts, req.Query, req.Results)

	track := s.quota.TrackIfAllowed
	if s.devBypass {
		track = s.quota.TrackSearch
	}
	if err := track(r.Context(), userID, rec); err != nil {
		if errors.Is(err, domain.ErrQuotaExceeded) {
			writeError(w, http.StatusTooManyRequests, "You have reached your daily search limit", "")
			return
		}
		s.handleError(w, r, err, "Failed to track search")
		return
	}

	logger.FromContext(r.Context()).Info("Search tracked", zap.String("record_id", rec.ID))
	writeJSON(w, http.StatusOK, trackResponse{
		Success: true,
		Message: "Search tracked successfully",
		UserID:  userID,
	})
}

// SearchHistory handles GET /search/history.
func (s *Server) SearchHistory(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	records, err := s.quota.History(r.Context(), userID)
	if err != nil {
		s.handleError(w, r, err, "Failed to load search history")
		return
	}
	if records == nil {
		records = []domquota.Record{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"history": records})
}
