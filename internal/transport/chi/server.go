package chi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	gochi "github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/stylist/internal/domain"
	"github.com/kailas-cloud/stylist/internal/imaging"
	"github.com/kailas-cloud/stylist/internal/logger"
	healthuc "github.com/kailas-cloud/stylist/internal/usecase/health"
	quotauc "github.com/kailas-cloud/stylist/internal/usecase/quota"
	recommendationuc "github.com/kailas-cloud/stylist/internal/usecase/recommendation"
	searchuc "github.com/kailas-cloud/stylist/internal/usecase/search"
	styleimageuc "github.com/kailas-cloud/stylist/internal/usecase/styleimage"
)

const (
	defaultMaxFileBytes = 10 << 20
	defaultPlaceholder  = "/images/placeholder.png"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

// errorResponse is the body of every non-2xx JSON response.
type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// Server serves the stylist HTTP API.
type Server struct {
	recommendations *recommendationuc.Service
	search          *searchuc.Service
	quota           *quotauc.Service
	images          *styleimageuc.Service
	health          *healthuc.Service
	logger          *zap.Logger
	errorHandlers   []errorHandler

	uploadDir    string
	maxFileBytes int64
	maxDimension int
	devBypass    bool
	placeholder  string
}

// NewServer creates an HTTP API server.
func NewServer(
	recommendations *recommendationuc.Service,
	search *searchuc.Service,
	quota *quotauc.Service,
	images *styleimageuc.Service,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	s := &Server{
		recommendations: recommendations,
		search:          search,
		quota:           quota,
		images:          images,
		health:          health,
		logger:          logger,
		maxFileBytes:    defaultMaxFileBytes,
		maxDimension:    imaging.DefaultMaxDimension,
		placeholder:     defaultPlaceholder,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrInvalidInput, http.StatusBadRequest),
		sentinelHandler(domain.ErrUnauthenticated, http.StatusUnauthorized),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound),
		sentinelHandler(domain.ErrQuotaExceeded, http.StatusTooManyRequests),
		sentinelHandler(domain.ErrMissingCredentials, http.StatusInternalServerError),
		sentinelHandler(domain.ErrImageGenerationFailed, http.StatusBadGateway),
		sentinelHandler(domain.ErrImageTimeout, http.StatusGatewayTimeout),
		sentinelHandler(domain.ErrProviderError, http.StatusBadGateway),
	}
	return s
}

// WithUploads sets where uploaded photos are staged and how they are bounded.
func (s *Server) WithUploads(dir string, maxFileBytes int64, maxDimension int) *Server {
	s.uploadDir = dir
	if maxFileBytes > 0 {
		s.maxFileBytes = maxFileBytes
	}
	if maxDimension > 0 {
		s.maxDimension = maxDimension
	}
	return s
}

// WithDevBypass reports unlimited quota and skips quota enforcement.
func (s *Server) WithDevBypass(enabled bool) *Server {
	s.devBypass = enabled
	return s
}

// WithPlaceholderImage sets the image path served when generation fails.
func (s *Server) WithPlaceholderImage(path string) *Server {
	if path != "" {
		s.placeholder = path
	}
	return s
}

// Routes registers every endpoint on r.
func (s *Server) Routes(r gochi.Router) {
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "Not found", "")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed", "")
	})

	r.Post("/recommendations", s.CreateRecommendations)
	r.Post("/search", s.Search)
	r.Get("/search/limit", s.SearchLimit)
	r.Post("/search/track", s.TrackSearch)
	r.Get("/search/history", s.SearchHistory)
	r.Post("/openai", s.OpenAIAction)
	r.Post("/replicate", s.ReplicateAction)
	r.Get("/user", s.CurrentUser)
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	// Degraded still serves: quota calls fall back to memory.
	writeJSON(w, http.StatusOK, map[string]any{
		"status": report.Status,
		"checks": report.Checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message, details string) {
	writeJSON(w, status, errorResponse{
		Error:   message,
		Details: details,
	})
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
// The wrapped message goes into details.
func sentinelHandler(sentinel error, status int) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, sentinel.Error(), err.Error())
		return true
	}
}

// handleError maps err through the sentinel chain. Anything unmapped is a 500
// carrying fallbackMsg.
func (s *Server) handleError(w http.ResponseWriter, r *http.Request, err error, fallbackMsg string) {
	log := logger.FromContext(r.Context())
	for _, h := range s.errorHandlers {
		if h(w, err) {
			log.Warn("domain error", zap.Error(err))
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, fallbackMsg, "")
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("decode request body: %s: %w", err, domain.ErrInvalidInput)
	}
	return nil
}

func (s *Server) requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "User not authenticated", "")
		return "", false
	}
	return userID, true
}
