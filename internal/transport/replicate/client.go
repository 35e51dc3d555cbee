// Package replicate is a client for the Replicate predictions API.
package replicate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/stylist/internal/domain"
	"github.com/kailas-cloud/stylist/internal/domain/imagegen"
	"github.com/kailas-cloud/stylist/internal/metrics"
)

const (
	defaultBaseURL = "https://api.replicate.com/v1"
	defaultModel   = "black-forest-labs/flux-pro"
	maxErrorBody   = 512
)

// Config holds the Replicate client settings.
type Config struct {
	APIToken string
	BaseURL  string
	Model    string
	Timeout  time.Duration
	Observer metrics.Observer
	Logger   *zap.Logger
}

// Client creates and reads predictions.
type Client struct {
	token      string
	baseURL    string
	model      string
	httpClient *http.Client
	observer   metrics.Observer
	logger     *zap.Logger
}

// New creates a Replicate client. An empty APIToken yields a client whose
// calls fail with domain.ErrMissingCredentials.
func New(cfg Config) *Client {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return &Client{
		token:      strings.TrimSpace(cfg.APIToken),
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		model:      cfg.Model,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		observer:   cfg.Observer,
		logger:     cfg.Logger,
	}
}

// Configured reports whether an API token is set.
func (c *Client) Configured() bool { return c.token != "" }

// CreatePrediction submits a generation job for the configured model.
func (c *Client) CreatePrediction(ctx context.Context, input imagegen.Input) (imagegen.Prediction, error) {
	body, err := json.Marshal(map[string]any{"input": input})
	if err != nil {
		return imagegen.Prediction{}, fmt.Errorf("marshal prediction input: %w", err)
	}

	p, err := c.do(ctx, "create", http.MethodPost, "/models/"+c.model+"/predictions", body)
	if err != nil {
		return imagegen.Prediction{}, err
	}
	if p.ID == "" {
		return imagegen.Prediction{}, fmt.Errorf("prediction without id: %w", domain.ErrProviderError)
	}

	c.logger.Debug("Prediction created",
		zap.String("prediction_id", p.ID),
		zap.String("status", string(p.Status)),
	)
	return p, nil
}

// GetPrediction reads the current state of a job.
func (c *Client) GetPrediction(ctx context.Context, id string) (imagegen.Prediction, error) {
	if id == "" {
		return imagegen.Prediction{}, fmt.Errorf("prediction id is required: %w", domain.ErrInvalidInput)
	}
	return c.do(ctx, "get", http.MethodGet, "/predictions/"+url.PathEscape(id), nil)
}

func (c *Client) do(ctx context.Context, op, method, path string, body []byte) (imagegen.Prediction, error) {
	if !c.Configured() {
		return imagegen.Prediction{}, fmt.Errorf("replicate api token: %w", domain.ErrMissingCredentials)
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return imagegen.Prediction{}, fmt.Errorf("build %s request: %w", op, err)
	}
	req.Header.Set("Authorization", "Token "+c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.observer.Observe(op, "error", time.Since(start).Seconds())
		return imagegen.Prediction{}, fmt.Errorf("replicate %s request: %v: %w", op, err, domain.ErrProviderError)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.observer.Observe(op, "error", time.Since(start).Seconds())
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return imagegen.Prediction{}, fmt.Errorf("replicate API error %d: %s: %w",
			resp.StatusCode, strings.TrimSpace(string(msg)), domain.ErrProviderError)
	}

	var p imagegen.Prediction
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		c.observer.Observe(op, "error", time.Since(start).Seconds())
		return imagegen.Prediction{}, fmt.Errorf("decode prediction: %v: %w", err, domain.ErrProviderError)
	}
	c.observer.Observe(op, "ok", time.Since(start).Seconds())
	return p, nil
}
