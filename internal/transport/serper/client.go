// Package serper is a client for the Serper.dev Google Shopping API.
package serper

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/stylist/internal/domain"
	"github.com/kailas-cloud/stylist/internal/domain/product"
	"github.com/kailas-cloud/stylist/internal/metrics"
)

const (
	defaultBaseURL  = "https://google.serper.dev"
	defaultLocation = "United States"
	defaultNum      = 10
	querySuffix     = " fashion clothing"
	maxErrorBody    = 512
)

// Config holds the Serper client settings.
type Config struct {
	APIKey   string
	BaseURL  string
	Location string
	Num      int
	Timeout  time.Duration
	Observer metrics.Observer
	Logger   *zap.Logger
}

// Client performs shopping searches.
type Client struct {
	apiKey     string
	baseURL    string
	location   string
	num        int
	httpClient *http.Client
	observer   metrics.Observer
	logger     *zap.Logger
}

// New creates a Serper client. An empty APIKey yields a client whose
// searches fail with domain.ErrMissingCredentials.
func New(cfg Config) *Client {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Location == "" {
		cfg.Location = defaultLocation
	}
	if cfg.Num <= 0 {
		cfg.Num = defaultNum
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return &Client{
		apiKey:     strings.TrimSpace(cfg.APIKey),
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		location:   cfg.Location,
		num:        cfg.Num,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		observer:   cfg.Observer,
		logger:     cfg.Logger,
	}
}

// Configured reports whether an API key is set.
func (c *Client) Configured() bool { return c.apiKey != "" }

type shoppingRequest struct {
	Q        string `json:"q"`
	Location string `json:"location"`
	Num      int    `json:"num"`
}

type shoppingItem struct {
	Title    string   `json:"title"`
	Source   string   `json:"source"`
	Link     string   `json:"link"`
	Price    string   `json:"price"`
	ImageURL string   `json:"imageUrl"`
	Rating   *float64 `json:"rating"`
}

type shoppingResponse struct {
	Shopping []shoppingItem `json:"shopping"`
}

// Shopping runs one shopping search. The query is suffixed with " fashion clothing".
// Returns at most Num results; an empty slice when nothing matched.
func (c *Client) Shopping(ctx context.Context, query string) ([]product.Result, error) {
	if !c.Configured() {
		return nil, fmt.Errorf("serper api key: %w", domain.ErrMissingCredentials)
	}

	payload, err := json.Marshal(shoppingRequest{
		Q:        query + querySuffix,
		Location: c.location,
		Num:      c.num,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal shopping request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/shopping", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build shopping request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-KEY", c.apiKey)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.observer.Observe("shopping", "error", time.Since(start).Seconds())
		return nil, fmt.Errorf("shopping request: %v: %w", err, domain.ErrProviderError)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.observer.Observe("shopping", "error", time.Since(start).Seconds())
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, fmt.Errorf("serper API error %d: %s: %w",
			resp.StatusCode, strings.TrimSpace(string(body)), domain.ErrProviderError)
	}

	var parsed shoppingResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		c.observer.Observe("shopping", "error", time.Since(start).Seconds())
		return nil, fmt.Errorf("decode shopping response: %v: %w", err, domain.ErrProviderError)
	}
	c.observer.Observe("shopping", "ok", time.Since(start).Seconds())

	items := parsed.Shopping
	if len(items) > c.num {
		items = items[:c.num]
	}
	results := make([]product.Result, 0, len(items))
	for _, it := range items {
		results = append(results, product.Result{
			Description:  it.Title,
			Price:        it.Price,
			ThumbnailURL: it.ImageURL,
			ProductURL:   it.Link,
			Rating:       it.Rating,
		})
	}

	c.logger.Debug("Shopping search completed",
		zap.String("query", query),
		zap.Int("results", len(results)),
	)
	return results, nil
}
