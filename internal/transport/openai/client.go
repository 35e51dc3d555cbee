package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sashabaranov/go-openai/jsonschema"
	"go.uber.org/zap"

	"github.com/kailas-cloud/stylist/internal/domain"
	"github.com/kailas-cloud/stylist/internal/metrics"
)

const (
	defaultModel      = "gpt-4o-mini"
	defaultImageModel = openai.CreateImageModelDallE2
	defaultMaxTokens  = 800
)

var (
	_ domain.ChatCompleter = (*Client)(nil)
	_ domain.HealthChecker = (*Client)(nil)
)

// Client talks to the OpenAI API for chat/vision completions and image generation.
type Client struct {
	client     *openai.Client
	configured bool
	model      string
	imageModel string
	maxTokens  int
	observer   metrics.Observer
	logger     *zap.Logger
}

// Config holds the OpenAI client settings.
type Config struct {
	APIKey     string
	BaseURL    string
	Model      string
	ImageModel string
	MaxTokens  int
	Timeout    time.Duration
	Observer   metrics.Observer
	Logger     *zap.Logger
}

// NewClient creates an OpenAI client. An empty APIKey yields a client whose
// calls fail with domain.ErrMissingCredentials.
func NewClient(cfg *Config) *Client {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	if cfg.Timeout > 0 {
		clientCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}

	c := &Client{
		client:     openai.NewClientWithConfig(clientCfg),
		configured: cfg.APIKey != "",
		model:      cfg.Model,
		imageModel: cfg.ImageModel,
		maxTokens:  cfg.MaxTokens,
		observer:   cfg.Observer,
		logger:     cfg.Logger,
	}
	if c.model == "" {
		c.model = defaultModel
	}
	if c.imageModel == "" {
		c.imageModel = defaultImageModel
	}
	if c.maxTokens <= 0 {
		c.maxTokens = defaultMaxTokens
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	return c
}

// Configured reports whether an API key is set.
func (c *Client) Configured() bool { return c.configured }

// Complete implements domain.ChatCompleter.
func (c *Client) Complete(ctx context.Context, req domain.ChatRequest) (string, error) {
	if !c.configured {
		return "", fmt.Errorf("openai api key: %w", domain.ErrMissingCredentials)
	}

	chatReq := openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    toMessages(req.Messages),
		MaxTokens:   c.maxTokens,
		Temperature: req.Temperature,
	}
	if req.Schema != nil {
		format, err := responseFormat(req.Schema)
		if err != nil {
			return "", err
		}
		chatReq.ResponseFormat = format
	}

	start := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		c.observer.Observe("chat", "error", time.Since(start).Seconds())
		return "", parseAPIError(err)
	}
	if len(resp.Choices) == 0 {
		c.observer.Observe("chat", "error", time.Since(start).Seconds())
		return "", fmt.Errorf("empty chat completion: %w", domain.ErrProviderError)
	}
	c.observer.Observe("chat", "ok", time.Since(start).Seconds())

	c.logger.Debug("Chat completion finished",
		zap.String("model", c.model),
		zap.Int("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens),
		zap.String("finish_reason", string(resp.Choices[0].FinishReason)),
	)

	return resp.Choices[0].Message.Content, nil
}

// GenerateImage creates a single 256x256 image and returns its URL.
func (c *Client) GenerateImage(ctx context.Context, prompt string) (string, error) {
	if !c.configured {
		return "", fmt.Errorf("openai api key: %w", domain.ErrMissingCredentials)
	}

	start := time.Now()
	resp, err := c.client.CreateImage(ctx, openai.ImageRequest{
		Prompt:         prompt,
		Model:          c.imageModel,
		N:              1,
		Size:           openai.CreateImageSize256x256,
		ResponseFormat: openai.CreateImageResponseFormatURL,
	})
	if err != nil {
		c.observer.Observe("image", "error", time.Since(start).Seconds())
		return "", parseAPIError(err)
	}
	if len(resp.Data) == 0 || resp.Data[0].URL == "" {
		c.observer.Observe("image", "error", time.Since(start).Seconds())
		return "", fmt.Errorf("no image url in response: %w", domain.ErrProviderError)
	}
	c.observer.Observe("image", "ok", time.Since(start).Seconds())

	return resp.Data[0].URL, nil
}

// HealthCheck verifies API availability via ListModels (free endpoint).
func (c *Client) HealthCheck(ctx context.Context) error {
	if !c.configured {
		return fmt.Errorf("openai api key: %w", domain.ErrMissingCredentials)
	}
	if _, err := c.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}

func toMessages(in []domain.ChatMessage) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(in))
	for _, m := range in {
		msg := openai.ChatCompletionMessage{Role: string(m.Role)}
		if m.ImageURL != "" {
			msg.MultiContent = []openai.ChatMessagePart{{
				Type:     openai.ChatMessagePartTypeImageURL,
				ImageURL: &openai.ChatMessageImageURL{URL: m.ImageURL},
			}}
		} else {
			msg.Content = m.Text
		}
		out = append(out, msg)
	}
	return out
}

func responseFormat(s *domain.ResponseSchema) (*openai.ChatCompletionResponseFormat, error) {
	schema, err := jsonschema.GenerateSchemaForType(s.Target)
	if err != nil {
		return nil, fmt.Errorf("generate %s schema: %w", s.Name, err)
	}
	return &openai.ChatCompletionResponseFormat{
		Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
		JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
			Name:   s.Name,
			Schema: schema,
			Strict: s.Strict,
		},
	}, nil
}

// parseAPIError extracts a human-readable error from the API response.
// All errors are wrapped with domain.ErrProviderError for correct 502 mapping.
func parseAPIError(err error) error {
	wrap := domain.ErrProviderError

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("openai API error %d: %s: %w",
			apiErr.HTTPStatusCode, apiErr.Message, wrap)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		if detail := extractMessage(reqErr.Body); detail != "" {
			return fmt.Errorf("openai API error %d: %s: %w",
				reqErr.HTTPStatusCode, detail, wrap)
		}
		return fmt.Errorf("openai API error %d: %s: %w",
			reqErr.HTTPStatusCode, string(reqErr.Body), wrap)
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("openai request: %w: %w", err, wrap)
	}

	return fmt.Errorf("openai request failed: %v: %w", err, wrap)
}

// extractMessage pulls error.message out of a JSON error body.
func extractMessage(body []byte) string {
	var parsed struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if json.Unmarshal(body, &parsed) == nil && parsed.Error.Message != "" {
		return parsed.Error.Message
	}
	return ""
}
