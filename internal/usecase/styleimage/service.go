package styleimage

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/stylist/internal/domain"
	"github.com/kailas-cloud/stylist/internal/domain/imagegen"
	"github.com/kailas-cloud/stylist/internal/domain/style"
	"github.com/kailas-cloud/stylist/internal/logger"
)

const (
	defaultPollInterval = time.Second
	defaultMaxAttempts  = 60
	imageSize           = 256
	inferenceSteps      = 30
	guidanceScale       = 7.5
)

// Service renders a style recommendation into an outfit image.
type Service struct {
	predictor    Predictor
	direct       ImageGenerator
	pollInterval time.Duration
	maxAttempts  int
}

// New creates a Service. direct may be nil when the synchronous variant is unused.
func New(predictor Predictor, direct ImageGenerator) *Service {
	return &Service{
		predictor:    predictor,
		direct:       direct,
		pollInterval: defaultPollInterval,
		maxAttempts:  defaultMaxAttempts,
	}
}

// WithPolling overrides the poll interval and the number of polls before giving up.
func (s *Service) WithPolling(interval time.Duration, maxAttempts int) *Service {
	if interval >= 0 {
		s.pollInterval = interval
	}
	if maxAttempts > 0 {
		s.maxAttempts = maxAttempts
	}
	return s
}

// Generate submits a prediction and polls it to completion.
// A failed job returns domain.ErrImageGenerationFailed; a job still running
// after the poll budget returns domain.ErrImageTimeout. The remote job is never cancelled.
func (s *Service) Generate(ctx context.Context, r style.Response) (string, error) {
	if s.predictor == nil || !s.predictor.Configured() {
		return "", fmt.Errorf("replicate api token: %w", domain.ErrMissingCredentials)
	}
	if r.Style.Description == "" {
		return "", fmt.Errorf("style description is required for image generation: %w", domain.ErrInvalidInput)
	}

	log := logger.FromContext(ctx)

	p, err := s.predictor.CreatePrediction(ctx, imagegen.Input{
		Prompt:            predictionPrompt(r),
		NegativePrompt:    negativePrompt,
		Width:             imageSize,
		Height:            imageSize,
		NumOutputs:        1,
		NumInferenceSteps: inferenceSteps,
		GuidanceScale:     guidanceScale,
	})
	if err != nil {
		return "", fmt.Errorf("create prediction: %w", err)
	}
	log.Info("Image prediction submitted", zap.String("prediction_id", p.ID))

	for attempt := 1; !p.Status.Terminal(); attempt++ {
		if attempt > s.maxAttempts {
			return "", fmt.Errorf("prediction %s still %s after %d polls: %w",
				p.ID, p.Status, s.maxAttempts, domain.ErrImageTimeout)
		}
		if err := wait(ctx, s.pollInterval); err != nil {
			return "", fmt.Errorf("poll prediction %s: %w", p.ID, err)
		}

		id := p.ID
		p, err = s.predictor.GetPrediction(ctx, id)
		if err != nil {
			return "", fmt.Errorf("poll prediction %s: %w", id, err)
		}
		log.Debug("Prediction polled",
			zap.String("prediction_id", id),
			zap.Int("attempt", attempt),
			zap.String("status", string(p.Status)),
		)
	}

	if p.Status != imagegen.StatusSucceeded {
		return "", fmt.Errorf("prediction %s %s: %s: %w",
			p.ID, p.Status, p.ErrorMessage(), domain.ErrImageGenerationFailed)
	}

	url, ok := p.ImageURL()
	if !ok {
		return "", fmt.Errorf("no valid image url in prediction %s: %w", p.ID, domain.ErrProviderError)
	}
	return url, nil
}

// GenerateDirect renders the image with the synchronous image API.
func (s *Service) GenerateDirect(ctx context.Context, r style.Response) (string, error) {
	if s.direct == nil || !s.direct.Configured() {
		return "", fmt.Errorf("openai api key: %w", domain.ErrMissingCredentials)
	}
	if r.Style.Description == "" {
		return "", fmt.Errorf("style description is required for image generation: %w", domain.ErrInvalidInput)
	}

	url, err := s.direct.GenerateImage(ctx, dallePrompt(r))
	if err != nil {
		return "", fmt.Errorf("generate image: %w", err)
	}
	return url, nil
}

func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
