package recommendation

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/stylist/internal/domain"
	"github.com/kailas-cloud/stylist/internal/domain/style"
	"github.com/kailas-cloud/stylist/internal/domain/user"
	"github.com/kailas-cloud/stylist/internal/logger"
)

const (
	styleTemperature    float32 = 0.7
	analysisTemperature float32 = 0.5
	defaultLoadLimit            = 4
)

// styleSchema is the shape requested from the model. Gender is set by the service.
type styleSchema struct {
	Style style.Descriptor `json:"style"`
	Items []style.Item     `json:"items"`
}

// Service turns user input and photos into a style recommendation.
type Service struct {
	model           Completer
	readFile        func(string) ([]byte, error)
	loadConcurrency int
	fallbacks       *prometheus.CounterVec
}

// New creates a recommendation service.
func New(model Completer) *Service {
	return &Service{
		model:           model,
		readFile:        os.ReadFile,
		loadConcurrency: defaultLoadLimit,
	}
}

// WithFileReader replaces the photo reader.
func (s *Service) WithFileReader(read func(string) ([]byte, error)) *Service {
	s.readFile = read
	return s
}

// WithFallbackCounter counts fallback responses by reason. The vec must have a "reason" label.
func (s *Service) WithFallbackCounter(c *prometheus.CounterVec) *Service {
	s.fallbacks = c
	return s
}

// Generate produces a recommendation. It never fails: any error yields style.Fallback.
func (s *Service) Generate(ctx context.Context, in user.Input) style.Response {
	in.Normalize()
	log := logger.FromContext(ctx)

	var attrs user.Attributes
	if in.HasProfilePhoto() {
		a, err := s.AnalyzePhotos(ctx, []string{in.ProfilePhotoPath})
		if err != nil {
			log.Warn("Profile photo analysis failed, continuing without attributes", zap.Error(err))
		} else {
			attrs = a
		}
	}

	resp, err := s.recommend(ctx, in, attrs)
	if err != nil {
		reason := "model_error"
		if errors.Is(err, errInvalidResponse) {
			reason = "invalid_response"
		}
		if s.fallbacks != nil {
			s.fallbacks.WithLabelValues(reason).Inc()
		}
		log.Warn("Serving fallback recommendation",
			zap.String("reason", reason),
			zap.Error(err),
		)
		return style.Fallback(in.AdditionalInfo, in.Budget)
	}

	resp.Gender = style.DefaultGender
	if attrs.Gender != "" {
		resp.Gender = attrs.Gender
	}
	return resp
}

var errInvalidResponse = errors.New("invalid model response")

func (s *Service) recommend(ctx context.Context, in user.Input, attrs user.Attributes) (style.Response, error) {
	var profile string
	if in.HasProfilePhoto() {
		urls, err := s.loadPhotos(ctx, []string{in.ProfilePhotoPath})
		if err != nil {
			return style.Response{}, err
		}
		profile = urls[0]
	}
	inspiration, err := s.loadPhotos(ctx, in.AestheticPhotoPaths)
	if err != nil {
		return style.Response{}, err
	}

	text, err := s.model.Complete(ctx, domain.ChatRequest{
		Messages:    styleMessages(in, attrs, profile, inspiration),
		Temperature: styleTemperature,
		Schema:      &domain.ResponseSchema{Name: "style_response", Target: styleSchema{}, Strict: true},
	})
	if err != nil {
		return style.Response{}, fmt.Errorf("style completion: %w", err)
	}

	var resp style.Response
	if err := decodeModelJSON(text, &resp); err != nil {
		return style.Response{}, fmt.Errorf("%w: %w", errInvalidResponse, err)
	}
	if err := resp.Normalize(); err != nil {
		return style.Response{}, fmt.Errorf("%w: %w", errInvalidResponse, err)
	}
	return resp, nil
}

// AnalyzePhotos infers fashion-relevant traits from photos of the user.
// Unreadable photos and missing credentials are errors; an unusable model answer
// yields empty attributes.
func (s *Service) AnalyzePhotos(ctx context.Context, paths []string) (user.Attributes, error) {
	if len(paths) == 0 {
		return user.Attributes{}, nil
	}

	photos, err := s.loadPhotos(ctx, paths)
	if err != nil {
		return user.Attributes{}, err
	}

	text, err := s.model.Complete(ctx, domain.ChatRequest{
		Messages:    analysisMessages(photos),
		Temperature: analysisTemperature,
		Schema:      &domain.ResponseSchema{Name: "user_attributes", Target: user.Attributes{}},
	})
	if err != nil {
		if errors.Is(err, domain.ErrMissingCredentials) {
			return user.Attributes{}, err //nolint:wrapcheck // already descriptive
		}
		logger.FromContext(ctx).Warn("Photo analysis request failed", zap.Error(err))
		return user.Attributes{}, nil
	}

	var attrs user.Attributes
	if err := decodeModelJSON(text, &attrs); err != nil {
		logger.FromContext(ctx).Warn("Photo analysis returned unparseable output", zap.Error(err))
		return user.Attributes{}, nil
	}
	return attrs, nil
}
