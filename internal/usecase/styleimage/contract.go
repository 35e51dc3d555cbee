package styleimage

import (
	"context"

	"github.com/kailas-cloud/stylist/internal/domain/imagegen"
)

// Predictor submits and reads asynchronous image-generation jobs.
type Predictor interface {
	Configured() bool
	CreatePrediction(ctx context.Context, input imagegen.Input) (imagegen.Prediction, error)
	GetPrediction(ctx context.Context, id string) (imagegen.Prediction, error)
}

// ImageGenerator produces an image synchronously and returns its URL.
type ImageGenerator interface {
	Configured() bool
	GenerateImage(ctx context.Context, prompt string) (string, error)
}
