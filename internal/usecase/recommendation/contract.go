package recommendation

import (
	"context"

	"github.com/kailas-cloud/stylist/internal/domain"
)

// Completer runs a chat completion and returns the assistant text.
type Completer interface {
	Complete(ctx context.Context, req domain.ChatRequest) (string, error)
}
