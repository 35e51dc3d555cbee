package search

import (
	"context"

	"github.com/kailas-cloud/stylist/internal/domain/product"
)

// Shopper runs a single shopping search against the upstream provider.
type Shopper interface {
	Configured() bool
	Shopping(ctx context.Context, query string) ([]product.Result, error)
}
