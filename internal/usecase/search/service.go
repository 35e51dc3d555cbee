package search

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/stylist/internal/domain"
	"github.com/kailas-cloud/stylist/internal/domain/product"
	"github.com/kailas-cloud/stylist/internal/logger"
)

const (
	defaultBatchSize  = 3
	defaultBatchDelay = time.Second
)

// Service aggregates shopping searches under the provider's rate constraints.
type Service struct {
	shopper    Shopper
	batchSize  int
	batchDelay time.Duration
}

// New creates a search service with batches of 3 and a 1s pause between batches.
func New(shopper Shopper) *Service {
	return &Service{
		shopper:    shopper,
		batchSize:  defaultBatchSize,
		batchDelay: defaultBatchDelay,
	}
}

// WithBatching overrides the batch size and the pause between batches.
func (s *Service) WithBatching(size int, delay time.Duration) *Service {
	if size > 0 {
		s.batchSize = size
	}
	if delay >= 0 {
		s.batchDelay = delay
	}
	return s
}

// SearchProducts runs one query. An upstream failure or no match yields an empty slice.
func (s *Service) SearchProducts(ctx context.Context, query string) ([]product.Result, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("search query is required: %w", domain.ErrInvalidInput)
	}
	if !s.shopper.Configured() {
		return nil, fmt.Errorf("shopping search: %w", domain.ErrMissingCredentials)
	}
	return s.searchOne(ctx, query), nil
}

// BatchSearch runs every distinct query and maps it to its results.
// Batches run one after another; queries inside a batch run concurrently.
// A failing query maps to an empty slice, so the key set always equals the input set.
func (s *Service) BatchSearch(ctx context.Context, queries []string) (map[string][]product.Result, error) {
	if len(queries) == 0 {
		return nil, fmt.Errorf("at least one search query is required: %w", domain.ErrInvalidInput)
	}
	if !s.shopper.Configured() {
		return nil, fmt.Errorf("shopping search: %w", domain.ErrMissingCredentials)
	}

	unique := dedupe(queries)
	out := make(map[string][]product.Result, len(unique))
	var mu sync.Mutex

	log := logger.FromContext(ctx)
	batches := (len(unique) + s.batchSize - 1) / s.batchSize

	for b := 0; b < batches; b++ {
		start := b * s.batchSize
		end := min(start+s.batchSize, len(unique))

		log.Debug("Processing search batch",
			zap.Int("batch", b+1),
			zap.Int("batches", batches),
			zap.Int("queries", end-start),
		)

		var g errgroup.Group
		for _, q := range unique[start:end] {
			g.Go(func() error {
				res := s.searchOne(ctx, q)
				mu.Lock()
				out[q] = res
				mu.Unlock()
				return nil
			})
		}
		_ = g.Wait()

		if b < batches-1 {
			if err := sleep(ctx, s.batchDelay); err != nil {
				return nil, fmt.Errorf("batch search interrupted: %w", err)
			}
		}
	}

	return out, nil
}

// searchOne never fails: errors are logged and mapped to an empty slice.
func (s *Service) searchOne(ctx context.Context, query string) []product.Result {
	res, err := s.shopper.Shopping(ctx, query)
	if err != nil {
		logger.FromContext(ctx).Warn("Shopping search failed",
			zap.String("query", query),
			zap.Error(err),
		)
		return []product.Result{}
	}
	if res == nil {
		return []product.Result{}
	}
	return res
}

func dedupe(queries []string) []string {
	seen := make(map[string]struct{}, len(queries))
	out := make([]string, 0, len(queries))
	for _, q := range queries {
		if _, ok := seen[q]; ok {
			continue
		}
		seen[q] = struct{}{}
		out = append(out, q)
	}
	return out
}

func sleep(ctx context.Context, d time.Duration) error {
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
