package recommendation

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/stylist/internal/domain"
)

// loadPhotos reads every path concurrently and returns data URLs in input order.
// Any failure fails the whole load.
func (s *Service) loadPhotos(ctx context.Context, paths []string) ([]string, error) {
	if len(paths) == 0 {
		return nil, nil
	}

	urls := make([]string, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.loadConcurrency)

	for i, p := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err //nolint:wrapcheck // context error
			}
			data, err := s.readFile(p)
			if err != nil {
				return fmt.Errorf("read photo %d: %w", i, err)
			}
			u, err := dataURL(data)
			if err != nil {
				return fmt.Errorf("photo %d: %w", i, err)
			}
			urls[i] = u
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load photos: %w", err)
	}
	return urls, nil
}

// dataURL encodes an image as a base64 data: URL with its sniffed content type.
func dataURL(data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("empty image: %w", domain.ErrInvalidInput)
	}
	mime := http.DetectContentType(data)
	if !strings.HasPrefix(mime, "image/") {
		return "", fmt.Errorf("unsupported content type %q: %w", mime, domain.ErrInvalidInput)
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}
