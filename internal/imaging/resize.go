// Package imaging shrinks uploaded photos before they are sent to the vision model.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/gif" // register decoder
	"image/jpeg"
	_ "image/png" // register decoder

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // register decoder

	"github.com/kailas-cloud/stylist/internal/domain"
)

// DefaultMaxDimension bounds the longer side of a processed photo.
const DefaultMaxDimension = 256

const jpegQuality = 85

// MaxPixels caps the declared width×height accepted for decoding.
const MaxPixels = 40_000_000

// FitWithin returns the size of a w×h image scaled so that neither side exceeds
// maxDim, keeping the aspect ratio. Images that already fit are never enlarged.
func FitWithin(w, h, maxDim int) (int, int) {
	if w <= maxDim && h <= maxDim {
		return w, h
	}
	if w >= h {
		nh := max(1, (h*maxDim+w/2)/w)
		return maxDim, nh
	}
	nw := max(1, (w*maxDim+h/2)/h)
	return nw, maxDim
}

// ResizeToMax decodes raw (JPEG, PNG, GIF or WebP), scales it to fit within
// maxDim and re-encodes it as JPEG. Transparent areas are flattened onto white.
func ResizeToMax(raw []byte, maxDim int) ([]byte, error) {
	if maxDim <= 0 {
		maxDim = DefaultMaxDimension
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decode image header: %v: %w", err, domain.ErrInvalidInput)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("could not read image dimensions: %w", domain.ErrInvalidInput)
	}
	if int64(cfg.Width)*int64(cfg.Height) > MaxPixels {
		return nil, fmt.Errorf("image %dx%d exceeds %d pixels: %w",
			cfg.Width, cfg.Height, MaxPixels, domain.ErrInvalidInput)
	}

	src, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decode image: %v: %w", err, domain.ErrInvalidInput)
	}
	b := src.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return nil, fmt.Errorf("could not read image dimensions: %w", domain.ErrInvalidInput)
	}

	w, h := FitWithin(b.Dx(), b.Dy(), maxDim)
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)

	var out bytes.Buffer
	if err := jpeg.Encode(&out, dst, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return out.Bytes(), nil
}
