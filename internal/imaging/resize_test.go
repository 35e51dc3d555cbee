package imaging

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/kailas-cloud/stylist/internal/domain"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func decodedSize(t *testing.T, data []byte) (int, int) {
	t.Helper()
	img, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("output is not a JPEG: %v", err)
	}
	return img.Bounds().Dx(), img.Bounds().Dy()
}

func TestFitWithin(t *testing.T) {
	tests := []struct {
		w, h, max    int
		wantW, wantH int
	}{
		{1024, 768, 256, 256, 192},
		{768, 1024, 256, 192, 256},
		{1000, 1000, 256, 256, 256},
		{100, 50, 256, 100, 50},
		{256, 256, 256, 256, 256},
		{5000, 10, 256, 256, 1},
	}
	for _, tc := range tests {
		w, h := FitWithin(tc.w, tc.h, tc.max)
		if w != tc.wantW || h != tc.wantH {
			t.Errorf("FitWithin(%d, %d, %d) = (%d, %d), want (%d, %d)",
				tc.w, tc.h, tc.max, w, h, tc.wantW, tc.wantH)
		}
	}
}

func TestResizeToMax_ShrinksLargeImages(t *testing.T) {
	out, err := ResizeToMax(encodePNG(t, 600, 300), 256)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	w, h := decodedSize(t, out)
	if w != 256 || h != 128 {
		t.Errorf("size = %dx%d, want 256x128", w, h)
	}
}

func TestResizeToMax_DoesNotEnlarge(t *testing.T) {
	out, err := ResizeToMax(encodePNG(t, 120, 80), 256)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	w, h := decodedSize(t, out)
	if w != 120 || h != 80 {
		t.Errorf("size = %dx%d, want 120x80", w, h)
	}
}

func TestResizeToMax_DefaultDimension(t *testing.T) {
	out, err := ResizeToMax(encodePNG(t, 300, 600), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if w, h := decodedSize(t, out); h != DefaultMaxDimension || w != 128 {
		t.Errorf("size = %dx%d, want 128x256", w, h)
	}
}

func TestResizeToMax_InvalidImage(t *testing.T) {
	_, err := ResizeToMax([]byte("definitely not an image"), 256)
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestResizeToMax_RejectsOversizedDimensions(t *testing.T) {
	// A flat 12000x12000 image compresses to a few hundred KB but would
	// need hundreds of MiB once decoded.
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewGray(image.Rect(0, 0, 12000, 12000))); err != nil {
		t.Fatal(err)
	}
	if buf.Len() > 1<<20 {
		t.Fatalf("fixture is %d bytes, expected a small file", buf.Len())
	}

	_, err := ResizeToMax(buf.Bytes(), 256)
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}
