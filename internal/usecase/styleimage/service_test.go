package styleimage

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/kailas-cloud/stylist/internal/domain"
	"github.com/kailas-cloud/stylist/internal/domain/imagegen"
	"github.com/kailas-cloud/stylist/internal/domain/style"
)

// --- Mocks ---

type mockPredictor struct {
	configured bool
	createFn   func(ctx context.Context, input imagegen.Input) (imagegen.Prediction, error)
	getFn      func(ctx context.Context, id string) (imagegen.Prediction, error)
	polls      int
	lastInput  imagegen.Input
}

func (m *mockPredictor) Configured() bool { return m.configured }

func (m *mockPredictor) CreatePrediction(ctx context.Context, input imagegen.Input) (imagegen.Prediction, error) {
	m.lastInput = input
	if m.createFn != nil {
		return m.createFn(ctx, input)
	}
	return imagegen.Prediction{ID: "p1", Status: imagegen.StatusStarting}, nil
}

func (m *mockPredictor) GetPrediction(ctx context.Context, id string) (imagegen.Prediction, error) {
	m.polls++
	if m.getFn != nil {
		return m.getFn(ctx, id)
	}
	return imagegen.Prediction{ID: id, Status: imagegen.StatusProcessing}, nil
}

type mockGenerator struct {
	configured bool
	prompt     string
	url        string
	err        error
}

func (m *mockGenerator) Configured() bool { return m.configured }

func (m *mockGenerator) GenerateImage(_ context.Context, prompt string) (string, error) {
	m.prompt = prompt
	return m.url, m.err
}

func sampleStyle() style.Response {
	return style.Response{
		Style: style.Descriptor{Title: "Minimal", Description: "Clean monochrome minimalism"},
		Items: []style.Item{
			{ShortDescription: "White tee", Category: "Tops"},
			{ShortDescription: "Black trousers", Category: "Bottoms"},
		},
		Gender: "woman",
	}
}

// --- Tests ---

func TestGenerate_SucceedsAfterPolling(t *testing.T) {
	m := &mockPredictor{configured: true}
	m.getFn = func(_ context.Context, id string) (imagegen.Prediction, error) {
		if m.polls < 3 {
			return imagegen.Prediction{ID: id, Status: imagegen.StatusProcessing}, nil
		}
		return imagegen.Prediction{ID: id, Status: imagegen.StatusSucceeded, Output: json.RawMessage(`["https://img/out.webp"]`)}, nil
	}
	svc := New(m, nil).WithPolling(0, 60)

	url, err := svc.Generate(context.Background(), sampleStyle())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if url != "https://img/out.webp" {
		t.Errorf("url = %q", url)
	}
	if m.polls != 3 {
		t.Errorf("polls = %d, want 3", m.polls)
	}

	in := m.lastInput
	if in.Width != 256 || in.Height != 256 || in.NumOutputs != 1 || in.GuidanceScale != 7.5 {
		t.Errorf("unexpected input: %+v", in)
	}
	for _, want := range []string{"Clean monochrome minimalism", "White tee, Black trousers", "gender: woman", "one item per category", "Focus on the clothing"} {
		if !strings.Contains(in.Prompt, want) {
			t.Errorf("prompt missing %q:\n%s", want, in.Prompt)
		}
	}
}

func TestGenerate_StringOutput(t *testing.T) {
	m := &mockPredictor{
		configured: true,
		createFn: func(context.Context, imagegen.Input) (imagegen.Prediction, error) {
			return imagegen.Prediction{ID: "p1", Status: imagegen.StatusSucceeded, Output: json.RawMessage(`"https://img/single.png"`)}, nil
		},
	}
	url, err := New(m, nil).WithPolling(0, 60).Generate(context.Background(), sampleStyle())
	if err != nil || url != "https://img/single.png" {
		t.Fatalf("Generate = (%q, %v)", url, err)
	}
	if m.polls != 0 {
		t.Errorf("terminal create response must not be polled, polls=%d", m.polls)
	}
}

func TestGenerate_FailedAfterTwoPolls(t *testing.T) {
	m := &mockPredictor{configured: true}
	m.getFn = func(_ context.Context, id string) (imagegen.Prediction, error) {
		if m.polls < 2 {
			return imagegen.Prediction{ID: id, Status: imagegen.StatusProcessing}, nil
		}
		return imagegen.Prediction{ID: id, Status: imagegen.StatusFailed, Error: json.RawMessage(`"NSFW content"`)}, nil
	}

	_, err := New(m, nil).WithPolling(0, 60).Generate(context.Background(), sampleStyle())
	if !errors.Is(err, domain.ErrImageGenerationFailed) {
		t.Fatalf("expected ErrImageGenerationFailed, got %v", err)
	}
	if errors.Is(err, domain.ErrImageTimeout) {
		t.Error("failure must be distinguishable from timeout")
	}
	if !strings.Contains(err.Error(), "NSFW content") {
		t.Errorf("provider error missing from %q", err)
	}
	if m.polls != 2 {
		t.Errorf("polls = %d, want 2", m.polls)
	}
}

func TestGenerate_TimesOutAfterMaxPolls(t *testing.T) {
	m := &mockPredictor{configured: true}

	_, err := New(m, nil).WithPolling(0, 60).Generate(context.Background(), sampleStyle())
	if !errors.Is(err, domain.ErrImageTimeout) {
		t.Fatalf("expected ErrImageTimeout, got %v", err)
	}
	if errors.Is(err, domain.ErrImageGenerationFailed) {
		t.Error("timeout must be distinguishable from failure")
	}
	if m.polls != 60 {
		t.Errorf("polls = %d, want exactly 60", m.polls)
	}
}

func TestGenerate_SucceededWithoutURL(t *testing.T) {
	m := &mockPredictor{configured: true}
	m.getFn = func(_ context.Context, id string) (imagegen.Prediction, error) {
		return imagegen.Prediction{ID: id, Status: imagegen.StatusSucceeded, Output: json.RawMessage(`[]`)}, nil
	}
	_, err := New(m, nil).WithPolling(0, 60).Generate(context.Background(), sampleStyle())
	if !errors.Is(err, domain.ErrProviderError) {
		t.Fatalf("expected ErrProviderError, got %v", err)
	}
}

func TestGenerate_ContextCancelledWhilePolling(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	m := &mockPredictor{configured: true}
	_, err := New(m, nil).WithPolling(10*time.Millisecond, 60).Generate(ctx, sampleStyle())
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected context.DeadlineExceeded, got %v", err)
	}
	if m.polls >= 60 {
		t.Errorf("polling should stop on cancellation, polls=%d", m.polls)
	}
}

func TestGenerate_Preconditions(t *testing.T) {
	ctx := context.Background()

	if _, err := New(&mockPredictor{}, nil).Generate(ctx, sampleStyle()); !errors.Is(err, domain.ErrMissingCredentials) {
		t.Errorf("no token: expected ErrMissingCredentials, got %v", err)
	}

	noDesc := sampleStyle()
	noDesc.Style.Description = ""
	if _, err := New(&mockPredictor{configured: true}, nil).Generate(ctx, noDesc); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("no description: expected ErrInvalidInput, got %v", err)
	}

	createErr := errors.New("boom")
	m := &mockPredictor{
		configured: true,
		createFn: func(context.Context, imagegen.Input) (imagegen.Prediction, error) {
			return imagegen.Prediction{}, createErr
		},
	}
	if _, err := New(m, nil).Generate(ctx, sampleStyle()); !errors.Is(err, createErr) {
		t.Errorf("create failure: expected wrapped error, got %v", err)
	}
}

func TestGenerateDirect(t *testing.T) {
	ctx := context.Background()

	g := &mockGenerator{configured: true, url: "https://dalle/1.png"}
	url, err := New(nil, g).GenerateDirect(ctx, sampleStyle())
	if err != nil || url != "https://dalle/1.png" {
		t.Fatalf("GenerateDirect = (%q, %v)", url, err)
	}
	if !strings.Contains(g.prompt, "<Items>\nWhite tee\nBlack trousers\n</Items>") {
		t.Errorf("unexpected prompt:\n%s", g.prompt)
	}

	if _, err := New(nil, &mockGenerator{}).GenerateDirect(ctx, sampleStyle()); !errors.Is(err, domain.ErrMissingCredentials) {
		t.Errorf("expected ErrMissingCredentials, got %v", err)
	}

	failing := &mockGenerator{configured: true, err: domain.ErrProviderError}
	if _, err := New(nil, failing).GenerateDirect(ctx, sampleStyle()); !errors.Is(err, domain.ErrProviderError) {
		t.Errorf("expected ErrProviderError, got %v", err)
	}
}
