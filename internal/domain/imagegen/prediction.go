// Package imagegen describes asynchronous image-generation jobs.
package imagegen

import (
	"encoding/json"
	"strings"
)

// Status is the lifecycle state reported by the image provider.
type Status string

// Prediction states. Only Succeeded, Failed and Canceled are terminal.
const (
	StatusStarting   Status = "starting"
	StatusProcessing Status = "processing"
	StatusSucceeded  Status = "succeeded"
	StatusFailed     Status = "failed"
	StatusCanceled   Status = "canceled"
)

// Terminal reports whether no further polling is needed.
func (s Status) Terminal() bool {
	return s == StatusSucceeded || s == StatusFailed || s == StatusCanceled
}

// Input holds the generation parameters sent with a prediction.
type Input struct {
	Prompt            string  `json:"prompt"`
	NegativePrompt    string  `json:"negative_prompt,omitempty"`
	Width             int     `json:"width"`
	Height            int     `json:"height"`
	NumOutputs        int     `json:"num_outputs"`
	NumInferenceSteps int     `json:"num_inference_steps,omitempty"`
	GuidanceScale     float64 `json:"guidance_scale,omitempty"`
}

// Prediction is a snapshot of a remote generation job.
type Prediction struct {
	ID     string          `json:"id"`
	Status Status          `json:"status"`
	Output json.RawMessage `json:"output,omitempty"`
	Error  json.RawMessage `json:"error,omitempty"`
}

// ImageURL returns the first URL in Output. Output is either a string or a list of strings.
func (p Prediction) ImageURL() (string, bool) {
	if len(p.Output) == 0 {
		return "", false
	}

	var single string
	if json.Unmarshal(p.Output, &single) == nil {
		return single, single != ""
	}

	var list []any
	if json.Unmarshal(p.Output, &list) == nil && len(list) > 0 {
		if s, ok := list[0].(string); ok && s != "" {
			return s, true
		}
	}
	return "", false
}

// ErrorMessage renders the provider error, "unknown error" when absent.
func (p Prediction) ErrorMessage() string {
	raw := strings.TrimSpace(string(p.Error))
	if raw == "" || raw == "null" {
		return "unknown error"
	}
	var s string
	if json.Unmarshal(p.Error, &s) == nil && s != "" {
		return s
	}
	return raw
}
