package imagegen

import (
	"encoding/json"
	"testing"
)

func TestPrediction_ImageURL(t *testing.T) {
	tests := []struct {
		name   string
		output string
		want   string
		ok     bool
	}{
		{"string", `"https://img/1.png"`, "https://img/1.png", true},
		{"list", `["https://img/a.png","https://img/b.png"]`, "https://img/a.png", true},
		{"empty list", `[]`, "", false},
		{"non-string list", `[42]`, "", false},
		{"null", `null`, "", false},
		{"object", `{"url":"x"}`, "", false},
		{"missing", ``, "", false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := Prediction{Output: json.RawMessage(tc.output)}
			got, ok := p.ImageURL()
			if got != tc.want || ok != tc.ok {
				t.Errorf("ImageURL() = (%q, %v), want (%q, %v)", got, ok, tc.want, tc.ok)
			}
		})
	}
}

func TestPrediction_ErrorMessage(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{``, "unknown error"},
		{`null`, "unknown error"},
		{`"NSFW content detected"`, "NSFW content detected"},
		{`{"code":1}`, `{"code":1}`},
	}
	for _, tc := range tests {
		p := Prediction{Error: json.RawMessage(tc.raw)}
		if got := p.ErrorMessage(); got != tc.want {
			t.Errorf("ErrorMessage(%q) = %q, want %q", tc.raw, got, tc.want)
		}
	}
}

func TestStatus_Terminal(t *testing.T) {
	for _, s := range []Status{StatusSucceeded, StatusFailed, StatusCanceled} {
		if !s.Terminal() {
			t.Errorf("%s should be terminal", s)
		}
	}
	for _, s := range []Status{StatusStarting, StatusProcessing, Status("")} {
		if s.Terminal() {
			t.Errorf("%q should not be terminal", s)
		}
	}
}
