package style

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"
)

func validResponse() Response {
	return Response{
		Style: Descriptor{Title: "Minimal", Description: "Clean lines", Tags: []string{"minimal", "neutral"}},
		Items: []Item{
			{Description: "White oxford shirt", ShortDescription: "white shirt", Category: "tops"},
			{Description: "Straight grey trousers", ShortDescription: "grey trousers", Category: "Bottoms"},
			{Description: "Camel wool coat", ShortDescription: "camel coat", Category: "OUTERWEAR"},
			{Description: "White leather sneakers", ShortDescription: "white sneakers", Category: "Shoes"},
		},
		Gender: "woman",
	}
}

func TestResponse_JSONRoundTrip(t *testing.T) {
	orig := validResponse()

	data, err := json.Marshal(orig)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var got Response
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !reflect.DeepEqual(orig, got) {
		t.Errorf("round trip mismatch:\norig: %+v\ngot:  %+v", orig, got)
	}
}

func TestResponse_WireFieldNames(t *testing.T) {
	data, err := json.Marshal(validResponse())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	for _, key := range []string{`"style"`, `"items"`, `"gender"`, `"short_description"`, `"category"`, `"tags"`} {
		if !strings.Contains(string(data), key) {
			t.Errorf("expected %s in %s", key, data)
		}
	}
}

func TestNormalize_CanonicalizesCategories(t *testing.T) {
	r := validResponse()
	if err := r.Normalize(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"Tops", "Bottoms", "Outerwear", "Shoes"}
	for i, it := range r.Items {
		if it.Category != want[i] {
			t.Errorf("item %d category = %q, want %q", i, it.Category, want[i])
		}
	}
}

func TestNormalize_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *Response)
	}{
		{"too few items", func(r *Response) { r.Items = r.Items[:3] }},
		{"too many items", func(r *Response) {
			r.Items = append(r.Items, r.Items[0], r.Items[1], r.Items[2])
		}},
		{"unknown category", func(r *Response) { r.Items[0].Category = "Swimwear" }},
		{"missing title", func(r *Response) { r.Style.Title = "" }},
		{"missing description", func(r *Response) { r.Style.Description = "" }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := validResponse()
			tc.mutate(&r)
			if err := r.Normalize(); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestFallback(t *testing.T) {
	r := Fallback("", "medium")

	if len(r.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(r.Items))
	}
	if r.Items[0].Category != "Tops" || r.Items[1].Category != "Bottoms" {
		t.Errorf("unexpected categories: %q, %q", r.Items[0].Category, r.Items[1].Category)
	}
	if !strings.Contains(r.Items[1].Description, "medium budget") {
		t.Errorf("bottom description should mention budget, got %q", r.Items[1].Description)
	}
	if r.Gender != DefaultGender {
		t.Errorf("gender = %q, want %q", r.Gender, DefaultGender)
	}
	if !reflect.DeepEqual(r, Fallback("", "medium")) {
		t.Error("fallback must be deterministic")
	}
}

func TestCanonicalCategory(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"tops", "Tops", true},
		{" Accessories ", "Accessories", true},
		{"dresses", "Dresses", true},
		{"hats", "", false},
		{"", "", false},
	}
	for _, tc := range tests {
		got, ok := CanonicalCategory(tc.in)
		if got != tc.want || ok != tc.ok {
			t.Errorf("CanonicalCategory(%q) = (%q, %v), want (%q, %v)", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}
