// Package style holds the structured recommendation passed from the model
// to image generation and product search.
package style

import (
	"errors"
	"fmt"
	"strings"
)

// Item count bounds for a model-produced recommendation.
const (
	MinItems = 4
	MaxItems = 6
)

// DefaultGender is reported when no gender presentation was inferred.
const DefaultGender = "unisex"

// Categories is the fixed set of clothing categories an item may belong to.
var Categories = []string{"Tops", "Bottoms", "Dresses", "Outerwear", "Shoes", "Accessories"}

// Descriptor names and describes the overall look.
type Descriptor struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
}

// Item is one recommended clothing piece.
type Item struct {
	Description      string `json:"description"`
	ShortDescription string `json:"short_description"`
	Category         string `json:"category"`
}

// Response is a complete style recommendation.
type Response struct {
	Style  Descriptor `json:"style"`
	Items  []Item     `json:"items"`
	Gender string     `json:"gender"`
}

// CanonicalCategory maps a category name onto the fixed set, ignoring case.
func CanonicalCategory(name string) (string, bool) {
	name = strings.TrimSpace(name)
	for _, c := range Categories {
		if strings.EqualFold(c, name) {
			return c, true
		}
	}
	return "", false
}

// Normalize rewrites item categories to their canonical spelling and checks
// the item count and category invariants.
func (r *Response) Normalize() error {
	if r.Style.Title == "" || r.Style.Description == "" {
		return errors.New("style title and description are required")
	}
	if n := len(r.Items); n < MinItems || n > MaxItems {
		return fmt.Errorf("expected %d-%d items, got %d", MinItems, MaxItems, n)
	}
	for i := range r.Items {
		c, ok := CanonicalCategory(r.Items[i].Category)
		if !ok {
			return fmt.Errorf("item %d: unknown category %q", i, r.Items[i].Category)
		}
		r.Items[i].Category = c
	}
	if r.Style.Tags == nil {
		r.Style.Tags = []string{}
	}
	return nil
}

// ShortDescriptions lists every item's short description in order.
func (r *Response) ShortDescriptions() []string {
	out := make([]string, len(r.Items))
	for i, it := range r.Items {
		out[i] = it.ShortDescription
	}
	return out
}

// Fallback is the fixed recommendation served when the model cannot produce one.
func Fallback(additionalInfo, budget string) Response {
	return Response{
		Style: Descriptor{
			Title:       "Casual",
			Description: "Casual style",
			Tags:        []string{"casual", "comfortable", "everyday"},
		},
		Items: []Item{
			{
				Description:      "Fashion item matching " + additionalInfo,
				ShortDescription: "Black t-shirt",
				Category:         "Tops",
			},
			{
				Description:      "Fashion item for " + budget + " budget",
				ShortDescription: "Black jeans",
				Category:         "Bottoms",
			},
		},
		Gender: DefaultGender,
	}
}
