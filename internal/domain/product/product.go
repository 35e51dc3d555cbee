// Package product describes shopping search hits.
package product

// Result is one shopping search hit in the shape clients render.
type Result struct {
	Description  string   `json:"description"`
	Price        string   `json:"price"`
	ThumbnailURL string   `json:"thumbnailURL"`
	ProductURL   string   `json:"productURL"`
	Rating       *float64 `json:"rating,omitempty"`
}
