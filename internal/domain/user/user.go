// Package user holds the per-request description of the person asking for a recommendation.
package user

// DefaultBudget is used when the client leaves the budget empty.
const DefaultBudget = "medium"

// Input is what a client submits for one recommendation request.
type Input struct {
	AdditionalInfo      string   `json:"additional_info"`
	Budget              string   `json:"budget"`
	ProfilePhotoPath    string   `json:"profile_photo_path,omitempty"`
	AestheticPhotoPaths []string `json:"aesthetic_photo_paths,omitempty"`
}

// Normalize fills defaults in place.
func (in *Input) Normalize() {
	if in.Budget == "" {
		in.Budget = DefaultBudget
	}
}

// HasProfilePhoto reports whether a profile photo was uploaded.
func (in *Input) HasProfilePhoto() bool { return in.ProfilePhotoPath != "" }

// Attributes are traits inferred from a profile photo. Every field is optional.
type Attributes struct {
	Gender             string   `json:"gender,omitempty"`
	ApparentAgeRange   string   `json:"apparent_age_range,omitempty"`
	BodyType           string   `json:"body_type,omitempty"`
	HeightImpression   string   `json:"height_impression,omitempty"`
	SkinTone           string   `json:"skin_tone,omitempty"`
	StyleSuggestions   []string `json:"style_suggestions,omitempty"`
	ColorsToComplement []string `json:"colors_to_complement,omitempty"`
	AvoidStyles        []string `json:"avoid_styles,omitempty"`
}

// IsEmpty reports whether no trait was inferred.
func (a *Attributes) IsEmpty() bool {
	return a.Gender == "" && a.ApparentAgeRange == "" && a.BodyType == "" &&
		a.HeightImpression == "" && a.SkinTone == "" &&
		len(a.StyleSuggestions) == 0 && len(a.ColorsToComplement) == 0 && len(a.AvoidStyles) == 0
}
