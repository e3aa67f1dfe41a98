package domain

import "strings"

// GarmentCategory is the clothing slot a garment occupies on the model.
type GarmentCategory string

const (
	GarmentUpper GarmentCategory = "upper"
	GarmentLower GarmentCategory = "lower"
)

// ParseGarmentCategory normalizes free-form input into a supported category.
func ParseGarmentCategory(s string) (GarmentCategory, bool) {
	switch GarmentCategory(strings.ToLower(strings.TrimSpace(s))) {
	case GarmentUpper:
		return GarmentUpper, true
	case GarmentLower:
		return GarmentLower, true
	default:
		return "", false
	}
}

// WardrobeItem is a catalog entry materialized into the file store and
// served to the client by URL.
type WardrobeItem struct {
	Filename string          `json:"filename"`
	Type     GarmentCategory `json:"type"`
	URL      string          `json:"url"`
}
