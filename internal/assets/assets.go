// Package assets bundles the default model photo and the example wardrobe
// garments shipped with the server.
package assets

import "embed"

//go:embed base_model.jpg wardrobe
var fs embed.FS

// Garment describes one bundled wardrobe image.
type Garment struct {
	Source   string
	Category string
}

// Catalog lists the bundled garments in the order they are served.
var Catalog = []Garment{
	{Source: "wardrobe/tee_white.png", Category: "upper"},
	{Source: "wardrobe/jacket_denim.png", Category: "upper"},
	{Source: "wardrobe/jeans_blue.png", Category: "lower"},
	{Source: "wardrobe/skirt_black.png", Category: "lower"},
}

// BaseModel returns the bundled default model photo.
func BaseModel() ([]byte, error) {
	return fs.ReadFile("base_model.jpg")
}

// Read returns the bytes of a bundled garment image.
func Read(source string) ([]byte, error) {
	return fs.ReadFile(source)
}
