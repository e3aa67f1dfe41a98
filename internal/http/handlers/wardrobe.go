package handlers

import (
	"net/http"

	"fitroom-server/internal/assets"
	"fitroom-server/internal/domain"
)

// DefaultWardrobe materializes the bundled garment catalog into the file
// store and returns the items with servable URLs. Repeat calls reuse the
// already materialized copies.
func (a *App) DefaultWardrobe(w http.ResponseWriter, r *http.Request) {
	items := make([]domain.WardrobeItem, 0, len(assets.Catalog))
	for _, garment := range assets.Catalog {
		category, ok := domain.ParseGarmentCategory(garment.Category)
		if !ok {
			a.Logger.Error().Str("source", garment.Source).Str("category", garment.Category).Msg("skipping garment with bad category")
			continue
		}
		data, err := assets.Read(garment.Source)
		if err != nil {
			a.Logger.Error().Err(err).Str("source", garment.Source).Msg("read bundled garment")
			a.error(w, http.StatusInternalServerError, "Internal server error")
			return
		}
		name, err := a.Files.Materialize(garment.Source, data)
		if err != nil {
			a.Logger.Error().Err(err).Str("source", garment.Source).Msg("materialize garment")
			a.error(w, http.StatusInternalServerError, "Internal server error")
			return
		}
		items = append(items, domain.WardrobeItem{
			Filename: name,
			Type:     category,
			URL:      a.publicURL(name),
		})
	}
	a.json(w, http.StatusOK, items)
}
