package handlers

import (
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"fitroom-server/internal/domain"
	"fitroom-server/internal/enhance"
	"fitroom-server/internal/storage"
)

type tryOnResponse struct {
	ProcessedImageURL string `json:"processedImageUrl"`
}

// TryOnGarment handles both request shapes on /try-on. With a garment type it
// composites the uploaded clothing onto the stored model photo through the
// remote synthesis service; without one it falls back to enhance-only
// processing of the uploaded image.
func (a *App) TryOnGarment(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, a.Config.MaxUploadBytes())
	if err := r.ParseMultipartForm(a.Config.MaxUploadBytes()); err != nil {
		a.error(w, http.StatusBadRequest, "No image provided")
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		a.error(w, http.StatusBadRequest, "No image provided")
		return
	}
	defer func() {
		_ = file.Close()
	}()
	if header.Filename == "" {
		a.error(w, http.StatusBadRequest, "No selected file")
		return
	}
	if !storage.AllowedName(header.Filename) {
		a.error(w, http.StatusBadRequest, "File type not allowed")
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		a.error(w, http.StatusBadRequest, "No image provided")
		return
	}

	rawType := r.FormValue("type")
	if strings.TrimSpace(rawType) == "" {
		a.enhanceOnly(w, header.Filename, data)
		return
	}
	category, ok := domain.ParseGarmentCategory(rawType)
	if !ok {
		a.error(w, http.StatusBadRequest, "Invalid clothing type")
		return
	}

	if !a.Files.Exists(storage.ModelPhotoName) {
		a.error(w, http.StatusBadRequest, "No model image found")
		return
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	clothingName, err := a.Files.SaveTransient(ext, data)
	if err != nil {
		a.Logger.Error().Err(err).Msg("stage garment image")
		a.error(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	defer a.Files.Discard(clothingName)

	ctx, cancel := context.WithTimeout(r.Context(), a.Config.TryOnTimeout)
	defer cancel()
	resultPath, err := a.TryOn.TryOn(ctx, a.Files.Path(storage.ModelPhotoName), a.Files.Path(clothingName), category)
	if err != nil {
		a.Logger.Error().Err(err).Str("category", string(category)).Msg("try-on synthesis failed")
		a.error(w, http.StatusInternalServerError, "Failed to process virtual try-on")
		return
	}
	defer func() {
		_ = os.Remove(resultPath)
	}()

	resultName, err := a.Files.ImportResult(resultPath)
	if err != nil {
		a.Logger.Error().Err(err).Msg("store try-on result")
		a.error(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	// Purge earlier transients and results, keeping only the fresh composite.
	removed := a.Files.Cleanup(resultName)
	a.Logger.Debug().Int("removed", removed).Str("result", resultName).Msg("stale files purged")

	a.json(w, http.StatusOK, tryOnResponse{ProcessedImageURL: a.publicURL(resultName)})
}

func (a *App) enhanceOnly(w http.ResponseWriter, filename string, data []byte) {
	img, err := enhance.Decode(data)
	if err != nil {
		a.error(w, http.StatusBadRequest, "Invalid image file")
		return
	}
	out, err := enhance.EncodeJPEG(enhance.Apply(img), enhance.ProcessedQuality)
	if err != nil {
		a.Logger.Error().Err(err).Msg("encode processed image")
		a.error(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	name, err := a.Files.SaveProcessed(filename, out)
	if err != nil {
		a.Logger.Error().Err(err).Msg("store processed image")
		a.error(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	a.json(w, http.StatusOK, tryOnResponse{ProcessedImageURL: a.publicURL(name)})
}
