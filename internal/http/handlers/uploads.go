package handlers

import (
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"

	"fitroom-server/internal/domain"
	"fitroom-server/internal/enhance"
	"fitroom-server/internal/storage"
)

var contentTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
}

type uploadResponse struct {
	Message  string `json:"message"`
	Filename string `json:"filename"`
	URL      string `json:"url"`
}

type fileEntry struct {
	Filename string `json:"filename"`
	URL      string `json:"url"`
}

// Upload replaces the model photo with an enhanced copy of the submitted
// image. Every upload lands in the same slot.
func (a *App) Upload(w http.ResponseWriter, r *http.Request) {
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
	img, err := enhance.Decode(data)
	if err != nil {
		a.error(w, http.StatusBadRequest, "Invalid image file")
		return
	}
	out, err := enhance.EncodeJPEG(enhance.Apply(img), enhance.ModelPhotoQuality)
	if err != nil {
		a.Logger.Error().Err(err).Msg("encode model photo")
		a.error(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if err := a.Files.Save(storage.ModelPhotoName, out); err != nil {
		a.Logger.Error().Err(err).Msg("store model photo")
		a.error(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	a.json(w, http.StatusOK, uploadResponse{
		Message:  "Model image uploaded successfully",
		Filename: storage.ModelPhotoName,
		URL:      a.publicURL(storage.ModelPhotoName),
	})
}

func (a *App) ListUploads(w http.ResponseWriter, r *http.Request) {
	names, err := a.Files.List()
	if err != nil {
		a.Logger.Error().Err(err).Msg("list uploads")
		a.error(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	entries := make([]fileEntry, 0, len(names))
	for _, name := range names {
		entries = append(entries, fileEntry{Filename: name, URL: a.publicURL(name)})
	}
	a.json(w, http.StatusOK, entries)
}

func (a *App) ServeUpload(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	data, err := a.Files.Read(name)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, http.StatusNotFound, "File not found")
			return
		}
		a.Logger.Error().Err(err).Str("file", name).Msg("read upload")
		a.error(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	ct := contentTypes[strings.ToLower(filepath.Ext(name))]
	if ct == "" {
		ct = "application/octet-stream"
	}
	w.Header().Set("Content-Type", ct)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (a *App) DeleteUpload(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if name == storage.BaseModelName {
		a.error(w, http.StatusForbidden, "Cannot delete the default model image")
		return
	}
	if err := a.Files.Delete(name); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, http.StatusNotFound, "File not found")
			return
		}
		a.Logger.Error().Err(err).Str("file", name).Msg("delete upload")
		a.error(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	a.json(w, http.StatusOK, map[string]string{"message": "File deleted successfully"})
}

// GetModel returns the URL of the current model photo, falling back to the
// bundled default when no photo has been uploaded yet.
func (a *App) GetModel(w http.ResponseWriter, r *http.Request) {
	for _, name := range []string{storage.ModelPhotoName, storage.BaseModelName} {
		if a.Files.Exists(name) {
			a.json(w, http.StatusOK, map[string]string{"modelImageUrl": a.publicURL(name)})
			return
		}
	}
	a.error(w, http.StatusNotFound, "No model image found")
}
