package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"fitroom-server/internal/domain"
	"fitroom-server/internal/infra"
	"fitroom-server/internal/providers/chat"
	"fitroom-server/internal/session"
	"fitroom-server/internal/storage"
)

// TryOnClient synthesizes a composite of a garment worn by the model photo
// and returns the path of a temp file the caller owns.
type TryOnClient interface {
	TryOn(ctx context.Context, modelPath, clothingPath string, category domain.GarmentCategory) (string, error)
}

type App struct {
	Logger     zerolog.Logger
	Config     *infra.Config
	Files      *storage.Store
	Sessions   domain.SessionStore
	Tokens     *session.Tokens
	ChatClient chat.Client
	TryOn      TryOnClient
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, msg string) {
	a.json(w, code, map[string]string{"error": msg})
}

// publicURL builds the URL a client should use to fetch a stored file.
// Without a configured public base the URL is server relative.
func (a *App) publicURL(name string) string {
	return a.Config.PublicBaseURL + "/uploads/" + name
}
