package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"fitroom-server/internal/http/handlers"
	"fitroom-server/internal/middleware"
)

// NewRouter wires the HTTP surface of the relay.
func NewRouter(app *handlers.App, logger zerolog.Logger, allowedOrigins []string) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(chimw.Recoverer)
	r.Use(middleware.CORS(allowedOrigins))

	r.Get("/healthz", app.Health)

	r.Post("/chat", app.Chat)
	r.Post("/chat/clear", app.ChatClear)
	r.Post("/try-on", app.TryOnGarment)

	r.Post("/upload", app.Upload)
	r.Route("/uploads", func(r chi.Router) {
		r.Get("/", app.ListUploads)
		r.Get("/{name}", app.ServeUpload)
		r.Delete("/{name}", app.DeleteUpload)
	})

	r.Get("/get-model", app.GetModel)
	r.Get("/default-wardrobe", app.DefaultWardrobe)

	return r
}
