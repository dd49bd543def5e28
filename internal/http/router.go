package http

import (
	"log/slog"
	nethttp "net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/preston-bernstein/screen-inventory-service/internal/http/handlers"
	"github.com/preston-bernstein/screen-inventory-service/internal/http/middleware"
	"github.com/preston-bernstein/screen-inventory-service/internal/metrics"
)

// NewRouter registers HTTP routes on a chi router. Admin routes are mounted only when admin
// is non-nil.
func NewRouter(handler *handlers.Handler, admin *handlers.AdminHandler, logger *slog.Logger, recorder *metrics.Recorder) nethttp.Handler {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(middleware.Logging(logger, recorder))

	r.Get("/health", handler.Health)
	r.Get("/ready", handler.Ready)
	r.Get("/screens", handler.Screens)
	r.Get("/screens/{id}", handler.ScreenByID)
	r.Get("/stats", handler.Stats)
	r.Get("/sources", handler.Sources)
	r.Post("/ingest", handler.Ingest)

	if admin != nil {
		r.Route("/admin", func(ar chi.Router) {
			ar.Use(admin.RequireToken)
			ar.Post("/screens", admin.PutLocal)
			ar.Delete("/sources/{id}/screens", admin.RemoveSource)
			ar.Post("/sources/{name}/enable", admin.EnableSource)
			ar.Post("/inventory/clear", admin.Clear)
		})
	}

	r.NotFound(handler.NotFound)
	r.MethodNotAllowed(handler.MethodNotAllowed)
	return r
}
