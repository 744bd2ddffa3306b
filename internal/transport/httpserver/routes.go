package httpserver

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rpypty/galleria/internal/config"
	"github.com/rpypty/galleria/internal/transport/httpserver/handler"
	galmw "github.com/rpypty/galleria/internal/transport/httpserver/middleware"
)

func NewRouter(cfg config.Config, handlers *handler.Handlers) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(60 * time.Second))
	r.Use(galmw.NewCORS(cfg.AllowedOrigins))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", handlers.Health)

		r.Route("/gallery", func(r chi.Router) {
			r.Get("/{code}", handlers.GetGallery)
			r.Get("/thumbnail/{fileID}", handlers.GetThumbnail)
			r.Get("/image/{fileID}", handlers.GetImage)
			r.Get("/download/{fileID}", handlers.DownloadImage)
			r.Post("/download/zip", handlers.DownloadZip)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(galmw.NewAdminAuth(cfg.Admin.Token))

			r.Post("/events", handlers.CreateEvent)
			r.Get("/events", handlers.ListEvents)
			r.Get("/events/{id}", handlers.GetEvent)
			r.Post("/events/{id}/sync", handlers.SyncEvent)
			r.Delete("/events/{id}", handlers.DeleteEvent)
		})
	})

	return r
}
