package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"permit-tracker-go/internal/config"
	"permit-tracker-go/internal/transport/httpserver/handler"
	"permit-tracker-go/internal/transport/httpserver/middleware"
)

func NewRouter(cfg config.Config, handlers *handler.Handlers, auth *middleware.Auth) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	if cfg.MetricsEnabled {
		r.Use(middleware.Metrics)
	}
	r.Use(middleware.NewCORS(cfg.AllowedOrigins))

	if cfg.MetricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		if cfg.HTTP.RequestTimeout > 0 {
			r.Use(chimw.Timeout(cfg.HTTP.RequestTimeout))
		}

		r.Get("/health", handlers.Common.Health)

		r.Get("/counties", handlers.Counties.ListCounties)
		r.Get("/counties/{idOrSlug}", handlers.Counties.GetCounty)
		r.Get("/counties/{idOrSlug}/checklist/{projectType}", handlers.Counties.ListChecklistItems)

		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware)

			r.Get("/auth/user", handlers.Common.AuthUser)

			r.Get("/packages", handlers.Packages.ListPackages)
			r.Post("/packages", handlers.Packages.CreatePackage)
			r.Get("/packages/{id}", handlers.Packages.GetPackage)
			r.Put("/packages/{id}", handlers.Packages.UpdatePackage)
			r.Delete("/packages/{id}", handlers.Packages.DeletePackage)

			r.Get("/packages/{id}/documents", handlers.Packages.ListDocuments)
			r.Post("/packages/{id}/documents", handlers.Packages.RecordDocument)
			r.Get("/packages/{id}/documents/{documentId}", handlers.Packages.GetDocument)
			r.Delete("/packages/{id}/documents/{documentId}", handlers.Packages.DeleteDocument)

			r.Get("/packages/{id}/checklist", handlers.Packages.ListProgress)
			r.Get("/packages/{id}/checklist/summary", handlers.Packages.ChecklistSummary)
			r.Put("/packages/{id}/checklist/{itemId}", handlers.Packages.UpdateProgress)

			r.Get("/stats", handlers.Packages.Stats)

			r.Post("/objects/upload", handlers.Objects.IssueUpload)
		})
	})

	// File transfers run without the API request timeout.
	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware)

		r.Put("/objects/uploads/{handle}", handlers.Objects.Upload)
		r.Get("/objects/*", handlers.Objects.Download)
	})

	return r
}
