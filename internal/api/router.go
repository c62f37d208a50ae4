// Package api exposes persisted run artifacts over a read-only HTTP API:
// runs, summaries, and per-iteration documents and results.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/Harshitk-cp/soulbench/internal/api/handlers"
	mw "github.com/Harshitk-cp/soulbench/internal/api/middleware"
	"github.com/Harshitk-cp/soulbench/internal/artifact"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// NewRouter builds the results API over a run catalog.
func NewRouter(catalog *artifact.Catalog, logger *zap.Logger) *chi.Mux {
	runsHandler := handlers.NewRunsHandler(catalog, logger)

	r := chi.NewRouter()

	// Global middleware (order matters)
	r.Use(mw.RequestID)
	r.Use(middleware.RealIP)
	r.Use(mw.Logging(logger))
	r.Use(middleware.Recoverer)

	r.Get("/health", healthHandler())

	r.Route("/v1", func(r chi.Router) {
		r.Route("/runs", func(r chi.Router) {
			r.Get("/", runsHandler.List)
			r.Route("/{name}", func(r chi.Router) {
				r.Get("/summary", runsHandler.Summary)
				r.Get("/documents/{iteration}", runsHandler.Document)
				r.Get("/results/{split}/{iteration}", runsHandler.Results)
			})
		})
	})

	return r
}

func healthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}
}
