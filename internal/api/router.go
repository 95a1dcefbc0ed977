package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/scry-study/internal/api/middleware"
)

// requestTimeout bounds the time a handler may spend on one request.
const requestTimeout = 30 * time.Second

// NewRouter wires the middleware chain and every route.
func NewRouter(handler *StudyHandler, auth *middleware.AuthMiddleware, log *slog.Logger) http.Handler {
	if log == nil {
		log = slog.Default()
	}
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewTraceMiddleware(log))
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(requestTimeout))

	r.Route("/api", func(r chi.Router) {
		r.Use(auth.Authenticate)

		r.Get("/cards/next", handler.NextCard)
		r.Post("/cards/{id}/reviews", handler.SubmitReview)
		r.Get("/cards/{id}/preview", handler.Preview)
		r.Post("/cards/{id}/reset", handler.ResetCard)

		r.Get("/due", handler.DueSummary)

		r.Get("/progress", handler.ProgressSummary)
		r.Delete("/progress", handler.DeleteProgress)

		r.Delete("/session", handler.EndSession)
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			log.Error("failed to write health check response", slog.String("error", err.Error()))
		}
	})

	return r
}
