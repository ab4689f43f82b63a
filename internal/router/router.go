package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"examsathi/internal/handlers"
	"examsathi/internal/middleware"
)

func New(
	serverHandler *handlers.ServerHandler,
	askHandler *handlers.AskHandler,
	askLimiter middleware.Limiter,
	allowedOrigin string,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS(allowedOrigin))

	r.Get("/", serverHandler.Index)
	r.Get("/health", serverHandler.Health)
	r.Post("/load-model", serverHandler.LoadModel)

	r.Group(func(r chi.Router) {
		if askLimiter != nil {
			r.Use(middleware.RateLimit(askLimiter))
		}
		r.Post("/ask", askHandler.Ask)
	})

	return r
}
