package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func (h *Handler) Init() *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(h.withLogging)

	router.Get("/oauth/callback", h.oauthCallback)
	router.Get("/healthz", h.healthz)

	router.MethodNotAllowed(CheckHTTPMethod(router))

	return router
}
