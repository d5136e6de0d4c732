package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func (h *Handler) Init() *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(h.withTraceID, h.withLogging)
	router.Use(middleware.Compress(5, "application/json"))
	if h.requestTimeout > 0 {
		router.Use(middleware.Timeout(h.requestTimeout))
	}

	router.Route("/api/outbox", func(r chi.Router) {
		r.Post("/operations", h.enqueueOperation)
		r.Get("/operations", h.listOperations)
		r.Post("/sync", h.requestSync)
		r.Get("/status", h.getStatus)
		r.Put("/connectivity", h.setConnectivity)
		r.Put("/credentials", h.putCredentials)
		r.Delete("/credentials", h.deleteCredentials)
		r.Get("/identifiers/{tempID}", h.getIdentifier)
	})

	router.Get("/api/version", h.getAppVersion)

	router.MethodNotAllowed(CheckHTTPMethod(router))

	return router
}
