package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func (h *Handler) Init() *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(h.withTraceID, h.withLogging, withGZip)

	router.Route("/api", func(r chi.Router) {
		r.Use(h.withCompany)

		r.Get("/cache/{table}", h.readCache)
		r.Put("/cache/{table}", h.commitCache)
		r.Delete("/cache/{table}", h.invalidateCache)
		r.Get("/query/{table}", h.query)

		r.Post("/queue", h.enqueue)
		r.Get("/queue", h.listQueue)

		r.Post("/sync", h.processQueue)
		r.Post("/sync/retry", h.retryFailed)
		r.Get("/sync/status", h.syncStatus)

		r.Post("/maintenance/cleanup", h.cleanup)
		r.Get("/maintenance/storage", h.storageUsage)

		r.Post("/preload", h.preload)

		r.Get("/session", h.getSession)
		r.Put("/session", h.setSession)
	})

	if h.metrics != nil {
		router.Method("GET", "/metrics", h.metrics)
	}

	router.NotFound(notFound)
	router.MethodNotAllowed(methodNotAllowed(router))

	return router
}
