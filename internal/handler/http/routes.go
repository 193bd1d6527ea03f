// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func (h *Handler) Init() *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(h.withTraceID, h.withLogging)

	router.Get("/api/status", h.getStatus)
	router.Get("/api/version", h.getVersion)

	router.Route("/api/records/{collection}", func(r chi.Router) {
		r.Get("/", h.listRecords)
		r.Get("/{id}", h.getRecord)
	})

	router.Get("/api/outbox", h.listOutbox)

	router.Route("/api/failures", func(r chi.Router) {
		r.Get("/", h.listFailures)
		r.Post("/{id}/retry", h.retryFailure)
		r.Delete("/{id}", h.dismissFailure)
	})

	router.Post("/api/sync", h.sync)
	router.Put("/api/connectivity", h.setConnectivity)

	router.MethodNotAllowed(CheckHTTPMethod(router))

	return router
}
