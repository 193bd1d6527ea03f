// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MKhiriev/offsync/internal/logger"
	"github.com/MKhiriev/offsync/internal/utils"
	"github.com/MKhiriev/offsync/models"
)

type outboxResponse struct {
	Entries []models.OutboxEntry `json:"entries"`
	Length  int                  `json:"length"`
}

type failuresResponse struct {
	Failures []models.SyncFailure `json:"failures"`
	Length   int                  `json:"length"`
}

func (h *Handler) listOutbox(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	entries, err := h.engine.Outbox(r.Context())
	if err != nil {
		log.Err(err).Str("func", "*Handler.listOutbox").Msg("error listing outbox entries")
		writeError(w, err)
		return
	}
	if entries == nil {
		entries = []models.OutboxEntry{}
	}

	_, _ = utils.WriteJSON(w, outboxResponse{Entries: entries, Length: len(entries)}, http.StatusOK)
}

func (h *Handler) listFailures(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	failures, err := h.engine.Failures(r.Context())
	if err != nil {
		log.Err(err).Str("func", "*Handler.listFailures").Msg("error listing sync failures")
		writeError(w, err)
		return
	}
	if failures == nil {
		failures = []models.SyncFailure{}
	}

	_, _ = utils.WriteJSON(w, failuresResponse{Failures: failures, Length: len(failures)}, http.StatusOK)
}

func (h *Handler) retryFailure(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)
	id := chi.URLParam(r, "id")

	entry, err := h.engine.RetryFailure(r.Context(), id)
	if err != nil {
		log.Err(err).Str("func", "*Handler.retryFailure").Str("failure_id", id).Msg("error retrying sync failure")
		writeError(w, err)
		return
	}

	_, _ = utils.WriteJSON(w, entry, http.StatusAccepted)
}

func (h *Handler) dismissFailure(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)
	id := chi.URLParam(r, "id")

	if err := h.engine.DismissFailure(r.Context(), id); err != nil {
		log.Err(err).Str("func", "*Handler.dismissFailure").Str("failure_id", id).Msg("error dismissing sync failure")
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
