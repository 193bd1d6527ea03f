// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"net/http"

	"github.com/MKhiriev/offsync/internal/logger"
	"github.com/MKhiriev/offsync/internal/utils"
)

func (h *Handler) getStatus(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	status, err := h.engine.Status(r.Context())
	if err != nil {
		log.Err(err).Str("func", "*Handler.getStatus").Msg("error getting engine status")
		writeError(w, err)
		return
	}

	_, _ = utils.WriteJSON(w, status, http.StatusOK)
}
