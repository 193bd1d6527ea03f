// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/MKhiriev/offsync/internal/app"
	"github.com/MKhiriev/offsync/internal/logger"
	"github.com/MKhiriev/offsync/internal/utils"
)

type connectivityRequest struct {
	Online *bool `json:"online"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// sync runs a pass and returns its report. With ?async=true the pass is only
// scheduled and 202 is returned.
func (h *Handler) sync(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	if raw := r.URL.Query().Get("async"); raw != "" {
		async, err := strconv.ParseBool(raw)
		if err != nil {
			writeError(w, fmt.Errorf("%w: async=%q", ErrInvalidQueryParam, raw))
			return
		}
		if async {
			if err = h.engine.Trigger(); err != nil {
				writeError(w, err)
				return
			}
			_, _ = utils.WriteJSON(w, messageResponse{Message: app.MsgSyncStarted}, http.StatusAccepted)
			return
		}
	}

	report, err := h.engine.Sync(r.Context())
	if err != nil {
		log.Err(err).Str("func", "*Handler.sync").Msg("error running sync pass")
		writeError(w, err)
		return
	}

	_, _ = utils.WriteJSON(w, report, http.StatusOK)
}

func (h *Handler) setConnectivity(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	var req connectivityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Online == nil {
		log.Debug().Err(err).Str("func", "*Handler.setConnectivity").Msg(app.MsgInvalidDataProvided)
		writeError(w, fmt.Errorf("%w: %s", ErrInvalidRequestBody, app.MsgInvalidDataProvided))
		return
	}

	if err := h.engine.SetOnline(*req.Online); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
