// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/MKhiriev/offsync/internal/logger"
	"github.com/MKhiriev/offsync/internal/utils"
	"github.com/MKhiriev/offsync/models"
)

type recordsResponse struct {
	Records []models.Record `json:"records"`
	Length  int             `json:"length"`
}

func (h *Handler) listRecords(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)
	collection := chi.URLParam(r, "collection")

	filter, err := parseListFilter(r.URL.Query())
	if err != nil {
		writeError(w, err)
		return
	}

	records, err := h.engine.List(r.Context(), collection, filter)
	if err != nil {
		log.Err(err).Str("func", "*Handler.listRecords").Str("collection", collection).Msg("error listing records")
		writeError(w, err)
		return
	}
	if records == nil {
		records = []models.Record{}
	}

	_, _ = utils.WriteJSON(w, recordsResponse{Records: records, Length: len(records)}, http.StatusOK)
}

func (h *Handler) getRecord(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)
	collection := chi.URLParam(r, "collection")
	id := chi.URLParam(r, "id")

	record, err := h.engine.Get(r.Context(), collection, id)
	if err != nil {
		log.Debug().Err(err).Str("func", "*Handler.getRecord").Str("collection", collection).Str("id", id).Msg("error getting record")
		writeError(w, err)
		return
	}

	_, _ = utils.WriteJSON(w, record, http.StatusOK)
}

// parseListFilter reads ?synced=, ?failed=, ?field=&value=, ?limit= and
// ?tombstones=, which defaults to true.
func parseListFilter(query url.Values) (models.ListFilter, error) {
	var filter models.ListFilter

	if raw := query.Get("synced"); raw != "" {
		synced, err := strconv.ParseBool(raw)
		if err != nil {
			return filter, fmt.Errorf("%w: synced=%q", ErrInvalidQueryParam, raw)
		}
		filter.Synced = models.Bool(synced)
	}

	if raw := query.Get("failed"); raw != "" {
		failed, err := strconv.ParseBool(raw)
		if err != nil {
			return filter, fmt.Errorf("%w: failed=%q", ErrInvalidQueryParam, raw)
		}
		filter.Failed = models.Bool(failed)
	}

	if raw := query.Get("tombstones"); raw != "" {
		tombstones, err := strconv.ParseBool(raw)
		if err != nil {
			return filter, fmt.Errorf("%w: tombstones=%q", ErrInvalidQueryParam, raw)
		}
		filter.ExcludeTombstones = !tombstones
	}

	if raw := query.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			return filter, fmt.Errorf("%w: limit=%q", ErrInvalidQueryParam, raw)
		}
		filter.Limit = limit
	}

	filter.Field = query.Get("field")
	filter.Value = query.Get("value")
	if filter.Field == "" && filter.Value != "" {
		return filter, fmt.Errorf("%w: value without field", ErrInvalidQueryParam)
	}

	return filter, nil
}
