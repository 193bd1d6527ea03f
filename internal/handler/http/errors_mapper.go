// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"errors"
	"net/http"

	"github.com/MKhiriev/offsync/internal/app"
	"github.com/MKhiriev/offsync/internal/client"
	"github.com/MKhiriev/offsync/internal/service"
	"github.com/MKhiriev/offsync/internal/utils"
	"github.com/MKhiriev/offsync/internal/validators"
)

var errorStatusMap = []struct {
	err    error
	status int
}{
	{ErrInvalidQueryParam, http.StatusBadRequest},
	{ErrInvalidRequestBody, http.StatusBadRequest},

	{validators.ErrInvalidCollection, http.StatusBadRequest},
	{validators.ErrInvalidRecordID, http.StatusBadRequest},
	{validators.ErrInvalidFilterField, http.StatusBadRequest},
	{validators.ErrInvalidLimit, http.StatusBadRequest},

	{service.ErrNotFound, http.StatusNotFound},
	{service.ErrEntryNotFound, http.StatusNotFound},
	{service.ErrFailureNotFound, http.StatusNotFound},
	{service.ErrSettingNotFound, http.StatusNotFound},

	{service.ErrSyncInProgress, http.StatusConflict},
	{service.ErrFailureObsolete, http.StatusConflict},
	{service.ErrOffline, http.StatusServiceUnavailable},
	{service.ErrCoordinatorClosed, http.StatusServiceUnavailable},
	{client.ErrEngineClosed, http.StatusServiceUnavailable},
}

func statusFromError(err error) int {
	for _, e := range errorStatusMap {
		if errors.Is(err, e.err) {
			return e.status
		}
	}
	return http.StatusInternalServerError
}

// writeError responds with the status mapped from err. Internal errors are
// reported with a generic message.
func writeError(w http.ResponseWriter, err error) {
	status := statusFromError(err)
	if status == http.StatusInternalServerError {
		err = errors.New(app.MsgInternalServerError)
	}
	utils.WriteError(w, err, status)
}
