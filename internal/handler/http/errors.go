// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import "errors"

var (
	// ErrInvalidQueryParam is returned for a query parameter that cannot be
	// parsed (e.g. ?synced=maybe or ?limit=-1).
	ErrInvalidQueryParam = errors.New("invalid query parameter")

	// ErrInvalidRequestBody is returned when a JSON body cannot be decoded.
	ErrInvalidRequestBody = errors.New("invalid request body")
)
