// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package adapter

import (
	"errors"
	"fmt"
)

var (
	// ErrNetwork marks failures where no HTTP response was received:
	// connection refused, DNS errors, timeouts.
	ErrNetwork = errors.New("network error")

	// ErrUnexpectedStatus marks responses outside the 2xx range.
	ErrUnexpectedStatus = errors.New("unexpected status")
)

var (
	ErrBadRequest          = errors.New("bad request")
	ErrUnauthorized        = errors.New("client unauthorized")
	ErrForbidden           = errors.New("forbidden")
	ErrNotFound            = errors.New("not found")
	ErrConflict            = errors.New("conflict")
	ErrTooManyRequests     = errors.New("too many requests")
	ErrInternalServerError = errors.New("internal server error")
	ErrBadGateway          = errors.New("bad gateway")
	ErrServiceUnavailable  = errors.New("service unavailable")
)

// RequestError describes a failed replay of one remote call.
type RequestError struct {
	Method string
	Target string

	// StatusCode is zero when no response was received.
	StatusCode int

	Err error
}

func (e *RequestError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("%s %s: %v", e.Method, e.Target, e.Err)
	}
	return fmt.Sprintf("%s %s: status %d: %v", e.Method, e.Target, e.StatusCode, e.Err)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}
