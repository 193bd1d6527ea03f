// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package app contains shared application-layer constants used by the status
// API and the command line.
//
// All Msg* constants are human-readable message strings that are written into
// HTTP response bodies or printed by commands to describe the outcome of an
// operation.
package app

const (
	// MsgInvalidDataProvided is returned when a request body cannot be
	// decoded.
	MsgInvalidDataProvided = "invalid data provided"

	// MsgInternalServerError replaces storage and other unexpected errors in
	// responses.
	MsgInternalServerError = "internal server error"

	// MsgMethodNotAllowed is returned for a known path requested with a
	// method it does not serve.
	MsgMethodNotAllowed = "method not allowed"

	// MsgSyncStarted is returned when a background pass was scheduled.
	MsgSyncStarted = "sync scheduled"

	// MsgNothingToSync is printed when the outbox is empty.
	MsgNothingToSync = "outbox is empty"

	// MsgNoFailures is printed when no entry exhausted its retries.
	MsgNoFailures = "no sync failures"
)
