// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package validators checks records and list filters before they reach the
// local store.
//
// A Validator is called with the value to check and the names of the fields
// to check on it (see the Field* constants). Without field names a default
// set is checked. Failures are the sentinel errors of errors.go so
// callers can map them with errors.Is.
package validators

import "context"

// Validator validates a value, optionally restricted to the named fields.
type Validator interface {
	Validate(ctx context.Context, v any, fields ...string) error
}
