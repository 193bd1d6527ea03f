// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import (
	"encoding/json"
	"time"
)

// Record is one locally stored entity instance together with its sync state.
// The payload is kept as raw JSON and is never interpreted beyond its "id"
// field.
type Record struct {
	// Collection is the logical table the record belongs to (e.g. "cases").
	Collection string `json:"collection"`

	// ID is unique within Collection. It always equals the payload's "id" field.
	ID string `json:"id"`

	// Payload is the entity's full field set as a JSON object.
	Payload json.RawMessage `json:"payload"`

	// LastModified is the time of the last local write.
	LastModified time.Time `json:"last_modified"`

	// Synced is true only once the server accepted the current payload.
	Synced bool `json:"synced"`

	// PendingOperation is the operation still owed to the server.
	// It is OperationUnspecified whenever Synced is true.
	PendingOperation Operation `json:"pending_operation,omitempty"`

	// ServerKnown reports whether the server acknowledged a Create or Update
	// for this record at least once. Local deletes of server-known records
	// produce tombstones instead of removing the row.
	ServerKnown bool `json:"server_known"`

	// SyncFailed is the durable "failed to sync" marker set when an outbox
	// entry of this record exhausted its retry budget.
	SyncFailed bool `json:"sync_failed"`

	// SyncError holds the last replay error when SyncFailed is set.
	SyncError string `json:"sync_error,omitempty"`
}

// IsTombstone reports whether the record only survives to carry a pending
// Delete to the server.
func (r Record) IsTombstone() bool {
	return r.PendingOperation == OperationDelete
}
