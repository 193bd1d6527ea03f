// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import (
	"encoding/json"
	"time"
)

// SyncFailure is the persisted trace of an outbox entry that was dropped after
// exhausting its retries. The originating record keeps SyncFailed set until
// it is saved again or the failure is retried.
type SyncFailure struct {
	// ID equals the ID of the dropped outbox entry.
	ID         string          `json:"id"`
	Collection string          `json:"collection"`
	RecordID   string          `json:"record_id"`
	Operation  Operation       `json:"operation"`
	Method     string          `json:"method"`
	Target     string          `json:"target"`
	Body       json.RawMessage `json:"body,omitempty"`
	RetryCount int             `json:"retry_count"`
	LastError  string          `json:"last_error"`
	FailedAt   time.Time       `json:"failed_at"`
}
