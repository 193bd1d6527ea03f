// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import (
	"encoding/json"
	"time"
)

// DefaultMaxRetries is the retry ceiling applied to entries enqueued without
// an explicit budget.
const DefaultMaxRetries = 3

// OutboxStatus is the claim state of an outbox entry.
type OutboxStatus string

const (
	// OutboxStatusPending marks an entry waiting for the next drain pass.
	OutboxStatusPending OutboxStatus = "pending"

	// OutboxStatusSending marks an entry whose remote call is in flight.
	OutboxStatusSending OutboxStatus = "sending"
)

// OutboxEntry is one pending remote call generated by a local mutation.
type OutboxEntry struct {
	// ID is the entry identifier (a ULID), distinct from RecordID.
	ID string `json:"id"`

	// Seq is assigned by the store on insert and is the replay order.
	Seq int64 `json:"seq"`

	Collection string    `json:"collection"`
	RecordID   string    `json:"record_id"`
	Operation  Operation `json:"operation"`

	// Method is the HTTP method derived from Operation.
	Method string `json:"method"`

	// Target is the resource path, e.g. /api/cases or /api/cases/c1.
	Target string `json:"target"`

	// Body is the payload snapshot taken at enqueue time; nil for deletes.
	Body json.RawMessage `json:"body,omitempty"`

	EnqueuedAt time.Time    `json:"enqueued_at"`
	RetryCount int          `json:"retry_count"`
	MaxRetries int          `json:"max_retries"`
	Status     OutboxStatus `json:"status"`
	LastError  string       `json:"last_error,omitempty"`
}

// RecordKey identifies the record an entry belongs to.
func (e OutboxEntry) RecordKey() string {
	return RecordKey(e.Collection, e.RecordID)
}

// Exhausted reports whether the retry budget is used up.
func (e OutboxEntry) Exhausted() bool {
	return e.RetryCount >= e.MaxRetries
}

// RecordKey builds the "<collection>/<id>" key used for per-record locking
// and grouping.
func RecordKey(collection, id string) string {
	return collection + "/" + id
}
