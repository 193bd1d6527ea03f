// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "time"

// SyncEventType names an observable engine event.
type SyncEventType string

const (
	EventSyncStarted         SyncEventType = "sync.started"
	EventSyncFinished        SyncEventType = "sync.finished"
	EventEntryResolved       SyncEventType = "entry.resolved"
	EventEntryRequeued       SyncEventType = "entry.requeued"
	EventEntryFailed         SyncEventType = "entry.failed"
	EventConnectivityChanged SyncEventType = "connectivity.changed"
)

// SyncEvent is delivered to engine subscribers. Only the fields relevant to
// Type are set.
type SyncEvent struct {
	Type    SyncEventType `json:"type"`
	At      time.Time     `json:"at"`
	Entry   *OutboxEntry  `json:"entry,omitempty"`
	Failure *SyncFailure  `json:"failure,omitempty"`
	Report  *SyncReport   `json:"report,omitempty"`
	Online  bool          `json:"online,omitempty"`
	Error   string        `json:"error,omitempty"`
}

// SyncReport summarises one drain pass.
type SyncReport struct {
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Attempted  int       `json:"attempted"`
	Resolved   int       `json:"resolved"`
	Requeued   int       `json:"requeued"`
	Failed     int       `json:"failed"`
	// Skipped counts entries left untouched because an earlier entry of the
	// same record failed in this pass.
	Skipped int `json:"skipped"`
}
