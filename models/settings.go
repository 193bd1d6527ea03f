// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import (
	"encoding/json"
	"time"
)

// Well-known engine setting keys.
const (
	SettingLastSyncAt       = "sync.last_success_at"
	SettingLastSyncReport   = "sync.last_report"
	SettingLastOnlineChange = "connectivity.last_change_at"
)

// Setting is one entry of the engine's auxiliary key-value area.
type Setting struct {
	Key       string          `json:"key"`
	Value     json.RawMessage `json:"value"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// EngineStatus is a point-in-time view of the engine for UI indicators.
type EngineStatus struct {
	Online         bool       `json:"online"`
	Syncing        bool       `json:"syncing"`
	PendingEntries int        `json:"pending_entries"`
	Failures       int        `json:"failures"`
	LastSyncAt     *time.Time `json:"last_sync_at,omitempty"`
}
