// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"

	"github.com/MKhiriev/offsync/models"
)

// RecordRepository persists records keyed by (collection, id).
type RecordRepository interface {
	SaveRecord(ctx context.Context, record models.Record) error
	GetRecord(ctx context.Context, collection, id string) (models.Record, error)
	ListRecords(ctx context.Context, collection string, filter models.ListFilter) ([]models.Record, error)
	DeleteRecord(ctx context.Context, collection, id string) error
	MarkSynced(ctx context.Context, collection, id string) error
	MarkServerKnown(ctx context.Context, collection, id string) error
	// ClearServerKnown forgets a server acknowledgement, e.g. once a remote
	// delete went through while a re-create is still queued.
	ClearServerKnown(ctx context.Context, collection, id string) error
	MarkFailed(ctx context.Context, collection, id, reason string) error
	ClearFailed(ctx context.Context, collection, id string) error
}

// OutboxRepository persists pending remote operations.
type OutboxRepository interface {
	// InsertEntry stores entry and assigns entry.Seq.
	InsertEntry(ctx context.Context, entry *models.OutboxEntry) error
	GetEntry(ctx context.Context, id string) (models.OutboxEntry, error)
	PendingEntries(ctx context.Context) ([]models.OutboxEntry, error)
	AllEntries(ctx context.Context) ([]models.OutboxEntry, error)
	RecordEntries(ctx context.Context, collection, recordID string) ([]models.OutboxEntry, error)
	ClaimEntry(ctx context.Context, id string) error
	RequeueEntry(ctx context.Context, id string, retryCount int, lastError string) error
	DeleteEntry(ctx context.Context, id string) error
	DeleteRecordEntries(ctx context.Context, collection, recordID string) (int64, error)
	CountEntries(ctx context.Context) (int, error)
	ResetInFlight(ctx context.Context) (int64, error)
}

// FailureRepository persists entries that exhausted their retry budget.
type FailureRepository interface {
	InsertFailure(ctx context.Context, failure models.SyncFailure) error
	GetFailure(ctx context.Context, id string) (models.SyncFailure, error)
	ListFailures(ctx context.Context) ([]models.SyncFailure, error)
	DeleteFailure(ctx context.Context, id string) error
	CountFailures(ctx context.Context) (int, error)
}

// SettingsRepository is a small key/value table with JSON values.
type SettingsRepository interface {
	SetSetting(ctx context.Context, setting models.Setting) error
	GetSetting(ctx context.Context, key string) (models.Setting, error)
	ListSettings(ctx context.Context) ([]models.Setting, error)
	DeleteSetting(ctx context.Context, key string) error
}
