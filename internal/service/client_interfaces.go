// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"encoding/json"

	"github.com/MKhiriev/offsync/models"
)

// RecordService is the persistent record store. Every mutation is committed
// locally together with its outbox entry before the call returns.
type RecordService interface {
	// Save upserts the record identified by the payload's "id" field. A
	// missing id is generated and written back into the payload.
	// op may be OperationUnspecified: Create is chosen for records the server
	// has never seen and that have no queued Create, Update otherwise.
	Save(ctx context.Context, collection string, payload json.RawMessage, op models.Operation) (models.Record, error)

	// Get returns the record or an error wrapping ErrNotFound.
	Get(ctx context.Context, collection, id string) (models.Record, error)

	// List returns the records of a collection, newest first.
	List(ctx context.Context, collection string, filter models.ListFilter) ([]models.Record, error)

	// Delete removes the record locally and, when the server knows it,
	// queues a remote delete. Deleting a missing record is a no-op.
	Delete(ctx context.Context, collection, id string) error
}

// OutboxService manages the durable queue of pending remote operations.
type OutboxService interface {
	// Enqueue appends entry with a zero retry count and signals the sync
	// coordinator when online.
	Enqueue(ctx context.Context, entry *models.OutboxEntry) error

	// Drain returns a snapshot of pending entries in replay order.
	Drain(ctx context.Context) ([]models.OutboxEntry, error)

	// Entries returns every entry, including those in flight.
	Entries(ctx context.Context) ([]models.OutboxEntry, error)

	// Claim marks a pending entry as in flight.
	Claim(ctx context.Context, entryID string) error

	// Resolve removes an entry after a successful remote call.
	Resolve(ctx context.Context, entryID string) error

	// Requeue records a failed attempt. Once the retry budget is spent the
	// entry is moved to the failures table and the returned error wraps
	// ErrSyncPermanentFailure.
	Requeue(ctx context.Context, entryID string, cause error) (models.OutboxEntry, error)

	// Pending counts queued entries.
	Pending(ctx context.Context) (int, error)

	// RecoverInFlight returns entries left in flight by an interrupted
	// process to the pending state.
	RecoverInFlight(ctx context.Context) (int64, error)
}

// SyncCoordinator replays the outbox against the remote API.
type SyncCoordinator interface {
	// Sync runs one pass and returns its report. It fails with
	// ErrSyncInProgress while another pass runs and with ErrOffline while
	// the remote API is unreachable.
	Sync(ctx context.Context) (models.SyncReport, error)

	// Trigger schedules a background pass. A trigger arriving during a pass
	// schedules exactly one follow-up pass.
	Trigger()

	// Notify triggers a pass only when the remote API is reachable.
	Notify()

	// HandleConnectivity is subscribed to the connectivity monitor.
	HandleConnectivity(online bool)

	// Syncing reports whether a pass is running.
	Syncing() bool

	// Wait blocks until no pass is running.
	Wait()

	// Close stops scheduling passes and waits for the running one.
	Close()
}

// SettingsService stores small JSON values outside the sync protocol.
type SettingsService interface {
	Get(ctx context.Context, key string, dst any) error
	Set(ctx context.Context, key string, value any) error
	Delete(ctx context.Context, key string) error
	All(ctx context.Context) ([]models.Setting, error)
}

// FailureService exposes entries that exhausted their retry budget.
type FailureService interface {
	List(ctx context.Context) ([]models.SyncFailure, error)
	Count(ctx context.Context) (int, error)

	// Retry rebuilds the failed operation from the record's current state,
	// queues it ahead of the record's other entries with a fresh retry budget
	// and clears the record's failure flag. It returns ErrFailureObsolete
	// when the record was removed or already awaits a delete.
	Retry(ctx context.Context, id string) (models.OutboxEntry, error)

	// Dismiss deletes the failure. The record keeps its flag until the next
	// Save.
	Dismiss(ctx context.Context, id string) error
}

// ConnectivityState reports the debounced reachability of the remote API.
type ConnectivityState interface {
	Online() bool
}
