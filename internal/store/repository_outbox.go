// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/MKhiriev/offsync/internal/logger"
	"github.com/MKhiriev/offsync/models"
)

// outboxRepository is the SQLite-backed implementation of [OutboxRepository].
// Entries are returned in replay order, which is seq (insertion) order.
// enqueued_at is informational only.
type outboxRepository struct {
	repository
}

func NewOutboxRepository(db *DB) OutboxRepository {
	return &outboxRepository{repository: newRepository(db)}
}

func (o *outboxRepository) InsertEntry(ctx context.Context, entry *models.OutboxEntry) error {
	log := logger.FromContext(ctx)

	if entry.Status == "" {
		entry.Status = models.OutboxStatusPending
	}

	err := o.run(ctx, func(ctx context.Context) error {
		res, err := o.q.ExecContext(ctx, insertOutboxEntry,
			entry.ID,
			entry.Collection,
			entry.RecordID,
			string(entry.Operation),
			entry.Method,
			entry.Target,
			nullableJSON(entry.Body),
			toUnixNano(entry.EnqueuedAt),
			entry.RetryCount,
			entry.MaxRetries,
			string(entry.Status),
			entry.LastError,
		)
		if err != nil {
			return o.db.storageError("outbox.insert", ErrExecutingStatement, err)
		}

		seq, err := res.LastInsertId()
		if err != nil {
			return o.db.storageError("outbox.insert", ErrExecutingStatement, err)
		}
		entry.Seq = seq

		return nil
	})
	if err != nil {
		log.Err(err).
			Str("func", "outboxRepository.InsertEntry").
			Str("entry_id", entry.ID).
			Str("record", entry.RecordKey()).
			Msg("failed to insert outbox entry")
		return err
	}

	return nil
}

func (o *outboxRepository) GetEntry(ctx context.Context, id string) (models.OutboxEntry, error) {
	var entry models.OutboxEntry

	err := o.run(ctx, func(ctx context.Context) error {
		var scanErr error
		entry, scanErr = scanOutboxEntry(o.q.QueryRowContext(ctx, getOutboxEntry, id))
		if errors.Is(scanErr, sql.ErrNoRows) {
			return ErrEntryNotFound
		}
		return o.db.storageError("outbox.get", ErrScanningRow, scanErr)
	})
	if err != nil {
		if !errors.Is(err, ErrEntryNotFound) {
			logger.FromContext(ctx).Err(err).
				Str("func", "outboxRepository.GetEntry").
				Str("entry_id", id).
				Msg("failed to get outbox entry")
		}
		return models.OutboxEntry{}, err
	}

	return entry, nil
}

func (o *outboxRepository) PendingEntries(ctx context.Context) ([]models.OutboxEntry, error) {
	return o.query(ctx, "outbox.pending", "outboxRepository.PendingEntries", getPendingOutboxEntries)
}

func (o *outboxRepository) AllEntries(ctx context.Context) ([]models.OutboxEntry, error) {
	return o.query(ctx, "outbox.all", "outboxRepository.AllEntries", getAllOutboxEntries)
}

func (o *outboxRepository) RecordEntries(ctx context.Context, collection, recordID string) ([]models.OutboxEntry, error) {
	return o.query(ctx, "outbox.record", "outboxRepository.RecordEntries", getRecordOutboxEntries, collection, recordID)
}

// ClaimEntry moves a pending entry to the sending state. It returns
// [ErrEntryNotFound] when the entry is gone or already claimed.
func (o *outboxRepository) ClaimEntry(ctx context.Context, id string) error {
	return o.execOne(ctx, "outbox.claim", "outboxRepository.ClaimEntry", id, claimOutboxEntry, id)
}

func (o *outboxRepository) RequeueEntry(ctx context.Context, id string, retryCount int, lastError string) error {
	return o.execOne(ctx, "outbox.requeue", "outboxRepository.RequeueEntry", id, requeueOutboxEntry, retryCount, lastError, id)
}

func (o *outboxRepository) DeleteEntry(ctx context.Context, id string) error {
	return o.execOne(ctx, "outbox.delete", "outboxRepository.DeleteEntry", id, deleteOutboxEntry, id)
}

func (o *outboxRepository) DeleteRecordEntries(ctx context.Context, collection, recordID string) (int64, error) {
	var affected int64

	err := o.run(ctx, func(ctx context.Context) error {
		res, err := o.q.ExecContext(ctx, deleteRecordOutboxEntries, collection, recordID)
		if err != nil {
			return o.db.storageError("outbox.delete_record", ErrExecutingStatement, err)
		}
		affected, err = res.RowsAffected()
		return o.db.storageError("outbox.delete_record", ErrExecutingStatement, err)
	})
	if err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "outboxRepository.DeleteRecordEntries").
			Str("record", models.RecordKey(collection, recordID)).
			Msg("failed to delete outbox entries of record")
		return 0, err
	}

	return affected, nil
}

func (o *outboxRepository) CountEntries(ctx context.Context) (int, error) {
	var count int

	err := o.run(ctx, func(ctx context.Context) error {
		err := o.q.QueryRowContext(ctx, countOutboxEntries).Scan(&count)
		return o.db.storageError("outbox.count", ErrScanningRow, err)
	})
	if err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "outboxRepository.CountEntries").
			Msg("failed to count outbox entries")
		return 0, err
	}

	return count, nil
}

// ResetInFlight returns entries left in the sending state by an interrupted
// pass to pending and reports how many were reset.
func (o *outboxRepository) ResetInFlight(ctx context.Context) (int64, error) {
	var affected int64

	err := o.run(ctx, func(ctx context.Context) error {
		res, err := o.q.ExecContext(ctx, resetInFlightOutboxEntries)
		if err != nil {
			return o.db.storageError("outbox.reset_in_flight", ErrExecutingStatement, err)
		}
		affected, err = res.RowsAffected()
		return o.db.storageError("outbox.reset_in_flight", ErrExecutingStatement, err)
	})
	if err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "outboxRepository.ResetInFlight").
			Msg("failed to reset in-flight outbox entries")
		return 0, err
	}

	return affected, nil
}

func (o *outboxRepository) query(ctx context.Context, op, fn, query string, args ...any) ([]models.OutboxEntry, error) {
	var entries []models.OutboxEntry

	err := o.run(ctx, func(ctx context.Context) error {
		rows, err := o.q.QueryContext(ctx, query, args...)
		if err != nil {
			return o.db.storageError(op, ErrExecutingQuery, err)
		}
		defer rows.Close()

		entries = entries[:0]
		for rows.Next() {
			entry, err := scanOutboxEntry(rows)
			if err != nil {
				return o.db.storageError(op, ErrScanningRow, err)
			}
			entries = append(entries, entry)
		}

		return o.db.storageError(op, ErrScanningRow, rows.Err())
	})
	if err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", fn).
			Msg("failed to query outbox entries")
		return nil, err
	}

	return entries, nil
}

// execOne runs a statement that must affect exactly one entry.
func (o *outboxRepository) execOne(ctx context.Context, op, fn, id, query string, args ...any) error {
	err := o.run(ctx, func(ctx context.Context) error {
		res, err := o.q.ExecContext(ctx, query, args...)
		if err != nil {
			return o.db.storageError(op, ErrExecutingStatement, err)
		}

		affected, err := res.RowsAffected()
		if err != nil {
			return o.db.storageError(op, ErrExecutingStatement, err)
		}
		if affected == 0 {
			return ErrEntryNotFound
		}

		return nil
	})
	if err != nil && !errors.Is(err, ErrEntryNotFound) {
		logger.FromContext(ctx).Err(err).
			Str("func", fn).
			Str("entry_id", id).
			Msg("failed to execute outbox statement")
	}

	return err
}

func scanOutboxEntry(row rowScanner) (models.OutboxEntry, error) {
	var (
		entry      models.OutboxEntry
		operation  string
		status     string
		body       sql.NullString
		enqueuedAt int64
	)

	err := row.Scan(
		&entry.Seq,
		&entry.ID,
		&entry.Collection,
		&entry.RecordID,
		&operation,
		&entry.Method,
		&entry.Target,
		&body,
		&enqueuedAt,
		&entry.RetryCount,
		&entry.MaxRetries,
		&status,
		&entry.LastError,
	)
	if err != nil {
		return models.OutboxEntry{}, err
	}

	entry.Operation = models.Operation(operation)
	entry.Status = models.OutboxStatus(status)
	entry.Body = jsonFromNullable(body)
	entry.EnqueuedAt = fromUnixNano(enqueuedAt)

	return entry, nil
}
