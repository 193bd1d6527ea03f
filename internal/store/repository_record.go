// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/MKhiriev/offsync/internal/logger"
	"github.com/MKhiriev/offsync/models"
)

// recordRepository is the SQLite-backed implementation of [RecordRepository].
type recordRepository struct {
	repository
}

func NewRecordRepository(db *DB) RecordRepository {
	return &recordRepository{repository: newRepository(db)}
}

func (r *recordRepository) SaveRecord(ctx context.Context, record models.Record) error {
	log := logger.FromContext(ctx)

	err := r.run(ctx, func(ctx context.Context) error {
		_, err := r.q.ExecContext(ctx, upsertRecord,
			record.Collection,
			record.ID,
			string(record.Payload),
			toUnixNano(record.LastModified),
			record.Synced,
			string(record.PendingOperation),
			record.ServerKnown,
			record.SyncFailed,
			record.SyncError,
		)
		return r.db.storageError("records.save", ErrExecutingStatement, err)
	})
	if err != nil {
		log.Err(err).
			Str("func", "recordRepository.SaveRecord").
			Str("collection", record.Collection).
			Str("id", record.ID).
			Msg("failed to upsert record")
		return err
	}

	return nil
}

func (r *recordRepository) GetRecord(ctx context.Context, collection, id string) (models.Record, error) {
	log := logger.FromContext(ctx)

	var record models.Record
	err := r.run(ctx, func(ctx context.Context) error {
		var scanErr error
		record, scanErr = scanRecord(r.q.QueryRowContext(ctx, getRecord, collection, id))
		if errors.Is(scanErr, sql.ErrNoRows) {
			return ErrRecordNotFound
		}
		return r.db.storageError("records.get", ErrScanningRow, scanErr)
	})
	if err != nil {
		if !errors.Is(err, ErrRecordNotFound) {
			log.Err(err).
				Str("func", "recordRepository.GetRecord").
				Str("collection", collection).
				Str("id", id).
				Msg("failed to get record")
		}
		return models.Record{}, err
	}

	return record, nil
}

func (r *recordRepository) ListRecords(ctx context.Context, collection string, filter models.ListFilter) ([]models.Record, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildListRecordsQuery(collection, filter)
	if err != nil {
		log.Err(err).
			Str("func", "recordRepository.ListRecords").
			Str("collection", collection).
			Msg("failed to create query")
		return nil, &StorageError{Op: "records.list", Err: fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)}
	}

	var records []models.Record
	err = r.run(ctx, func(ctx context.Context) error {
		rows, err := r.q.QueryContext(ctx, query, args...)
		if err != nil {
			return r.db.storageError("records.list", ErrExecutingQuery, err)
		}
		defer rows.Close()

		records = records[:0]
		for rows.Next() {
			record, err := scanRecord(rows)
			if err != nil {
				return r.db.storageError("records.list", ErrScanningRow, err)
			}
			records = append(records, record)
		}

		return r.db.storageError("records.list", ErrScanningRow, rows.Err())
	})
	if err != nil {
		log.Err(err).
			Str("func", "recordRepository.ListRecords").
			Str("collection", collection).
			Msg("failed to list records")
		return nil, err
	}

	return records, nil
}

func (r *recordRepository) DeleteRecord(ctx context.Context, collection, id string) error {
	return r.exec(ctx, "records.delete", "recordRepository.DeleteRecord", collection, id, deleteRecord, collection, id)
}

func (r *recordRepository) MarkSynced(ctx context.Context, collection, id string) error {
	return r.exec(ctx, "records.mark_synced", "recordRepository.MarkSynced", collection, id, markRecordSynced, collection, id)
}

func (r *recordRepository) MarkServerKnown(ctx context.Context, collection, id string) error {
	return r.exec(ctx, "records.mark_server_known", "recordRepository.MarkServerKnown", collection, id, markRecordServerKnown, collection, id)
}

func (r *recordRepository) ClearServerKnown(ctx context.Context, collection, id string) error {
	return r.exec(ctx, "records.clear_server_known", "recordRepository.ClearServerKnown", collection, id, clearRecordServerKnown, collection, id)
}

func (r *recordRepository) MarkFailed(ctx context.Context, collection, id, reason string) error {
	return r.exec(ctx, "records.mark_failed", "recordRepository.MarkFailed", collection, id, markRecordFailed, reason, collection, id)
}

func (r *recordRepository) ClearFailed(ctx context.Context, collection, id string) error {
	return r.exec(ctx, "records.clear_failed", "recordRepository.ClearFailed", collection, id, clearRecordFailed, collection, id)
}

// exec runs a single-row statement. A statement that matches no row is not
// an error: the record may have been removed in the meantime.
func (r *recordRepository) exec(ctx context.Context, op, fn, collection, id, query string, args ...any) error {
	err := r.run(ctx, func(ctx context.Context) error {
		_, err := r.q.ExecContext(ctx, query, args...)
		return r.db.storageError(op, ErrExecutingStatement, err)
	})
	if err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", fn).
			Str("collection", collection).
			Str("id", id).
			Msg("failed to execute record statement")
		return err
	}

	return nil
}

func scanRecord(row rowScanner) (models.Record, error) {
	var (
		record       models.Record
		payload      string
		lastModified int64
		pendingOp    string
	)

	err := row.Scan(
		&record.Collection,
		&record.ID,
		&payload,
		&lastModified,
		&record.Synced,
		&pendingOp,
		&record.ServerKnown,
		&record.SyncFailed,
		&record.SyncError,
	)
	if err != nil {
		return models.Record{}, err
	}

	record.Payload = json.RawMessage(payload)
	record.LastModified = fromUnixNano(lastModified)
	record.PendingOperation = models.Operation(pendingOp)

	return record, nil
}
