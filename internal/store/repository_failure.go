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

type failureRepository struct {
	repository
}

func NewFailureRepository(db *DB) FailureRepository {
	return &failureRepository{repository: newRepository(db)}
}

func (f *failureRepository) InsertFailure(ctx context.Context, failure models.SyncFailure) error {
	err := f.run(ctx, func(ctx context.Context) error {
		_, err := f.q.ExecContext(ctx, insertSyncFailure,
			failure.ID,
			failure.Collection,
			failure.RecordID,
			string(failure.Operation),
			failure.Method,
			failure.Target,
			nullableJSON(failure.Body),
			failure.RetryCount,
			failure.LastError,
			toUnixNano(failure.FailedAt),
		)
		return f.db.storageError("failures.insert", ErrExecutingStatement, err)
	})
	if err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "failureRepository.InsertFailure").
			Str("failure_id", failure.ID).
			Str("record", models.RecordKey(failure.Collection, failure.RecordID)).
			Msg("failed to insert sync failure")
		return err
	}

	return nil
}

func (f *failureRepository) GetFailure(ctx context.Context, id string) (models.SyncFailure, error) {
	var failure models.SyncFailure

	err := f.run(ctx, func(ctx context.Context) error {
		var scanErr error
		failure, scanErr = scanSyncFailure(f.q.QueryRowContext(ctx, getSyncFailure, id))
		if errors.Is(scanErr, sql.ErrNoRows) {
			return ErrFailureNotFound
		}
		return f.db.storageError("failures.get", ErrScanningRow, scanErr)
	})
	if err != nil {
		if !errors.Is(err, ErrFailureNotFound) {
			logger.FromContext(ctx).Err(err).
				Str("func", "failureRepository.GetFailure").
				Str("failure_id", id).
				Msg("failed to get sync failure")
		}
		return models.SyncFailure{}, err
	}

	return failure, nil
}

func (f *failureRepository) ListFailures(ctx context.Context) ([]models.SyncFailure, error) {
	var failures []models.SyncFailure

	err := f.run(ctx, func(ctx context.Context) error {
		rows, err := f.q.QueryContext(ctx, getAllSyncFailures)
		if err != nil {
			return f.db.storageError("failures.list", ErrExecutingQuery, err)
		}
		defer rows.Close()

		failures = failures[:0]
		for rows.Next() {
			failure, err := scanSyncFailure(rows)
			if err != nil {
				return f.db.storageError("failures.list", ErrScanningRow, err)
			}
			failures = append(failures, failure)
		}

		return f.db.storageError("failures.list", ErrScanningRow, rows.Err())
	})
	if err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "failureRepository.ListFailures").
			Msg("failed to list sync failures")
		return nil, err
	}

	return failures, nil
}

func (f *failureRepository) DeleteFailure(ctx context.Context, id string) error {
	err := f.run(ctx, func(ctx context.Context) error {
		res, err := f.q.ExecContext(ctx, deleteSyncFailure, id)
		if err != nil {
			return f.db.storageError("failures.delete", ErrExecutingStatement, err)
		}

		affected, err := res.RowsAffected()
		if err != nil {
			return f.db.storageError("failures.delete", ErrExecutingStatement, err)
		}
		if affected == 0 {
			return ErrFailureNotFound
		}

		return nil
	})
	if err != nil && !errors.Is(err, ErrFailureNotFound) {
		logger.FromContext(ctx).Err(err).
			Str("func", "failureRepository.DeleteFailure").
			Str("failure_id", id).
			Msg("failed to delete sync failure")
	}

	return err
}

func (f *failureRepository) CountFailures(ctx context.Context) (int, error) {
	var count int

	err := f.run(ctx, func(ctx context.Context) error {
		err := f.q.QueryRowContext(ctx, countSyncFailures).Scan(&count)
		return f.db.storageError("failures.count", ErrScanningRow, err)
	})
	if err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "failureRepository.CountFailures").
			Msg("failed to count sync failures")
		return 0, err
	}

	return count, nil
}

func scanSyncFailure(row rowScanner) (models.SyncFailure, error) {
	var (
		failure   models.SyncFailure
		operation string
		body      sql.NullString
		failedAt  int64
	)

	err := row.Scan(
		&failure.ID,
		&failure.Collection,
		&failure.RecordID,
		&operation,
		&failure.Method,
		&failure.Target,
		&body,
		&failure.RetryCount,
		&failure.LastError,
		&failedAt,
	)
	if err != nil {
		return models.SyncFailure{}, err
	}

	failure.Operation = models.Operation(operation)
	failure.Body = jsonFromNullable(body)
	failure.FailedAt = fromUnixNano(failedAt)

	return failure, nil
}
