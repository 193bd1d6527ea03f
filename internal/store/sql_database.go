// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/MKhiriev/offsync/internal/logger"
	"github.com/MKhiriev/offsync/migrations"
)

const (
	defaultBusyRetries   = 5
	defaultBusyRetryBase = 20 * time.Millisecond
)

// queryer is the subset of *sql.DB and *sql.Tx used by the repositories.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type DB struct {
	*sql.DB
	errorClassificator ErrorClassificator
	logger             *logger.Logger

	busyRetries   uint64
	busyRetryBase time.Duration
}

func newDB(conn *sql.DB, log *logger.Logger) *DB {
	return &DB{
		DB:                 conn,
		errorClassificator: NewSQLiteErrorClassifier(),
		logger:             log,
		busyRetries:        defaultBusyRetries,
		busyRetryBase:      defaultBusyRetryBase,
	}
}

func (db *DB) Migrate() error {
	return migrations.Migrate(db.DB)
}

// storageError wraps a driver error into a [StorageError] classified by the
// configured [ErrorClassificator]. Domain sentinels pass through unchanged.
func (db *DB) storageError(op string, kind, err error) error {
	if err == nil {
		return nil
	}

	var se *StorageError
	if errors.As(err, &se) || isDomainError(err) {
		return err
	}

	return &StorageError{
		Op:        op,
		Retryable: db.errorClassificator.Classify(err) == Retryable,
		Err:       fmt.Errorf("%w: %w", kind, err),
	}
}

// withRetry runs fn again while it fails with a retryable [StorageError].
// The last error is returned once the retry budget is spent.
func (db *DB) withRetry(ctx context.Context, fn func(ctx context.Context) error) error {
	backoff := retry.WithMaxRetries(db.busyRetries, retry.NewExponential(db.busyRetryBase))

	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := fn(ctx)

		var se *StorageError
		if errors.As(err, &se) && se.Retryable {
			db.logger.Debug().Str("op", se.Op).Err(se.Err).Msg("database busy, retrying")
			return retry.RetryableError(err)
		}

		return err
	})
}

// transact runs fn inside a single SQL transaction. The transaction is
// committed when fn returns nil and rolled back otherwise.
func (db *DB) transact(ctx context.Context, fn func(tx *sql.Tx) error) error {
	return db.withRetry(ctx, func(ctx context.Context) error {
		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return db.storageError("tx.begin", ErrBeginningTransaction, err)
		}
		defer tx.Rollback() //nolint:errcheck

		if err := fn(tx); err != nil {
			return err
		}

		if err := tx.Commit(); err != nil {
			return db.storageError("tx.commit", ErrCommitingTransaction, err)
		}

		return nil
	})
}

func isDomainError(err error) bool {
	return errors.Is(err, ErrRecordNotFound) ||
		errors.Is(err, ErrEntryNotFound) ||
		errors.Is(err, ErrFailureNotFound) ||
		errors.Is(err, ErrSettingNotFound)
}
