// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by repository methods to signal well-known failure
// conditions. Callers should use [errors.Is] to match against these values.
var (
	// ErrRecordNotFound is returned when no record exists for the requested
	// (collection, id) pair.
	ErrRecordNotFound = errors.New("record was not found")

	// ErrEntryNotFound is returned when an outbox entry does not exist or
	// is not in the state the operation expects.
	ErrEntryNotFound = errors.New("outbox entry was not found")

	// ErrFailureNotFound is returned when no sync failure exists for an id.
	ErrFailureNotFound = errors.New("sync failure was not found")

	// ErrSettingNotFound is returned when a settings key has no value.
	ErrSettingNotFound = errors.New("setting was not found")
)

// Low-level database operation errors. They are wrapped inside a
// [StorageError] together with the driver error that caused them.
var (
	// ErrBuildingSQLQuery is returned when constructing a parameterised SQL
	// query fails.
	ErrBuildingSQLQuery = errors.New("error building sql query")

	// ErrExecutingQuery is returned when executing a SELECT fails.
	ErrExecutingQuery = errors.New("error executing sql query")

	// ErrBeginningTransaction is returned when the driver cannot start a
	// new transaction.
	ErrBeginningTransaction = errors.New("failed to begin transaction")

	// ErrCommitingTransaction is returned when committing an open transaction
	// fails. The transaction is considered rolled back at this point.
	ErrCommitingTransaction = errors.New("failed to commit transaction")

	// ErrExecutingStatement is returned when executing a DML statement fails.
	ErrExecutingStatement = errors.New("failed to execute statement")

	// ErrScanningRow is returned when scanning a result row fails.
	ErrScanningRow = errors.New("failed to scan row")
)

// StorageError reports a failed read or write of the local database.
// It is fatal to the operation that produced it.
type StorageError struct {
	// Op names the repository operation, e.g. "records.save".
	Op string

	// Retryable is true when the driver reported a transient condition
	// such as a busy or locked database.
	Retryable bool

	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error (%s): %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
