// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import "errors"

var (
	// ErrNotFound is returned by Get for a missing record. It is a normal
	// result, not a failure.
	ErrNotFound = errors.New("not found")

	ErrEntryNotFound   = errors.New("outbox entry not found")
	ErrFailureNotFound = errors.New("sync failure not found")
	ErrSettingNotFound = errors.New("setting not found")

	// ErrInvalidOperation is returned when Save is asked for a Delete or an
	// unknown operation kind.
	ErrInvalidOperation = errors.New("invalid operation for save")
)

var (
	// ErrSyncInProgress is returned by an explicit Sync while another pass runs.
	ErrSyncInProgress = errors.New("sync already in progress")

	// ErrOffline is returned by an explicit Sync while the remote API is
	// unreachable. No retries are consumed.
	ErrOffline = errors.New("remote api is offline")

	// ErrSyncPermanentFailure is reported when an outbox entry exhausted its
	// retry budget and was moved to the failures table.
	ErrSyncPermanentFailure = errors.New("sync permanently failed")

	// ErrFailureObsolete is returned by a failure Retry when the record was
	// removed or is pending a delete. The failure is dropped.
	ErrFailureObsolete = errors.New("sync failure no longer applies")

	// ErrCoordinatorClosed is returned by Sync after Close.
	ErrCoordinatorClosed = errors.New("sync coordinator closed")
)
