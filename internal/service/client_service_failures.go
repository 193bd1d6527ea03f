// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/MKhiriev/offsync/internal/logger"
	"github.com/MKhiriev/offsync/internal/store"
	"github.com/MKhiriev/offsync/internal/utils"
	"github.com/MKhiriev/offsync/models"
)

type failureService struct {
	storages *store.ClientStorages
	outbox   *outboxService
	keys     *utils.KeyedMutex
	logger   *logger.Logger
}

func newFailureService(storages *store.ClientStorages, outbox *outboxService, keys *utils.KeyedMutex, log *logger.Logger) *failureService {
	return &failureService{storages: storages, outbox: outbox, keys: keys, logger: log}
}

func (f *failureService) List(ctx context.Context) ([]models.SyncFailure, error) {
	failures, err := f.storages.FailureRepository.ListFailures(ctx)
	return failures, mapStoreError(err)
}

func (f *failureService) Count(ctx context.Context) (int, error) {
	count, err := f.storages.FailureRepository.CountFailures(ctx)
	return count, mapStoreError(err)
}

func (f *failureService) Retry(ctx context.Context, id string) (models.OutboxEntry, error) {
	failure, err := f.storages.FailureRepository.GetFailure(ctx, id)
	if err != nil {
		return models.OutboxEntry{}, mapStoreError(err)
	}

	unlock := f.keys.Lock(models.RecordKey(failure.Collection, failure.RecordID))
	defer unlock()

	var (
		entry    models.OutboxEntry
		obsolete bool
	)
	err = f.storages.Transact(ctx, func(tx *store.ClientStorages) error {
		failure, err := tx.FailureRepository.GetFailure(ctx, id)
		if err != nil {
			return err
		}

		record, err := tx.RecordRepository.GetRecord(ctx, failure.Collection, failure.RecordID)
		found := err == nil
		if err != nil && !errors.Is(err, store.ErrRecordNotFound) {
			return err
		}

		queued, err := tx.OutboxRepository.RecordEntries(ctx, failure.Collection, failure.RecordID)
		if err != nil {
			return err
		}

		if err = tx.FailureRepository.DeleteFailure(ctx, id); err != nil {
			return err
		}

		op, ok := retryOperation(failure, record, found, queued)
		if !ok {
			obsolete = true
		} else {
			var body json.RawMessage
			if op != models.OperationDelete {
				body = record.Payload
			}
			entry = f.outbox.newEntry(failure.Collection, failure.RecordID, op, body)

			// the retried entry goes ahead of everything queued since the failure
			if _, err = tx.OutboxRepository.DeleteRecordEntries(ctx, failure.Collection, failure.RecordID); err != nil {
				return err
			}
			if err = f.outbox.insert(ctx, tx.OutboxRepository, &entry); err != nil {
				return err
			}
			for i := range queued {
				if err = tx.OutboxRepository.InsertEntry(ctx, &queued[i]); err != nil {
					return err
				}
			}
		}

		if !found {
			return nil
		}
		return tx.RecordRepository.ClearFailed(ctx, failure.Collection, failure.RecordID)
	})
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "failureService.Retry").Str("failure_id", id).Msg("error retrying sync failure")
		return models.OutboxEntry{}, mapStoreError(err)
	}

	if obsolete {
		logger.FromContext(ctx).Info().
			Str("failure_id", id).
			Str("record", models.RecordKey(failure.Collection, failure.RecordID)).
			Msg("sync failure dropped, record no longer needs it")
		return models.OutboxEntry{}, ErrFailureObsolete
	}

	f.outbox.committed()
	return entry, nil
}

// retryOperation rebuilds the failed operation from the record's current
// state. It reports false when nothing is left to send.
func retryOperation(failure models.SyncFailure, record models.Record, found bool, queued []models.OutboxEntry) (models.Operation, bool) {
	if failure.Operation == models.OperationDelete {
		for _, e := range queued {
			if e.Operation == models.OperationDelete {
				return "", false
			}
		}
		return models.OperationDelete, true
	}

	// removed or tombstoned since: the pending delete supersedes the write
	if !found || record.IsTombstone() {
		return "", false
	}
	if record.ServerKnown {
		return models.OperationUpdate, true
	}
	return models.OperationCreate, true
}

func (f *failureService) Dismiss(ctx context.Context, id string) error {
	return mapStoreError(f.storages.FailureRepository.DeleteFailure(ctx, id))
}
