// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/MKhiriev/offsync/internal/logger"
	"github.com/MKhiriev/offsync/internal/store"
	"github.com/MKhiriev/offsync/internal/utils"
	"github.com/MKhiriev/offsync/internal/validators"
	"github.com/MKhiriev/offsync/models"
)

type recordService struct {
	storages  *store.ClientStorages
	outbox    *outboxService
	keys      *utils.KeyedMutex
	ids       idGenerator
	validator validators.Validator
	logger    *logger.Logger
}

func newRecordService(storages *store.ClientStorages, outbox *outboxService, keys *utils.KeyedMutex, log *logger.Logger) *recordService {
	return &recordService{
		storages:  storages,
		outbox:    outbox,
		keys:      keys,
		ids:       utils.NewUUIDGenerator(),
		validator: validators.NewRecordValidator(),
		logger:    log,
	}
}

func (r *recordService) Save(ctx context.Context, collection string, payload json.RawMessage, op models.Operation) (models.Record, error) {
	log := logger.FromContext(ctx)

	if op != models.OperationUnspecified && op != models.OperationCreate && op != models.OperationUpdate {
		return models.Record{}, fmt.Errorf("%w: %s", ErrInvalidOperation, op)
	}

	record := models.Record{Collection: collection, Payload: payload}
	if err := r.validator.Validate(ctx, record, validators.FieldCollection, validators.FieldPayload); err != nil {
		return models.Record{}, err
	}

	id, payload, err := r.ensureID(payload)
	if err != nil {
		return models.Record{}, err
	}
	record.ID = id
	record.Payload = payload
	if err = r.validator.Validate(ctx, record, validators.FieldRecordID); err != nil {
		return models.Record{}, err
	}

	unlock := r.keys.Lock(models.RecordKey(collection, id))
	defer unlock()

	err = r.storages.Transact(ctx, func(tx *store.ClientStorages) error {
		existing, err := tx.RecordRepository.GetRecord(ctx, collection, id)
		found := err == nil
		if err != nil && !errors.Is(err, store.ErrRecordNotFound) {
			return err
		}

		if op == models.OperationUnspecified {
			entries, err := tx.OutboxRepository.RecordEntries(ctx, collection, id)
			if err != nil {
				return err
			}
			op = inferOperation(existing, found, entries)
		}

		record.LastModified = time.Now().UTC()
		record.Synced = false
		record.PendingOperation = op
		record.ServerKnown = found && existing.ServerKnown

		if err = tx.RecordRepository.SaveRecord(ctx, record); err != nil {
			return err
		}

		entry := r.outbox.newEntry(collection, id, op, record.Payload)
		return r.outbox.insert(ctx, tx.OutboxRepository, &entry)
	})
	if err != nil {
		log.Err(err).Str("func", "recordService.Save").
			Str("record", models.RecordKey(collection, id)).
			Msg("error saving record")
		return models.Record{}, mapStoreError(err)
	}

	r.outbox.committed()
	return record, nil
}

// inferOperation picks Create for records the server has never seen and that
// have no Create queued, and for tombstones being written again.
func inferOperation(existing models.Record, found bool, entries []models.OutboxEntry) models.Operation {
	if !found {
		return models.OperationCreate
	}
	if existing.IsTombstone() {
		return models.OperationCreate
	}
	if existing.ServerKnown {
		return models.OperationUpdate
	}
	for _, e := range entries {
		if e.Operation == models.OperationCreate {
			return models.OperationUpdate
		}
	}
	return models.OperationCreate
}

// ensureID returns the payload's "id" as a string, generating and writing
// back a new one when it is absent.
func (r *recordService) ensureID(payload json.RawMessage) (string, json.RawMessage, error) {
	value := gjson.GetBytes(payload, "id")

	switch value.Type {
	case gjson.Null:
		id := r.ids.Generate()
		updated, err := sjson.SetBytes(payload, "id", id)
		if err != nil {
			return "", nil, fmt.Errorf("%w: %w", validators.ErrInvalidPayload, err)
		}
		return id, updated, nil
	case gjson.String:
		return value.Str, payload, nil
	case gjson.Number:
		return value.Raw, payload, nil
	default:
		return "", nil, validators.ErrInvalidRecordID
	}
}

func (r *recordService) Get(ctx context.Context, collection, id string) (models.Record, error) {
	record, err := r.storages.RecordRepository.GetRecord(ctx, collection, id)
	if err != nil {
		return models.Record{}, mapStoreError(err)
	}
	return record, nil
}

func (r *recordService) List(ctx context.Context, collection string, filter models.ListFilter) ([]models.Record, error) {
	if err := r.validator.Validate(ctx, models.Record{Collection: collection}, validators.FieldCollection); err != nil {
		return nil, err
	}
	if err := r.validator.Validate(ctx, filter); err != nil {
		return nil, err
	}

	records, err := r.storages.RecordRepository.ListRecords(ctx, collection, filter)
	return records, mapStoreError(err)
}

func (r *recordService) Delete(ctx context.Context, collection, id string) error {
	log := logger.FromContext(ctx)

	unlock := r.keys.Lock(models.RecordKey(collection, id))
	defer unlock()

	enqueued := false
	err := r.storages.Transact(ctx, func(tx *store.ClientStorages) error {
		existing, err := tx.RecordRepository.GetRecord(ctx, collection, id)
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if existing.IsTombstone() {
			return nil
		}

		entries, err := tx.OutboxRepository.RecordEntries(ctx, collection, id)
		if err != nil {
			return err
		}

		if !existing.ServerKnown && !anySending(entries) {
			if _, err = tx.OutboxRepository.DeleteRecordEntries(ctx, collection, id); err != nil {
				return err
			}
			return tx.RecordRepository.DeleteRecord(ctx, collection, id)
		}

		existing.PendingOperation = models.OperationDelete
		existing.Synced = false
		existing.LastModified = time.Now().UTC()
		if err = tx.RecordRepository.SaveRecord(ctx, existing); err != nil {
			return err
		}

		entry := r.outbox.newEntry(collection, id, models.OperationDelete, nil)
		if err = r.outbox.insert(ctx, tx.OutboxRepository, &entry); err != nil {
			return err
		}
		enqueued = true
		return nil
	})
	if err != nil {
		log.Err(err).Str("func", "recordService.Delete").
			Str("record", models.RecordKey(collection, id)).
			Msg("error deleting record")
		return mapStoreError(err)
	}

	if enqueued {
		r.outbox.committed()
	}
	return nil
}

func anySending(entries []models.OutboxEntry) bool {
	for _, e := range entries {
		if e.Status == models.OutboxStatusSending {
			return true
		}
	}
	return false
}
