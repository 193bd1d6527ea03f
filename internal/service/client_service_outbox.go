// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/MKhiriev/offsync/internal/logger"
	"github.com/MKhiriev/offsync/internal/store"
	"github.com/MKhiriev/offsync/internal/utils"
	"github.com/MKhiriev/offsync/models"
)

type idGenerator interface {
	Generate() string
}

type outboxService struct {
	storages   *store.ClientStorages
	keys       *utils.KeyedMutex
	ids        idGenerator
	events     *EventBus
	apiPrefix  string
	maxRetries int

	mu       sync.RWMutex
	onCommit func()

	logger *logger.Logger
}

func newOutboxService(storages *store.ClientStorages, keys *utils.KeyedMutex, events *EventBus, apiPrefix string, maxRetries int, log *logger.Logger) *outboxService {
	if maxRetries <= 0 {
		maxRetries = models.DefaultMaxRetries
	}

	return &outboxService{
		storages:   storages,
		keys:       keys,
		ids:        utils.NewULIDGenerator(),
		events:     events,
		apiPrefix:  "/" + strings.Trim(apiPrefix, "/"),
		maxRetries: maxRetries,
		logger:     log,
	}
}

// setOnCommit installs the hook run after an entry is durably enqueued.
func (o *outboxService) setOnCommit(fn func()) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.onCommit = fn
}

func (o *outboxService) committed() {
	o.mu.RLock()
	fn := o.onCommit
	o.mu.RUnlock()

	if fn != nil {
		fn()
	}
}

// newEntry builds the outbox entry replaying op for the record.
func (o *outboxService) newEntry(collection, recordID string, op models.Operation, body json.RawMessage) models.OutboxEntry {
	entry := models.OutboxEntry{
		ID:         o.ids.Generate(),
		Collection: collection,
		RecordID:   recordID,
		Operation:  op,
		Method:     op.Method(),
		Target:     o.target(collection, recordID, op),
		EnqueuedAt: time.Now().UTC(),
		MaxRetries: o.maxRetries,
		Status:     models.OutboxStatusPending,
	}
	if op != models.OperationDelete && len(body) > 0 {
		entry.Body = append(json.RawMessage(nil), body...)
	}

	return entry
}

// target returns {prefix}/{collection} for creates and
// {prefix}/{collection}/{id} otherwise.
func (o *outboxService) target(collection, recordID string, op models.Operation) string {
	prefix := strings.TrimRight(o.apiPrefix, "/")
	base := prefix + "/" + url.PathEscape(collection)
	if op == models.OperationCreate {
		return base
	}
	return base + "/" + url.PathEscape(recordID)
}

// insert stores entry through repo, which may be bound to a transaction.
func (o *outboxService) insert(ctx context.Context, repo store.OutboxRepository, entry *models.OutboxEntry) error {
	entry.RetryCount = 0
	entry.Status = models.OutboxStatusPending
	if entry.MaxRetries <= 0 {
		entry.MaxRetries = o.maxRetries
	}
	if entry.ID == "" {
		entry.ID = o.ids.Generate()
	}
	if entry.EnqueuedAt.IsZero() {
		entry.EnqueuedAt = time.Now().UTC()
	}
	if entry.Method == "" {
		entry.Method = entry.Operation.Method()
	}
	if entry.Target == "" {
		entry.Target = o.target(entry.Collection, entry.RecordID, entry.Operation)
	}

	if err := repo.InsertEntry(ctx, entry); err != nil {
		return err
	}

	logger.FromContext(ctx).Debug().
		Str("entry_id", entry.ID).
		Str("record", entry.RecordKey()).
		Str("operation", entry.Operation.String()).
		Msg("outbox entry enqueued")

	return nil
}

func (o *outboxService) Enqueue(ctx context.Context, entry *models.OutboxEntry) error {
	if !entry.Operation.Valid() {
		return ErrInvalidOperation
	}

	if err := o.insert(ctx, o.storages.OutboxRepository, entry); err != nil {
		return mapStoreError(err)
	}

	o.committed()
	return nil
}

func (o *outboxService) Drain(ctx context.Context) ([]models.OutboxEntry, error) {
	entries, err := o.storages.OutboxRepository.PendingEntries(ctx)
	return entries, mapStoreError(err)
}

func (o *outboxService) Entries(ctx context.Context) ([]models.OutboxEntry, error) {
	entries, err := o.storages.OutboxRepository.AllEntries(ctx)
	return entries, mapStoreError(err)
}

func (o *outboxService) Claim(ctx context.Context, entryID string) error {
	return mapStoreError(o.storages.OutboxRepository.ClaimEntry(ctx, entryID))
}

func (o *outboxService) Resolve(ctx context.Context, entryID string) error {
	return mapStoreError(o.storages.OutboxRepository.DeleteEntry(ctx, entryID))
}

// release returns a claimed entry to pending without spending a retry.
func (o *outboxService) release(ctx context.Context, entry models.OutboxEntry) error {
	return mapStoreError(o.storages.OutboxRepository.RequeueEntry(ctx, entry.ID, entry.RetryCount, entry.LastError))
}

func (o *outboxService) Requeue(ctx context.Context, entryID string, cause error) (models.OutboxEntry, error) {
	log := logger.FromContext(ctx)

	entry, err := o.storages.OutboxRepository.GetEntry(ctx, entryID)
	if err != nil {
		return models.OutboxEntry{}, mapStoreError(err)
	}

	unlock := o.keys.Lock(entry.RecordKey())
	defer unlock()

	entry.RetryCount++
	entry.Status = models.OutboxStatusPending
	if cause != nil {
		entry.LastError = cause.Error()
	}

	if !entry.Exhausted() {
		if err = o.storages.OutboxRepository.RequeueEntry(ctx, entry.ID, entry.RetryCount, entry.LastError); err != nil {
			return entry, mapStoreError(err)
		}

		log.Warn().
			Str("entry_id", entry.ID).
			Str("record", entry.RecordKey()).
			Int("retry_count", entry.RetryCount).
			Int("max_retries", entry.MaxRetries).
			Str("cause", entry.LastError).
			Msg("outbox entry requeued")

		e := entry
		o.events.Publish(models.SyncEvent{Type: models.EventEntryRequeued, Entry: &e, Error: entry.LastError})
		return entry, nil
	}

	failure := models.SyncFailure{
		ID:         entry.ID,
		Collection: entry.Collection,
		RecordID:   entry.RecordID,
		Operation:  entry.Operation,
		Method:     entry.Method,
		Target:     entry.Target,
		Body:       entry.Body,
		RetryCount: entry.RetryCount,
		LastError:  entry.LastError,
		FailedAt:   time.Now().UTC(),
	}

	err = o.storages.Transact(ctx, func(tx *store.ClientStorages) error {
		if err := tx.OutboxRepository.DeleteEntry(ctx, entry.ID); err != nil && !errors.Is(err, store.ErrEntryNotFound) {
			return err
		}
		if err := tx.FailureRepository.InsertFailure(ctx, failure); err != nil {
			return err
		}
		return tx.RecordRepository.MarkFailed(ctx, entry.Collection, entry.RecordID, entry.LastError)
	})
	if err != nil {
		return entry, mapStoreError(err)
	}

	log.Error().
		Str("entry_id", entry.ID).
		Str("record", entry.RecordKey()).
		Int("retry_count", entry.RetryCount).
		Str("cause", entry.LastError).
		Msg("outbox entry exhausted its retries")

	e := entry
	o.events.Publish(models.SyncEvent{Type: models.EventEntryFailed, Entry: &e, Failure: &failure, Error: entry.LastError})

	return entry, fmt.Errorf("%w: %s %s: %s", ErrSyncPermanentFailure, entry.Method, entry.Target, entry.LastError)
}

func (o *outboxService) Pending(ctx context.Context) (int, error) {
	count, err := o.storages.OutboxRepository.CountEntries(ctx)
	return count, mapStoreError(err)
}

func (o *outboxService) RecoverInFlight(ctx context.Context) (int64, error) {
	reset, err := o.storages.OutboxRepository.ResetInFlight(ctx)
	if err != nil {
		return 0, mapStoreError(err)
	}

	if reset > 0 {
		logger.FromContext(ctx).Info().Int64("entries", reset).Msg("recovered in-flight outbox entries")
	}

	return reset, nil
}
