// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/MKhiriev/offsync/internal/adapter"
	"github.com/MKhiriev/offsync/internal/logger"
	"github.com/MKhiriev/offsync/internal/store"
	"github.com/MKhiriev/offsync/internal/utils"
	"github.com/MKhiriev/offsync/models"
)

const defaultReplayConcurrency = 4

type syncCoordinator struct {
	storages *store.ClientStorages
	outbox   *outboxService
	settings SettingsService
	adapter  adapter.ServerAdapter
	state    ConnectivityState
	keys     *utils.KeyedMutex
	events   *EventBus

	concurrency    int
	requestTimeout time.Duration

	mu      sync.Mutex
	running bool
	rerun   bool
	closed  bool
	idle    chan struct{}

	// writes tracks setting updates made off the publisher's goroutine.
	writes sync.WaitGroup

	baseCtx context.Context
	cancel  context.CancelFunc

	logger *logger.Logger
}

func newSyncCoordinator(
	storages *store.ClientStorages,
	outbox *outboxService,
	settings SettingsService,
	serverAdapter adapter.ServerAdapter,
	state ConnectivityState,
	keys *utils.KeyedMutex,
	events *EventBus,
	concurrency int,
	requestTimeout time.Duration,
	log *logger.Logger,
) *syncCoordinator {
	if concurrency <= 0 {
		concurrency = defaultReplayConcurrency
	}

	ctx, cancel := context.WithCancel(log.WithContext(context.Background()))
	return &syncCoordinator{
		storages:       storages,
		outbox:         outbox,
		settings:       settings,
		adapter:        serverAdapter,
		state:          state,
		keys:           keys,
		events:         events,
		concurrency:    concurrency,
		requestTimeout: requestTimeout,
		baseCtx:        ctx,
		cancel:         cancel,
		logger:         log,
	}
}

func (c *syncCoordinator) Sync(ctx context.Context) (models.SyncReport, error) {
	if !c.state.Online() {
		return models.SyncReport{}, ErrOffline
	}

	c.mu.Lock()
	switch {
	case c.closed:
		c.mu.Unlock()
		return models.SyncReport{}, ErrCoordinatorClosed
	case c.running:
		c.mu.Unlock()
		return models.SyncReport{}, ErrSyncInProgress
	}
	c.begin()
	c.mu.Unlock()

	report, err := c.pass(ctx)

	if c.next() {
		go c.loop()
	}
	return report, err
}

func (c *syncCoordinator) Trigger() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	if c.running {
		c.rerun = true
		return
	}

	c.begin()
	go c.loop()
}

func (c *syncCoordinator) Notify() {
	if c.state.Online() {
		c.Trigger()
	}
}

func (c *syncCoordinator) HandleConnectivity(online bool) {
	c.logger.Info().Bool("online", online).Msg("connectivity changed")

	c.mu.Lock()
	if !c.closed {
		c.writes.Add(1)
		go c.storeConnectivityChange(time.Now().UTC())
	}
	c.mu.Unlock()

	c.events.Publish(models.SyncEvent{Type: models.EventConnectivityChanged, Online: online})

	if online {
		c.Trigger()
	}
}

func (c *syncCoordinator) storeConnectivityChange(at time.Time) {
	defer c.writes.Done()

	if err := c.settings.Set(context.WithoutCancel(c.baseCtx), models.SettingLastOnlineChange, at); err != nil {
		c.logger.Err(err).Str("func", "syncCoordinator.storeConnectivityChange").Msg("error storing connectivity change time")
	}
}

func (c *syncCoordinator) Syncing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

func (c *syncCoordinator) Wait() {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return
	}
	idle := c.idle
	c.mu.Unlock()

	<-idle
}

func (c *syncCoordinator) Close() {
	c.mu.Lock()
	c.closed = true
	c.rerun = false
	c.mu.Unlock()

	c.cancel()
	c.Wait()
	c.writes.Wait()
}

// begin must be called with mu held.
func (c *syncCoordinator) begin() {
	c.running = true
	c.rerun = false
	c.idle = make(chan struct{})
}

// next consumes a pending rerun request. It returns false, and marks the
// coordinator idle, when no further pass is owed.
func (c *syncCoordinator) next() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.rerun && !c.closed {
		c.rerun = false
		return true
	}

	c.running = false
	close(c.idle)
	return false
}

func (c *syncCoordinator) loop() {
	for {
		if c.state.Online() && c.baseCtx.Err() == nil {
			if _, err := c.pass(c.baseCtx); err != nil && !errors.Is(err, context.Canceled) {
				c.logger.Err(err).Str("func", "syncCoordinator.loop").Msg("sync pass failed")
			}
		}
		if !c.next() {
			return
		}
	}
}

// pass replays a snapshot of the outbox. Records are replayed in parallel;
// the entries of one record strictly in enqueue order.
func (c *syncCoordinator) pass(ctx context.Context) (models.SyncReport, error) {
	log := logger.FromContext(ctx)

	report := models.SyncReport{StartedAt: time.Now().UTC()}
	c.events.Publish(models.SyncEvent{Type: models.EventSyncStarted, At: report.StartedAt})

	entries, err := c.outbox.Drain(ctx)
	if err != nil {
		report.FinishedAt = time.Now().UTC()
		c.finish(ctx, report, err)
		return report, err
	}

	var (
		mu sync.Mutex
		g  errgroup.Group
	)
	g.SetLimit(c.concurrency)

	for _, group := range groupByRecord(entries) {
		g.Go(func() error {
			var local models.SyncReport
			err := c.replayGroup(ctx, group, &local)

			mu.Lock()
			report.Attempted += local.Attempted
			report.Resolved += local.Resolved
			report.Requeued += local.Requeued
			report.Failed += local.Failed
			report.Skipped += local.Skipped
			mu.Unlock()

			return err
		})
	}
	err = g.Wait()

	report.FinishedAt = time.Now().UTC()
	c.finish(ctx, report, err)

	log.Info().
		Int("attempted", report.Attempted).
		Int("resolved", report.Resolved).
		Int("requeued", report.Requeued).
		Int("failed", report.Failed).
		Int("skipped", report.Skipped).
		Dur("took", report.FinishedAt.Sub(report.StartedAt)).
		Msg("sync pass finished")

	return report, err
}

// finish persists the report and publishes sync.finished.
func (c *syncCoordinator) finish(ctx context.Context, report models.SyncReport, passErr error) {
	ctx = context.WithoutCancel(ctx)

	if err := c.settings.Set(ctx, models.SettingLastSyncReport, report); err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "syncCoordinator.finish").Msg("error storing sync report")
	}
	if passErr == nil {
		if err := c.settings.Set(ctx, models.SettingLastSyncAt, report.FinishedAt); err != nil {
			logger.FromContext(ctx).Err(err).Str("func", "syncCoordinator.finish").Msg("error storing last sync time")
		}
	}

	ev := models.SyncEvent{Type: models.EventSyncFinished, At: report.FinishedAt, Report: &report}
	if passErr != nil {
		ev.Error = passErr.Error()
	}
	c.events.Publish(ev)
}

// replayGroup replays the entries of one record until the first failure.
// Entries after a failure stay queued for the next pass.
func (c *syncCoordinator) replayGroup(ctx context.Context, group []models.OutboxEntry, report *models.SyncReport) error {
	log := logger.FromContext(ctx)

	for i, entry := range group {
		if ctx.Err() != nil {
			report.Skipped += len(group) - i
			return nil
		}

		if err := c.outbox.Claim(ctx, entry.ID); err != nil {
			if errors.Is(err, ErrEntryNotFound) {
				continue
			}
			return err
		}
		entry.Status = models.OutboxStatusSending

		replayErr := c.replay(ctx, entry)
		if replayErr == nil {
			report.Attempted++
			if err := c.resolve(ctx, entry); err != nil {
				return err
			}
			report.Resolved++
			continue
		}

		if ctx.Err() != nil {
			// interrupted: hand the entry back without spending a retry
			if err := c.outbox.release(context.WithoutCancel(ctx), entry); err != nil {
				log.Err(err).Str("func", "syncCoordinator.replayGroup").Str("entry_id", entry.ID).Msg("error releasing claimed entry")
			}
			report.Skipped += len(group) - i
			return nil
		}

		report.Attempted++
		_, err := c.outbox.Requeue(ctx, entry.ID, replayErr)
		switch {
		case errors.Is(err, ErrSyncPermanentFailure):
			report.Failed++
		case err != nil:
			return err
		default:
			report.Requeued++
		}

		report.Skipped += len(group) - i - 1
		return nil
	}

	return nil
}

func (c *syncCoordinator) replay(ctx context.Context, entry models.OutboxEntry) error {
	if c.requestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.requestTimeout)
		defer cancel()
	}

	return c.adapter.Replay(ctx, entry)
}

// resolve drops a replayed entry and updates the record's sync flags.
func (c *syncCoordinator) resolve(ctx context.Context, entry models.OutboxEntry) error {
	unlock := c.keys.Lock(entry.RecordKey())
	defer unlock()

	err := c.storages.Transact(ctx, func(tx *store.ClientStorages) error {
		if err := tx.OutboxRepository.DeleteEntry(ctx, entry.ID); err != nil && !errors.Is(err, store.ErrEntryNotFound) {
			return err
		}

		remaining, err := tx.OutboxRepository.RecordEntries(ctx, entry.Collection, entry.RecordID)
		if err != nil {
			return err
		}

		if entry.Operation == models.OperationDelete {
			if len(remaining) > 0 {
				// the record was re-created locally; the server no longer has it
				return tx.RecordRepository.ClearServerKnown(ctx, entry.Collection, entry.RecordID)
			}
			return tx.RecordRepository.DeleteRecord(ctx, entry.Collection, entry.RecordID)
		}

		record, err := tx.RecordRepository.GetRecord(ctx, entry.Collection, entry.RecordID)
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if len(remaining) > 0 || record.IsTombstone() {
			return tx.RecordRepository.MarkServerKnown(ctx, entry.Collection, entry.RecordID)
		}
		return tx.RecordRepository.MarkSynced(ctx, entry.Collection, entry.RecordID)
	})
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "syncCoordinator.resolve").Str("entry_id", entry.ID).Msg("error resolving outbox entry")
		return mapStoreError(err)
	}

	e := entry
	c.events.Publish(models.SyncEvent{Type: models.EventEntryResolved, Entry: &e})
	return nil
}

// groupByRecord splits entries per record, keeping first-seen record order
// and the enqueue order inside each group.
func groupByRecord(entries []models.OutboxEntry) [][]models.OutboxEntry {
	index := make(map[string]int)
	var groups [][]models.OutboxEntry

	for _, e := range entries {
		key := e.RecordKey()
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, nil)
		}
		groups[i] = append(groups[i], e)
	}

	return groups
}
