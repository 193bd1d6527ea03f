// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/MKhiriev/offsync/internal/adapter"
	"github.com/MKhiriev/offsync/internal/config"
	"github.com/MKhiriev/offsync/internal/connectivity"
	"github.com/MKhiriev/offsync/internal/logger"
	"github.com/MKhiriev/offsync/internal/service"
	"github.com/MKhiriev/offsync/internal/store"
	"github.com/MKhiriev/offsync/internal/workers"
	"github.com/MKhiriev/offsync/models"
)

// Engine is the offline-first persistence and sync engine. All methods are
// safe for concurrent use.
type Engine struct {
	cfg    config.ClientConfig
	opts   options
	logger *logger.Logger

	mu     sync.RWMutex
	open   bool
	closed bool
	ops    sync.WaitGroup

	storages    *store.ClientStorages
	adapter     adapter.ServerAdapter
	monitor     *connectivity.Monitor
	services    *service.ClientServices
	prober      *connectivity.Prober
	workers     *workers.Workers
	unsubscribe func()
	cancel      context.CancelFunc
}

func NewEngine(cfg config.ClientConfig, log *logger.Logger, opts ...Option) *Engine {
	e := &Engine{cfg: cfg, logger: log}
	for _, opt := range opts {
		opt(&e.opts)
	}
	return e
}

// Open connects the local store, applies migrations, returns entries left in
// flight by a previous process to the queue and starts the background
// workers. Opening an open engine is a no-op.
func (e *Engine) Open(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return ErrEngineClosed
	}
	if e.open {
		return nil
	}

	storages, err := store.NewClientStorages(ctx, e.cfg.Storage, e.logger)
	if err != nil {
		return fmt.Errorf("open local storage: %w", err)
	}

	serverAdapter := e.opts.serverAdapter
	if serverAdapter == nil {
		serverAdapter, err = adapter.NewHTTPServerAdapter(e.cfg.Adapter, e.logger)
		if err != nil {
			_ = storages.Close()
			return fmt.Errorf("create server adapter: %w", err)
		}
	}

	monitor := connectivity.NewMonitor(e.opts.online, e.cfg.Workers.Debounce, e.logger)
	services := service.NewClientServices(storages, serverAdapter, monitor, e.cfg, e.logger)

	if _, err = services.OutboxService.RecoverInFlight(ctx); err != nil {
		_ = storages.Close()
		return fmt.Errorf("recover in-flight entries: %w", err)
	}

	unsubscribe := monitor.Subscribe(services.SyncCoordinator.HandleConnectivity)

	prober := connectivity.NewProber(serverAdapter, monitor, e.cfg.Adapter.RequestTimeout, e.logger)
	background := workers.NewWorkers(
		workers.NewProbeWorker(prober, e.cfg.Workers.ProbeInterval, e.logger),
		workers.NewSyncWorker(services.SyncCoordinator, e.cfg.Workers.SyncInterval, e.logger),
	)

	workerCtx, cancel := context.WithCancel(e.logger.WithContext(context.Background()))
	background.Start(workerCtx)

	e.storages = storages
	e.adapter = serverAdapter
	e.monitor = monitor
	e.services = services
	e.prober = prober
	e.workers = background
	e.unsubscribe = unsubscribe
	e.cancel = cancel
	e.open = true

	e.logger.Info().Str("dsn", e.cfg.Storage.DB.DSN).Bool("online", monitor.Online()).Msg("engine opened")

	// replay whatever a previous session left behind
	services.SyncCoordinator.Notify()

	return nil
}

// Close stops the workers, waits for running operations and sync passes and
// closes the local store. Closing twice is a no-op.
func (e *Engine) Close() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	wasOpen := e.open
	e.open = false
	e.closed = true
	e.mu.Unlock()

	if !wasOpen {
		return nil
	}

	e.ops.Wait()

	e.workers.Stop()
	e.unsubscribe()
	e.monitor.Stop()
	e.services.SyncCoordinator.Close()
	e.cancel()

	if err := e.storages.Close(); err != nil {
		e.logger.Err(err).Str("func", "Engine.Close").Msg("error closing local storage")
		return fmt.Errorf("close local storage: %w", err)
	}

	e.logger.Info().Msg("engine closed")
	return nil
}

// acquire registers a running operation. The returned release must be
// called when it finishes.
func (e *Engine) acquire() (*service.ClientServices, func(), error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if !e.open {
		return nil, nil, ErrEngineClosed
	}

	e.ops.Add(1)
	return e.services, e.ops.Done, nil
}

// Save writes the record locally and queues its remote replay.
func (e *Engine) Save(ctx context.Context, collection string, payload json.RawMessage, op models.Operation) (models.Record, error) {
	svc, release, err := e.acquire()
	if err != nil {
		return models.Record{}, err
	}
	defer release()

	return svc.RecordService.Save(ctx, collection, payload, op)
}

func (e *Engine) Get(ctx context.Context, collection, id string) (models.Record, error) {
	svc, release, err := e.acquire()
	if err != nil {
		return models.Record{}, err
	}
	defer release()

	return svc.RecordService.Get(ctx, collection, id)
}

func (e *Engine) List(ctx context.Context, collection string, filter models.ListFilter) ([]models.Record, error) {
	svc, release, err := e.acquire()
	if err != nil {
		return nil, err
	}
	defer release()

	return svc.RecordService.List(ctx, collection, filter)
}

func (e *Engine) Delete(ctx context.Context, collection, id string) error {
	svc, release, err := e.acquire()
	if err != nil {
		return err
	}
	defer release()

	return svc.RecordService.Delete(ctx, collection, id)
}

// Sync runs one replay pass and waits for it.
func (e *Engine) Sync(ctx context.Context) (models.SyncReport, error) {
	svc, release, err := e.acquire()
	if err != nil {
		return models.SyncReport{}, err
	}
	defer release()

	return svc.SyncCoordinator.Sync(ctx)
}

// Trigger schedules a background pass.
func (e *Engine) Trigger() error {
	svc, release, err := e.acquire()
	if err != nil {
		return err
	}
	defer release()

	svc.SyncCoordinator.Trigger()
	return nil
}

// Wait blocks until no background pass is running.
func (e *Engine) Wait() error {
	svc, release, err := e.acquire()
	if err != nil {
		return err
	}
	defer release()

	svc.SyncCoordinator.Wait()
	return nil
}

func (e *Engine) Outbox(ctx context.Context) ([]models.OutboxEntry, error) {
	svc, release, err := e.acquire()
	if err != nil {
		return nil, err
	}
	defer release()

	return svc.OutboxService.Entries(ctx)
}

func (e *Engine) Failures(ctx context.Context) ([]models.SyncFailure, error) {
	svc, release, err := e.acquire()
	if err != nil {
		return nil, err
	}
	defer release()

	return svc.FailureService.List(ctx)
}

func (e *Engine) RetryFailure(ctx context.Context, id string) (models.OutboxEntry, error) {
	svc, release, err := e.acquire()
	if err != nil {
		return models.OutboxEntry{}, err
	}
	defer release()

	return svc.FailureService.Retry(ctx, id)
}

func (e *Engine) DismissFailure(ctx context.Context, id string) error {
	svc, release, err := e.acquire()
	if err != nil {
		return err
	}
	defer release()

	return svc.FailureService.Dismiss(ctx, id)
}

func (e *Engine) GetSetting(ctx context.Context, key string, dst any) error {
	svc, release, err := e.acquire()
	if err != nil {
		return err
	}
	defer release()

	return svc.SettingsService.Get(ctx, key, dst)
}

func (e *Engine) SetSetting(ctx context.Context, key string, value any) error {
	svc, release, err := e.acquire()
	if err != nil {
		return err
	}
	defer release()

	return svc.SettingsService.Set(ctx, key, value)
}

func (e *Engine) DeleteSetting(ctx context.Context, key string) error {
	svc, release, err := e.acquire()
	if err != nil {
		return err
	}
	defer release()

	return svc.SettingsService.Delete(ctx, key)
}

func (e *Engine) Settings(ctx context.Context) ([]models.Setting, error) {
	svc, release, err := e.acquire()
	if err != nil {
		return nil, err
	}
	defer release()

	return svc.SettingsService.All(ctx)
}

// Subscribe registers fn for sync events. fn runs on the publishing
// goroutine and must not block.
func (e *Engine) Subscribe(fn func(models.SyncEvent)) (unsubscribe func(), err error) {
	svc, release, err := e.acquire()
	if err != nil {
		return nil, err
	}
	defer release()

	return svc.Events.Subscribe(fn), nil
}

// SetOnline feeds a reachability report into the connectivity monitor.
func (e *Engine) SetOnline(online bool) error {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if !e.open {
		return ErrEngineClosed
	}
	e.monitor.SetOnline(online)
	return nil
}

// Probe pings the remote API once and feeds the result into the
// connectivity monitor.
func (e *Engine) Probe(ctx context.Context) (bool, error) {
	e.mu.RLock()
	if !e.open {
		e.mu.RUnlock()
		return false, ErrEngineClosed
	}
	prober := e.prober
	e.mu.RUnlock()

	return prober.Probe(ctx), nil
}

// Online reports the debounced connectivity state.
func (e *Engine) Online() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.open && e.monitor.Online()
}

// SetToken installs the bearer token attached to replayed requests.
func (e *Engine) SetToken(token string) error {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if !e.open {
		return ErrEngineClosed
	}
	e.adapter.SetToken(token)
	return nil
}

// Status summarises the engine state.
func (e *Engine) Status(ctx context.Context) (models.EngineStatus, error) {
	svc, release, err := e.acquire()
	if err != nil {
		return models.EngineStatus{}, err
	}
	defer release()

	status := models.EngineStatus{
		Online:  e.Online(),
		Syncing: svc.SyncCoordinator.Syncing(),
	}

	if status.PendingEntries, err = svc.OutboxService.Pending(ctx); err != nil {
		return status, err
	}
	if status.Failures, err = svc.FailureService.Count(ctx); err != nil {
		return status, err
	}

	var last time.Time
	err = svc.SettingsService.Get(ctx, models.SettingLastSyncAt, &last)
	switch {
	case err == nil:
		status.LastSyncAt = &last
	case !errors.Is(err, service.ErrSettingNotFound):
		return status, err
	}

	return status, nil
}
