// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"github.com/MKhiriev/offsync/internal/adapter"
	"github.com/MKhiriev/offsync/internal/config"
	"github.com/MKhiriev/offsync/internal/logger"
	"github.com/MKhiriev/offsync/internal/store"
	"github.com/MKhiriev/offsync/internal/utils"
)

// ClientServices aggregates the engine's services. They share one per-record
// lock so local writes and sync resolution of a record never interleave.
type ClientServices struct {
	RecordService   RecordService
	OutboxService   OutboxService
	SyncCoordinator SyncCoordinator
	SettingsService SettingsService
	FailureService  FailureService

	Events *EventBus
}

func NewClientServices(
	storages *store.ClientStorages,
	serverAdapter adapter.ServerAdapter,
	state ConnectivityState,
	cfg config.ClientConfig,
	log *logger.Logger,
) *ClientServices {
	keys := utils.NewKeyedMutex()
	events := NewEventBus()

	outbox := newOutboxService(storages, keys, events, cfg.Adapter.APIPrefix, cfg.Workers.MaxRetries, log)
	settings := NewSettingsService(storages, log)
	coordinator := newSyncCoordinator(
		storages,
		outbox,
		settings,
		serverAdapter,
		state,
		keys,
		events,
		cfg.Workers.ReplayConcurrency,
		cfg.Adapter.RequestTimeout,
		log,
	)
	outbox.setOnCommit(coordinator.Notify)

	return &ClientServices{
		RecordService:   newRecordService(storages, outbox, keys, log),
		OutboxService:   outbox,
		SyncCoordinator: coordinator,
		SettingsService: settings,
		FailureService:  newFailureService(storages, outbox, keys, log),
		Events:          events,
	}
}
