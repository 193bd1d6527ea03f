// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"encoding/json"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MKhiriev/offsync/internal/config"
	"github.com/MKhiriev/offsync/internal/logger"
	"github.com/MKhiriev/offsync/internal/mock"
	"github.com/MKhiriev/offsync/internal/store"
	"github.com/MKhiriev/offsync/models"
)

type testState struct {
	online atomic.Bool
}

func (s *testState) Online() bool { return s.online.Load() }

type testEnv struct {
	svc      *ClientServices
	remote   *mock.MockServerAdapter
	storages *store.ClientStorages
	state    *testState
}

func newTestEnv(t *testing.T, maxRetries int) *testEnv {
	t.Helper()

	ctrl := gomock.NewController(t)
	remote := mock.NewMockServerAdapter(ctrl)

	storages, err := store.NewClientStorages(context.Background(), config.ClientStorage{
		DB: config.ClientDB{DSN: filepath.Join(t.TempDir(), "offsync.db")},
	}, logger.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = storages.Close() })

	state := &testState{}

	cfg := config.ClientConfig{
		Adapter: config.ClientAdapter{APIPrefix: "/api", RequestTimeout: time.Second},
		Workers: config.ClientWorkers{MaxRetries: maxRetries, ReplayConcurrency: 2},
	}
	svc := NewClientServices(storages, remote, state, cfg, logger.Nop())
	t.Cleanup(svc.SyncCoordinator.Close)

	return &testEnv{svc: svc, remote: remote, storages: storages, state: state}
}

func (e *testEnv) save(t *testing.T, collection, payload string) models.Record {
	t.Helper()
	record, err := e.svc.RecordService.Save(context.Background(), collection, json.RawMessage(payload), models.OperationUnspecified)
	require.NoError(t, err)
	return record
}

func (e *testEnv) entries(t *testing.T) []models.OutboxEntry {
	t.Helper()
	entries, err := e.svc.OutboxService.Entries(context.Background())
	require.NoError(t, err)
	return entries
}

func (e *testEnv) record(t *testing.T, collection, id string) models.Record {
	t.Helper()
	record, err := e.svc.RecordService.Get(context.Background(), collection, id)
	require.NoError(t, err)
	return record
}

// eventRecorder collects published event types.
type eventRecorder struct {
	mu     sync.Mutex
	events []models.SyncEvent
}

func (r *eventRecorder) record(ev models.SyncEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *eventRecorder) types() []models.SyncEventType {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]models.SyncEventType, 0, len(r.events))
	for _, ev := range r.events {
		out = append(out, ev.Type)
	}
	return out
}
