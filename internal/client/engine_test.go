// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/offsync/internal/config"
	"github.com/MKhiriev/offsync/internal/logger"
	"github.com/MKhiriev/offsync/internal/service"
	"github.com/MKhiriev/offsync/models"
)

type remoteCall struct {
	method string
	path   string
	auth   string
	body   string
}

// fakeRemote is a chi router standing in for the case-management API.
type fakeRemote struct {
	mu     sync.Mutex
	calls  []remoteCall
	status int
}

func (f *fakeRemote) setStatus(status int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.status = status
}

func (f *fakeRemote) recorded() []remoteCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]remoteCall(nil), f.calls...)
}

func (f *fakeRemote) handler() http.Handler {
	r := chi.NewRouter()

	record := func(w http.ResponseWriter, req *http.Request) {
		body, _ := io.ReadAll(req.Body)

		f.mu.Lock()
		f.calls = append(f.calls, remoteCall{
			method: req.Method,
			path:   req.URL.EscapedPath(),
			auth:   req.Header.Get("Authorization"),
			body:   string(body),
		})
		status := f.status
		f.mu.Unlock()

		if status == 0 {
			status = http.StatusOK
		}
		w.WriteHeader(status)
	}

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Post("/api/{collection}", record)
	r.Put("/api/{collection}/{id}", record)
	r.Delete("/api/{collection}/{id}", record)

	return r
}

func newTestConfig(t *testing.T, dsn, remoteURL string, maxRetries int) config.ClientConfig {
	t.Helper()

	if dsn == "" {
		dsn = filepath.Join(t.TempDir(), "offsync.db")
	}

	return config.ClientConfig{
		Adapter: config.ClientAdapter{
			HTTPAddress:    remoteURL,
			APIPrefix:      "/api",
			HealthPath:     "/",
			RequestTimeout: 2 * time.Second,
		},
		Storage: config.ClientStorage{DB: config.ClientDB{DSN: dsn}},
		Workers: config.ClientWorkers{
			MaxRetries:        maxRetries,
			ReplayConcurrency: 2,
		},
	}
}

func newTestEngine(t *testing.T, cfg config.ClientConfig, opts ...Option) *Engine {
	t.Helper()

	engine := NewEngine(cfg, logger.Nop(), opts...)
	require.NoError(t, engine.Open(context.Background()))
	t.Cleanup(func() { _ = engine.Close() })

	return engine
}

func TestEngine_ClosedOperations(t *testing.T) {
	ctx := context.Background()
	engine := NewEngine(newTestConfig(t, "", "http://localhost:1", 3), logger.Nop())

	_, err := engine.Save(ctx, "cases", json.RawMessage(`{"id":"c1"}`), models.OperationUnspecified)
	assert.ErrorIs(t, err, ErrEngineClosed)
	_, err = engine.Sync(ctx)
	assert.ErrorIs(t, err, ErrEngineClosed)
	assert.ErrorIs(t, engine.SetOnline(true), ErrEngineClosed)
	assert.False(t, engine.Online())

	require.NoError(t, engine.Open(ctx))
	require.NoError(t, engine.Open(ctx))
	require.NoError(t, engine.Close())
	require.NoError(t, engine.Close())

	_, err = engine.Get(ctx, "cases", "c1")
	assert.ErrorIs(t, err, ErrEngineClosed)
	_, err = engine.Status(ctx)
	assert.ErrorIs(t, err, ErrEngineClosed)
	assert.ErrorIs(t, engine.Open(ctx), ErrEngineClosed)
}

func TestEngine_OpenInvalidRemote(t *testing.T) {
	engine := NewEngine(newTestConfig(t, "", "", 3), logger.Nop())
	assert.Error(t, engine.Open(context.Background()))
}

func TestEngine_OfflineWritesReplayWhenOnline(t *testing.T) {
	remote := &fakeRemote{}
	server := httptest.NewServer(remote.handler())
	defer server.Close()

	ctx := context.Background()
	engine := newTestEngine(t, newTestConfig(t, "", server.URL, 3))
	require.NoError(t, engine.SetToken("secret"))

	_, err := engine.Save(ctx, "cases", json.RawMessage(`{"id":"c1","title":"Flood"}`), models.OperationUnspecified)
	require.NoError(t, err)
	_, err = engine.Save(ctx, "cases", json.RawMessage(`{"id":"c1","title":"Flood, level 2"}`), models.OperationUnspecified)
	require.NoError(t, err)

	status, err := engine.Status(ctx)
	require.NoError(t, err)
	assert.False(t, status.Online)
	assert.Equal(t, 2, status.PendingEntries)
	assert.Nil(t, status.LastSyncAt)
	assert.Empty(t, remote.recorded())

	require.NoError(t, engine.SetOnline(true))
	require.NoError(t, engine.Wait())

	calls := remote.recorded()
	require.Len(t, calls, 2)
	assert.Equal(t, http.MethodPost, calls[0].method)
	assert.Equal(t, "/api/cases", calls[0].path)
	assert.JSONEq(t, `{"id":"c1","title":"Flood"}`, calls[0].body)
	assert.Equal(t, "Bearer secret", calls[0].auth)
	assert.Equal(t, http.MethodPut, calls[1].method)
	assert.Equal(t, "/api/cases/c1", calls[1].path)
	assert.JSONEq(t, `{"id":"c1","title":"Flood, level 2"}`, calls[1].body)

	record, err := engine.Get(ctx, "cases", "c1")
	require.NoError(t, err)
	assert.True(t, record.Synced)

	status, err = engine.Status(ctx)
	require.NoError(t, err)
	assert.True(t, status.Online)
	assert.Zero(t, status.PendingEntries)
	assert.NotNil(t, status.LastSyncAt)
}

func TestEngine_DeleteSyncedRecord(t *testing.T) {
	remote := &fakeRemote{}
	server := httptest.NewServer(remote.handler())
	defer server.Close()

	ctx := context.Background()
	engine := newTestEngine(t, newTestConfig(t, "", server.URL, 3), WithInitialOnline(true))

	_, err := engine.Save(ctx, "cases", json.RawMessage(`{"id":"c1"}`), models.OperationUnspecified)
	require.NoError(t, err)
	require.NoError(t, engine.Wait())

	require.NoError(t, engine.Delete(ctx, "cases", "c1"))
	require.NoError(t, engine.Wait())

	calls := remote.recorded()
	require.Len(t, calls, 2)
	assert.Equal(t, http.MethodDelete, calls[1].method)
	assert.Equal(t, "/api/cases/c1", calls[1].path)
	assert.Empty(t, calls[1].body)

	_, err = engine.Get(ctx, "cases", "c1")
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestEngine_PendingEntriesSurviveRestart(t *testing.T) {
	remote := &fakeRemote{}
	server := httptest.NewServer(remote.handler())
	defer server.Close()

	ctx := context.Background()
	cfg := newTestConfig(t, "", server.URL, 3)

	first := NewEngine(cfg, logger.Nop())
	require.NoError(t, first.Open(ctx))
	_, err := first.Save(ctx, "cases", json.RawMessage(`{"id":"c1"}`), models.OperationUnspecified)
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second := newTestEngine(t, cfg, WithInitialOnline(true))
	require.NoError(t, second.Wait())

	calls := remote.recorded()
	require.Len(t, calls, 1)
	assert.Equal(t, http.MethodPost, calls[0].method)

	record, err := second.Get(ctx, "cases", "c1")
	require.NoError(t, err)
	assert.True(t, record.Synced)
}

func TestEngine_FailureRetry(t *testing.T) {
	remote := &fakeRemote{status: http.StatusInternalServerError}
	server := httptest.NewServer(remote.handler())
	defer server.Close()

	ctx := context.Background()
	engine := newTestEngine(t, newTestConfig(t, "", server.URL, 1))

	var (
		mu    sync.Mutex
		types []models.SyncEventType
	)
	unsubscribe, err := engine.Subscribe(func(ev models.SyncEvent) {
		mu.Lock()
		defer mu.Unlock()
		types = append(types, ev.Type)
	})
	require.NoError(t, err)
	defer unsubscribe()

	_, err = engine.Save(ctx, "cases", json.RawMessage(`{"id":"c1"}`), models.OperationUnspecified)
	require.NoError(t, err)

	require.NoError(t, engine.SetOnline(true))
	require.NoError(t, engine.Wait())

	failures, err := engine.Failures(ctx)
	require.NoError(t, err)
	require.Len(t, failures, 1)
	assert.Contains(t, failures[0].LastError, "500")

	record, err := engine.Get(ctx, "cases", "c1")
	require.NoError(t, err)
	assert.True(t, record.SyncFailed)

	mu.Lock()
	assert.Contains(t, types, models.EventConnectivityChanged)
	assert.Contains(t, types, models.EventEntryFailed)
	mu.Unlock()

	remote.setStatus(http.StatusCreated)
	_, err = engine.RetryFailure(ctx, failures[0].ID)
	require.NoError(t, err)
	require.NoError(t, engine.Wait())

	record, err = engine.Get(ctx, "cases", "c1")
	require.NoError(t, err)
	assert.True(t, record.Synced)
	assert.False(t, record.SyncFailed)

	failures, err = engine.Failures(ctx)
	require.NoError(t, err)
	assert.Empty(t, failures)
}

func TestEngine_ProbeBringsEngineOnline(t *testing.T) {
	remote := &fakeRemote{}
	server := httptest.NewServer(remote.handler())
	defer server.Close()

	ctx := context.Background()
	cfg := newTestConfig(t, "", server.URL, 3)
	cfg.Workers.ProbeInterval = 10 * time.Millisecond

	engine := newTestEngine(t, cfg)
	_, err := engine.Save(ctx, "cases", json.RawMessage(`{"id":"c1"}`), models.OperationUnspecified)
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		record, err := engine.Get(ctx, "cases", "c1")
		return err == nil && record.Synced
	}, 2*time.Second, 10*time.Millisecond)
	assert.True(t, engine.Online())
}

func TestEngine_Settings(t *testing.T) {
	ctx := context.Background()
	engine := newTestEngine(t, newTestConfig(t, "", "http://localhost:1", 3))

	require.NoError(t, engine.SetSetting(ctx, "ui.theme", "dark"))

	var theme string
	require.NoError(t, engine.GetSetting(ctx, "ui.theme", &theme))
	assert.Equal(t, "dark", theme)

	settings, err := engine.Settings(ctx)
	require.NoError(t, err)
	assert.Len(t, settings, 1)

	require.NoError(t, engine.DeleteSetting(ctx, "ui.theme"))
	assert.ErrorIs(t, engine.GetSetting(ctx, "ui.theme", &theme), service.ErrSettingNotFound)
}

func TestEngine_Probe(t *testing.T) {
	remote := &fakeRemote{}
	server := httptest.NewServer(remote.handler())

	engine := newTestEngine(t, newTestConfig(t, "", server.URL, 3))

	online, err := engine.Probe(context.Background())
	require.NoError(t, err)
	assert.True(t, online)
	assert.True(t, engine.Online())

	server.Close()
	online, err = engine.Probe(context.Background())
	require.NoError(t, err)
	assert.False(t, online)
	assert.False(t, engine.Online())
}
