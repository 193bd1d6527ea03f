// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/MKhiriev/offsync/internal/service"
	"github.com/MKhiriev/offsync/models"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cliEnv struct {
	t      *testing.T
	dbPath string
	logDir string
	api    string
}

func newCLIEnv(t *testing.T, api string) *cliEnv {
	t.Helper()
	dir := t.TempDir()
	return &cliEnv{
		t:      t,
		dbPath: filepath.Join(dir, "offsync.db"),
		logDir: dir,
		api:    api,
	}
}

func (e *cliEnv) run(stdin string, args ...string) (string, error) {
	e.t.Helper()

	var out bytes.Buffer
	root := newRootCmd(models.NewAppBuildInfo("1.2.3", "2026-10-18", "abc123"))
	root.SetArgs(append(args,
		"--db", e.dbPath,
		"--api", e.api,
		"--log-file", filepath.Join(e.logDir, "offsync.log"),
	))
	root.SetIn(strings.NewReader(stdin))
	root.SetOut(&out)
	root.SetErr(io.Discard)

	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func decode[T any](t *testing.T, out string) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal([]byte(out), &v), out)
	return v
}

type remote struct {
	mu    sync.Mutex
	calls []string
}

func (r *remote) handler() http.Handler {
	router := chi.NewRouter()
	router.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	record := func(w http.ResponseWriter, req *http.Request) {
		r.mu.Lock()
		r.calls = append(r.calls, req.Method+" "+req.URL.Path)
		r.mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}
	router.Post("/api/{collection}", record)
	router.Put("/api/{collection}/{id}", record)
	router.Delete("/api/{collection}/{id}", record)
	return router
}

func (r *remote) recorded() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

// ── version ──

func TestVersionCmd(t *testing.T) {
	env := newCLIEnv(t, "http://127.0.0.1:1")

	out, err := env.run("", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "Build version: 1.2.3")
	assert.Contains(t, out, "Build commit: abc123")
}

// ── records ──

func TestRecordCommands_Offline(t *testing.T) {
	env := newCLIEnv(t, "http://127.0.0.1:1")

	out, err := env.run("", "save", "notes", `{"id":"n1","title":"first"}`)
	require.NoError(t, err)
	saved := decode[models.Record](t, out)
	assert.Equal(t, "n1", saved.ID)
	assert.False(t, saved.Synced)
	assert.Equal(t, models.OperationCreate, saved.PendingOperation)

	out, err = env.run(`{"title":"from stdin"}`, "save", "notes", "-")
	require.NoError(t, err)
	generated := decode[models.Record](t, out)
	assert.NotEmpty(t, generated.ID)

	out, err = env.run("", "get", "notes", "n1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"n1","title":"first"}`, string(decode[models.Record](t, out).Payload))

	out, err = env.run("", "list", "notes", "--field", "title", "--value", "first")
	require.NoError(t, err)
	listed := decode[[]models.Record](t, out)
	require.Len(t, listed, 1)
	assert.Equal(t, "n1", listed[0].ID)

	out, err = env.run("", "outbox")
	require.NoError(t, err)
	entries := decode[[]models.OutboxEntry](t, out)
	require.Len(t, entries, 2)
	assert.Equal(t, "/api/notes", entries[0].Target)

	// Never synced, so the delete drops the record and its queued create.
	_, err = env.run("", "delete", "notes", "n1")
	require.NoError(t, err)

	_, err = env.run("", "get", "notes", "n1")
	assert.ErrorIs(t, err, service.ErrNotFound)

	out, err = env.run("", "outbox")
	require.NoError(t, err)
	assert.Len(t, decode[[]models.OutboxEntry](t, out), 1)
}

func TestSaveCmd_InvalidInput(t *testing.T) {
	env := newCLIEnv(t, "http://127.0.0.1:1")

	_, err := env.run("", "save", "notes", `{"id":"n1"}`, "--op", "delete")
	assert.Error(t, err)

	_, err = env.run("", "save", "notes", `not json`)
	assert.Error(t, err)

	_, err = env.run("", "list", "notes", "--synced", "maybe")
	assert.Error(t, err)
}

// ── sync ──

func TestSyncCmd_ReplaysOutbox(t *testing.T) {
	fake := &remote{}
	server := httptest.NewServer(fake.handler())
	t.Cleanup(server.Close)

	env := newCLIEnv(t, server.URL)

	_, err := env.run("", "save", "notes", `{"id":"n1","title":"first"}`)
	require.NoError(t, err)
	_, err = env.run("", "save", "notes", `{"id":"n1","title":"second"}`)
	require.NoError(t, err)

	out, err := env.run("", "sync")
	require.NoError(t, err)
	report := decode[models.SyncReport](t, out)
	assert.Equal(t, 2, report.Resolved)
	assert.Equal(t, 0, report.Failed)
	assert.Equal(t, []string{"POST /api/notes", "PUT /api/notes/n1"}, fake.recorded())

	out, err = env.run("", "get", "notes", "n1")
	require.NoError(t, err)
	assert.True(t, decode[models.Record](t, out).Synced)

	out, err = env.run("", "status")
	require.NoError(t, err)
	status := decode[models.EngineStatus](t, out)
	assert.Zero(t, status.PendingEntries)
}

func TestSyncCmd_Offline(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	api := server.URL
	server.Close()

	env := newCLIEnv(t, api)

	_, err := env.run("", "save", "notes", `{"id":"n1"}`)
	require.NoError(t, err)

	_, err = env.run("", "sync")
	assert.ErrorIs(t, err, service.ErrOffline)

	out, err := env.run("", "outbox")
	require.NoError(t, err)
	entries := decode[[]models.OutboxEntry](t, out)
	require.Len(t, entries, 1)
	assert.Zero(t, entries[0].RetryCount)
}

// ── settings ──

func TestSettingsCmd(t *testing.T) {
	env := newCLIEnv(t, "http://127.0.0.1:1")

	_, err := env.run("", "settings", "set", "ui.theme", `{"dark":true}`)
	require.NoError(t, err)

	out, err := env.run("", "settings", "get", "ui.theme")
	require.NoError(t, err)
	assert.JSONEq(t, `{"dark":true}`, out)

	_, err = env.run("", "settings", "set", "ui.theme", `{dark}`)
	assert.Error(t, err)

	_, err = env.run("", "settings", "delete", "ui.theme")
	require.NoError(t, err)

	_, err = env.run("", "settings", "get", "ui.theme")
	assert.ErrorIs(t, err, service.ErrSettingNotFound)
}
