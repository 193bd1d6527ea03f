// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/offsync/internal/config"
	"github.com/MKhiriev/offsync/internal/logger"
	"github.com/MKhiriev/offsync/models"
)

func testContext() context.Context {
	l := zerolog.Nop()
	return l.WithContext(context.Background())
}

func newTestStorages(t *testing.T) *ClientStorages {
	t.Helper()

	cfg := config.ClientStorage{DB: config.ClientDB{DSN: filepath.Join(t.TempDir(), "offsync.db")}}
	s, err := NewClientStorages(testContext(), cfg, logger.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	return s
}

// newMockDB returns a DB backed by sqlmock with a fast busy-retry policy.
func newMockDB(t *testing.T) (*DB, sqlmock.Sqlmock) {
	t.Helper()

	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	db := newDB(conn, logger.Nop())
	db.busyRetries = 2
	db.busyRetryBase = time.Millisecond

	return db, mock
}

func testRecord(collection, id string, modified time.Time) models.Record {
	return models.Record{
		Collection:       collection,
		ID:               id,
		Payload:          json.RawMessage(`{"id":"` + id + `"}`),
		LastModified:     modified,
		PendingOperation: models.OperationCreate,
	}
}

func TestNewClientStorages_CreatesDatabaseFile(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "nested", "dir", "offsync.db")

	s, err := NewClientStorages(testContext(), config.ClientStorage{DB: config.ClientDB{DSN: dsn}}, logger.Nop())
	require.NoError(t, err)
	defer s.Close()

	assert.FileExists(t, dsn)
}

func TestClientStorages_Transact_Commit(t *testing.T) {
	s := newTestStorages(t)
	ctx := testContext()
	now := time.Now()

	err := s.Transact(ctx, func(tx *ClientStorages) error {
		if err := tx.RecordRepository.SaveRecord(ctx, testRecord("cases", "c1", now)); err != nil {
			return err
		}
		return tx.OutboxRepository.InsertEntry(ctx, &models.OutboxEntry{
			ID: "e1", Collection: "cases", RecordID: "c1",
			Operation: models.OperationCreate, Method: "POST", Target: "/api/cases",
			Body: json.RawMessage(`{"id":"c1"}`), EnqueuedAt: now, MaxRetries: 3,
		})
	})
	require.NoError(t, err)

	_, err = s.RecordRepository.GetRecord(ctx, "cases", "c1")
	require.NoError(t, err)

	count, err := s.OutboxRepository.CountEntries(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestClientStorages_Transact_RollbackOnError(t *testing.T) {
	s := newTestStorages(t)
	ctx := testContext()
	boom := errors.New("boom")

	err := s.Transact(ctx, func(tx *ClientStorages) error {
		require.NoError(t, tx.RecordRepository.SaveRecord(ctx, testRecord("cases", "c1", time.Now())))
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = s.RecordRepository.GetRecord(ctx, "cases", "c1")
	assert.ErrorIs(t, err, ErrRecordNotFound)
}

func TestClientStorages_Transact_Nested(t *testing.T) {
	s := newTestStorages(t)
	ctx := testContext()

	err := s.Transact(ctx, func(tx *ClientStorages) error {
		return tx.Transact(ctx, func(inner *ClientStorages) error {
			return inner.SettingsRepository.SetSetting(ctx, models.Setting{
				Key: "k", Value: json.RawMessage(`1`), UpdatedAt: time.Now(),
			})
		})
	})
	require.NoError(t, err)

	setting, err := s.SettingsRepository.GetSetting(ctx, "k")
	require.NoError(t, err)
	assert.JSONEq(t, `1`, string(setting.Value))
}

func TestDB_Transact_BeginError(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectBegin().WillReturnError(errors.New("no connection"))

	err := db.transact(testContext(), func(tx *sql.Tx) error { return nil })

	var se *StorageError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "tx.begin", se.Op)
	assert.ErrorIs(t, err, ErrBeginningTransaction)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDB_Transact_CommitError(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectCommit().WillReturnError(errors.New("commit failed"))

	err := db.transact(testContext(), func(tx *sql.Tx) error { return nil })

	assert.ErrorIs(t, err, ErrCommitingTransaction)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLiteDSN(t *testing.T) {
	tests := []struct {
		name string
		dsn  string
		want string
	}{
		{name: "memory", dsn: ":memory:", want: ":memory:"},
		{name: "plain file", dsn: "offsync.db", want: "offsync.db?_busy_timeout=5000&_journal_mode=WAL&_foreign_keys=on"},
		{name: "existing params", dsn: "offsync.db?_busy_timeout=100", want: "offsync.db?_busy_timeout=100&_journal_mode=WAL&_foreign_keys=on"},
		{
			name: "all params set",
			dsn:  "offsync.db?_busy_timeout=1&_journal_mode=DELETE&_foreign_keys=off",
			want: "offsync.db?_busy_timeout=1&_journal_mode=DELETE&_foreign_keys=off",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, sqliteDSN(tt.dsn))
		})
	}
}
