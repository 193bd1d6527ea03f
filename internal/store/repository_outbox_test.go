// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"encoding/json"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/offsync/models"
)

func testEntry(id, recordID string, op models.Operation, at time.Time) *models.OutboxEntry {
	entry := &models.OutboxEntry{
		ID:         id,
		Collection: "cases",
		RecordID:   recordID,
		Operation:  op,
		Method:     op.Method(),
		Target:     "/api/cases/" + recordID,
		EnqueuedAt: at,
		MaxRetries: models.DefaultMaxRetries,
	}
	if op != models.OperationDelete {
		entry.Body = json.RawMessage(`{"id":"` + recordID + `"}`)
	}
	return entry
}

func entryIDs(entries []models.OutboxEntry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.ID)
	}
	return out
}

func TestOutboxRepository_InsertAssignsSeq(t *testing.T) {
	s := newTestStorages(t)
	ctx := testContext()
	now := time.Now()

	first := testEntry("e1", "c1", models.OperationCreate, now)
	second := testEntry("e2", "c1", models.OperationUpdate, now)
	require.NoError(t, s.OutboxRepository.InsertEntry(ctx, first))
	require.NoError(t, s.OutboxRepository.InsertEntry(ctx, second))

	assert.Positive(t, first.Seq)
	assert.Greater(t, second.Seq, first.Seq)
	assert.Equal(t, models.OutboxStatusPending, first.Status)

	got, err := s.OutboxRepository.GetEntry(ctx, "e1")
	require.NoError(t, err)
	assert.Equal(t, first.Seq, got.Seq)
	assert.Equal(t, models.OperationCreate, got.Operation)
	assert.Equal(t, "POST", got.Method)
	assert.JSONEq(t, `{"id":"c1"}`, string(got.Body))
	assert.True(t, got.EnqueuedAt.Equal(now))
	assert.Equal(t, models.DefaultMaxRetries, got.MaxRetries)
}

func TestOutboxRepository_DeleteEntryHasNoBody(t *testing.T) {
	s := newTestStorages(t)
	ctx := testContext()

	require.NoError(t, s.OutboxRepository.InsertEntry(ctx, testEntry("e1", "c1", models.OperationDelete, time.Now())))

	got, err := s.OutboxRepository.GetEntry(ctx, "e1")
	require.NoError(t, err)
	assert.Nil(t, got.Body)
	assert.Equal(t, "DELETE", got.Method)
}

func TestOutboxRepository_PendingEntriesOrder(t *testing.T) {
	s := newTestStorages(t)
	ctx := testContext()
	base := time.Now()

	require.NoError(t, s.OutboxRepository.InsertEntry(ctx, testEntry("b", "c2", models.OperationCreate, base)))
	require.NoError(t, s.OutboxRepository.InsertEntry(ctx, testEntry("a", "c1", models.OperationCreate, base)))
	require.NoError(t, s.OutboxRepository.InsertEntry(ctx, testEntry("c", "c1", models.OperationUpdate, base.Add(time.Second))))

	entries, err := s.OutboxRepository.PendingEntries(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a", "c"}, entryIDs(entries))

	require.NoError(t, s.OutboxRepository.ClaimEntry(ctx, "a"))

	entries, err = s.OutboxRepository.PendingEntries(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "c"}, entryIDs(entries))

	all, err := s.OutboxRepository.AllEntries(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a", "c"}, entryIDs(all))
	assert.Equal(t, models.OutboxStatusSending, all[1].Status)

	perRecord, err := s.OutboxRepository.RecordEntries(ctx, "cases", "c1")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "c"}, entryIDs(perRecord))
}

func TestOutboxRepository_OrderIgnoresClockSteps(t *testing.T) {
	s := newTestStorages(t)
	ctx := testContext()
	now := time.Now()

	// the wall clock stepped back between the create and the update
	require.NoError(t, s.OutboxRepository.InsertEntry(ctx, testEntry("create", "c1", models.OperationCreate, now)))
	require.NoError(t, s.OutboxRepository.InsertEntry(ctx, testEntry("update", "c1", models.OperationUpdate, now.Add(-time.Second))))

	pending, err := s.OutboxRepository.PendingEntries(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"create", "update"}, entryIDs(pending))

	all, err := s.OutboxRepository.AllEntries(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"create", "update"}, entryIDs(all))

	perRecord, err := s.OutboxRepository.RecordEntries(ctx, "cases", "c1")
	require.NoError(t, err)
	assert.Equal(t, []string{"create", "update"}, entryIDs(perRecord))
}

func TestOutboxRepository_ClaimTwice(t *testing.T) {
	s := newTestStorages(t)
	ctx := testContext()

	require.NoError(t, s.OutboxRepository.InsertEntry(ctx, testEntry("e1", "c1", models.OperationCreate, time.Now())))
	require.NoError(t, s.OutboxRepository.ClaimEntry(ctx, "e1"))

	assert.ErrorIs(t, s.OutboxRepository.ClaimEntry(ctx, "e1"), ErrEntryNotFound)
	assert.ErrorIs(t, s.OutboxRepository.ClaimEntry(ctx, "missing"), ErrEntryNotFound)
}

func TestOutboxRepository_Requeue(t *testing.T) {
	s := newTestStorages(t)
	ctx := testContext()

	require.NoError(t, s.OutboxRepository.InsertEntry(ctx, testEntry("e1", "c1", models.OperationCreate, time.Now())))
	require.NoError(t, s.OutboxRepository.ClaimEntry(ctx, "e1"))
	require.NoError(t, s.OutboxRepository.RequeueEntry(ctx, "e1", 1, "status 503"))

	got, err := s.OutboxRepository.GetEntry(ctx, "e1")
	require.NoError(t, err)
	assert.Equal(t, 1, got.RetryCount)
	assert.Equal(t, "status 503", got.LastError)
	assert.Equal(t, models.OutboxStatusPending, got.Status)

	assert.ErrorIs(t, s.OutboxRepository.RequeueEntry(ctx, "missing", 1, "x"), ErrEntryNotFound)
}

func TestOutboxRepository_DeleteAndCount(t *testing.T) {
	s := newTestStorages(t)
	ctx := testContext()
	now := time.Now()

	require.NoError(t, s.OutboxRepository.InsertEntry(ctx, testEntry("e1", "c1", models.OperationCreate, now)))
	require.NoError(t, s.OutboxRepository.InsertEntry(ctx, testEntry("e2", "c1", models.OperationUpdate, now)))
	require.NoError(t, s.OutboxRepository.InsertEntry(ctx, testEntry("e3", "c2", models.OperationCreate, now)))

	count, err := s.OutboxRepository.CountEntries(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	require.NoError(t, s.OutboxRepository.DeleteEntry(ctx, "e3"))
	assert.ErrorIs(t, s.OutboxRepository.DeleteEntry(ctx, "e3"), ErrEntryNotFound)

	removed, err := s.OutboxRepository.DeleteRecordEntries(ctx, "cases", "c1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)

	count, err = s.OutboxRepository.CountEntries(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)

	_, err = s.OutboxRepository.GetEntry(ctx, "e1")
	assert.ErrorIs(t, err, ErrEntryNotFound)
}

func TestOutboxRepository_ResetInFlight(t *testing.T) {
	s := newTestStorages(t)
	ctx := testContext()

	require.NoError(t, s.OutboxRepository.InsertEntry(ctx, testEntry("e1", "c1", models.OperationCreate, time.Now())))
	require.NoError(t, s.OutboxRepository.InsertEntry(ctx, testEntry("e2", "c2", models.OperationCreate, time.Now())))
	require.NoError(t, s.OutboxRepository.ClaimEntry(ctx, "e1"))

	reset, err := s.OutboxRepository.ResetInFlight(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), reset)

	pending, err := s.OutboxRepository.PendingEntries(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"e1", "e2"}, entryIDs(pending))
}

func TestOutboxRepository_InsertEntry_StorageError(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewOutboxRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO outbox")).
		WillReturnResult(sqlmock.NewErrorResult(assert.AnError))

	err := repo.InsertEntry(testContext(), testEntry("e1", "c1", models.OperationCreate, time.Now()))

	var se *StorageError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "outbox.insert", se.Op)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOutboxRepository_PendingEntries_ScanError(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewOutboxRepository(db)

	rows := sqlmock.NewRows([]string{"seq"}).AddRow(1)
	mock.ExpectQuery(regexp.QuoteMeta("FROM outbox")).WillReturnRows(rows)

	_, err := repo.PendingEntries(testContext())
	assert.ErrorIs(t, err, ErrScanningRow)
	assert.NoError(t, mock.ExpectationsWereMet())
}
