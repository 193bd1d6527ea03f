// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"encoding/json"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/offsync/models"
)

func testFailure(id string, at time.Time) models.SyncFailure {
	return models.SyncFailure{
		ID:         id,
		Collection: "cases",
		RecordID:   "c1",
		Operation:  models.OperationUpdate,
		Method:     "PUT",
		Target:     "/api/cases/c1",
		Body:       json.RawMessage(`{"id":"c1"}`),
		RetryCount: 3,
		LastError:  "status 500",
		FailedAt:   at,
	}
}

func TestFailureRepository_CRUD(t *testing.T) {
	s := newTestStorages(t)
	ctx := testContext()
	now := time.Now()

	require.NoError(t, s.FailureRepository.InsertFailure(ctx, testFailure("f1", now)))
	require.NoError(t, s.FailureRepository.InsertFailure(ctx, testFailure("f2", now.Add(time.Second))))

	got, err := s.FailureRepository.GetFailure(ctx, "f1")
	require.NoError(t, err)
	assert.Equal(t, models.OperationUpdate, got.Operation)
	assert.Equal(t, 3, got.RetryCount)
	assert.JSONEq(t, `{"id":"c1"}`, string(got.Body))
	assert.True(t, got.FailedAt.Equal(now))

	list, err := s.FailureRepository.ListFailures(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "f2", list[0].ID, "newest first")

	count, err := s.FailureRepository.CountFailures(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	require.NoError(t, s.FailureRepository.DeleteFailure(ctx, "f1"))
	assert.ErrorIs(t, s.FailureRepository.DeleteFailure(ctx, "f1"), ErrFailureNotFound)

	_, err = s.FailureRepository.GetFailure(ctx, "f1")
	assert.ErrorIs(t, err, ErrFailureNotFound)
}

func TestFailureRepository_InsertTwiceUpdates(t *testing.T) {
	s := newTestStorages(t)
	ctx := testContext()

	require.NoError(t, s.FailureRepository.InsertFailure(ctx, testFailure("f1", time.Now())))

	again := testFailure("f1", time.Now())
	again.LastError = "status 502"
	require.NoError(t, s.FailureRepository.InsertFailure(ctx, again))

	got, err := s.FailureRepository.GetFailure(ctx, "f1")
	require.NoError(t, err)
	assert.Equal(t, "status 502", got.LastError)
}

func TestFailureRepository_ListFailures_QueryError(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewFailureRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM sync_failures")).WillReturnError(assert.AnError)

	_, err := repo.ListFailures(testContext())
	assert.ErrorIs(t, err, ErrExecutingQuery)
	assert.ErrorIs(t, err, assert.AnError)
	assert.NoError(t, mock.ExpectationsWereMet())
}
