// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	sq "github.com/Masterminds/squirrel"

	"github.com/MKhiriev/offsync/models"
)

const (
	tableRecords = "records"

	upsertRecord = `
		INSERT INTO records (
			collection,
			id,
			payload,
			last_modified,
			synced,
			pending_operation,
			server_known,
			sync_failed,
			sync_error
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (collection, id) DO UPDATE SET
			payload           = excluded.payload,
			last_modified     = excluded.last_modified,
			synced            = excluded.synced,
			pending_operation = excluded.pending_operation,
			server_known      = excluded.server_known,
			sync_failed       = excluded.sync_failed,
			sync_error        = excluded.sync_error;`

	getRecord = `
		SELECT
			collection,
			id,
			payload,
			last_modified,
			synced,
			pending_operation,
			server_known,
			sync_failed,
			sync_error
		FROM records
		WHERE collection = ? AND id = ?;`

	deleteRecord = `DELETE FROM records WHERE collection = ? AND id = ?;`

	markRecordSynced = `
		UPDATE records SET
			synced            = 1,
			pending_operation = '',
			server_known      = 1,
			sync_failed       = 0,
			sync_error        = ''
		WHERE collection = ? AND id = ?;`

	markRecordServerKnown = `UPDATE records SET server_known = 1 WHERE collection = ? AND id = ?;`

	clearRecordServerKnown = `UPDATE records SET server_known = 0 WHERE collection = ? AND id = ?;`

	markRecordFailed = `
		UPDATE records SET
			synced      = 0,
			sync_failed = 1,
			sync_error  = ?
		WHERE collection = ? AND id = ?;`

	clearRecordFailed = `UPDATE records SET sync_failed = 0, sync_error = '' WHERE collection = ? AND id = ?;`

	insertOutboxEntry = `
		INSERT INTO outbox (
			id,
			collection,
			record_id,
			operation,
			method,
			target,
			body,
			enqueued_at,
			retry_count,
			max_retries,
			status,
			last_error
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);`

	selectOutboxEntries = `
		SELECT
			seq,
			id,
			collection,
			record_id,
			operation,
			method,
			target,
			body,
			enqueued_at,
			retry_count,
			max_retries,
			status,
			last_error
		FROM outbox`

	getPendingOutboxEntries = selectOutboxEntries + `
		WHERE status = 'pending'
		ORDER BY seq;`

	getAllOutboxEntries = selectOutboxEntries + `
		ORDER BY seq;`

	getOutboxEntry = selectOutboxEntries + `
		WHERE id = ?;`

	getRecordOutboxEntries = selectOutboxEntries + `
		WHERE collection = ? AND record_id = ?
		ORDER BY seq;`

	claimOutboxEntry = `UPDATE outbox SET status = 'sending' WHERE id = ? AND status = 'pending';`

	requeueOutboxEntry = `
		UPDATE outbox SET
			retry_count = ?,
			last_error  = ?,
			status      = 'pending'
		WHERE id = ?;`

	deleteOutboxEntry = `DELETE FROM outbox WHERE id = ?;`

	deleteRecordOutboxEntries = `DELETE FROM outbox WHERE collection = ? AND record_id = ?;`

	countOutboxEntries = `SELECT COUNT(*) FROM outbox;`

	resetInFlightOutboxEntries = `UPDATE outbox SET status = 'pending' WHERE status = 'sending';`

	insertSyncFailure = `
		INSERT INTO sync_failures (
			id,
			collection,
			record_id,
			operation,
			method,
			target,
			body,
			retry_count,
			last_error,
			failed_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			retry_count = excluded.retry_count,
			last_error  = excluded.last_error,
			failed_at   = excluded.failed_at;`

	selectSyncFailures = `
		SELECT
			id,
			collection,
			record_id,
			operation,
			method,
			target,
			body,
			retry_count,
			last_error,
			failed_at
		FROM sync_failures`

	getAllSyncFailures = selectSyncFailures + `
		ORDER BY failed_at DESC, id;`

	getSyncFailure = selectSyncFailures + `
		WHERE id = ?;`

	deleteSyncFailure = `DELETE FROM sync_failures WHERE id = ?;`

	countSyncFailures = `SELECT COUNT(*) FROM sync_failures;`

	upsertSetting = `
		INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT (key) DO UPDATE SET
			value      = excluded.value,
			updated_at = excluded.updated_at;`

	getSetting = `SELECT key, value, updated_at FROM settings WHERE key = ?;`

	getAllSettings = `SELECT key, value, updated_at FROM settings ORDER BY key;`

	deleteSetting = `DELETE FROM settings WHERE key = ?;`
)

var recordColumns = []string{
	"collection",
	"id",
	"payload",
	"last_modified",
	"synced",
	"pending_operation",
	"server_known",
	"sync_failed",
	"sync_error",
}

// buildListRecordsQuery builds the SELECT behind RecordRepository.ListRecords.
// filter.Field must already be validated; it is bound as a JSON path argument.
func buildListRecordsQuery(collection string, filter models.ListFilter) (string, []any, error) {
	query := sq.Select(recordColumns...).
		From(tableRecords).
		Where(sq.Eq{"collection": collection})

	if filter.Synced != nil {
		query = query.Where(sq.Eq{"synced": *filter.Synced})
	}

	if filter.Failed != nil {
		query = query.Where(sq.Eq{"sync_failed": *filter.Failed})
	}

	if filter.ExcludeTombstones {
		query = query.Where(sq.NotEq{"pending_operation": string(models.OperationDelete)})
	}

	if filter.Field != "" {
		query = query.Where(sq.Expr("CAST(json_extract(payload, ?) AS TEXT) = ?", "$."+filter.Field, filter.Value))
	}

	query = query.OrderBy("last_modified DESC", "id")

	if filter.Limit > 0 {
		query = query.Limit(uint64(filter.Limit))
	}

	return query.ToSql()
}
