// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"
)

// repository binds a repository to either the shared connection or an open
// transaction. Outside a transaction every call is retried on busy errors;
// inside one the whole transaction is retried by [DB.transact].
type repository struct {
	q    queryer
	db   *DB
	inTx bool
}

func newRepository(db *DB) repository {
	return repository{q: db.DB, db: db}
}

func newTxRepository(db *DB, tx *sql.Tx) repository {
	return repository{q: tx, db: db, inTx: true}
}

func (r repository) run(ctx context.Context, fn func(ctx context.Context) error) error {
	if r.inTx {
		return fn(ctx)
	}
	return r.db.withRetry(ctx, fn)
}

// rowScanner is implemented by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func toUnixNano(t time.Time) int64 {
	return t.UTC().UnixNano()
}

func fromUnixNano(n int64) time.Time {
	return time.Unix(0, n).UTC()
}

func nullableJSON(body json.RawMessage) sql.NullString {
	if len(body) == 0 {
		return sql.NullString{}
	}
	return sql.NullString{String: string(body), Valid: true}
}

func jsonFromNullable(s sql.NullString) json.RawMessage {
	if !s.Valid || s.String == "" {
		return nil
	}
	return json.RawMessage(s.String)
}
