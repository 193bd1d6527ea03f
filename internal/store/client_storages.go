// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/MKhiriev/offsync/internal/config"
	"github.com/MKhiriev/offsync/internal/logger"
)

// ClientStorages groups all local repositories into a single value that can
// be passed around the service layer. Repositories obtained through
// [ClientStorages.Transact] share one SQL transaction.
type ClientStorages struct {
	RecordRepository   RecordRepository
	OutboxRepository   OutboxRepository
	FailureRepository  FailureRepository
	SettingsRepository SettingsRepository

	db   *DB
	inTx bool
}

// NewClientStorages initialises the local storage layer:
//  1. Opens an SQLite connection to cfg.DB.DSN, creating the database file
//     if it does not yet exist.
//  2. Runs pending schema migrations via [DB.Migrate].
//  3. Wires every repository to the connection.
func NewClientStorages(ctx context.Context, cfg config.ClientStorage, log *logger.Logger) (*ClientStorages, error) {
	log.Info().Msg("creating new storages...")

	db, err := NewConnectSQLite(ctx, cfg.DB, log)
	if err != nil {
		return nil, fmt.Errorf("sqlite connection error: %w", err)
	}

	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return NewClientStoragesFromDB(db), nil
}

// NewClientStoragesFromDB wires the repositories to an already opened and
// migrated connection.
func NewClientStoragesFromDB(db *DB) *ClientStorages {
	return &ClientStorages{
		RecordRepository:   NewRecordRepository(db),
		OutboxRepository:   NewOutboxRepository(db),
		FailureRepository:  NewFailureRepository(db),
		SettingsRepository: NewSettingsRepository(db),
		db:                 db,
	}
}

// Transact runs fn with repositories bound to one transaction. Changes are
// committed when fn returns nil. fn must only use the repositories it
// receives: the connection pool holds a single connection. Calling Transact
// on transaction-bound storages joins the open transaction.
func (s *ClientStorages) Transact(ctx context.Context, fn func(tx *ClientStorages) error) error {
	if s.inTx {
		return fn(s)
	}

	return s.db.transact(ctx, func(tx *sql.Tx) error {
		return fn(&ClientStorages{
			RecordRepository:   &recordRepository{repository: newTxRepository(s.db, tx)},
			OutboxRepository:   &outboxRepository{repository: newTxRepository(s.db, tx)},
			FailureRepository:  &failureRepository{repository: newTxRepository(s.db, tx)},
			SettingsRepository: &settingsRepository{repository: newTxRepository(s.db, tx)},
			db:                 s.db,
			inTx:               true,
		})
	})
}

func (s *ClientStorages) Close() error {
	return s.db.Close()
}
