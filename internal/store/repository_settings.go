// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/MKhiriev/offsync/internal/logger"
	"github.com/MKhiriev/offsync/models"
)

type settingsRepository struct {
	repository
}

func NewSettingsRepository(db *DB) SettingsRepository {
	return &settingsRepository{repository: newRepository(db)}
}

func (s *settingsRepository) SetSetting(ctx context.Context, setting models.Setting) error {
	err := s.run(ctx, func(ctx context.Context) error {
		_, err := s.q.ExecContext(ctx, upsertSetting, setting.Key, string(setting.Value), toUnixNano(setting.UpdatedAt))
		return s.db.storageError("settings.set", ErrExecutingStatement, err)
	})
	if err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "settingsRepository.SetSetting").
			Str("key", setting.Key).
			Msg("failed to store setting")
		return err
	}

	return nil
}

func (s *settingsRepository) GetSetting(ctx context.Context, key string) (models.Setting, error) {
	var setting models.Setting

	err := s.run(ctx, func(ctx context.Context) error {
		var scanErr error
		setting, scanErr = scanSetting(s.q.QueryRowContext(ctx, getSetting, key))
		if errors.Is(scanErr, sql.ErrNoRows) {
			return ErrSettingNotFound
		}
		return s.db.storageError("settings.get", ErrScanningRow, scanErr)
	})
	if err != nil {
		if !errors.Is(err, ErrSettingNotFound) {
			logger.FromContext(ctx).Err(err).
				Str("func", "settingsRepository.GetSetting").
				Str("key", key).
				Msg("failed to read setting")
		}
		return models.Setting{}, err
	}

	return setting, nil
}

func (s *settingsRepository) ListSettings(ctx context.Context) ([]models.Setting, error) {
	var settings []models.Setting

	err := s.run(ctx, func(ctx context.Context) error {
		rows, err := s.q.QueryContext(ctx, getAllSettings)
		if err != nil {
			return s.db.storageError("settings.list", ErrExecutingQuery, err)
		}
		defer rows.Close()

		settings = settings[:0]
		for rows.Next() {
			setting, err := scanSetting(rows)
			if err != nil {
				return s.db.storageError("settings.list", ErrScanningRow, err)
			}
			settings = append(settings, setting)
		}

		return s.db.storageError("settings.list", ErrScanningRow, rows.Err())
	})
	if err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "settingsRepository.ListSettings").
			Msg("failed to list settings")
		return nil, err
	}

	return settings, nil
}

// DeleteSetting removes key. Deleting a missing key is not an error.
func (s *settingsRepository) DeleteSetting(ctx context.Context, key string) error {
	err := s.run(ctx, func(ctx context.Context) error {
		_, err := s.q.ExecContext(ctx, deleteSetting, key)
		return s.db.storageError("settings.delete", ErrExecutingStatement, err)
	})
	if err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "settingsRepository.DeleteSetting").
			Str("key", key).
			Msg("failed to delete setting")
		return err
	}

	return nil
}

func scanSetting(row rowScanner) (models.Setting, error) {
	var (
		setting   models.Setting
		value     string
		updatedAt int64
	)

	if err := row.Scan(&setting.Key, &value, &updatedAt); err != nil {
		return models.Setting{}, err
	}

	setting.Value = json.RawMessage(value)
	setting.UpdatedAt = fromUnixNano(updatedAt)

	return setting, nil
}
