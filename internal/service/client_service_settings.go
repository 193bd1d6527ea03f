// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/MKhiriev/offsync/internal/logger"
	"github.com/MKhiriev/offsync/internal/store"
	"github.com/MKhiriev/offsync/internal/validators"
	"github.com/MKhiriev/offsync/models"
)

type settingsService struct {
	repo      store.SettingsRepository
	validator validators.Validator
	logger    *logger.Logger
}

func NewSettingsService(storages *store.ClientStorages, log *logger.Logger) SettingsService {
	return &settingsService{
		repo:      storages.SettingsRepository,
		validator: validators.NewRecordValidator(),
		logger:    log,
	}
}

// Get decodes the value stored under key into dst.
func (s *settingsService) Get(ctx context.Context, key string, dst any) error {
	setting, err := s.repo.GetSetting(ctx, key)
	if err != nil {
		return mapStoreError(err)
	}

	if err = json.Unmarshal(setting.Value, dst); err != nil {
		return fmt.Errorf("decode setting %q: %w", key, err)
	}
	return nil
}

// Set stores the JSON encoding of value under key. A json.RawMessage is
// stored as is.
func (s *settingsService) Set(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("%w: %w", validators.ErrInvalidSettingJSON, err)
	}

	setting := models.Setting{Key: key, Value: raw, UpdatedAt: time.Now().UTC()}
	if err = s.validator.Validate(ctx, setting); err != nil {
		return err
	}

	if err = s.repo.SetSetting(ctx, setting); err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "settingsService.Set").Str("key", key).Msg("error storing setting")
		return mapStoreError(err)
	}
	return nil
}

func (s *settingsService) Delete(ctx context.Context, key string) error {
	return mapStoreError(s.repo.DeleteSetting(ctx, key))
}

func (s *settingsService) All(ctx context.Context) ([]models.Setting, error) {
	settings, err := s.repo.ListSettings(ctx)
	return settings, mapStoreError(err)
}
