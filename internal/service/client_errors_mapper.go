// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"errors"
	"fmt"

	"github.com/MKhiriev/offsync/internal/store"
)

// mapStoreError translates repository sentinels into service errors.
// Storage failures keep their *store.StorageError type.
func mapStoreError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, store.ErrRecordNotFound):
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	case errors.Is(err, store.ErrEntryNotFound):
		return fmt.Errorf("%w: %w", ErrEntryNotFound, err)
	case errors.Is(err, store.ErrFailureNotFound):
		return fmt.Errorf("%w: %w", ErrFailureNotFound, err)
	case errors.Is(err, store.ErrSettingNotFound):
		return fmt.Errorf("%w: %w", ErrSettingNotFound, err)
	}

	return err
}
