// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"fmt"
	"strings"
)

// validate checks the merged [StructuredConfig] for values no source can
// legally produce.
func (cfg *StructuredConfig) validate() error {
	if cfg.Workers.MaxRetries < 0 || cfg.Workers.ReplayConcurrency < 0 {
		return fmt.Errorf("%w: negative worker limits", ErrInvalidWorkerConfigs)
	}

	return nil
}

func (cfg *ClientConfig) validate() error {
	if cfg.Storage.DB.DSN == "" {
		return ErrInvalidStorageConfigs
	}

	if cfg.Adapter.HTTPAddress == "" || cfg.Adapter.RequestTimeout <= 0 {
		return ErrInvalidAdapterConfigs
	}
	if !strings.HasPrefix(cfg.Adapter.APIPrefix, "/") {
		return fmt.Errorf("%w: api prefix must start with '/'", ErrInvalidAdapterConfigs)
	}

	if cfg.Workers.SyncInterval <= 0 || cfg.Workers.MaxRetries <= 0 || cfg.Workers.ReplayConcurrency <= 0 {
		return ErrInvalidWorkerConfigs
	}

	if cfg.Workers.Debounce < 0 || cfg.Workers.ProbeInterval < 0 {
		return ErrInvalidWorkerConfigs
	}

	return nil
}
