// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"fmt"
	"time"
)

// ClientApp holds process-level settings of the engine.
type ClientApp struct {
	LogLevel string
	LogFile  string
}

// ClientAdapter holds network settings used by the replay adapter and the
// connectivity prober.
type ClientAdapter struct {
	// HTTPAddress is the remote API base URL.
	HTTPAddress string
	// APIPrefix is prepended to collection paths.
	APIPrefix string
	// HealthPath is probed to detect connectivity.
	HealthPath string
	// RequestTimeout is the timeout of every replayed request.
	RequestTimeout time.Duration
	// Token is attached as a bearer token when non-empty.
	Token string
}

// ClientDB contains local database connection settings.
type ClientDB struct {
	// DSN is the SQLite connection string.
	DSN string
}

// ClientStorage groups client storage backend settings.
type ClientStorage struct {
	DB ClientDB
}

// ClientWorkers contains sync and connectivity tuning.
type ClientWorkers struct {
	SyncInterval      time.Duration
	ProbeInterval     time.Duration
	Debounce          time.Duration
	MaxRetries        int
	ReplayConcurrency int
}

// ClientServer contains the status API listener settings.
type ClientServer struct {
	HTTPAddress string
}

// ClientConfig is the engine configuration assembled from [StructuredConfig].
type ClientConfig struct {
	App     ClientApp
	Adapter ClientAdapter
	Storage ClientStorage
	Workers ClientWorkers
	Server  ClientServer
}

// GetClientConfig builds and validates the engine config view from the merged
// structured configuration.
func GetClientConfig(flags *FlagValues) (*ClientConfig, error) {
	cfg, err := GetStructuredConfig(flags)
	if err != nil {
		return nil, fmt.Errorf("error get structured config: %w", err)
	}

	clientCfg := cfg.ClientConfig()
	return clientCfg, clientCfg.validate()
}

// ClientConfig maps the structured config onto the engine view.
func (cfg *StructuredConfig) ClientConfig() *ClientConfig {
	return &ClientConfig{
		App: ClientApp{
			LogLevel: cfg.App.LogLevel,
			LogFile:  cfg.App.LogFile,
		},
		Adapter: ClientAdapter{
			HTTPAddress:    cfg.Adapter.HTTPAddress,
			APIPrefix:      cfg.Adapter.APIPrefix,
			HealthPath:     cfg.Adapter.HealthPath,
			RequestTimeout: cfg.Adapter.RequestTimeout,
			Token:          cfg.Adapter.Token,
		},
		Storage: ClientStorage{
			DB: ClientDB{DSN: cfg.Storage.DB.DSN},
		},
		Workers: ClientWorkers{
			SyncInterval:      cfg.Workers.SyncInterval,
			ProbeInterval:     cfg.Workers.ProbeInterval,
			Debounce:          cfg.Workers.Debounce,
			MaxRetries:        cfg.Workers.MaxRetries,
			ReplayConcurrency: cfg.Workers.ReplayConcurrency,
		},
		Server: ClientServer{HTTPAddress: cfg.Server.HTTPAddress},
	}
}
