// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"time"
)

// StructuredConfig is the top-level configuration container for offsync.
// It is populated by merging a JSON file, environment variables and
// command-line flags.
//
// Struct tags:
//   - envPrefix: prefix applied to all nested env tag lookups (caarlos0/env).
//   - env:       direct environment variable name for scalar fields.
type StructuredConfig struct {
	// App holds process-level settings such as logging.
	App App `envPrefix:"APP_"`

	// Storage holds the local durable store settings.
	Storage Storage `envPrefix:"STORAGE_"`

	// Adapter holds the remote API the outbox is replayed against.
	Adapter Adapter `envPrefix:"ADAPTER_"`

	// Workers holds sync, retry and connectivity tuning.
	Workers Workers `envPrefix:"WORKERS_"`

	// Server holds the local status API listener settings.
	Server Server `envPrefix:"SERVER_"`

	// JSONFilePath is the optional path to a JSON configuration file.
	// Populated via the CONFIG environment variable or the -c / --config flag.
	JSONFilePath string `env:"CONFIG"`
}

// App holds process-level configuration.
type App struct {
	// LogLevel is a zerolog level name ("debug", "info", ...).
	// Env: APP_LOG_LEVEL
	LogLevel string `env:"LOG_LEVEL"`

	// LogFile switches logging from stdout to a rotating file.
	// Env: APP_LOG_FILE
	LogFile string `env:"LOG_FILE"`
}

// Storage groups the configuration for the local store.
type Storage struct {
	DB DB `envPrefix:"DB_"`
}

// DB holds connection settings for the local SQLite database.
type DB struct {
	// DSN is the SQLite file path or DSN
	// (e.g. "offsync.db" or "file:offsync.db?_busy_timeout=5000").
	// Env: STORAGE_DB_DATABASE_URI
	DSN string `env:"DATABASE_URI"`
}

// Adapter describes the remote JSON-over-HTTP API.
type Adapter struct {
	// HTTPAddress is the base URL of the remote API
	// (e.g. "https://cases.example.com"). A missing scheme defaults to http.
	// Env: ADAPTER_ADDRESS
	HTTPAddress string `env:"ADDRESS"`

	// APIPrefix is prepended to every collection path. Default "/api".
	// Env: ADAPTER_API_PREFIX
	APIPrefix string `env:"API_PREFIX"`

	// HealthPath is probed by the connectivity prober. Default "/".
	// Env: ADAPTER_HEALTH_PATH
	HealthPath string `env:"HEALTH_PATH"`

	// RequestTimeout bounds every replayed request (e.g. "10s").
	// Env: ADAPTER_REQUEST_TIMEOUT
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`

	// Token is an optional bearer token attached to replayed requests.
	// Env: ADAPTER_TOKEN
	Token string `env:"TOKEN"`
}

// Workers holds background processing settings.
type Workers struct {
	// SyncInterval is the period of the safety-net drain. Default 1m.
	// Env: WORKERS_SYNC_INTERVAL
	SyncInterval time.Duration `env:"SYNC_INTERVAL"`

	// ProbeInterval is the connectivity probe period. Zero disables probing
	// and leaves connectivity to explicit SetOnline calls.
	// Env: WORKERS_PROBE_INTERVAL
	ProbeInterval time.Duration `env:"PROBE_INTERVAL"`

	// Debounce is how long a connectivity state must hold before it is
	// published. Default 2s.
	// Env: WORKERS_DEBOUNCE
	Debounce time.Duration `env:"DEBOUNCE"`

	// MaxRetries is the retry ceiling of every new outbox entry. Default 3.
	// Env: WORKERS_MAX_RETRIES
	MaxRetries int `env:"MAX_RETRIES"`

	// ReplayConcurrency bounds how many records are replayed in parallel.
	// Default 4.
	// Env: WORKERS_REPLAY_CONCURRENCY
	ReplayConcurrency int `env:"REPLAY_CONCURRENCY"`
}

// Server holds the local status API settings.
type Server struct {
	// HTTPAddress is the listen address of the status API ("host:port").
	// Env: SERVER_ADDRESS
	HTTPAddress string `env:"ADDRESS"`
}

// Defaults returns the values applied to every field left empty by all
// configuration sources.
func Defaults() StructuredConfig {
	return StructuredConfig{
		App: App{LogLevel: "info"},
		Storage: Storage{
			DB: DB{DSN: "offsync.db"},
		},
		Adapter: Adapter{
			APIPrefix:      "/api",
			HealthPath:     "/",
			RequestTimeout: 10 * time.Second,
		},
		Workers: Workers{
			SyncInterval:      time.Minute,
			ProbeInterval:     15 * time.Second,
			Debounce:          2 * time.Second,
			MaxRetries:        3,
			ReplayConcurrency: 4,
		},
		Server: Server{HTTPAddress: "localhost:8765"},
	}
}

// GetStructuredConfig loads, merges, and validates the configuration from all
// available sources. Priority (highest last): JSON file, environment
// variables, command-line flags, then defaults fill what is still empty.
//
// flags may be nil when no command line is involved.
func GetStructuredConfig(flags *FlagValues) (*StructuredConfig, error) {
	return newConfigBuilder().
		withEnv().
		withFlags(flags).
		withJSON().
		build()
}
