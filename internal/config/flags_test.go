// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNetAddress_String(t *testing.T) {
	tests := []struct {
		name     string
		addr     NetAddress
		expected string
	}{
		{name: "empty address", addr: NetAddress{}, expected: ""},
		{name: "localhost with port", addr: NetAddress{Host: "localhost", Port: 8080}, expected: "localhost:8080"},
		{name: "IP address with port", addr: NetAddress{Host: "127.0.0.1", Port: 9090}, expected: "127.0.0.1:9090"},
		{name: "only port no host", addr: NetAddress{Port: 8080}, expected: ":8080"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.addr.String())
		})
	}
}

func TestNetAddress_Set(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    NetAddress
		wantErr bool
	}{
		{name: "localhost", input: "localhost:8765", want: NetAddress{Host: "localhost", Port: 8765}},
		{name: "ip", input: "127.0.0.1:80", want: NetAddress{Host: "127.0.0.1", Port: 80}},
		{name: "any interface", input: ":8080", want: NetAddress{Port: 8080}},
		{name: "no port", input: "localhost", wantErr: true},
		{name: "bad port", input: "localhost:http", wantErr: true},
		{name: "zero port", input: "localhost:0", wantErr: true},
		{name: "port out of range", input: "localhost:70000", wantErr: true},
		{name: "bad host", input: "not-an-ip:80", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var a NetAddress
			err := a.Set(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, a)
		})
	}
}

func TestBindFlags_ParsesAllFlags(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	values := BindFlags(fs)

	err := fs.Parse([]string{
		"-c", "cfg.json",
		"-d", "flags.db",
		"-a", "http://localhost:8080",
		"--api-prefix", "/rest",
		"--health-path", "/ping",
		"--request-timeout", "3s",
		"--token", "tkn",
		"--sync-interval", "2m",
		"--probe-interval", "20s",
		"--debounce", "500ms",
		"--max-retries", "7",
		"--replay-concurrency", "2",
		"--listen", "127.0.0.1:7000",
		"--log-level", "debug",
		"--log-file", "engine.log",
	})
	require.NoError(t, err)

	cfg := values.config()
	assert.Equal(t, "cfg.json", cfg.JSONFilePath)
	assert.Equal(t, "flags.db", cfg.Storage.DB.DSN)
	assert.Equal(t, "http://localhost:8080", cfg.Adapter.HTTPAddress)
	assert.Equal(t, "/rest", cfg.Adapter.APIPrefix)
	assert.Equal(t, "/ping", cfg.Adapter.HealthPath)
	assert.Equal(t, 3*time.Second, cfg.Adapter.RequestTimeout)
	assert.Equal(t, "tkn", cfg.Adapter.Token)
	assert.Equal(t, 2*time.Minute, cfg.Workers.SyncInterval)
	assert.Equal(t, 20*time.Second, cfg.Workers.ProbeInterval)
	assert.Equal(t, 500*time.Millisecond, cfg.Workers.Debounce)
	assert.Equal(t, 7, cfg.Workers.MaxRetries)
	assert.Equal(t, 2, cfg.Workers.ReplayConcurrency)
	assert.Equal(t, "127.0.0.1:7000", cfg.Server.HTTPAddress)
	assert.Equal(t, "debug", cfg.App.LogLevel)
	assert.Equal(t, "engine.log", cfg.App.LogFile)
}

func TestBindFlags_UnsetFlagsStayZero(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	values := BindFlags(fs)
	require.NoError(t, fs.Parse(nil))

	assert.Equal(t, &StructuredConfig{}, values.config())
}
