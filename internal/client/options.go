// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package client

import "github.com/MKhiriev/offsync/internal/adapter"

type options struct {
	serverAdapter adapter.ServerAdapter
	online        bool
}

// Option customises an [Engine].
type Option func(*options)

// WithServerAdapter replaces the HTTP adapter built from the configuration.
func WithServerAdapter(serverAdapter adapter.ServerAdapter) Option {
	return func(o *options) {
		o.serverAdapter = serverAdapter
	}
}

// WithInitialOnline sets the connectivity state the engine starts in.
// Engines start offline by default and wait for the first probe or
// SetOnline call.
func WithInitialOnline(online bool) Option {
	return func(o *options) {
		o.online = online
	}
}
