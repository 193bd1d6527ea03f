// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package server runs the local status API.
//
// It owns the HTTP listener lifecycle: startup, stop on context
// cancellation or signal, and graceful shutdown.
package server
