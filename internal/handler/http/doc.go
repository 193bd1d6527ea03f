// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package http implements the local status API of the sync engine.
//
// The API is read-mostly: it exposes the engine status, records, the outbox
// and the failures table, and accepts a few control requests (manual sync,
// failure retry and dismissal, connectivity override). Request tracing and
// access logging are handled by middleware in this package before requests
// reach the engine.
package http
