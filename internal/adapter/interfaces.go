// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package adapter provides the transport used to replay outbox entries
// against the remote JSON-over-HTTP API.
//
// The primary abstraction is [ServerAdapter], which decouples the sync
// coordinator from the protocol. The package ships an HTTP/REST
// implementation ([NewHTTPServerAdapter]) built on resty.
//
// Transport failures are reported as [*RequestError] values wrapping
// [ErrNetwork] or [ErrUnexpectedStatus], so callers can use [errors.Is] to
// tell them apart. Non-2xx statuses additionally wrap a per-status sentinel
// (e.g. [ErrConflict] for 409, [ErrUnauthorized] for 401).
package adapter

import (
	"context"

	"github.com/MKhiriev/offsync/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/server_adapter_mock.go -package=mock

// ServerAdapter defines communication with the remote API.
type ServerAdapter interface {
	// SetToken stores the bearer token attached to all subsequent requests.
	// An empty token removes the Authorization header.
	SetToken(token string)

	// Token returns the bearer token currently stored in the adapter.
	Token() string

	// Replay performs the remote call described by entry: entry.Method on
	// entry.Target with entry.Body as JSON. A nil error means the server
	// answered with a 2xx status.
	Replay(ctx context.Context, entry models.OutboxEntry) error

	// Ping issues a GET against the health path. Any HTTP response counts as
	// reachable; only transport failures are returned.
	Ping(ctx context.Context) error
}
