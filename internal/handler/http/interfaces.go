// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"context"

	"github.com/MKhiriev/offsync/models"
)

//go:generate mockgen -source=interfaces.go -destination=../../mock/engine_mock.go -package=mock

// Engine is the part of the sync engine served by the status API.
type Engine interface {
	Status(ctx context.Context) (models.EngineStatus, error)
	List(ctx context.Context, collection string, filter models.ListFilter) ([]models.Record, error)
	Get(ctx context.Context, collection, id string) (models.Record, error)
	Outbox(ctx context.Context) ([]models.OutboxEntry, error)
	Failures(ctx context.Context) ([]models.SyncFailure, error)
	RetryFailure(ctx context.Context, id string) (models.OutboxEntry, error)
	DismissFailure(ctx context.Context, id string) error
	Sync(ctx context.Context) (models.SyncReport, error)
	Trigger() error
	SetOnline(online bool) error
}
