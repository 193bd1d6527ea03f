// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"github.com/MKhiriev/offsync/internal/logger"
	"github.com/MKhiriev/offsync/models"
)

// Handler serves the status API on top of an [Engine].
type Handler struct {
	engine    Engine
	buildInfo models.AppBuildInfo

	logger *logger.Logger
}

func NewHandler(engine Engine, buildInfo models.AppBuildInfo, logger *logger.Logger) *Handler {
	logger.Info().Msg("http handler created")
	return &Handler{
		engine:    engine,
		buildInfo: buildInfo,
		logger:    logger,
	}
}
