// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package adapter

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/go-resty/resty/v2"

	"github.com/MKhiriev/offsync/internal/config"
	"github.com/MKhiriev/offsync/internal/logger"
	"github.com/MKhiriev/offsync/internal/utils"
	"github.com/MKhiriev/offsync/models"
)

type httpServerAdapter struct {
	client     *utils.HTTPClient
	healthPath string

	mu    sync.RWMutex
	token string

	logger *logger.Logger
}

// NewHTTPServerAdapter constructs an HTTP/REST implementation of [ServerAdapter].
// It normalises adapterCfg.HTTPAddress into the client base URL and applies
// adapterCfg.RequestTimeout to every request. adapterCfg.Token, when set, is
// installed as the initial bearer token.
//
// Returns an error if adapterCfg.HTTPAddress is empty or cannot be parsed as a
// valid URL.
func NewHTTPServerAdapter(adapterCfg config.ClientAdapter, log *logger.Logger) (ServerAdapter, error) {
	client, err := utils.NewBaseURLClient(adapterCfg.HTTPAddress, adapterCfg.RequestTimeout)
	if err != nil {
		return nil, fmt.Errorf("invalid adapter http address: %w", err)
	}

	healthPath := adapterCfg.HealthPath
	if healthPath == "" {
		healthPath = "/"
	}

	a := &httpServerAdapter{client: client, healthPath: healthPath, logger: log}
	a.SetToken(adapterCfg.Token)

	return a, nil
}

// SetToken implements [ServerAdapter].
func (h *httpServerAdapter) SetToken(token string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.token = strings.TrimSpace(token)
}

// Token implements [ServerAdapter].
func (h *httpServerAdapter) Token() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.token
}

// Replay implements [ServerAdapter].
func (h *httpServerAdapter) Replay(ctx context.Context, entry models.OutboxEntry) error {
	log := logger.FromContext(ctx)

	req := h.authedRequest(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	if len(entry.Body) > 0 {
		req.SetBody([]byte(entry.Body))
	}

	resp, err := req.Execute(entry.Method, entry.Target)
	if err != nil {
		log.Debug().
			Err(err).
			Str("func", "httpServerAdapter.Replay").
			Str("entry_id", entry.ID).
			Str("method", entry.Method).
			Str("target", entry.Target).
			Msg("replay request failed")
		return &RequestError{
			Method: entry.Method,
			Target: entry.Target,
			Err:    fmt.Errorf("%w: %w", ErrNetwork, err),
		}
	}

	if err = mapHTTPError(resp); err != nil {
		log.Debug().
			Str("func", "httpServerAdapter.Replay").
			Str("entry_id", entry.ID).
			Str("method", entry.Method).
			Str("target", entry.Target).
			Int("status", resp.StatusCode()).
			Msg("replay rejected by server")
		return &RequestError{
			Method:     entry.Method,
			Target:     entry.Target,
			StatusCode: resp.StatusCode(),
			Err:        err,
		}
	}

	return nil
}

// Ping implements [ServerAdapter].
func (h *httpServerAdapter) Ping(ctx context.Context) error {
	if _, err := h.client.R().SetContext(ctx).Get(h.healthPath); err != nil {
		return &RequestError{
			Method: http.MethodGet,
			Target: h.healthPath,
			Err:    fmt.Errorf("%w: %w", ErrNetwork, err),
		}
	}

	return nil
}

func (h *httpServerAdapter) authedRequest(ctx context.Context) *resty.Request {
	req := h.client.R().SetContext(ctx)
	if token := h.Token(); token != "" {
		req.SetAuthToken(token)
	}
	return req
}
