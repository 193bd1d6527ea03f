// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/MKhiriev/offsync/internal/config"
	"github.com/MKhiriev/offsync/internal/logger"
)

type server struct {
	httpServer *httpServer
	address    string
	logger     *logger.Logger

	// listen is replaced in tests.
	listen func(network, address string) (net.Listener, error)
}

func NewServer(handler http.Handler, cfg config.ClientServer, log *logger.Logger) (Server, error) {
	if cfg.HTTPAddress == "" {
		return nil, errNoAddress
	}

	return &server{
		httpServer: newHTTPServer(handler, cfg.HTTPAddress, log),
		address:    cfg.HTTPAddress,
		logger:     log,
		listen:     net.Listen,
	}, nil
}

func (s *server) Run(ctx context.Context) error {
	listener, err := s.listen("tcp", s.address)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.address, err)
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- s.httpServer.serve(listener)
	}()

	select {
	case err = <-serveErr:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	if err = s.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown status api: %w", err)
	}
	if err = <-serveErr; err != nil {
		return err
	}

	s.logger.Info().Msg("status api shut down gracefully")
	return nil
}

func (s *server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
