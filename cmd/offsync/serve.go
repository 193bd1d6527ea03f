// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package main

import (
	"github.com/MKhiriev/offsync/internal/client"
	httpHandler "github.com/MKhiriev/offsync/internal/handler/http"
	"github.com/MKhiriev/offsync/internal/server"
	"github.com/spf13/cobra"
)

func (c *cli) newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the engine with background sync and the local status API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := c.config(true)
			if err != nil {
				return err
			}

			engine := client.NewEngine(*cfg, log, c.engineOpts...)
			if err = engine.Open(cmd.Context()); err != nil {
				log.Err(err).Str("func", "main.serve").Msg("error opening engine")
				return err
			}
			defer func() {
				if closeErr := engine.Close(); closeErr != nil {
					log.Err(closeErr).Str("func", "main.serve").Msg("error closing engine")
				}
			}()

			handler := httpHandler.NewHandler(engine, c.buildInfo, log)
			srv, err := server.NewServer(handler.Init(), cfg.Server, log)
			if err != nil {
				log.Err(err).Str("func", "main.serve").Msg("error creating status server")
				return err
			}

			log.Info().
				Str("address", cfg.Server.HTTPAddress).
				Str("remote", cfg.Adapter.HTTPAddress).
				Msg("offsync engine started")

			return srv.Run(cmd.Context())
		},
	}
}
