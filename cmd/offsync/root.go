// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/MKhiriev/offsync/internal/client"
	"github.com/MKhiriev/offsync/internal/config"
	"github.com/MKhiriev/offsync/internal/logger"
	"github.com/MKhiriev/offsync/models"
	"github.com/spf13/cobra"
)

const appRole = "offsync"

// cli carries state shared by every subcommand.
type cli struct {
	flags     *config.FlagValues
	buildInfo models.AppBuildInfo

	// engineOpts is appended to the options of every opened engine.
	engineOpts []client.Option
}

func newRootCmd(buildInfo models.AppBuildInfo) *cobra.Command {
	c := &cli{buildInfo: buildInfo}

	root := &cobra.Command{
		Use:           "offsync",
		Short:         "Offline-first record store with a replaying outbox",
		SilenceUsage: true,
	}
	c.flags = config.BindFlags(root.PersistentFlags())

	root.AddCommand(
		c.newSaveCmd(),
		c.newGetCmd(),
		c.newListCmd(),
		c.newDeleteCmd(),
		c.newSyncCmd(),
		c.newStatusCmd(),
		c.newOutboxCmd(),
		c.newFailuresCmd(),
		c.newRetryCmd(),
		c.newDismissCmd(),
		c.newSettingsCmd(),
		c.newServeCmd(),
		c.newVersionCmd(),
	)

	return root
}

// config loads the merged configuration and builds the logger for it.
func (c *cli) config(console bool) (*config.ClientConfig, *logger.Logger, error) {
	cfg, err := config.GetClientConfig(c.flags)
	if err != nil {
		return nil, nil, fmt.Errorf("error getting configs: %w", err)
	}

	var log *logger.Logger
	if console && cfg.App.LogFile == "" {
		log = logger.NewLogger(appRole)
	} else {
		log = logger.NewClientLogger(appRole, logger.FileOptions{Path: cfg.App.LogFile})
	}

	if err = logger.SetLevel(cfg.App.LogLevel); err != nil {
		return nil, nil, err
	}

	return cfg, log, nil
}

// withEngine opens a one-shot engine, runs fn and closes the engine.
// Background probing and the periodic drain are disabled so that a
// command never replays anything it was not asked to.
func (c *cli) withEngine(fn func(cmd *cobra.Command, args []string, engine *client.Engine) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, log, err := c.config(false)
		if err != nil {
			return err
		}

		cfg.Workers.ProbeInterval = 0
		cfg.Workers.SyncInterval = 0
		cfg.Workers.Debounce = 0

		engine := client.NewEngine(*cfg, log, c.engineOpts...)
		if err = engine.Open(cmd.Context()); err != nil {
			return err
		}

		runErr := fn(cmd, args, engine)
		if err = engine.Close(); err != nil {
			log.Err(err).Str("func", "main.withEngine").Msg("error closing engine")
		}

		return runErr
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
