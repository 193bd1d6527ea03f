// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package main

import (
	"errors"

	"github.com/MKhiriev/offsync/internal/client"
	"github.com/MKhiriev/offsync/internal/service"
	"github.com/MKhiriev/offsync/models"
	"github.com/spf13/cobra"
)

func (c *cli) newSyncCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Probe the remote API and replay the outbox",
		Args:  cobra.NoArgs,
	}

	cmd.RunE = c.withEngine(func(cmd *cobra.Command, _ []string, engine *client.Engine) error {
		// Going online starts a pass on its own.
		online, err := engine.Probe(cmd.Context())
		if err != nil {
			return err
		}
		if !online {
			return service.ErrOffline
		}

		if err = engine.Wait(); err != nil {
			return err
		}

		var report models.SyncReport
		err = engine.GetSetting(cmd.Context(), models.SettingLastSyncReport, &report)
		if err != nil && !errors.Is(err, service.ErrSettingNotFound) {
			return err
		}
		return printJSON(cmd.OutOrStdout(), report)
	})

	return cmd
}

func (c *cli) newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Print pending and failed counts and the last successful sync",
		Args:  cobra.NoArgs,
	}

	cmd.RunE = c.withEngine(func(cmd *cobra.Command, _ []string, engine *client.Engine) error {
		status, err := engine.Status(cmd.Context())
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), status)
	})

	return cmd
}

func (c *cli) newOutboxCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "outbox",
		Short: "List queued outbox entries in replay order",
		Args:  cobra.NoArgs,
	}

	cmd.RunE = c.withEngine(func(cmd *cobra.Command, _ []string, engine *client.Engine) error {
		entries, err := engine.Outbox(cmd.Context())
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), entries)
	})

	return cmd
}

func (c *cli) newFailuresCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "failures",
		Short: "List entries that exhausted their retry budget",
		Args:  cobra.NoArgs,
	}

	cmd.RunE = c.withEngine(func(cmd *cobra.Command, _ []string, engine *client.Engine) error {
		failures, err := engine.Failures(cmd.Context())
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), failures)
	})

	return cmd
}

func (c *cli) newRetryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "retry <failure-id>",
		Short: "Queue a failed entry again with a fresh retry budget",
		Args:  cobra.ExactArgs(1),
	}

	cmd.RunE = c.withEngine(func(cmd *cobra.Command, args []string, engine *client.Engine) error {
		entry, err := engine.RetryFailure(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), entry)
	})

	return cmd
}

func (c *cli) newDismissCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dismiss <failure-id>",
		Short: "Drop a failed entry and clear the record's failure flag",
		Args:  cobra.ExactArgs(1),
	}

	cmd.RunE = c.withEngine(func(cmd *cobra.Command, args []string, engine *client.Engine) error {
		return engine.DismissFailure(cmd.Context(), args[0])
	})

	return cmd
}
