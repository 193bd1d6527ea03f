// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package main

import (
	"encoding/json"
	"fmt"

	"github.com/MKhiriev/offsync/internal/client"
	"github.com/spf13/cobra"
)

func (c *cli) newSettingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Read and write engine settings",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "Print every stored setting",
		Args:  cobra.NoArgs,
	}
	list.RunE = c.withEngine(func(cmd *cobra.Command, _ []string, engine *client.Engine) error {
		settings, err := engine.Settings(cmd.Context())
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), settings)
	})

	get := &cobra.Command{
		Use:   "get <key>",
		Short: "Print the JSON value of a setting",
		Args:  cobra.ExactArgs(1),
	}
	get.RunE = c.withEngine(func(cmd *cobra.Command, args []string, engine *client.Engine) error {
		var value json.RawMessage
		if err := engine.GetSetting(cmd.Context(), args[0], &value); err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), value)
	})

	set := &cobra.Command{
		Use:   "set <key> <json>",
		Short: "Store a JSON value under key",
		Args:  cobra.ExactArgs(2),
	}
	set.RunE = c.withEngine(func(cmd *cobra.Command, args []string, engine *client.Engine) error {
		value := json.RawMessage(args[1])
		if !json.Valid(value) {
			return fmt.Errorf("value of %q is not valid JSON", args[0])
		}
		return engine.SetSetting(cmd.Context(), args[0], value)
	})

	del := &cobra.Command{
		Use:   "delete <key>",
		Short: "Remove a setting",
		Args:  cobra.ExactArgs(1),
	}
	del.RunE = c.withEngine(func(cmd *cobra.Command, args []string, engine *client.Engine) error {
		return engine.DeleteSetting(cmd.Context(), args[0])
	})

	cmd.AddCommand(list, get, set, del)
	return cmd
}
