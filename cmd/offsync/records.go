// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/MKhiriev/offsync/internal/client"
	"github.com/MKhiriev/offsync/models"
	"github.com/spf13/cobra"
)

func (c *cli) newSaveCmd() *cobra.Command {
	var op string

	cmd := &cobra.Command{
		Use:   "save <collection> <json|->",
		Short: "Save a record locally and queue it for the remote API",
		Long: "Save a record locally and queue it for the remote API.\n" +
			"Pass - as the payload to read it from stdin. A payload without an \"id\" gets a generated one.",
		Args: cobra.ExactArgs(2),
	}

	cmd.RunE = c.withEngine(func(cmd *cobra.Command, args []string, engine *client.Engine) error {
		payload, err := readPayload(cmd.InOrStdin(), args[1])
		if err != nil {
			return err
		}

		operation, err := parseOperation(op)
		if err != nil {
			return err
		}

		record, err := engine.Save(cmd.Context(), args[0], payload, operation)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), record)
	})

	cmd.Flags().StringVar(&op, "op", "", "Force the queued operation: create or update")
	return cmd
}

func (c *cli) newGetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get <collection> <id>",
		Short: "Print a single record",
		Args:  cobra.ExactArgs(2),
	}

	cmd.RunE = c.withEngine(func(cmd *cobra.Command, args []string, engine *client.Engine) error {
		record, err := engine.Get(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), record)
	})

	return cmd
}

func (c *cli) newListCmd() *cobra.Command {
	var (
		synced, failed string
		filter         models.ListFilter
	)

	cmd := &cobra.Command{
		Use:   "list <collection>",
		Short: "List records of a collection",
		Args:  cobra.ExactArgs(1),
	}

	cmd.RunE = c.withEngine(func(cmd *cobra.Command, args []string, engine *client.Engine) error {
		var err error
		if filter.Synced, err = parseOptionalBool(synced); err != nil {
			return fmt.Errorf("--synced: %w", err)
		}
		if filter.Failed, err = parseOptionalBool(failed); err != nil {
			return fmt.Errorf("--failed: %w", err)
		}

		records, err := engine.List(cmd.Context(), args[0], filter)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), records)
	})

	cmd.Flags().StringVar(&synced, "synced", "", "Keep records with this synced flag (true|false)")
	cmd.Flags().StringVar(&failed, "failed", "", "Keep records with this failure flag (true|false)")
	cmd.Flags().StringVar(&filter.Field, "field", "", "Payload field to match, dotted paths allowed")
	cmd.Flags().StringVar(&filter.Value, "value", "", "Value the payload field must equal")
	cmd.Flags().BoolVar(&filter.ExcludeTombstones, "no-tombstones", false, "Leave out records pending a remote delete")
	cmd.Flags().IntVar(&filter.Limit, "limit", 0, "Maximum number of records")
	return cmd
}

func (c *cli) newDeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <collection> <id>",
		Short: "Delete a record and queue the remote delete when needed",
		Args:  cobra.ExactArgs(2),
	}

	cmd.RunE = c.withEngine(func(cmd *cobra.Command, args []string, engine *client.Engine) error {
		return engine.Delete(cmd.Context(), args[0], args[1])
	})

	return cmd
}

func readPayload(stdin io.Reader, arg string) (json.RawMessage, error) {
	if arg != "-" {
		return json.RawMessage(arg), nil
	}

	data, err := io.ReadAll(stdin)
	if err != nil {
		return nil, fmt.Errorf("error reading payload from stdin: %w", err)
	}
	return data, nil
}

func parseOperation(s string) (models.Operation, error) {
	switch models.Operation(s) {
	case models.OperationUnspecified:
		return models.OperationUnspecified, nil
	case models.OperationCreate, models.OperationUpdate:
		return models.Operation(s), nil
	default:
		return "", fmt.Errorf("unknown operation %q, want create or update", s)
	}
}

func parseOptionalBool(s string) (*bool, error) {
	if s == "" {
		return nil, nil
	}

	b, err := strconv.ParseBool(s)
	if err != nil {
		return nil, err
	}
	return &b, nil
}
