// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package server

import "context"

// Server is a runnable transport.
type Server interface {
	// Run serves until ctx is cancelled or the process receives SIGINT,
	// SIGTERM or SIGQUIT, then shuts down gracefully.
	Run(ctx context.Context) error

	// Shutdown stops the server, waiting for active requests.
	Shutdown(ctx context.Context) error
}
