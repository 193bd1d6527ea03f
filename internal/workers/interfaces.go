// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package workers provides the background jobs of the sync engine and a
// Workers aggregate that starts and stops them together.
package workers

import "context"

// Worker is a background job bound to the lifetime of the engine.
//
// Start launches the job and returns immediately; the job exits when ctx is
// cancelled or Stop is called. Stop blocks until the job goroutine has
// exited and is safe to call on a stopped worker.
type Worker interface {
	Start(ctx context.Context)
	Stop()
}

// Notifier asks the sync coordinator for a pass when the remote API is
// reachable.
type Notifier interface {
	Notify()
}

// Prober checks the remote API once and publishes the result.
type Prober interface {
	Probe(ctx context.Context) bool
}
