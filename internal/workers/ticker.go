// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package workers

import (
	"context"
	"sync"
	"time"

	"github.com/MKhiriev/offsync/internal/logger"
)

type tickerWorker struct {
	name      string
	interval  time.Duration
	immediate bool
	job       func(ctx context.Context)
	logger    *logger.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// newTickerWorker returns a worker calling job every interval. With immediate
// set, job also runs once right after Start. A non-positive interval leaves
// the worker idle.
func newTickerWorker(name string, interval time.Duration, immediate bool, job func(ctx context.Context), log *logger.Logger) *tickerWorker {
	return &tickerWorker{
		name:      name,
		interval:  interval,
		immediate: immediate,
		job:       job,
		logger:    log,
	}
}

// Start stops any previous run, then launches the ticker goroutine.
func (w *tickerWorker) Start(ctx context.Context) {
	if w.interval <= 0 {
		w.logger.Debug().Str("worker", w.name).Msg("worker disabled")
		return
	}

	w.Stop()

	w.mu.Lock()
	jobCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.wg.Add(1)
	w.mu.Unlock()

	go func() {
		defer w.wg.Done()
		t := time.NewTicker(w.interval)
		defer t.Stop()

		w.logger.Debug().Str("worker", w.name).Dur("interval", w.interval).Msg("worker started")

		if w.immediate {
			w.job(jobCtx)
		}

		for {
			select {
			case <-jobCtx.Done():
				w.logger.Debug().Str("worker", w.name).Msg("worker stopped")
				return
			case <-t.C:
				w.job(jobCtx)
			}
		}
	}()
}

// Stop cancels the goroutine's context and waits for it to exit.
func (w *tickerWorker) Stop() {
	w.mu.Lock()
	cancel := w.cancel
	w.cancel = nil
	w.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	w.wg.Wait()
}

// NewSyncWorker returns the safety-net worker that asks for a sync pass every
// interval.
func NewSyncWorker(notifier Notifier, interval time.Duration, log *logger.Logger) Worker {
	return newTickerWorker("sync", interval, false, func(context.Context) {
		notifier.Notify()
	}, log)
}

// NewProbeWorker returns the worker that probes the remote API right away and
// then every interval.
func NewProbeWorker(prober Prober, interval time.Duration, log *logger.Logger) Worker {
	return newTickerWorker("probe", interval, true, func(ctx context.Context) {
		prober.Probe(ctx)
	}, log)
}
