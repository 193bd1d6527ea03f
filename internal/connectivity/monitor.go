// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package connectivity tracks whether the remote API is reachable.
//
// [Monitor] holds the debounced online/offline state and notifies
// subscribers about published transitions. It is fed either by the host
// application (OS or UI signals) through [Monitor.SetOnline] or by a
// [Prober] that pings the remote health endpoint.
package connectivity

import (
	"sync"
	"time"

	"github.com/MKhiriev/offsync/internal/logger"
)

// Monitor is safe for concurrent use.
type Monitor struct {
	mu       sync.Mutex
	online   bool
	reported bool
	debounce time.Duration

	// gen invalidates pending debounce timers.
	gen   uint64
	timer *time.Timer

	subs   map[uint64]func(online bool)
	nextID uint64

	logger *logger.Logger
}

// NewMonitor returns a monitor in the initial state. A transition is
// published only once the reported state has stayed unchanged for debounce;
// zero publishes immediately.
func NewMonitor(initial bool, debounce time.Duration, log *logger.Logger) *Monitor {
	return &Monitor{
		online:   initial,
		reported: initial,
		debounce: debounce,
		subs:     make(map[uint64]func(bool)),
		logger:   log,
	}
}

// Online reports the last published state.
func (m *Monitor) Online() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.online
}

// SetOnline reports the current reachability. Reports that flip back to the
// published state before the debounce window elapses publish nothing.
func (m *Monitor) SetOnline(online bool) {
	m.mu.Lock()

	if online == m.reported && (m.timer != nil || online == m.online) {
		m.mu.Unlock()
		return
	}

	m.reported = online
	m.gen++
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}

	if online == m.online {
		m.mu.Unlock()
		return
	}

	if m.debounce <= 0 {
		m.publishLocked()
		return
	}

	gen := m.gen
	m.timer = time.AfterFunc(m.debounce, func() { m.fire(gen) })
	m.mu.Unlock()
}

// Subscribe registers fn for published transitions and returns a function
// that removes it. fn runs on the goroutine that publishes the transition and
// must not block.
func (m *Monitor) Subscribe(fn func(online bool)) (unsubscribe func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextID
	m.nextID++
	m.subs[id] = fn

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.subs, id)
	}
}

// Stop cancels a pending debounced transition.
func (m *Monitor) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.gen++
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
}

func (m *Monitor) fire(gen uint64) {
	m.mu.Lock()
	if gen != m.gen || m.reported == m.online {
		m.mu.Unlock()
		return
	}
	m.timer = nil
	m.publishLocked()
}

// publishLocked must be called with m.mu held; it releases the lock before
// running subscribers.
func (m *Monitor) publishLocked() {
	m.online = m.reported
	online := m.online

	subs := make([]func(bool), 0, len(m.subs))
	for _, fn := range m.subs {
		subs = append(subs, fn)
	}
	m.mu.Unlock()

	m.logger.Info().Bool("online", online).Msg("connectivity changed")

	for _, fn := range subs {
		fn(online)
	}
}
