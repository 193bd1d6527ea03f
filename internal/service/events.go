// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"sync"
	"time"

	"github.com/MKhiriev/offsync/models"
)

// EventBus fans sync events out to subscribers. Subscribers run on the
// publishing goroutine and must not block.
type EventBus struct {
	mu     sync.RWMutex
	subs   map[uint64]func(models.SyncEvent)
	nextID uint64
}

func NewEventBus() *EventBus {
	return &EventBus{subs: make(map[uint64]func(models.SyncEvent))}
}

// Subscribe registers fn and returns a function that removes it.
func (b *EventBus) Subscribe(fn func(models.SyncEvent)) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	b.subs[id] = fn

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subs, id)
	}
}

// Publish delivers ev to every subscriber. A zero ev.At is set to now.
func (b *EventBus) Publish(ev models.SyncEvent) {
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}

	b.mu.RLock()
	subs := make([]func(models.SyncEvent), 0, len(b.subs))
	for _, fn := range b.subs {
		subs = append(subs, fn)
	}
	b.mu.RUnlock()

	for _, fn := range subs {
		fn(ev)
	}
}
