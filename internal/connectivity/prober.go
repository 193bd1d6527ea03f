// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package connectivity

import (
	"context"
	"time"

	"github.com/MKhiriev/offsync/internal/logger"
)

// Pinger checks whether the remote API answers at all.
type Pinger interface {
	Ping(ctx context.Context) error
}

// StateSetter receives probe results.
type StateSetter interface {
	SetOnline(online bool)
}

// Prober turns one ping into a connectivity report.
type Prober struct {
	pinger  Pinger
	state   StateSetter
	timeout time.Duration
	logger  *logger.Logger
}

func NewProber(pinger Pinger, state StateSetter, timeout time.Duration, log *logger.Logger) *Prober {
	return &Prober{pinger: pinger, state: state, timeout: timeout, logger: log}
}

// Probe pings the remote API once, reports the result to the state setter
// and returns it.
func (p *Prober) Probe(ctx context.Context) bool {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	err := p.pinger.Ping(ctx)
	online := err == nil
	if err != nil {
		p.logger.Debug().Err(err).Str("func", "Prober.Probe").Msg("remote api unreachable")
	}

	p.state.SetOnline(online)
	return online
}
