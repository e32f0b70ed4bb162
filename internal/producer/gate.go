// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package producer

import (
	"context"
	"sync"
)

// Gate is a run/suspend switch. While suspended, Wait blocks on a channel
// instead of polling.
type Gate struct {
	mu      sync.Mutex
	running bool
	epoch   uint64        // bumped on every resume
	wake    chan struct{} // closed while running
}

// NewGate starts suspended.
func NewGate() *Gate {
	return &Gate{wake: make(chan struct{})}
}

// Set switches the gate. Redundant calls are no-ops.
func (g *Gate) Set(run bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if run == g.running {
		return
	}
	g.running = run
	if run {
		g.epoch++
		close(g.wake)
	} else {
		g.wake = make(chan struct{})
	}
}

// Running reports the current state.
func (g *Gate) Running() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.running
}

// Epoch counts resumes. A change between two reads means the gate was
// suspended and resumed in between.
func (g *Gate) Epoch() uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.epoch
}

// Wait blocks until the gate is running or ctx is done.
func (g *Gate) Wait(ctx context.Context) error {
	for {
		g.mu.Lock()
		if g.running {
			g.mu.Unlock()
			return nil
		}
		wake := g.wake
		g.mu.Unlock()

		select {
		case <-wake:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
