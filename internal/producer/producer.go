// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package producer contains the per-screen periodic producers. Each one
// samples the IMU while its screen is active and hands a UI request to the
// UI loop.
package producer

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/relabs-tech/gforce_gauge/internal/imu"
	"github.com/relabs-tech/gforce_gauge/internal/screen"
	"github.com/relabs-tech/gforce_gauge/internal/ui"
)

// Behavior turns one sample into one UI request.
type Behavior interface {
	Tick(now time.Time, s imu.Sample) ui.Request
}

// Lifecycle is implemented by behaviors that care about run-state edges.
// Both hooks run on the producer goroutine.
type Lifecycle interface {
	Resumed(now time.Time)
	Suspended(now time.Time)
}

// Producer runs a Behavior every period while its gate is open.
type Producer struct {
	name     string
	screen   screen.Screen
	period   time.Duration
	source   imu.Source
	out      ui.Submitter
	behavior Behavior
	gate     *Gate
	log      *slog.Logger

	ticks atomic.Uint64
}

// New creates a suspended producer.
func New(name string, s screen.Screen, period time.Duration, source imu.Source, out ui.Submitter, b Behavior, log *slog.Logger) *Producer {
	return &Producer{
		name:     name,
		screen:   s,
		period:   period,
		source:   source,
		out:      out,
		behavior: b,
		gate:     NewGate(),
		log:      log.With("producer", name),
	}
}

// Name returns the producer name.
func (p *Producer) Name() string { return p.name }

// Screen returns the screen this producer serves.
func (p *Producer) Screen() screen.Screen { return p.screen }

// Resume implements screen.Handle.
func (p *Producer) Resume() { p.gate.Set(true) }

// Suspend implements screen.Handle. It takes effect after the current tick.
func (p *Producer) Suspend() { p.gate.Set(false) }

// Running reports the gate state.
func (p *Producer) Running() bool { return p.gate.Running() }

// Ticks counts completed ticks.
func (p *Producer) Ticks() uint64 { return p.ticks.Load() }

// Run blocks while suspended and ticks while running, until ctx is done.
// The first tick after a resume happens immediately.
func (p *Producer) Run(ctx context.Context) error {
	lc, _ := p.behavior.(Lifecycle)
	for {
		if err := p.gate.Wait(ctx); err != nil {
			return nil
		}
		epoch := p.gate.Epoch()
		if lc != nil {
			lc.Resumed(time.Now())
		}
		p.log.Debug("producer: resumed", "period", p.period)

		// a suspend+resume between ticks still counts as one run-state cycle
		ticker := time.NewTicker(p.period)
		for p.gate.Running() && p.gate.Epoch() == epoch {
			p.tick(time.Now())
			select {
			case <-ctx.Done():
				ticker.Stop()
				return nil
			case <-ticker.C:
			}
		}
		ticker.Stop()

		if lc != nil {
			lc.Suspended(time.Now())
		}
		p.log.Debug("producer: suspended", "ticks", p.ticks.Load())
	}
}

// tick runs one full sample-compute-submit cycle.
func (p *Producer) tick(now time.Time) {
	s := p.source.Sample()
	req := p.behavior.Tick(now, s)
	if req.Source == "" {
		req.Source = p.name
	}
	p.out.Submit(req)
	p.ticks.Add(1)
}
