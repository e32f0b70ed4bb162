// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package screen

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// RunState is a producer's scheduling state.
type RunState uint8

const (
	Suspended RunState = iota
	Running
)

func (s RunState) String() string {
	if s == Running {
		return "running"
	}
	return "suspended"
}

// Handle is the run control of one producer.
type Handle interface {
	Resume()
	Suspend()
}

// Controller maps the active screen onto producer run states.
type Controller struct {
	reg *Registry
	log *slog.Logger

	// mu serializes SetActive/Reconcile so two transitions never interleave
	// their resume/suspend calls.
	mu      sync.Mutex
	handles map[Screen]Handle
	state   map[Screen]RunState

	advance sync.Once
}

// NewController drives the producers registered against reg.
func NewController(reg *Registry, log *slog.Logger) *Controller {
	return &Controller{
		reg:     reg,
		log:     log,
		handles: make(map[Screen]Handle),
		state:   make(map[Screen]RunState),
	}
}

// Registry returns the registry this controller reconciles against.
func (c *Controller) Registry() *Registry { return c.reg }

// Register binds a producer handle to a screen. A nil handle reserves the
// slot; it reads as Suspended and is skipped until replaced.
func (c *Controller) Register(s Screen, h Handle) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handles[s] = h
	if _, ok := c.state[s]; !ok {
		c.state[s] = Suspended
	}
}

// SetActive makes s the active screen and reconciles.
func (c *Controller) SetActive(s Screen) {
	if !s.Valid() {
		c.log.Warn("screen: ignoring invalid screen", "screen", s)
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if prev, changed := c.reg.set(s); changed {
		c.log.Info("screen: active screen changed", "from", prev, "to", s)
	}
	c.reconcileLocked()
}

// Reconcile re-derives every producer's run state from the active screen.
func (c *Controller) Reconcile() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reconcileLocked()
}

func (c *Controller) reconcileLocked() {
	active := c.reg.Active()
	// suspend first so two producers never run together
	for s, h := range c.handles {
		if s == active {
			continue
		}
		if h != nil {
			h.Suspend()
		}
		c.state[s] = Suspended
	}
	h, ok := c.handles[active]
	if !ok {
		return
	}
	if h == nil {
		c.log.Debug("screen: producer not created yet", "screen", active)
		c.state[active] = Suspended
		return
	}
	h.Resume()
	c.state[active] = Running
}

// State returns a copy of the current run states.
func (c *Controller) State() map[Screen]RunState {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[Screen]RunState, len(c.state))
	for s, st := range c.state {
		out[s] = st
	}
	return out
}

// Next advances to the next screen in tap order.
func (c *Controller) Next() { c.step(Screen.Next) }

// Prev goes back one screen.
func (c *Controller) Prev() { c.step(Screen.Prev) }

// step derives the target from the active screen under the lock so
// concurrent navigation commands each take effect.
func (c *Controller) step(to func(Screen) Screen) {
	c.mu.Lock()
	defer c.mu.Unlock()
	from := c.reg.Active()
	next := to(from)
	if _, changed := c.reg.set(next); changed {
		c.log.Info("screen: active screen changed", "from", from, "to", next)
	}
	c.reconcileLocked()
}

// AutoAdvance leaves Splash for Dot after delay, once. If the user has
// already navigated away it does nothing. It blocks until the delay expires
// or ctx is done.
func (c *Controller) AutoAdvance(ctx context.Context, delay time.Duration) {
	t := time.NewTimer(delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return
	case <-t.C:
	}
	c.LeaveSplash()
}

// LeaveSplash moves Splash to Dot, once, and only if Splash is still
// showing.
func (c *Controller) LeaveSplash() {
	c.advance.Do(func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.reg.Active() != Splash {
			return
		}
		c.reg.set(Dot)
		c.log.Info("screen: splash finished", "to", Dot)
		c.reconcileLocked()
	})
}
