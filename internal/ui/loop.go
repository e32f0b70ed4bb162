// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package ui

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"periph.io/x/conn/v3/display"

	"github.com/relabs-tech/gforce_gauge/internal/screen"
)

// Observer receives a snapshot after each applied frame. It runs on the UI
// goroutine and must not block.
type Observer func(Snapshot)

// Loop is the UI thread: the only goroutine that touches the Model and the
// panel.
type Loop struct {
	ch       *Channel
	model    *Model
	panel    display.Drawer
	renderer *Renderer
	frame    time.Duration
	log      *slog.Logger

	mu        sync.Mutex
	observers []Observer

	seq     uint64
	lastErr string
}

// NewLoop wires a channel, model and panel. panel may be nil (no drawing).
func NewLoop(ch *Channel, model *Model, panel display.Drawer, canvas int, frame time.Duration, log *slog.Logger) *Loop {
	l := &Loop{
		ch:    ch,
		model: model,
		panel: panel,
		frame: frame,
		log:   log,
	}
	if panel != nil {
		l.renderer = NewRenderer(canvas, panel.Bounds())
	}
	return l
}

// Observe registers an observer.
func (l *Loop) Observe(o Observer) {
	l.mu.Lock()
	l.observers = append(l.observers, o)
	l.mu.Unlock()
}

// Run services the channel until ctx is done.
func (l *Loop) Run(ctx context.Context) error {
	ticker := time.NewTicker(l.frame)
	defer ticker.Stop()

	l.log.Info("ui: loop started", "frame", l.frame)
	l.model.MarkDirty()
	l.Step(time.Now())

	for {
		select {
		case <-ctx.Done():
			l.log.Info("ui: loop stopped", "dropped", l.ch.Dropped())
			return nil
		case <-l.ch.Ready():
			l.Step(time.Now())
		case now := <-ticker.C:
			l.Step(now)
		}
	}
}

// Step applies pending requests, expires faded stamps and redraws if
// anything changed. Only the UI goroutine may call it.
func (l *Loop) Step(now time.Time) {
	l.ch.Drain(l.model)
	l.model.ExpireStamps(now)
	if l.model.Screen == screen.Stamps && len(l.model.Stamps) > 0 {
		// fading stamps change every frame
		l.model.dirty = true
	}
	if !l.model.dirty {
		return
	}
	l.model.dirty = false
	l.seq++

	if l.renderer != nil {
		frame := l.renderer.Render(l.model, now)
		if err := l.panel.Draw(l.panel.Bounds(), frame, frame.Bounds().Min); err != nil {
			if msg := err.Error(); msg != l.lastErr {
				l.lastErr = msg
				l.log.Warn("ui: panel draw failed", "err", err)
			}
		} else {
			l.lastErr = ""
		}
	}

	l.mu.Lock()
	obs := l.observers
	l.mu.Unlock()
	if len(obs) == 0 {
		return
	}
	snap := l.model.Snapshot(l.seq, now)
	for _, o := range obs {
		o(snap)
	}
}
