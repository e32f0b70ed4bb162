// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"sync"

	"github.com/relabs-tech/gforce_gauge/internal/ui"
)

// StateHub keeps the latest UI snapshot and fans it out to subscribers.
// Slow subscribers only ever see the newest snapshot.
type StateHub struct {
	mu   sync.RWMutex
	last ui.Snapshot
	have bool
	subs map[int]chan ui.Snapshot
	next int
}

// NewStateHub creates an empty hub.
func NewStateHub() *StateHub {
	return &StateHub{subs: make(map[int]chan ui.Snapshot)}
}

// Publish is a ui.Observer; it never blocks.
func (h *StateHub) Publish(s ui.Snapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.last = s
	h.have = true
	for _, ch := range h.subs {
		select {
		case ch <- s:
			continue
		default:
		}
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- s:
		default:
		}
	}
}

// Latest returns the most recent snapshot, if any.
func (h *StateHub) Latest() (ui.Snapshot, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.last, h.have
}

// Subscribe returns a channel of snapshots and a cancel func.
func (h *StateHub) Subscribe() (<-chan ui.Snapshot, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := h.next
	h.next++
	ch := make(chan ui.Snapshot, 1)
	if h.have {
		ch <- h.last
	}
	h.subs[id] = ch
	return ch, func() {
		h.mu.Lock()
		delete(h.subs, id)
		h.mu.Unlock()
	}
}
