// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package screen

import "sync"

// Listener is told about every change of the active screen.
type Listener func(prev, next Screen)

// Registry holds the active screen. Exactly one screen is active at a time.
type Registry struct {
	mu        sync.RWMutex
	active    Screen
	listeners []Listener
}

// NewRegistry starts on Splash.
func NewRegistry() *Registry {
	return &Registry{active: Splash}
}

// Active returns the current screen.
func (r *Registry) Active() Screen {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.active
}

// Subscribe adds a change listener. Listeners run on the caller of set and
// must not block.
func (r *Registry) Subscribe(l Listener) {
	r.mu.Lock()
	r.listeners = append(r.listeners, l)
	r.mu.Unlock()
}

// set records s and reports the previous screen and whether it changed.
func (r *Registry) set(s Screen) (Screen, bool) {
	r.mu.Lock()
	prev := r.active
	r.active = s
	ls := r.listeners
	r.mu.Unlock()

	if prev == s {
		return prev, false
	}
	for _, l := range ls {
		l(prev, s)
	}
	return prev, true
}
