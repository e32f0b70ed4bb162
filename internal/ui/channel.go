// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package ui

import (
	"sync"
	"sync/atomic"
)

// Request is one queued widget mutation. Apply runs exactly once, on the UI
// loop goroutine.
type Request struct {
	Source string
	Apply  func(*Model)
}

// CommandSource is the lane of user commands. It never evicts and is
// applied ahead of producer lanes.
const CommandSource = "command"

// Submitter accepts UI requests from any goroutine.
type Submitter interface {
	Submit(Request)
}

// lane is a FIFO ring for one source. A fixed lane evicts its oldest
// request when full; a growing lane doubles instead.
type lane struct {
	head  int
	count int
	slots []Request
	grow  bool
}

func (l *lane) push(r Request) (dropped bool) {
	if l.count == len(l.slots) && l.grow {
		slots := make([]Request, 2*len(l.slots))
		for i := 0; i < l.count; i++ {
			slots[i] = l.slots[(l.head+i)%len(l.slots)]
		}
		l.slots, l.head = slots, 0
	}
	if l.count == len(l.slots) {
		l.slots[l.head] = Request{}
		l.head = (l.head + 1) % len(l.slots)
		l.count--
		dropped = true
	}
	l.slots[(l.head+l.count)%len(l.slots)] = r
	l.count++
	return dropped
}

func (l *lane) drainInto(out []Request) []Request {
	for ; l.count > 0; l.count-- {
		out = append(out, l.slots[l.head])
		l.slots[l.head] = Request{}
		l.head = (l.head + 1) % len(l.slots)
	}
	l.head = 0
	return out
}

// Channel hands requests from producers to the UI loop. Each source has
// its own lane so per-source order is kept; when a producer lane is full
// its oldest request is dropped so Submit never blocks. The command lane
// is never dropped from.
type Channel struct {
	mu    sync.Mutex
	depth int
	lanes map[string]*lane
	order []string // lane creation order, drained round-robin from rr
	rr    int

	ready   chan struct{}
	dropped atomic.Uint64
}

// NewChannel creates a channel whose lanes hold depth requests each.
func NewChannel(depth int) *Channel {
	if depth <= 0 {
		depth = 1
	}
	return &Channel{
		depth: depth,
		lanes: make(map[string]*lane),
		ready: make(chan struct{}, 1),
	}
}

// Submit enqueues r without running it.
func (c *Channel) Submit(r Request) {
	if r.Apply == nil {
		return
	}
	c.mu.Lock()
	l, ok := c.lanes[r.Source]
	if !ok {
		l = &lane{slots: make([]Request, c.depth), grow: r.Source == CommandSource}
		c.lanes[r.Source] = l
		if !l.grow {
			c.order = append(c.order, r.Source)
		}
	}
	if l.push(r) {
		c.dropped.Add(1)
	}
	c.mu.Unlock()

	select {
	case c.ready <- struct{}{}:
	default:
	}
}

// Ready fires after at least one Submit since the last receive.
func (c *Channel) Ready() <-chan struct{} { return c.ready }

// Dropped counts requests discarded by the backpressure policy.
func (c *Channel) Dropped() uint64 { return c.dropped.Load() }

// Pending counts queued requests.
func (c *Channel) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, l := range c.lanes {
		n += l.count
	}
	return n
}

// Take removes every queued request. Commands come first; then requests of
// one source keep their submission order and lanes are visited starting
// one past the lane that led the previous call.
func (c *Channel) Take() []Request {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []Request
	if cmd, ok := c.lanes[CommandSource]; ok {
		out = cmd.drainInto(out)
	}
	n := len(c.order)
	for i := 0; i < n; i++ {
		out = c.lanes[c.order[(c.rr+i)%n]].drainInto(out)
	}
	if n > 0 {
		c.rr = (c.rr + 1) % n
	}
	return out
}

// Drain takes every queued request and applies it to m. It must only be
// called from the UI loop goroutine.
func (c *Channel) Drain(m *Model) int {
	reqs := c.Take()
	for _, r := range reqs {
		r.Apply(m)
	}
	return len(reqs)
}
