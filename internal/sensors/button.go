// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

// Press classifies how long the button was held.
type Press uint8

const (
	Tap Press = iota
	Long
	VeryLong
)

func (p Press) String() string {
	switch p {
	case Long:
		return "long"
	case VeryLong:
		return "very-long"
	}
	return "tap"
}

// Press thresholds.
const (
	LongPress     = 800 * time.Millisecond
	VeryLongPress = 3 * time.Second
	debounce      = 30 * time.Millisecond
)

// Classify maps a hold duration to a Press. Holds shorter than the
// debounce window report false.
func Classify(held time.Duration) (Press, bool) {
	switch {
	case held < debounce:
		return Tap, false
	case held >= VeryLongPress:
		return VeryLong, true
	case held >= LongPress:
		return Long, true
	}
	return Tap, true
}

// edgePin is the subset of gpio.PinIO the button watches.
type edgePin interface {
	WaitForEdge(timeout time.Duration) bool
	Read() gpio.Level
}

// Button watches an active-low push button.
type Button struct {
	pin edgePin
	log *slog.Logger
	now func() time.Time
}

// OpenButton configures pinName as a pulled-up input with edge detection.
func OpenButton(pinName string, log *slog.Logger) (*Button, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("button: periph host init: %w", err)
	}
	p := gpioreg.ByName(pinName)
	if p == nil {
		return nil, fmt.Errorf("button: pin %q not found", pinName)
	}
	if err := p.In(gpio.PullUp, gpio.BothEdges); err != nil {
		return nil, fmt.Errorf("button: configure %s: %w", pinName, err)
	}
	return &Button{pin: p, log: log, now: time.Now}, nil
}

// Run calls onPress for every completed press until ctx is done.
func (b *Button) Run(ctx context.Context, onPress func(Press)) error {
	var down time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}
		if !b.pin.WaitForEdge(100 * time.Millisecond) {
			continue
		}
		now := b.now()
		if b.pin.Read() == gpio.Low {
			if down.IsZero() {
				down = now
			}
			continue
		}
		if down.IsZero() {
			continue
		}
		held := now.Sub(down)
		down = time.Time{}
		if p, ok := Classify(held); ok {
			b.log.Debug("button: press", "kind", p, "held", held)
			onPress(p)
		}
	}
}
