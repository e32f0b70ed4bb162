// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package screen tracks the single active UI screen and keeps each screen's
// producer running only while that screen is shown.
package screen

import (
	"fmt"
	"strings"
)

// Screen identifies one of the fixed, mutually exclusive screens.
type Screen uint8

const (
	Splash Screen = iota
	Dot
	Stats
	Timer
	Stamps
)

// All lists every screen in navigation order.
var All = []Screen{Splash, Dot, Stats, Timer, Stamps}

var names = [...]string{
	Splash: "splash",
	Dot:    "dot",
	Stats:  "stats",
	Timer:  "timer",
	Stamps: "stamps",
}

func (s Screen) String() string {
	if int(s) < len(names) {
		return names[s]
	}
	return fmt.Sprintf("screen(%d)", uint8(s))
}

// Valid reports whether s is one of the defined screens.
func (s Screen) Valid() bool { return int(s) < len(names) }

// ParseScreen resolves a screen by name. "gforce" and "peaks" are accepted
// as aliases.
func ParseScreen(name string) (Screen, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "splash":
		return Splash, nil
	case "dot", "gforce":
		return Dot, nil
	case "stats", "peaks":
		return Stats, nil
	case "timer":
		return Timer, nil
	case "stamps":
		return Stamps, nil
	}
	return Splash, fmt.Errorf("unknown screen %q", name)
}

// Next is the tap-to-advance order. Stamps wraps to Dot; Splash is never
// revisited.
func (s Screen) Next() Screen {
	switch s {
	case Splash:
		return Dot
	case Dot:
		return Stats
	case Stats:
		return Timer
	case Timer:
		return Stamps
	default:
		return Dot
	}
}

// Prev is the swipe-back order.
func (s Screen) Prev() Screen {
	switch s {
	case Dot:
		return Splash
	case Stats:
		return Dot
	case Timer:
		return Stats
	case Stamps:
		return Timer
	default:
		return Splash
	}
}
