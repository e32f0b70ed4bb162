// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package ui

import (
	"fmt"
	"image/color"
	"time"

	"github.com/relabs-tech/gforce_gauge/internal/screen"
)

// Sentinel label text shown before any data and after a reset.
const (
	TimerSentinel = "00:00.00"
	LapSentinel   = "--:--.--"
)

// Axes names the peak labels in display order.
var Axes = [3]string{"X", "Y", "Z"}

// Point is a position on the logical canvas.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// StampView is the on-screen marker of one stamp record.
type StampView struct {
	ID      uint64
	Pos     Point
	Color   color.RGBA
	Created time.Time
}

// FadePolicy decides what happens to fading stamps when the Stamps screen
// is left.
type FadePolicy uint8

const (
	// FadeContinue lets every stamp finish its fade on its own timer.
	FadeContinue FadePolicy = iota
	// FadeCancel removes all stamps as soon as the Stamps screen is left.
	FadeCancel
)

// ParseFadePolicy accepts "continue" and "cancel".
func ParseFadePolicy(s string) (FadePolicy, error) {
	switch s {
	case "continue", "":
		return FadeContinue, nil
	case "cancel":
		return FadeCancel, nil
	}
	return FadeContinue, fmt.Errorf("unknown fade policy %q", s)
}

// Model is the widget state. It is only touched by the UI loop goroutine,
// through Request.Apply.
type Model struct {
	Screen   screen.Screen
	Center   Point
	Dot      Point
	DotColor color.RGBA
	Peaks    [3]string
	Timer    string
	Laps     [4]string
	Stamps   []StampView // oldest first

	Fade       time.Duration
	FadePolicy FadePolicy

	dirty bool
}

// NewModel returns the initial widget state on the Splash screen.
func NewModel(center Point, fade time.Duration, policy FadePolicy) *Model {
	m := &Model{
		Screen:     screen.Splash,
		Center:     center,
		Fade:       fade,
		FadePolicy: policy,
	}
	m.Dot = center
	m.DotColor = ColorA
	m.ResetLabels()
	return m
}

// PeakLabel formats one peak label, e.g. "X: 1.23g".
func PeakLabel(axis string, g float64) string {
	return fmt.Sprintf("%s: %.2fg", axis, g)
}

// FormatElapsed renders a duration as minutes:seconds.centiseconds.
func FormatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	cs := int64(d / (10 * time.Millisecond))
	return fmt.Sprintf("%02d:%02d.%02d", cs/6000, (cs/100)%60, cs%100)
}

// ResetLabels restores the peak, timer and lap labels to their sentinels.
func (m *Model) ResetLabels() {
	for i, a := range Axes {
		m.Peaks[i] = PeakLabel(a, 0)
	}
	m.Timer = TimerSentinel
	for i := range m.Laps {
		m.Laps[i] = LapSentinel
	}
	m.dirty = true
}

// SetScreen records the screen being shown. Leaving Stamps under
// FadeCancel clears every stamp.
func (m *Model) SetScreen(s screen.Screen) {
	if m.Screen == screen.Stamps && s != screen.Stamps && m.FadePolicy == FadeCancel {
		m.Stamps = m.Stamps[:0]
	}
	m.Screen = s
	m.dirty = true
}

// PutStamp adds v, first removing the stamp the producer evicted from its
// ring (if it has not faded out already). Under FadeCancel a stamp that
// arrives after the Stamps screen was left is dropped.
func (m *Model) PutStamp(v StampView, evicted uint64, hasEvicted bool) {
	if m.FadePolicy == FadeCancel && m.Screen != screen.Stamps {
		return
	}
	if hasEvicted {
		for i, s := range m.Stamps {
			if s.ID == evicted {
				m.Stamps = append(m.Stamps[:i], m.Stamps[i+1:]...)
				break
			}
		}
	}
	m.Stamps = append(m.Stamps, v)
	m.dirty = true
}

// ExpireStamps drops stamps whose fade has completed and returns how many
// were removed.
func (m *Model) ExpireStamps(now time.Time) int {
	kept := m.Stamps[:0]
	for _, s := range m.Stamps {
		if now.Sub(s.Created) < m.Fade {
			kept = append(kept, s)
		}
	}
	removed := len(m.Stamps) - len(kept)
	m.Stamps = kept
	if removed > 0 {
		m.dirty = true
	}
	return removed
}

// Opacity is the remaining fade of a stamp in [0,1].
func (m *Model) Opacity(s StampView, now time.Time) float64 {
	if m.Fade <= 0 {
		return 0
	}
	o := 1 - float64(now.Sub(s.Created))/float64(m.Fade)
	switch {
	case o < 0:
		return 0
	case o > 1:
		return 1
	}
	return o
}

// MarkDirty forces a redraw on the next frame.
func (m *Model) MarkDirty() { m.dirty = true }

// Snapshot is an immutable copy of the model for observers outside the UI
// goroutine.
type Snapshot struct {
	Seq      uint64          `json:"seq"`
	Screen   string          `json:"screen"`
	Dot      Point           `json:"dot"`
	DotColor string          `json:"dot_color"`
	Peaks    [3]string       `json:"peaks"`
	Timer    string          `json:"timer"`
	Laps     [4]string       `json:"laps"`
	Stamps   []StampSnapshot `json:"stamps"`
}

// StampSnapshot is a stamp as seen by observers.
type StampSnapshot struct {
	ID      uint64  `json:"id"`
	Pos     Point   `json:"pos"`
	Color   string  `json:"color"`
	Opacity float64 `json:"opacity"`
}

// Snapshot copies the model.
func (m *Model) Snapshot(seq uint64, now time.Time) Snapshot {
	s := Snapshot{
		Seq:      seq,
		Screen:   m.Screen.String(),
		Dot:      m.Dot,
		DotColor: hexColor(m.DotColor),
		Peaks:    m.Peaks,
		Timer:    m.Timer,
		Laps:     m.Laps,
		Stamps:   make([]StampSnapshot, 0, len(m.Stamps)),
	}
	for _, st := range m.Stamps {
		s.Stamps = append(s.Stamps, StampSnapshot{
			ID:      st.ID,
			Pos:     st.Pos,
			Color:   hexColor(st.Color),
			Opacity: m.Opacity(st, now),
		})
	}
	return s
}

func hexColor(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
