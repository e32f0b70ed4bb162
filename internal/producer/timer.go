// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package producer

import (
	"time"

	"github.com/relabs-tech/gforce_gauge/internal/imu"
	"github.com/relabs-tech/gforce_gauge/internal/ui"
)

// Timer counts active time on the Timer screen. It starts on resume,
// stops on suspend, and never counts suspended time.
type Timer struct {
	agg  *Aggregate
	last time.Time
}

// NewTimer creates the timer behavior over agg.
func NewTimer(agg *Aggregate) *Timer {
	return &Timer{agg: agg}
}

// Resumed implements Lifecycle.
func (t *Timer) Resumed(now time.Time) {
	t.last = now
	t.agg.StartTimer()
}

// Suspended implements Lifecycle.
func (t *Timer) Suspended(time.Time) {
	t.agg.StopTimer()
}

// LapLabels formats the lap history; unset slots show the lap sentinel.
func LapLabels(laps [LapCapacity]time.Duration) [LapCapacity]string {
	var out [LapCapacity]string
	for i, d := range laps {
		if d == 0 {
			out[i] = ui.LapSentinel
			continue
		}
		out[i] = ui.FormatElapsed(d)
	}
	return out
}

// Tick implements Behavior. The sample is unused.
func (t *Timer) Tick(now time.Time, _ imu.Sample) ui.Request {
	if t.last.IsZero() {
		t.last = now
	}
	elapsed, gen := t.agg.AddElapsed(now.Sub(t.last))
	t.last = now
	label := ui.FormatElapsed(elapsed)
	return ui.Request{
		Source: "timer",
		Apply: func(m *ui.Model) {
			if t.agg.Generation() != gen {
				return
			}
			m.Timer = label
			m.MarkDirty()
		},
	}
}
