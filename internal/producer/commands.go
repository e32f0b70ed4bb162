// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package producer

import (
	"github.com/relabs-tech/gforce_gauge/internal/screen"
	"github.com/relabs-tech/gforce_gauge/internal/ui"
)

// CommandSource is the lane name used for user commands.
const CommandSource = ui.CommandSource

// ResetRequest zeroes the aggregate and restores every label sentinel. It
// runs on the UI goroutine so the label reset and the aggregate reset are
// observed together.
func ResetRequest(agg *Aggregate) ui.Request {
	return ui.Request{
		Source: CommandSource,
		Apply: func(m *ui.Model) {
			agg.Reset()
			m.ResetLabels()
		},
	}
}

// LapRequest records a lap when the Timer screen is active and is a no-op
// otherwise. With stopTimer the timer halts until the Timer screen is
// entered again.
func LapRequest(agg *Aggregate, active func() screen.Screen, stopTimer bool) ui.Request {
	return ui.Request{
		Source: CommandSource,
		Apply: func(m *ui.Model) {
			if active() != screen.Timer {
				return
			}
			laps := agg.Lap(stopTimer)
			m.Laps = LapLabels(laps)
			m.Timer = ui.FormatElapsed(agg.Elapsed())
			m.MarkDirty()
		},
	}
}

// ScreenRequest tells the UI which screen is showing.
func ScreenRequest(s screen.Screen) ui.Request {
	return ui.Request{
		Source: CommandSource,
		Apply: func(m *ui.Model) {
			m.SetScreen(s)
		},
	}
}
