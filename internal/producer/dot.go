// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package producer

import (
	"time"

	"github.com/relabs-tech/gforce_gauge/internal/imu"
	"github.com/relabs-tech/gforce_gauge/internal/ui"
)

// Dot low-pass filters x/y and moves the dot. The filter state survives
// suspension.
type Dot struct {
	scale  Scale
	alpha  float64
	fx, fy float64
}

// NewDot creates the dot behavior. alpha is the weight of the new sample.
func NewDot(scale Scale, alpha float64) *Dot {
	return &Dot{scale: scale, alpha: alpha}
}

// Filtered returns the current filter output.
func (d *Dot) Filtered() (x, y float64) { return d.fx, d.fy }

// Tick implements Behavior.
func (d *Dot) Tick(_ time.Time, s imu.Sample) ui.Request {
	d.fx += d.alpha * (s.X - d.fx)
	d.fy += d.alpha * (s.Y - d.fy)

	pos := d.scale.Position(d.fx, d.fy)
	col := d.scale.Color(d.fx, d.fy)
	return ui.Request{
		Source: "dot",
		Apply: func(m *ui.Model) {
			m.Dot = pos
			m.DotColor = col
			m.MarkDirty()
		},
	}
}
