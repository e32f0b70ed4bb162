// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package producer

import (
	"image/color"
	"math"

	"github.com/relabs-tech/gforce_gauge/internal/ui"
)

// Scale maps acceleration in g onto the canvas: ±GMax spans ±Radius
// pixels around Center.
type Scale struct {
	GMax   float64
	Radius int
	Center ui.Point
}

// Offset converts one axis to a pixel offset, clamped to ±Radius.
func (s Scale) Offset(g float64) int {
	if g > s.GMax {
		g = s.GMax
	}
	if g < -s.GMax {
		g = -s.GMax
	}
	return int(math.Round(g / s.GMax * float64(s.Radius)))
}

// Position converts an x/y pair to a canvas point.
func (s Scale) Position(x, y float64) ui.Point {
	return ui.Point{X: s.Center.X + s.Offset(x), Y: s.Center.Y + s.Offset(y)}
}

// Color grades the planar magnitude across the ui gradient.
func (s Scale) Color(x, y float64) color.RGBA {
	return ui.Gradient(math.Hypot(x, y) / s.GMax)
}
