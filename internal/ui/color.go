// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package ui

import "image/color"

// Gradient endpoints for magnitude coloring: ColorA at rest, ColorB at
// full scale.
var (
	ColorA = color.RGBA{R: 0x00, G: 0xFF, B: 0x00, A: 0xFF}
	ColorB = color.RGBA{R: 0xFF, G: 0x00, B: 0x00, A: 0xFF}
)

// Gradient linearly interpolates ColorA..ColorB; norm is clamped to [0,1].
func Gradient(norm float64) color.RGBA {
	if norm < 0 {
		norm = 0
	}
	if norm > 1 {
		norm = 1
	}
	lerp := func(a, b uint8) uint8 {
		return uint8(float64(a) + (float64(b)-float64(a))*norm + 0.5)
	}
	return color.RGBA{
		R: lerp(ColorA.R, ColorB.R),
		G: lerp(ColorA.G, ColorB.G),
		B: lerp(ColorA.B, ColorB.B),
		A: 0xFF,
	}
}
