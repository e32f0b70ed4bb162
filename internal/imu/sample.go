// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package imu

import (
	"math"
	"time"
)

// Sample is one immutable acceleration snapshot in g.
type Sample struct {
	X  float64   `json:"x"`
	Y  float64   `json:"y"`
	Z  float64   `json:"z"`
	At time.Time `json:"at"`
}

// Source produces a sample on request. Implementations never fail: on a
// bus error they return the last known (or zero) sample.
type Source interface {
	Sample() Sample
}

// Raw is a single raw accelerometer reading in device counts.
type Raw struct {
	Ax int16 `json:"ax"`
	Ay int16 `json:"ay"`
	Az int16 `json:"az"`
}

// CountsPerG returns the accelerometer sensitivity for a full-scale range
// code (0=±2g, 1=±4g, 2=±8g, 3=±16g).
func CountsPerG(rangeCode byte) float64 {
	if rangeCode > 3 {
		rangeCode = 3
	}
	return 16384.0 / float64(int(1)<<rangeCode)
}

// ToSample converts raw counts to g.
func (r Raw) ToSample(countsPerG float64, at time.Time) Sample {
	return Sample{
		X:  float64(r.Ax) / countsPerG,
		Y:  float64(r.Ay) / countsPerG,
		Z:  float64(r.Az) / countsPerG,
		At: at,
	}
}

// Planar returns the magnitude of the x/y components.
func (s Sample) Planar() float64 {
	return math.Hypot(s.X, s.Y)
}
