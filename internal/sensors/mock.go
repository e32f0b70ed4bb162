// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"math"
	"time"

	"github.com/relabs-tech/gforce_gauge/internal/imu"
)

// Mock generates smooth, bounded acceleration for running without
// hardware: a slow lateral/longitudinal swing plus gravity on z.
type Mock struct {
	start time.Time
	now   func() time.Time
}

// NewMock creates a mock source starting now.
func NewMock() *Mock {
	return &Mock{start: time.Now(), now: time.Now}
}

// Sample implements imu.Source.
func (m *Mock) Sample() imu.Sample {
	at := m.now()
	t := at.Sub(m.start).Seconds()
	return imu.Sample{
		X:  1.2 * math.Sin(t),
		Y:  0.9 * math.Cos(t*0.7),
		Z:  1 + 0.1*math.Sin(t*3),
		At: at,
	}
}
