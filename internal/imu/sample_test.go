// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package imu

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCountsPerG(t *testing.T) {
	require.Equal(t, 16384.0, CountsPerG(0))
	require.Equal(t, 8192.0, CountsPerG(1))
	require.Equal(t, 4096.0, CountsPerG(2))
	require.Equal(t, 2048.0, CountsPerG(3))
	require.Equal(t, 2048.0, CountsPerG(9))
}

func TestRawToSample(t *testing.T) {
	at := time.Unix(10, 0)
	s := Raw{Ax: 8192, Ay: -4096, Az: 0}.ToSample(CountsPerG(1), at)
	require.Equal(t, Sample{X: 1, Y: -0.5, Z: 0, At: at}, s)
	require.InDelta(t, 1.118, s.Planar(), 0.001)
}
