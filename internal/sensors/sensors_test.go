// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/gpio"

	"github.com/relabs-tech/gforce_gauge/internal/logging"
)

type fakeAccel struct {
	x, y, z int16
	err     error
}

func (f *fakeAccel) GetAccelerationX() (int16, error) { return f.x, f.err }
func (f *fakeAccel) GetAccelerationY() (int16, error) { return f.y, f.err }
func (f *fakeAccel) GetAccelerationZ() (int16, error) { return f.z, f.err }

func TestMPU9250HoldsLastSampleOnError(t *testing.T) {
	dev := &fakeAccel{x: 8192, y: -4096, z: 8192}
	s := newMPU9250(dev, 8192, logging.Discard())

	got := s.Sample()
	require.InDelta(t, 1.0, got.X, 1e-9)
	require.InDelta(t, -0.5, got.Y, 1e-9)

	dev.err = errors.New("spi timeout")
	stale := s.Sample()
	require.Equal(t, got, stale)

	dev.err = nil
	dev.x = 0
	require.InDelta(t, 0.0, s.Sample().X, 1e-9)
}

func TestMockIsBounded(t *testing.T) {
	m := NewMock()
	base := m.start
	for i := 0; i < 1000; i++ {
		at := base.Add(time.Duration(i) * 37 * time.Millisecond)
		m.now = func() time.Time { return at }
		s := m.Sample()
		require.LessOrEqual(t, math.Abs(s.X), 1.2)
		require.LessOrEqual(t, math.Abs(s.Y), 0.9)
		require.InDelta(t, 1.0, s.Z, 0.1+1e-9)
		require.Equal(t, at, s.At)
	}
}

func TestClassify(t *testing.T) {
	cases := []struct {
		held time.Duration
		want Press
		ok   bool
	}{
		{5 * time.Millisecond, Tap, false},
		{120 * time.Millisecond, Tap, true},
		{LongPress, Long, true},
		{2 * time.Second, Long, true},
		{VeryLongPress, VeryLong, true},
	}
	for _, c := range cases {
		got, ok := Classify(c.held)
		require.Equal(t, c.ok, ok, c.held)
		if ok {
			require.Equal(t, c.want, got, c.held)
		}
	}
}

// scriptedPin replays edges; each edge advances the fake clock by its gap.
type scriptedPin struct {
	levels []gpio.Level
	gaps   []time.Duration
	clock  *time.Time
	cur    gpio.Level
	done   func()
}

func (p *scriptedPin) WaitForEdge(time.Duration) bool {
	if len(p.levels) == 0 {
		p.done()
		time.Sleep(time.Millisecond)
		return false
	}
	p.cur = p.levels[0]
	*p.clock = p.clock.Add(p.gaps[0])
	p.levels, p.gaps = p.levels[1:], p.gaps[1:]
	return true
}

func (p *scriptedPin) Read() gpio.Level { return p.cur }

func TestButtonReportsPresses(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	now := time.Unix(0, 0)
	pin := &scriptedPin{
		levels: []gpio.Level{gpio.Low, gpio.High, gpio.Low, gpio.High, gpio.Low, gpio.High, gpio.Low, gpio.High},
		gaps:   []time.Duration{0, 200 * time.Millisecond, time.Second, time.Second, time.Second, 4 * time.Second, time.Second, 10 * time.Millisecond},
		clock:  &now,
		done:   cancel,
	}
	b := &Button{pin: pin, log: logging.Discard(), now: func() time.Time { return now }}

	var got []Press
	require.NoError(t, b.Run(ctx, func(p Press) { got = append(got, p) }))
	require.Equal(t, []Press{Tap, Long, VeryLong}, got)
}
