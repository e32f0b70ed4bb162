// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package producer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/gforce_gauge/internal/clock"
	"github.com/relabs-tech/gforce_gauge/internal/imu"
	"github.com/relabs-tech/gforce_gauge/internal/screen"
	"github.com/relabs-tech/gforce_gauge/internal/ui"
)

var testScale = Scale{GMax: 2.5, Radius: 200, Center: ui.Point{X: 240, Y: 240}}

func newTestModel() *ui.Model {
	return ui.NewModel(testScale.Center, time.Hour, ui.FadeContinue)
}

func activeIs(s screen.Screen) func() screen.Screen {
	return func() screen.Screen { return s }
}

type lines struct{ got []string }

func (l *lines) Append(line string) { l.got = append(l.got, line) }

func TestDotSettlesOnSteadyInput(t *testing.T) {
	d := NewDot(testScale, 0.15)
	m := newTestModel()
	var req ui.Request
	for i := 0; i < 300; i++ {
		req = d.Tick(time.Time{}, imu.Sample{X: 1.25, Y: -1.25})
	}
	req.Apply(m)
	require.Equal(t, ui.Point{X: 340, Y: 140}, m.Dot)
}

func TestDotClampsToRadius(t *testing.T) {
	d := NewDot(testScale, 1)
	m := newTestModel()
	d.Tick(time.Time{}, imu.Sample{X: 5, Y: -5}).Apply(m)
	require.Equal(t, ui.Point{X: 440, Y: 40}, m.Dot)
	require.Equal(t, ui.ColorB, m.DotColor)
}

func TestDotFilterLagsStep(t *testing.T) {
	d := NewDot(testScale, 0.5)
	d.Tick(time.Time{}, imu.Sample{X: 1})
	x, _ := d.Filtered()
	require.InDelta(t, 0.5, x, 1e-9)
	d.Tick(time.Time{}, imu.Sample{X: 1})
	x, _ = d.Filtered()
	require.InDelta(t, 0.75, x, 1e-9)
}

func TestStatsTracksAbsolutePeaks(t *testing.T) {
	agg := NewAggregate()
	s := NewStats(agg)
	m := newTestModel()
	s.Tick(time.Time{}, imu.Sample{X: -1.5, Y: 0.2, Z: 1}).Apply(m)
	s.Tick(time.Time{}, imu.Sample{X: 1.0, Y: -0.7, Z: 0.9}).Apply(m)
	require.Equal(t, [3]string{"X: 1.50g", "Y: 0.70g", "Z: 1.00g"}, m.Peaks)
}

func TestStaleStatsRequestIsDiscardedAfterReset(t *testing.T) {
	agg := NewAggregate()
	s := NewStats(agg)
	m := newTestModel()

	stale := s.Tick(time.Time{}, imu.Sample{X: 2})
	ResetRequest(agg).Apply(m)
	stale.Apply(m)

	require.Equal(t, "X: 0.00g", m.Peaks[0])
	require.Equal(t, [3]float64{}, agg.Peaks())
}

func TestTimerCountsOnlyResumedTime(t *testing.T) {
	agg := NewAggregate()
	tm := NewTimer(agg)
	m := newTestModel()
	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	tm.Resumed(t0)
	tm.Tick(t0.Add(100*time.Millisecond), imu.Sample{}).Apply(m)
	require.Equal(t, "00:00.10", m.Timer)
	tm.Suspended(t0.Add(100 * time.Millisecond))

	t1 := t0.Add(10 * time.Second)
	tm.Resumed(t1)
	tm.Tick(t1.Add(50*time.Millisecond), imu.Sample{}).Apply(m)
	require.Equal(t, "00:00.15", m.Timer)
	require.Equal(t, 150*time.Millisecond, agg.Elapsed())
}

func TestLapHistoryShifts(t *testing.T) {
	agg := NewAggregate()
	agg.StartTimer()
	m := newTestModel()
	lap := func() { LapRequest(agg, activeIs(screen.Timer), false).Apply(m) }

	agg.AddElapsed(12340 * time.Millisecond)
	lap()
	require.Equal(t, [4]string{"00:12.34", ui.LapSentinel, ui.LapSentinel, ui.LapSentinel}, m.Laps)

	agg.AddElapsed(7660 * time.Millisecond)
	lap()
	require.Equal(t, [4]string{"00:20.00", "00:12.34", ui.LapSentinel, ui.LapSentinel}, m.Laps)

	for i := 0; i < 3; i++ {
		agg.AddElapsed(time.Second)
		lap()
	}
	require.Equal(t, [4]string{"00:23.00", "00:22.00", "00:21.00", "00:20.00"}, m.Laps)
	require.True(t, agg.TimerRunning())
}

func TestLapIgnoredOffTimerScreen(t *testing.T) {
	agg := NewAggregate()
	agg.StartTimer()
	agg.AddElapsed(time.Second)
	m := newTestModel()

	LapRequest(agg, activeIs(screen.Dot), false).Apply(m)
	require.Equal(t, [LapCapacity]time.Duration{}, agg.Laps())
	require.Equal(t, ui.LapSentinel, m.Laps[0])
}

func TestLapCanStopTimer(t *testing.T) {
	agg := NewAggregate()
	tm := NewTimer(agg)
	t0 := time.Now()
	tm.Resumed(t0)
	tm.Tick(t0.Add(time.Second), imu.Sample{})

	LapRequest(agg, activeIs(screen.Timer), true).Apply(newTestModel())
	require.False(t, agg.TimerRunning())

	tm.Tick(t0.Add(3*time.Second), imu.Sample{})
	require.Equal(t, time.Second, agg.Elapsed())

	tm.Resumed(t0.Add(4 * time.Second))
	tm.Tick(t0.Add(5*time.Second), imu.Sample{})
	require.Equal(t, 2*time.Second, agg.Elapsed())
}

func TestResetRestoresSentinels(t *testing.T) {
	agg := NewAggregate()
	agg.StartTimer()
	agg.UpdatePeaks(imu.Sample{X: 1, Y: 2, Z: 3})
	agg.AddElapsed(5 * time.Second)
	agg.Lap(false)
	gen := agg.Generation()

	m := newTestModel()
	m.Timer = "00:05.00"
	m.Laps[0] = "00:05.00"
	m.Peaks[2] = "Z: 3.00g"

	ResetRequest(agg).Apply(m)

	require.Equal(t, gen+1, agg.Generation())
	require.Equal(t, [3]float64{}, agg.Peaks())
	require.Zero(t, agg.Elapsed())
	require.Equal(t, [LapCapacity]time.Duration{}, agg.Laps())
	require.Equal(t, ui.TimerSentinel, m.Timer)
	require.Equal(t, [4]string{ui.LapSentinel, ui.LapSentinel, ui.LapSentinel, ui.LapSentinel}, m.Laps)
	require.Equal(t, [3]string{"X: 0.00g", "Y: 0.00g", "Z: 0.00g"}, m.Peaks)
	require.True(t, agg.TimerRunning())
}

func TestStampRingKeepsNewest(t *testing.T) {
	log := &lines{}
	s := NewStamps(StampsConfig{
		Scale:     testScale,
		MaxStamps: 5,
		Log:       log,
		Clock:     clock.Func(func() string { return "T" }),
	})
	m := newTestModel()
	now := time.Now()
	for i := 0; i < 6; i++ {
		s.Tick(now, imu.Sample{X: 1, Y: -0.5, Z: 9}).Apply(m)
	}

	require.Equal(t, 5, s.Ring().Len())
	recs := s.Ring().Records()
	require.Equal(t, uint64(2), recs[0].ID)
	require.Equal(t, uint64(6), recs[4].ID)
	require.Len(t, m.Stamps, 5)
	require.Equal(t, uint64(2), m.Stamps[0].ID)
	require.Equal(t, ui.Point{X: 320, Y: 200}, m.Stamps[0].Pos)

	require.Len(t, log.got, 6)
	require.Equal(t, "T,1.000,-0.500", log.got[0])
}

func TestLateStampDroppedAfterLeavingUnderCancel(t *testing.T) {
	s := NewStamps(StampsConfig{Scale: testScale, MaxStamps: 4})
	m := ui.NewModel(testScale.Center, time.Hour, ui.FadeCancel)
	m.SetScreen(screen.Stamps)

	ch := ui.NewChannel(4)
	ch.Submit(s.Tick(time.Now(), imu.Sample{X: 1}))
	ch.Submit(ScreenRequest(screen.Dot))
	ch.Drain(m)

	require.Equal(t, screen.Dot, m.Screen)
	require.Empty(t, m.Stamps)
}

func TestResetSurvivesCommandBurst(t *testing.T) {
	agg := NewAggregate()
	agg.UpdatePeaks(imu.Sample{X: 2})
	m := newTestModel()

	ch := ui.NewChannel(16)
	ch.Submit(ResetRequest(agg))
	for i := 0; i < 16; i++ {
		ch.Submit(ScreenRequest(screen.All[i%len(screen.All)]))
	}
	ch.Drain(m)

	require.Zero(t, ch.Dropped())
	require.Equal(t, [3]float64{}, agg.Peaks())
	require.Equal(t, screen.All[15%len(screen.All)], m.Screen)
}

func TestStampsLogIncludesZ(t *testing.T) {
	log := &lines{}
	s := NewStamps(StampsConfig{
		Scale:     testScale,
		MaxStamps: 2,
		Log:       log,
		Clock:     clock.Func(func() string { return "T" }),
		IncludeZ:  true,
	})
	s.Tick(time.Now(), imu.Sample{X: 0.25, Y: 0, Z: -1})
	require.Equal(t, []string{"T,0.250,0.000,-1.000"}, log.got)
	require.Equal(t, "timestamp,x,y,z", CSVHeader(true))
}
