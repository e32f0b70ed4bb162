// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package producer

import (
	"math"
	"sync"
	"time"

	"github.com/relabs-tech/gforce_gauge/internal/imu"
)

// LapCapacity is the number of lap slots kept, newest first.
const LapCapacity = 4

// Aggregate is the state shared between producers and commands: peaks,
// timer and lap history. Every Reset bumps the generation so UI requests
// computed before the reset can recognise themselves as stale.
type Aggregate struct {
	mu      sync.Mutex
	gen     uint64
	peaks   [3]float64
	elapsed time.Duration
	laps    [LapCapacity]time.Duration // zero = unset
	running bool
}

// NewAggregate returns zeroed state.
func NewAggregate() *Aggregate {
	return &Aggregate{}
}

// Generation returns the current reset generation.
func (a *Aggregate) Generation() uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.gen
}

// UpdatePeaks folds |x|,|y|,|z| into the running maxima.
func (a *Aggregate) UpdatePeaks(s imu.Sample) ([3]float64, uint64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for i, v := range [3]float64{s.X, s.Y, s.Z} {
		v = math.Abs(v)
		if v > a.peaks[i] {
			a.peaks[i] = v
		}
	}
	return a.peaks, a.gen
}

// Peaks returns the current maxima.
func (a *Aggregate) Peaks() [3]float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.peaks
}

// StartTimer lets AddElapsed accumulate again.
func (a *Aggregate) StartTimer() {
	a.mu.Lock()
	a.running = true
	a.mu.Unlock()
}

// StopTimer halts accumulation.
func (a *Aggregate) StopTimer() {
	a.mu.Lock()
	a.running = false
	a.mu.Unlock()
}

// TimerRunning reports whether the timer accumulates.
func (a *Aggregate) TimerRunning() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.running
}

// AddElapsed adds d to the timer if it is running and returns the new value.
func (a *Aggregate) AddElapsed(d time.Duration) (time.Duration, uint64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.running && d > 0 {
		a.elapsed += d
	}
	return a.elapsed, a.gen
}

// Elapsed returns the timer value.
func (a *Aggregate) Elapsed() time.Duration {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.elapsed
}

// Lap shifts the history one slot, drops the oldest and records the current
// timer value in slot 0. With stop set the timer halts.
func (a *Aggregate) Lap(stop bool) [LapCapacity]time.Duration {
	a.mu.Lock()
	defer a.mu.Unlock()
	copy(a.laps[1:], a.laps[:LapCapacity-1])
	a.laps[0] = a.elapsed
	if stop {
		a.running = false
	}
	return a.laps
}

// Laps returns the lap history, newest first.
func (a *Aggregate) Laps() [LapCapacity]time.Duration {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.laps
}

// Reset zeroes peaks, timer and laps. The running flag is left alone so an
// active timer keeps counting from zero.
func (a *Aggregate) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.peaks = [3]float64{}
	a.elapsed = 0
	a.laps = [LapCapacity]time.Duration{}
	a.gen++
}
