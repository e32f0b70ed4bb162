// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package producer

import (
	"time"

	"github.com/relabs-tech/gforce_gauge/internal/imu"
	"github.com/relabs-tech/gforce_gauge/internal/ui"
)

// Stats tracks per-axis peak magnitudes.
type Stats struct {
	agg *Aggregate
}

// NewStats creates the stats behavior over agg.
func NewStats(agg *Aggregate) *Stats {
	return &Stats{agg: agg}
}

// PeakLabels formats peaks for the three axes.
func PeakLabels(peaks [3]float64) [3]string {
	var out [3]string
	for i, a := range ui.Axes {
		out[i] = ui.PeakLabel(a, peaks[i])
	}
	return out
}

// Tick implements Behavior.
func (s *Stats) Tick(_ time.Time, sample imu.Sample) ui.Request {
	peaks, gen := s.agg.UpdatePeaks(sample)
	labels := PeakLabels(peaks)
	return ui.Request{
		Source: "stats",
		Apply: func(m *ui.Model) {
			if s.agg.Generation() != gen {
				return
			}
			m.Peaks = labels
			m.MarkDirty()
		},
	}
}
