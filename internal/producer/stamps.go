// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package producer

import (
	"fmt"
	"image/color"
	"time"

	"github.com/relabs-tech/gforce_gauge/internal/clock"
	"github.com/relabs-tech/gforce_gauge/internal/imu"
	"github.com/relabs-tech/gforce_gauge/internal/storage"
	"github.com/relabs-tech/gforce_gauge/internal/ui"
)

// StampRecord is one plotted reading.
type StampRecord struct {
	ID      uint64
	Pos     ui.Point
	Color   color.RGBA
	Created time.Time
}

// StampRing is a fixed-capacity FIFO of stamp records.
type StampRing struct {
	buf   []StampRecord
	head  int
	count int
}

// NewStampRing allocates a ring holding at most capacity records.
func NewStampRing(capacity int) *StampRing {
	if capacity < 1 {
		capacity = 1
	}
	return &StampRing{buf: make([]StampRecord, capacity)}
}

// Push appends r, evicting the oldest record when full.
func (r *StampRing) Push(rec StampRecord) (evicted StampRecord, ok bool) {
	if r.count == len(r.buf) {
		evicted = r.buf[r.head]
		r.buf[r.head] = rec
		r.head = (r.head + 1) % len(r.buf)
		return evicted, true
	}
	r.buf[(r.head+r.count)%len(r.buf)] = rec
	r.count++
	return StampRecord{}, false
}

// Len returns the number of records held.
func (r *StampRing) Len() int { return r.count }

// Records returns the held records, oldest first.
func (r *StampRing) Records() []StampRecord {
	out := make([]StampRecord, 0, r.count)
	for i := 0; i < r.count; i++ {
		out = append(out, r.buf[(r.head+i)%len(r.buf)])
	}
	return out
}

// Stamps plots raw x/y readings as fading markers and appends them to the
// reading log.
type Stamps struct {
	scale    Scale
	ring     *StampRing
	nextID   uint64
	log      storage.Appender // nil disables logging
	clock    clock.Clock
	includeZ bool
}

// StampsConfig configures the stamps behavior.
type StampsConfig struct {
	Scale     Scale
	MaxStamps int
	Log       storage.Appender
	Clock     clock.Clock
	IncludeZ  bool
}

// NewStamps creates the stamps behavior.
func NewStamps(cfg StampsConfig) *Stamps {
	c := cfg.Clock
	if c == nil {
		c = clock.System{}
	}
	return &Stamps{
		scale:    cfg.Scale,
		ring:     NewStampRing(cfg.MaxStamps),
		log:      cfg.Log,
		clock:    c,
		includeZ: cfg.IncludeZ,
	}
}

// Ring exposes the record ring.
func (s *Stamps) Ring() *StampRing { return s.ring }

// CSVHeader is the header row of the reading log.
func CSVHeader(includeZ bool) string {
	if includeZ {
		return "timestamp,x,y,z"
	}
	return "timestamp,x,y"
}

// csvLine renders one reading log row.
func (s *Stamps) csvLine(sample imu.Sample) string {
	ts := s.clock.Timestamp()
	if s.includeZ {
		return fmt.Sprintf("%s,%.3f,%.3f,%.3f", ts, sample.X, sample.Y, sample.Z)
	}
	return fmt.Sprintf("%s,%.3f,%.3f", ts, sample.X, sample.Y)
}

// Tick implements Behavior.
func (s *Stamps) Tick(now time.Time, sample imu.Sample) ui.Request {
	s.nextID++
	rec := StampRecord{
		ID:      s.nextID,
		Pos:     s.scale.Position(sample.X, sample.Y),
		Color:   s.scale.Color(sample.X, sample.Y),
		Created: now,
	}
	evicted, hasEvicted := s.ring.Push(rec)

	if s.log != nil {
		s.log.Append(s.csvLine(sample))
	}

	view := ui.StampView{ID: rec.ID, Pos: rec.Pos, Color: rec.Color, Created: rec.Created}
	return ui.Request{
		Source: "stamps",
		Apply: func(m *ui.Model) {
			m.PutStamp(view, evicted.ID, hasEvicted)
		},
	}
}
