// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package gps

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	nmea "github.com/adrianmo/go-nmea"
	serial "github.com/jacobsa/go-serial/serial"

	"github.com/relabs-tech/gforce_gauge/internal/clock"
)

// Clock is a real-time clock disciplined by NMEA RMC sentences. Until the
// first valid fix it reports the fallback clock.
type Clock struct {
	mu       sync.RWMutex
	fix      Fix
	fixTime  time.Time // UTC time carried by the last valid RMC
	received time.Time // local monotonic reading when it arrived
	fallback clock.Clock
	now      func() time.Time
	log      *slog.Logger
}

// NewClock returns a GPS clock that falls back to the system clock.
func NewClock(log *slog.Logger) *Clock {
	return &Clock{fallback: clock.System{}, now: time.Now, log: log}
}

// Timestamp implements clock.Clock.
func (c *Clock) Timestamp() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.fixTime.IsZero() {
		return c.fallback.Timestamp()
	}
	return c.fixTime.Add(c.now().Sub(c.received)).Format(clock.Layout)
}

// LastFix returns the most recent fix and whether one was received.
func (c *Clock) LastFix() (Fix, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.fix, !c.fixTime.IsZero()
}

// OpenSerial opens the GPS serial port.
func OpenSerial(port string, baud int) (io.ReadWriteCloser, error) {
	serialOpts := serial.OpenOptions{
		PortName:              port,
		BaudRate:              uint(baud),
		DataBits:              8,
		StopBits:              1,
		MinimumReadSize:       1,
		ParityMode:            serial.PARITY_NONE,
		InterCharacterTimeout: 0,
	}
	p, err := serial.Open(serialOpts)
	if err != nil {
		return nil, fmt.Errorf("gps: open %s: %w", port, err)
	}
	return p, nil
}

// Run reads NMEA lines from r until ctx is done or r fails.
func (c *Clock) Run(ctx context.Context, r io.Reader) error {
	lines := make(chan string)
	errc := make(chan error, 1)
	go func() {
		reader := bufio.NewReader(r)
		for {
			line, err := reader.ReadString('\n')
			if line != "" {
				select {
				case lines <- line:
				case <-ctx.Done():
					return
				}
			}
			if err != nil {
				errc <- err
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-errc:
			if err == io.EOF {
				return nil
			}
			return fmt.Errorf("gps: read: %w", err)
		case line := <-lines:
			c.HandleLine(line)
		}
	}
}

// HandleLine parses one NMEA sentence. Non-RMC, void and malformed
// sentences are ignored.
func (c *Clock) HandleLine(line string) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "$") {
		return
	}

	sentence, err := nmea.Parse(line)
	if err != nil {
		// noisy GPS or partial sentences
		return
	}
	if sentence.DataType() != nmea.TypeRMC {
		return
	}
	m := sentence.(nmea.RMC)
	if m.Validity != nmea.ValidRMC || !m.Time.Valid || !m.Date.Valid {
		return
	}

	year := 2000 + m.Date.YY
	if m.Date.YY >= 80 {
		year = 1900 + m.Date.YY
	}
	at := time.Date(year, time.Month(m.Date.MM), m.Date.DD,
		m.Time.Hour, m.Time.Minute, m.Time.Second, m.Time.Millisecond*int(time.Millisecond), time.UTC)

	fix := Fix{
		Time:       m.Time.String(),
		Date:       m.Date.String(),
		Latitude:   m.Latitude,
		Longitude:  m.Longitude,
		SpeedKnots: m.Speed,
		CourseDeg:  m.Course,
		Validity:   m.Validity,
	}

	c.mu.Lock()
	first := c.fixTime.IsZero()
	c.fix = fix
	c.fixTime = at
	c.received = c.now()
	c.mu.Unlock()

	if first && c.log != nil {
		c.log.Info("gps: clock synchronized", "utc", at.Format(time.RFC3339))
	}
}
