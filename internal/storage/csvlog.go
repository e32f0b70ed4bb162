// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package storage persists stamp samples as an append-only CSV log.
package storage

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Appender accepts one line of text. Append never blocks and never fails
// from the caller's point of view.
type Appender interface {
	Append(line string)
}

// CSVLog writes lines to a file from its own goroutine. A failed write
// (e.g. card removed) is logged, the file is closed and reopened on the
// next line.
type CSVLog struct {
	path    string
	header  string
	lines   chan string
	dropped atomic.Uint64
	failed  atomic.Uint64
	written atomic.Uint64
	log     *slog.Logger
}

// NewCSVLog prepares a log file named after the session inside dir. The
// file is created lazily by Run.
func NewCSVLog(dir, header string, queue int, log *slog.Logger) *CSVLog {
	if queue <= 0 {
		queue = 256
	}
	session := uuid.New().String()[:8]
	name := fmt.Sprintf("stamps_%s_%s.csv", time.Now().UTC().Format("20060102-150405"), session)
	return &CSVLog{
		path:   filepath.Join(dir, name),
		header: header,
		lines:  make(chan string, queue),
		log:    log,
	}
}

// Path returns the file this log writes to.
func (l *CSVLog) Path() string { return l.path }

// Append queues a line; when the queue is full the line is dropped.
func (l *CSVLog) Append(line string) {
	select {
	case l.lines <- line:
	default:
		if l.dropped.Add(1) == 1 {
			l.log.Warn("storage: queue full, dropping lines", "path", l.path)
		}
	}
}

// Stats reports written, dropped and failed line counts.
func (l *CSVLog) Stats() (written, dropped, failed uint64) {
	return l.written.Load(), l.dropped.Load(), l.failed.Load()
}

// Run drains queued lines until ctx is done, then flushes what is left.
func (l *CSVLog) Run(ctx context.Context) error {
	var (
		f *os.File
		w *bufio.Writer
	)
	closeFile := func() {
		if f == nil {
			return
		}
		if err := w.Flush(); err != nil {
			l.log.Warn("storage: flush failed", "err", err)
		}
		f.Close()
		f, w = nil, nil
	}
	defer closeFile()

	write := func(line string) {
		if f == nil {
			var err error
			f, err = l.open()
			if err != nil {
				l.failed.Add(1)
				l.log.Warn("storage: open failed, line skipped", "err", err)
				return
			}
			w = bufio.NewWriter(f)
		}
		if _, err := w.WriteString(line + "\n"); err == nil {
			err = w.Flush()
			if err == nil {
				l.written.Add(1)
				return
			}
		}
		l.failed.Add(1)
		l.log.Warn("storage: write failed, line skipped", "path", l.path)
		f.Close()
		f, w = nil, nil
	}

	for {
		select {
		case <-ctx.Done():
			for {
				select {
				case line := <-l.lines:
					write(line)
				default:
					return nil
				}
			}
		case line := <-l.lines:
			write(line)
		}
	}
}

// open creates the directory and file, writing the header when the file is
// new.
func (l *CSVLog) open() (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return nil, fmt.Errorf("storage: mkdir: %w", err)
	}
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("storage: open %s: %w", l.path, err)
	}
	if st, err := f.Stat(); err == nil && st.Size() == 0 && l.header != "" {
		if _, err := f.WriteString(l.header + "\n"); err != nil {
			f.Close()
			return nil, fmt.Errorf("storage: header: %w", err)
		}
	}
	return f, nil
}
