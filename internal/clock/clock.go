// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package clock provides the timestamp collaborator used for log records.
package clock

import "time"

// Layout is the timestamp format written to logs.
const Layout = "2006-01-02T15:04:05.000Z07:00"

// Clock produces a timestamp string.
type Clock interface {
	Timestamp() string
}

// System formats the host clock in UTC.
type System struct{}

func (System) Timestamp() string {
	return time.Now().UTC().Format(Layout)
}

// Func adapts a function to Clock.
type Func func() string

func (f Func) Timestamp() string { return f() }
