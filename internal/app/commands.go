// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/relabs-tech/gforce_gauge/internal/producer"
	"github.com/relabs-tech/gforce_gauge/internal/screen"
	"github.com/relabs-tech/gforce_gauge/internal/sensors"
	"github.com/relabs-tech/gforce_gauge/internal/ui"
)

// CommandKind enumerates user commands.
type CommandKind uint8

const (
	CmdNext CommandKind = iota
	CmdPrev
	CmdScreen
	CmdLap
	CmdReset
)

// Command is a parsed user command.
type Command struct {
	Kind   CommandKind
	Screen screen.Screen // CmdScreen only
}

// ParseCommand accepts "next", "prev", "screen <name>", "lap" and "reset",
// case-insensitively.
func ParseCommand(text string) (Command, error) {
	fields := strings.Fields(strings.ToLower(text))
	if len(fields) == 0 {
		return Command{}, fmt.Errorf("empty command")
	}
	switch fields[0] {
	case "next", "tap":
		return Command{Kind: CmdNext}, nil
	case "prev", "back":
		return Command{Kind: CmdPrev}, nil
	case "lap":
		return Command{Kind: CmdLap}, nil
	case "reset":
		return Command{Kind: CmdReset}, nil
	case "screen":
		if len(fields) != 2 {
			return Command{}, fmt.Errorf("screen command needs a name")
		}
		s, err := screen.ParseScreen(fields[1])
		if err != nil {
			return Command{}, err
		}
		return Command{Kind: CmdScreen, Screen: s}, nil
	}
	return Command{}, fmt.Errorf("unknown command %q", fields[0])
}

// PressCommand maps a button press: tap advances, long laps, very long
// resets.
func PressCommand(p sensors.Press) Command {
	switch p {
	case sensors.Long:
		return Command{Kind: CmdLap}
	case sensors.VeryLong:
		return Command{Kind: CmdReset}
	}
	return Command{Kind: CmdNext}
}

// Dispatcher routes commands to the controller or the UI channel.
type Dispatcher struct {
	ctrl          *screen.Controller
	out           ui.Submitter
	agg           *producer.Aggregate
	lapStopsTimer bool
	log           *slog.Logger
}

// NewDispatcher creates a dispatcher.
func NewDispatcher(ctrl *screen.Controller, out ui.Submitter, agg *producer.Aggregate, lapStopsTimer bool, log *slog.Logger) *Dispatcher {
	return &Dispatcher{ctrl: ctrl, out: out, agg: agg, lapStopsTimer: lapStopsTimer, log: log}
}

// Execute runs one command.
func (d *Dispatcher) Execute(c Command) {
	switch c.Kind {
	case CmdNext:
		d.ctrl.Next()
	case CmdPrev:
		d.ctrl.Prev()
	case CmdScreen:
		d.ctrl.SetActive(c.Screen)
	case CmdLap:
		if d.ctrl.Registry().Active() != screen.Timer {
			d.log.Debug("commands: lap ignored off the timer screen")
			return
		}
		d.out.Submit(producer.LapRequest(d.agg, d.ctrl.Registry().Active, d.lapStopsTimer))
	case CmdReset:
		d.out.Submit(producer.ResetRequest(d.agg))
	}
}

// ExecuteText parses and runs a textual command.
func (d *Dispatcher) ExecuteText(text string) error {
	c, err := ParseCommand(text)
	if err != nil {
		d.log.Debug("commands: rejected", "text", text, "err", err)
		return err
	}
	d.Execute(c)
	return nil
}
