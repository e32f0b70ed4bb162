// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/gforce_gauge/internal/screen"
	"github.com/relabs-tech/gforce_gauge/internal/sensors"
)

func TestParseCommand(t *testing.T) {
	cases := map[string]Command{
		"next":          {Kind: CmdNext},
		" NEXT ":        {Kind: CmdNext},
		"prev":          {Kind: CmdPrev},
		"lap":           {Kind: CmdLap},
		"reset":         {Kind: CmdReset},
		"screen timer":  {Kind: CmdScreen, Screen: screen.Timer},
		"screen gforce": {Kind: CmdScreen, Screen: screen.Dot},
	}
	for text, want := range cases {
		got, err := ParseCommand(text)
		require.NoError(t, err, text)
		require.Equal(t, want, got, text)
	}

	for _, bad := range []string{"", "jump", "screen", "screen nowhere", "screen dot extra"} {
		_, err := ParseCommand(bad)
		require.Error(t, err, bad)
	}
}

func TestPressCommand(t *testing.T) {
	require.Equal(t, CmdNext, PressCommand(sensors.Tap).Kind)
	require.Equal(t, CmdLap, PressCommand(sensors.Long).Kind)
	require.Equal(t, CmdReset, PressCommand(sensors.VeryLong).Kind)
}

func TestStateHubKeepsNewest(t *testing.T) {
	h := NewStateHub()
	_, ok := h.Latest()
	require.False(t, ok)

	ch, cancel := h.Subscribe()
	defer cancel()
	for i := uint64(1); i <= 5; i++ {
		h.Publish(snapshotSeq(i))
	}
	got := <-ch
	require.Equal(t, uint64(5), got.Seq)

	late, cancelLate := h.Subscribe()
	defer cancelLate()
	require.Equal(t, uint64(5), (<-late).Seq)
}
