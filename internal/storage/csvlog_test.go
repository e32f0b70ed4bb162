// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/gforce_gauge/internal/logging"
)

func TestCSVLogAppendsLines(t *testing.T) {
	dir := t.TempDir()
	l := NewCSVLog(dir, "timestamp,x,y", 8, logging.Discard())
	require.Equal(t, dir, filepath.Dir(l.Path()))

	l.Append("t1,0.10,0.20")
	l.Append("t2,0.30,0.40")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, l.Run(ctx))

	body, err := os.ReadFile(l.Path())
	require.NoError(t, err)
	require.Equal(t, "timestamp,x,y\nt1,0.10,0.20\nt2,0.30,0.40\n", string(body))

	written, dropped, failed := l.Stats()
	require.Equal(t, uint64(2), written)
	require.Zero(t, dropped)
	require.Zero(t, failed)
}

func TestCSVLogDropsWhenQueueFull(t *testing.T) {
	l := NewCSVLog(t.TempDir(), "", 2, logging.Discard())
	for i := 0; i < 5; i++ {
		l.Append("x")
	}
	_, dropped, _ := l.Stats()
	require.Equal(t, uint64(3), dropped)
}

func TestCSVLogSurvivesUnwritableDir(t *testing.T) {
	parent := t.TempDir()
	blocker := filepath.Join(parent, "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))

	// the log directory is a regular file, so every open fails
	l := NewCSVLog(blocker, "h", 4, logging.Discard())
	l.Append("a")
	l.Append("b")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, l.Run(ctx))

	written, _, failed := l.Stats()
	require.Zero(t, written)
	require.Equal(t, uint64(2), failed)
	require.True(t, strings.HasPrefix(filepath.Base(l.Path()), "stamps_"))
}
