// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package screen

import (
	"context"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/gforce_gauge/internal/logging"
)

type fakeHandle struct {
	mu       sync.Mutex
	running  bool
	resumes  int
	suspends int
}

func (f *fakeHandle) Resume() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.running = true
	f.resumes++
}

func (f *fakeHandle) Suspend() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.running = false
	f.suspends++
}

func (f *fakeHandle) isRunning() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.running
}

func newTestController() (*Controller, map[Screen]*fakeHandle) {
	c := NewController(NewRegistry(), logging.Discard())
	handles := map[Screen]*fakeHandle{}
	for _, s := range []Screen{Dot, Stats, Timer, Stamps} {
		h := &fakeHandle{}
		handles[s] = h
		c.Register(s, h)
	}
	return c, handles
}

func requireExactlyActiveRunning(t *testing.T, c *Controller, handles map[Screen]*fakeHandle) {
	t.Helper()
	active := c.Registry().Active()
	running := 0
	for s, h := range handles {
		if h.isRunning() {
			running++
			require.Equal(t, active, s)
		}
		if s == active {
			require.Equal(t, Running, c.State()[s])
		} else {
			require.Equal(t, Suspended, c.State()[s])
		}
	}
	if active == Splash {
		require.Zero(t, running)
	} else {
		require.Equal(t, 1, running)
	}
}

func TestControllerStartsOnSplash(t *testing.T) {
	c, handles := newTestController()
	require.Equal(t, Splash, c.Registry().Active())
	c.Reconcile()
	requireExactlyActiveRunning(t, c, handles)
}

func TestControllerInvariantOverRandomSequences(t *testing.T) {
	c, handles := newTestController()
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 500; i++ {
		c.SetActive(All[rng.Intn(len(All))])
		requireExactlyActiveRunning(t, c, handles)
	}
}

func TestReconcileIsIdempotent(t *testing.T) {
	c, handles := newTestController()
	c.SetActive(Timer)
	first := c.State()
	c.Reconcile()
	c.Reconcile()
	require.Equal(t, first, c.State())
	requireExactlyActiveRunning(t, c, handles)
}

func TestControllerToleratesMissingHandle(t *testing.T) {
	c := NewController(NewRegistry(), logging.Discard())
	dot := &fakeHandle{}
	c.Register(Dot, dot)
	c.Register(Stats, nil)

	c.SetActive(Stats)
	require.Equal(t, Suspended, c.State()[Stats])
	require.False(t, dot.isRunning())

	stats := &fakeHandle{}
	c.Register(Stats, stats)
	c.Reconcile()
	require.True(t, stats.isRunning())
	require.Equal(t, Running, c.State()[Stats])
}

func TestListenersSeeChangesOnly(t *testing.T) {
	c, _ := newTestController()
	var seen [][2]Screen
	c.Registry().Subscribe(func(prev, next Screen) {
		seen = append(seen, [2]Screen{prev, next})
	})
	c.SetActive(Dot)
	c.SetActive(Dot)
	c.Next()
	c.Prev()
	require.Equal(t, [][2]Screen{{Splash, Dot}, {Dot, Stats}, {Stats, Dot}}, seen)
}

func TestNavigationOrder(t *testing.T) {
	s := Splash
	var order []Screen
	for i := 0; i < 6; i++ {
		s = s.Next()
		order = append(order, s)
	}
	require.Equal(t, []Screen{Dot, Stats, Timer, Stamps, Dot, Stats}, order)
	require.Equal(t, Splash, Dot.Prev())
	require.Equal(t, Timer, Stamps.Prev())
}

func TestParseScreen(t *testing.T) {
	for _, s := range All {
		got, err := ParseScreen(s.String())
		require.NoError(t, err)
		require.Equal(t, s, got)
	}
	got, err := ParseScreen("GForce")
	require.NoError(t, err)
	require.Equal(t, Dot, got)
	_, err = ParseScreen("menu")
	require.Error(t, err)
}

func TestAutoAdvance(t *testing.T) {
	c, handles := newTestController()
	c.AutoAdvance(context.Background(), time.Millisecond)
	require.Equal(t, Dot, c.Registry().Active())
	requireExactlyActiveRunning(t, c, handles)

	// only once
	c.SetActive(Splash)
	c.AutoAdvance(context.Background(), time.Millisecond)
	require.Equal(t, Splash, c.Registry().Active())
}

func TestAutoAdvanceRespectsUserNavigation(t *testing.T) {
	c, _ := newTestController()
	c.SetActive(Timer)
	c.AutoAdvance(context.Background(), time.Millisecond)
	require.Equal(t, Timer, c.Registry().Active())
}

func TestAutoAdvanceCancelled(t *testing.T) {
	c, _ := newTestController()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c.AutoAdvance(ctx, time.Hour)
	require.Equal(t, Splash, c.Registry().Active())
}

func TestLeaveSplashRespectsUserNavigation(t *testing.T) {
	c, handles := newTestController()
	c.SetActive(Stamps)
	c.LeaveSplash()
	require.Equal(t, Stamps, c.Registry().Active())
	requireExactlyActiveRunning(t, c, handles)

	fresh, _ := newTestController()
	fresh.LeaveSplash()
	require.Equal(t, Dot, fresh.Registry().Active())
}

func TestConcurrentNextLosesNoTaps(t *testing.T) {
	c, handles := newTestController()
	c.SetActive(Dot)

	// Dot, Stats, Timer, Stamps cycle with period 4
	const taps = 4*25 + 1
	var wg sync.WaitGroup
	for i := 0; i < taps; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Next()
		}()
	}
	wg.Wait()
	require.Equal(t, Stats, c.Registry().Active())
	requireExactlyActiveRunning(t, c, handles)
}
