// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package app wires the gauge together and runs its long-lived services.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"
	"periph.io/x/conn/v3/display"

	"github.com/relabs-tech/gforce_gauge/internal/clock"
	"github.com/relabs-tech/gforce_gauge/internal/config"
	"github.com/relabs-tech/gforce_gauge/internal/gps"
	"github.com/relabs-tech/gforce_gauge/internal/imu"
	"github.com/relabs-tech/gforce_gauge/internal/logging"
	"github.com/relabs-tech/gforce_gauge/internal/producer"
	"github.com/relabs-tech/gforce_gauge/internal/screen"
	"github.com/relabs-tech/gforce_gauge/internal/sensors"
	"github.com/relabs-tech/gforce_gauge/internal/storage"
	"github.com/relabs-tech/gforce_gauge/internal/ui"
)

// Deps are the hardware-facing collaborators of the gauge core.
type Deps struct {
	Source imu.Source
	Panel  display.Drawer // nil renders nothing
	Clock  clock.Clock    // nil uses the system clock
}

// Gauge is the assembled core: screen controller, producers, UI loop and
// shared aggregate.
type Gauge struct {
	cfg *config.Config
	log *slog.Logger

	Controller *screen.Controller
	Channel    *ui.Channel
	Loop       *ui.Loop
	Aggregate  *producer.Aggregate
	Producers  []*producer.Producer
	Dispatcher *Dispatcher
	Hub        *StateHub
	CSV        *storage.CSVLog // nil when logging is off
}

func ms(v int) time.Duration { return time.Duration(v) * time.Millisecond }

// NewGauge assembles the core from cfg and deps.
func NewGauge(cfg *config.Config, deps Deps, log *slog.Logger) (*Gauge, error) {
	if deps.Source == nil {
		return nil, fmt.Errorf("gauge: no IMU source")
	}
	clk := deps.Clock
	if clk == nil {
		clk = clock.System{}
	}
	policy, err := ui.ParseFadePolicy(cfg.StampFadePolicy)
	if err != nil {
		return nil, fmt.Errorf("gauge: %w", err)
	}

	center := ui.Point{X: cfg.DisplaySize / 2, Y: cfg.DisplaySize / 2}
	scale := producer.Scale{GMax: cfg.GMax, Radius: cfg.DotRadius, Center: center}

	g := &Gauge{
		cfg:       cfg,
		log:       log,
		Channel:   ui.NewChannel(cfg.UIQueueDepth),
		Aggregate: producer.NewAggregate(),
		Hub:       NewStateHub(),
	}

	reg := screen.NewRegistry()
	g.Controller = screen.NewController(reg, logging.Component(log, "screen"))
	reg.Subscribe(func(_, next screen.Screen) {
		g.Channel.Submit(producer.ScreenRequest(next))
	})

	model := ui.NewModel(center, ms(cfg.StampFadeMS), policy)
	g.Loop = ui.NewLoop(g.Channel, model, deps.Panel, cfg.DisplaySize, ms(cfg.UIFrameMS), logging.Component(log, "ui"))
	g.Loop.Observe(g.Hub.Publish)

	var appender storage.Appender
	if cfg.LogEnabled {
		g.CSV = storage.NewCSVLog(cfg.LogDir, producer.CSVHeader(cfg.LogIncludeZ), cfg.LogQueueSize, logging.Component(log, "storage"))
		appender = g.CSV
	}

	plog := logging.Component(log, "producer")
	add := func(name string, s screen.Screen, periodMS int, b producer.Behavior) {
		p := producer.New(name, s, ms(periodMS), deps.Source, g.Channel, b, plog)
		g.Producers = append(g.Producers, p)
		g.Controller.Register(s, p)
	}
	add("dot", screen.Dot, cfg.DotPeriodMS, producer.NewDot(scale, cfg.FilterAlpha))
	add("stats", screen.Stats, cfg.StatsPeriodMS, producer.NewStats(g.Aggregate))
	add("timer", screen.Timer, cfg.TimerPeriodMS, producer.NewTimer(g.Aggregate))
	add("stamps", screen.Stamps, cfg.StampPeriodMS, producer.NewStamps(producer.StampsConfig{
		Scale:     scale,
		MaxStamps: cfg.MaxStamps,
		Log:       appender,
		Clock:     clk,
		IncludeZ:  cfg.LogIncludeZ,
	}))
	g.Controller.Register(screen.Splash, nil)

	g.Dispatcher = NewDispatcher(g.Controller, g.Channel, g.Aggregate, cfg.LapStopsTimer, logging.Component(log, "commands"))
	return g, nil
}

// Run starts the UI loop, producers and log writer and blocks until ctx is
// done or one of them fails.
func (g *Gauge) Run(ctx context.Context) error {
	eg, ctx := errgroup.WithContext(ctx)

	eg.Go(func() error { return g.Loop.Run(ctx) })
	for _, p := range g.Producers {
		eg.Go(func() error { return p.Run(ctx) })
	}
	if g.CSV != nil {
		eg.Go(func() error { return g.CSV.Run(ctx) })
		g.log.Info("gauge: logging stamps", "path", g.CSV.Path())
	}

	g.Controller.Reconcile()
	if g.cfg.SplashDurationMS > 0 {
		eg.Go(func() error {
			g.Controller.AutoAdvance(ctx, ms(g.cfg.SplashDurationMS))
			return nil
		})
	} else {
		g.Controller.LeaveSplash()
	}

	return eg.Wait()
}

// optional wraps a side service so its failure is logged instead of
// stopping the gauge.
func optional(log *slog.Logger, name string, run func() error) func() error {
	return func() error {
		if err := run(); err != nil {
			log.Warn("gauge: service stopped", "service", name, "err", err)
		}
		return nil
	}
}

// RunGauge opens the configured hardware and services and runs the gauge
// until ctx is done.
func RunGauge(ctx context.Context, log *slog.Logger) error {
	cfg := config.Get()
	if cfg == nil {
		return fmt.Errorf("gauge: config not initialized")
	}

	var deps Deps
	if cfg.IMUMock {
		deps.Source = sensors.NewMock()
		log.Info("gauge: using mock IMU")
	} else {
		src, err := sensors.OpenMPU9250(sensors.MPU9250Config{
			SPIDevice:  cfg.IMUSPIDevice,
			CSPin:      cfg.IMUCSPin,
			AccelRange: cfg.IMUAccelRange,
		}, logging.Component(log, "imu"))
		if err != nil {
			return err
		}
		deps.Source = src
	}

	if cfg.DisplayEnabled {
		panel, err := ui.OpenSSD1306(cfg.DisplayI2CBus)
		if err != nil {
			return err
		}
		defer panel.Close()
		deps.Panel = panel
		log.Info("gauge: display initialized", "panel", panel.String(), "bounds", panel.Bounds())
	}

	eg, ctx := errgroup.WithContext(ctx)

	if cfg.GPSSerialPort != "" {
		port, err := gps.OpenSerial(cfg.GPSSerialPort, cfg.GPSBaudRate)
		if err != nil {
			return err
		}
		defer port.Close()
		gc := gps.NewClock(logging.Component(log, "gps"))
		deps.Clock = gc
		// a dead GPS leaves the clock free-running from its last fix
		eg.Go(optional(log, "gps reader", func() error { return gc.Run(ctx, port) }))
	}

	g, err := NewGauge(cfg, deps, log)
	if err != nil {
		return err
	}

	if cfg.MQTTEmbeddedBroker != "" {
		broker, err := StartBroker(cfg.MQTTEmbeddedBroker, logging.Component(log, "broker"))
		if err != nil {
			return err
		}
		defer broker.Close()
	}

	if cfg.MQTTBroker != "" {
		bridge := NewBridge(BridgeConfig{
			Broker:       cfg.MQTTBroker,
			ClientID:     cfg.MQTTClientID,
			TopicCommand: cfg.TopicCommand,
			TopicState:   cfg.TopicState,
			PublishEvery: ms(cfg.StatePublishMS),
		}, g.Hub, g.Dispatcher.ExecuteText, logging.Component(log, "mqtt"))
		eg.Go(optional(log, "mqtt bridge", func() error { return bridge.Run(ctx) }))
	}

	if cfg.WebServerPort > 0 {
		mirror := NewMirror(g.Hub, g.Dispatcher.ExecuteText, "web", logging.Component(log, "web"))
		addr := ":" + strconv.Itoa(cfg.WebServerPort)
		eg.Go(optional(log, "web mirror", func() error { return mirror.Run(ctx, addr) }))
	}

	if cfg.ButtonPin != "" {
		btn, err := sensors.OpenButton(cfg.ButtonPin, logging.Component(log, "button"))
		if err != nil {
			return err
		}
		eg.Go(func() error {
			return btn.Run(ctx, func(p sensors.Press) { g.Dispatcher.Execute(PressCommand(p)) })
		})
	}

	eg.Go(func() error { return g.Run(ctx) })
	return eg.Wait()
}
