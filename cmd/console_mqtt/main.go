// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/relabs-tech/gforce_gauge/internal/app"
	"github.com/relabs-tech/gforce_gauge/internal/config"
	"github.com/relabs-tech/gforce_gauge/internal/logging"
)

func main() {
	configPath := "gauge_config.txt"
	if len(os.Args) > 1 {
		configPath = os.Args[1]
	}

	if err := config.InitGlobal(configPath); err != nil {
		logging.New(os.Stderr, "info").Error("failed to load config", "path", configPath, "err", err)
		os.Exit(1)
	}

	log := logging.New(os.Stderr, config.Get().LogLevel)
	log.Info("starting gauge console (MQTT subscriber)")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.RunConsoleMQTT(ctx, os.Stdout, log); err != nil {
		log.Error("fatal", "err", err)
		os.Exit(1)
	}
}
