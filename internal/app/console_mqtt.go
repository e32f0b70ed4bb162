// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/relabs-tech/gforce_gauge/internal/config"
	"github.com/relabs-tech/gforce_gauge/internal/ui"
)

// FormatState renders a state snapshot as one console line.
func FormatState(s ui.Snapshot) string {
	return fmt.Sprintf("[%-6s] dot=(%3d,%3d) %s  timer=%s  laps=%s  stamps=%d",
		strings.ToUpper(s.Screen), s.Dot.X, s.Dot.Y,
		strings.Join(s.Peaks[:], " "), s.Timer,
		strings.Join(s.Laps[:], ","), len(s.Stamps))
}

// RunConsoleMQTT prints every state snapshot published by a gauge until
// ctx is done.
func RunConsoleMQTT(ctx context.Context, out io.Writer, log *slog.Logger) error {
	cfg := config.Get()
	if cfg == nil || cfg.MQTTBroker == "" {
		return fmt.Errorf("console: MQTT_BROKER not configured")
	}

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientID + "-console-" + uuid.NewString()[:8])

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return fmt.Errorf("console: connect: %w", token.Error())
	}
	defer client.Disconnect(250)
	log.Info("console: connected to MQTT broker", "broker", cfg.MQTTBroker)

	token := client.Subscribe(cfg.TopicState, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var s ui.Snapshot
		if err := json.Unmarshal(msg.Payload(), &s); err != nil {
			log.Warn("console: state unmarshal error", "err", err)
			return
		}
		fmt.Fprintln(out, FormatState(s))
	})
	token.Wait()
	if token.Error() != nil {
		return fmt.Errorf("console: subscribe %s: %w", cfg.TopicState, token.Error())
	}
	log.Info("console: subscribed", "topic", cfg.TopicState)

	<-ctx.Done()
	log.Info("console: shutting down")
	return nil
}
