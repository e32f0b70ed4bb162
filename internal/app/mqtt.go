// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	mochi "github.com/mochi-mqtt/server/v2"
	"github.com/mochi-mqtt/server/v2/hooks/auth"
	"github.com/mochi-mqtt/server/v2/listeners"
)

// BridgeConfig configures the MQTT bridge.
type BridgeConfig struct {
	Broker       string
	ClientID     string
	TopicCommand string
	TopicState   string
	PublishEvery time.Duration
}

// Bridge accepts text commands on one topic and publishes throttled UI
// state snapshots on another.
type Bridge struct {
	cfg  BridgeConfig
	hub  *StateHub
	exec func(string) error
	log  *slog.Logger
}

// NewBridge creates a bridge; exec runs received commands.
func NewBridge(cfg BridgeConfig, hub *StateHub, exec func(string) error, log *slog.Logger) *Bridge {
	if cfg.PublishEvery <= 0 {
		cfg.PublishEvery = 200 * time.Millisecond
	}
	return &Bridge{cfg: cfg, hub: hub, exec: exec, log: log}
}

// Run connects and serves until ctx is done.
func (b *Bridge) Run(ctx context.Context) error {
	// session suffix keeps two gauges on one broker from kicking each other
	clientID := b.cfg.ClientID + "-" + uuid.NewString()[:8]

	opts := mqtt.NewClientOptions().
		AddBroker(b.cfg.Broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectTimeout(5 * time.Second)
	opts.SetOnConnectHandler(func(c mqtt.Client) {
		token := c.Subscribe(b.cfg.TopicCommand, 1, b.onCommand)
		token.Wait()
		if err := token.Error(); err != nil {
			b.log.Error("mqtt: subscribe failed", "topic", b.cfg.TopicCommand, "err", err)
			return
		}
		b.log.Info("mqtt: subscribed", "topic", b.cfg.TopicCommand)
	})
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		b.log.Warn("mqtt: connection lost", "err", err)
	})

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return fmt.Errorf("mqtt: connect %s: %w", b.cfg.Broker, token.Error())
	}
	defer client.Disconnect(250)
	b.log.Info("mqtt: connected", "broker", b.cfg.Broker, "client_id", clientID)

	states, cancel := b.hub.Subscribe()
	defer cancel()

	ticker := time.NewTicker(b.cfg.PublishEvery)
	defer ticker.Stop()

	var (
		pending []byte
		lastSeq uint64
	)
	for {
		select {
		case <-ctx.Done():
			return nil
		case s := <-states:
			if s.Seq == lastSeq {
				continue
			}
			lastSeq = s.Seq
			payload, err := json.Marshal(s)
			if err != nil {
				b.log.Error("mqtt: json marshal error", "err", err)
				continue
			}
			pending = payload
		case <-ticker.C:
			if pending == nil || !client.IsConnectionOpen() {
				continue
			}
			token := client.Publish(b.cfg.TopicState, 0, true, pending)
			if token.WaitTimeout(time.Second) && token.Error() != nil {
				b.log.Warn("mqtt: publish failed", "err", token.Error())
				continue
			}
			pending = nil
		}
	}
}

func (b *Bridge) onCommand(_ mqtt.Client, msg mqtt.Message) {
	text := strings.TrimSpace(string(msg.Payload()))
	if err := b.exec(text); err != nil {
		b.log.Warn("mqtt: bad command", "payload", text, "err", err)
	}
}

// StartBroker runs an in-process MQTT broker on addr. Close the returned
// server to stop it.
func StartBroker(addr string, log *slog.Logger) (*mochi.Server, error) {
	server := mochi.New(&mochi.Options{Logger: log})
	if err := server.AddHook(new(auth.AllowHook), nil); err != nil {
		return nil, fmt.Errorf("broker: auth hook: %w", err)
	}
	tcp := listeners.NewTCP(listeners.Config{
		ID:      "gauge-tcp",
		Type:    "tcp",
		Address: addr,
	})
	if err := server.AddListener(tcp); err != nil {
		return nil, fmt.Errorf("broker: listen %s: %w", addr, err)
	}
	if err := server.Serve(); err != nil {
		return nil, fmt.Errorf("broker: serve: %w", err)
	}
	log.Info("broker: listening", "addr", addr)
	return server, nil
}
