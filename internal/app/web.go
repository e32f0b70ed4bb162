// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/relabs-tech/gforce_gauge/internal/ui"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for local development
	},
}

// WSMessage is sent by websocket clients.
type WSMessage struct {
	Type    string `json:"type"` // command
	Command string `json:"command"`
}

// WSResponse is pushed to websocket clients.
type WSResponse struct {
	Type  string       `json:"type"` // state, error
	State *ui.Snapshot `json:"state,omitempty"`
	Error string       `json:"error,omitempty"`
}

// Mirror serves the UI state over HTTP and websocket and accepts commands.
type Mirror struct {
	hub       *StateHub
	exec      func(string) error
	staticDir string
	log       *slog.Logger
}

// NewMirror creates the web mirror. staticDir is served at / when it
// exists.
func NewMirror(hub *StateHub, exec func(string) error, staticDir string, log *slog.Logger) *Mirror {
	return &Mirror{hub: hub, exec: exec, staticDir: staticDir, log: log}
}

// Handler returns the HTTP routes.
func (m *Mirror) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/state", m.handleState)
	mux.HandleFunc("/api/command", m.handleCommand)
	mux.HandleFunc("/ws", m.handleWS)
	if st, err := os.Stat(m.staticDir); err == nil && st.IsDir() {
		mux.Handle("/", http.FileServer(http.Dir(m.staticDir)))
	}
	return mux
}

// Run serves on addr until ctx is done.
func (m *Mirror) Run(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: m.Handler(), ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	m.log.Info("web: server listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("web: %w", err)
	}
	return nil
}

func (m *Mirror) handleState(w http.ResponseWriter, r *http.Request) {
	snap, ok := m.hub.Latest()
	if !ok {
		http.Error(w, "no data yet", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(snap); err != nil {
		m.log.Warn("web: json encode error", "err", err)
	}
}

func (m *Mirror) handleCommand(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "POST only", http.StatusMethodNotAllowed)
		return
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, 256))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := m.exec(strings.TrimSpace(string(body))); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (m *Mirror) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		m.log.Warn("web: websocket upgrade failed", "err", err)
		return
	}
	defer conn.Close()
	m.log.Debug("web: websocket client connected", "remote", r.RemoteAddr)

	states, cancel := m.hub.Subscribe()
	defer cancel()

	errs := make(chan string, 4)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			var msg WSMessage
			if err := conn.ReadJSON(&msg); err != nil {
				return
			}
			if msg.Type != "command" {
				continue
			}
			if err := m.exec(msg.Command); err != nil {
				select {
				case errs <- err.Error():
				default:
				}
			}
		}
	}()

	for {
		var resp WSResponse
		select {
		case <-done:
			return
		case <-r.Context().Done():
			return
		case s := <-states:
			resp = WSResponse{Type: "state", State: &s}
		case e := <-errs:
			resp = WSResponse{Type: "error", Error: e}
		}
		if err := conn.WriteJSON(resp); err != nil {
			return
		}
	}
}
