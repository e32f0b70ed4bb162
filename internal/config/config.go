// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
)

// Config holds all application configuration values.
type Config struct {
	// Logging
	LogLevel string // debug, info, warn, error

	// MQTT
	MQTTBroker         string // empty disables the bridge
	MQTTClientID       string
	MQTTEmbeddedBroker string // listen address for the in-process broker, empty = off
	TopicCommand       string
	TopicState         string
	StatePublishMS     int

	// IMU Hardware
	IMUMock      bool
	IMUSPIDevice string
	IMUCSPin     string
	// Accelerometer: 0=±2g, 1=±4g, 2=±8g, 3=±16g
	IMUAccelRange byte

	// Display
	DisplayEnabled bool
	DisplayI2CBus  string
	DisplaySize    int // logical canvas edge in pixels (round panel is square)
	DotRadius      int // pixel radius that maps to ±GMax
	GMax           float64
	FilterAlpha    float64

	// Producer periods (milliseconds)
	DotPeriodMS   int
	StatsPeriodMS int
	TimerPeriodMS int
	StampPeriodMS int

	// Stamps
	MaxStamps       int
	StampFadeMS     int
	StampFadePolicy string // "continue" or "cancel"

	// Timer
	LapStopsTimer bool

	// UI thread
	SplashDurationMS int
	UIFrameMS        int
	UIQueueDepth     int

	// Storage
	LogEnabled   bool
	LogDir       string
	LogIncludeZ  bool
	LogQueueSize int

	// GPS clock
	GPSSerialPort string // empty falls back to the system clock
	GPSBaudRate   int

	// Input
	ButtonPin string // empty disables the GPIO button

	// Web Server
	WebServerPort int // 0 disables the web mirror
}

// Package-level singleton: globalConfig is only set through InitGlobal and
// read through Get, both guarded by configMu.
var (
	globalConfig *Config
	configOnce   sync.Once
	configMu     sync.RWMutex
)

// Default returns a configuration that runs headless with a mock IMU.
func Default() *Config {
	return &Config{
		LogLevel: "info",

		MQTTClientID:   "gforce-gauge",
		TopicCommand:   "gauge/command",
		TopicState:     "gauge/state",
		StatePublishMS: 200,

		IMUMock:       true,
		IMUSPIDevice:  "/dev/spidev0.0",
		IMUCSPin:      "8",
		IMUAccelRange: 1,

		DisplayI2CBus: "",
		DisplaySize:   480,
		DotRadius:     200,
		GMax:          2.5,
		FilterAlpha:   0.15,

		DotPeriodMS:   20,
		StatsPeriodMS: 50,
		TimerPeriodMS: 50,
		StampPeriodMS: 200,

		MaxStamps:       20,
		StampFadeMS:     700,
		StampFadePolicy: "continue",

		SplashDurationMS: 2000,
		UIFrameMS:        33,
		UIQueueDepth:     16,

		LogDir:       "logs",
		LogQueueSize: 256,

		GPSBaudRate: 9600,
	}
}

// Load reads the configuration file and returns a Config struct. Keys not
// present in the file keep their Default value.
func Load(configPath string) (*Config, error) {
	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	cfg := Default()
	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Parse KEY=VALUE
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid config line %d: %q", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		if err := cfg.setValue(key, value); err != nil {
			return nil, fmt.Errorf("config line %d: %w", lineNum, err)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// setValue sets a config value based on the key.
func (c *Config) setValue(key, value string) error {
	var err error
	switch key {
	case "LOG_LEVEL":
		c.LogLevel = strings.ToLower(value)

	// MQTT
	case "MQTT_BROKER":
		c.MQTTBroker = value
	case "MQTT_CLIENT_ID":
		c.MQTTClientID = value
	case "MQTT_EMBEDDED_BROKER":
		c.MQTTEmbeddedBroker = value
	case "TOPIC_COMMAND":
		c.TopicCommand = value
	case "TOPIC_STATE":
		c.TopicState = value
	case "STATE_PUBLISH_MS":
		c.StatePublishMS, err = parseInt(key, value, 0, 60_000)

	// IMU Hardware
	case "IMU_MOCK":
		c.IMUMock, err = parseBool(key, value)
	case "IMU_SPI_DEVICE":
		c.IMUSPIDevice = value
	case "IMU_CS_PIN":
		c.IMUCSPin = value
	case "IMU_ACCEL_RANGE":
		var rangeVal int
		rangeVal, err = strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid IMU_ACCEL_RANGE %q: %w", value, err)
		}
		if rangeVal < 0 || rangeVal > 3 {
			return fmt.Errorf("IMU_ACCEL_RANGE must be 0-3 (0=±2g, 1=±4g, 2=±8g, 3=±16g), got %d", rangeVal)
		}
		c.IMUAccelRange = byte(rangeVal)

	// Display
	case "DISPLAY_ENABLED":
		c.DisplayEnabled, err = parseBool(key, value)
	case "DISPLAY_I2C_BUS":
		c.DisplayI2CBus = value
	case "DISPLAY_SIZE":
		c.DisplaySize, err = parseInt(key, value, 16, 4096)
	case "DOT_RADIUS":
		c.DotRadius, err = parseInt(key, value, 1, 2048)
	case "G_MAX":
		c.GMax, err = parseFloat(key, value)
	case "FILTER_ALPHA":
		c.FilterAlpha, err = parseFloat(key, value)

	// Producer periods
	case "DOT_PERIOD_MS":
		c.DotPeriodMS, err = parseInt(key, value, 1, 10_000)
	case "STATS_PERIOD_MS":
		c.StatsPeriodMS, err = parseInt(key, value, 1, 10_000)
	case "TIMER_PERIOD_MS":
		c.TimerPeriodMS, err = parseInt(key, value, 1, 10_000)
	case "STAMP_PERIOD_MS":
		c.StampPeriodMS, err = parseInt(key, value, 1, 10_000)

	// Stamps
	case "MAX_STAMPS":
		c.MaxStamps, err = parseInt(key, value, 1, 1024)
	case "STAMP_FADE_MS":
		c.StampFadeMS, err = parseInt(key, value, 1, 60_000)
	case "STAMP_FADE_POLICY":
		v := strings.ToLower(value)
		if v != "continue" && v != "cancel" {
			return fmt.Errorf("STAMP_FADE_POLICY must be continue or cancel, got %q", value)
		}
		c.StampFadePolicy = v

	// Timer
	case "LAP_STOPS_TIMER":
		c.LapStopsTimer, err = parseBool(key, value)

	// UI thread
	case "SPLASH_DURATION_MS":
		c.SplashDurationMS, err = parseInt(key, value, 0, 60_000)
	case "UI_FRAME_MS":
		c.UIFrameMS, err = parseInt(key, value, 1, 1000)
	case "UI_QUEUE_DEPTH":
		c.UIQueueDepth, err = parseInt(key, value, 1, 4096)

	// Storage
	case "LOG_ENABLED":
		c.LogEnabled, err = parseBool(key, value)
	case "LOG_DIR":
		c.LogDir = value
	case "LOG_INCLUDE_Z":
		c.LogIncludeZ, err = parseBool(key, value)
	case "LOG_QUEUE_SIZE":
		c.LogQueueSize, err = parseInt(key, value, 1, 65_536)

	// GPS
	case "GPS_SERIAL_PORT":
		c.GPSSerialPort = value
	case "GPS_BAUD_RATE":
		c.GPSBaudRate, err = parseInt(key, value, 300, 921_600)

	// Input
	case "BUTTON_PIN":
		c.ButtonPin = value

	// Web Server
	case "WEB_SERVER_PORT":
		c.WebServerPort, err = parseInt(key, value, 0, 65_535)

	default:
		return fmt.Errorf("unknown config key: %q", key)
	}

	return err
}

func parseInt(key, value string, min, max int) (int, error) {
	v, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	if v < min || v > max {
		return 0, fmt.Errorf("%s must be %d-%d, got %d", key, min, max, v)
	}
	return v, nil
}

func parseFloat(key, value string) (float64, error) {
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return v, nil
}

func parseBool(key, value string) (bool, error) {
	v, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return v, nil
}

// validate checks cross-field constraints.
func (c *Config) validate() error {
	if c.GMax <= 0 {
		return fmt.Errorf("G_MAX must be positive, got %g", c.GMax)
	}
	if c.FilterAlpha <= 0 || c.FilterAlpha > 1 {
		return fmt.Errorf("FILTER_ALPHA must be in (0, 1], got %g", c.FilterAlpha)
	}
	if 2*c.DotRadius > c.DisplaySize {
		return fmt.Errorf("DOT_RADIUS %d does not fit DISPLAY_SIZE %d", c.DotRadius, c.DisplaySize)
	}
	if !c.IMUMock && c.IMUSPIDevice == "" {
		return fmt.Errorf("IMU_SPI_DEVICE is required unless IMU_MOCK=true")
	}
	if c.LogEnabled && c.LogDir == "" {
		return fmt.Errorf("LOG_DIR is required when LOG_ENABLED=true")
	}
	if c.MQTTBroker != "" && (c.TopicCommand == "" || c.TopicState == "") {
		return fmt.Errorf("TOPIC_COMMAND and TOPIC_STATE are required with MQTT_BROKER")
	}
	return nil
}

// InitGlobal initializes the global configuration from file.
// Only the first call loads; later calls return nil.
func InitGlobal(configPath string) error {
	var err error
	configOnce.Do(func() {
		configMu.Lock()
		defer configMu.Unlock()
		globalConfig, err = Load(configPath)
	})
	return err
}

// Get returns the global configuration instance.
// InitGlobal must be called first, or this will return nil.
func Get() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return globalConfig
}
