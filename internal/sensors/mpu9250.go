// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/devices/v3/mpu9250"
	"periph.io/x/host/v3"

	"github.com/relabs-tech/gforce_gauge/internal/imu"
)

// accelReader is the part of the MPU9250 driver the source uses.
type accelReader interface {
	GetAccelerationX() (int16, error)
	GetAccelerationY() (int16, error)
	GetAccelerationZ() (int16, error)
}

// MPU9250 reads acceleration from an MPU9250 over SPI. Reads are
// serialized; on a failed read the last good sample is returned.
type MPU9250 struct {
	mu         sync.Mutex
	dev        accelReader
	countsPerG float64
	last       imu.Sample
	failing    bool
	log        *slog.Logger
}

// MPU9250Config selects the bus and range.
type MPU9250Config struct {
	SPIDevice  string
	CSPin      string
	AccelRange byte // 0=±2g, 1=±4g, 2=±8g, 3=±16g
}

// OpenMPU9250 initializes the sensor.
func OpenMPU9250(cfg MPU9250Config, log *slog.Logger) (*MPU9250, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("IMU: periph host init: %w", err)
	}

	cs := gpioreg.ByName(cfg.CSPin)
	if cs == nil {
		return nil, fmt.Errorf("IMU: CS pin %q not found", cfg.CSPin)
	}

	tr, err := mpu9250.NewSpiTransport(cfg.SPIDevice, cs)
	if err != nil {
		return nil, fmt.Errorf("IMU: SPI transport (%s): %w", cfg.SPIDevice, err)
	}

	dev, err := mpu9250.New(*tr)
	if err != nil {
		return nil, fmt.Errorf("IMU: device creation: %w", err)
	}
	if err := dev.Init(); err != nil {
		return nil, fmt.Errorf("IMU: initialization: %w", err)
	}
	if err := dev.SetAccelRange(cfg.AccelRange); err != nil {
		return nil, fmt.Errorf("IMU: set accel range: %w", err)
	}
	log.Info("IMU: accelerometer range set", "code", cfg.AccelRange, "g", []int{2, 4, 8, 16}[cfg.AccelRange&3])

	if err := dev.Calibrate(); err != nil {
		log.Warn("IMU: calibration failed", "err", err)
	} else {
		log.Info("IMU: calibration complete")
	}

	return newMPU9250(dev, imu.CountsPerG(cfg.AccelRange), log), nil
}

func newMPU9250(dev accelReader, countsPerG float64, log *slog.Logger) *MPU9250 {
	return &MPU9250{dev: dev, countsPerG: countsPerG, log: log}
}

// Sample implements imu.Source.
func (s *MPU9250) Sample() imu.Sample {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := s.readRaw()
	if err != nil {
		if !s.failing {
			s.log.Warn("IMU: read failed, holding last sample", "err", err)
			s.failing = true
		}
		return s.last
	}
	if s.failing {
		s.log.Info("IMU: reads recovered")
		s.failing = false
	}
	s.last = raw.ToSample(s.countsPerG, time.Now())
	return s.last
}

func (s *MPU9250) readRaw() (imu.Raw, error) {
	ax, err := s.dev.GetAccelerationX()
	if err != nil {
		return imu.Raw{}, fmt.Errorf("IMU accel X: %w", err)
	}
	ay, err := s.dev.GetAccelerationY()
	if err != nil {
		return imu.Raw{}, fmt.Errorf("IMU accel Y: %w", err)
	}
	az, err := s.dev.GetAccelerationZ()
	if err != nil {
		return imu.Raw{}, fmt.Errorf("IMU accel Z: %w", err)
	}
	return imu.Raw{Ax: ax, Ay: ay, Az: az}, nil
}
