// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package ui

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"sync"

	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/devices/v3/ssd1306"
	"periph.io/x/host/v3"
)

// MemoryPanel is a display.Drawer backed by an RGBA image, used headless
// and in tests.
type MemoryPanel struct {
	mu     sync.Mutex
	img    *image.RGBA
	frames int
}

var _ display.Drawer = (*MemoryPanel)(nil)

// NewMemoryPanel creates a size x size panel.
func NewMemoryPanel(size int) *MemoryPanel {
	return &MemoryPanel{img: image.NewRGBA(image.Rect(0, 0, size, size))}
}

func (p *MemoryPanel) String() string { return "memory" }

func (p *MemoryPanel) Halt() error { return nil }

func (p *MemoryPanel) ColorModel() color.Model { return color.RGBAModel }

func (p *MemoryPanel) Bounds() image.Rectangle { return p.img.Bounds() }

// Draw copies src into the panel.
func (p *MemoryPanel) Draw(r image.Rectangle, src image.Image, sp image.Point) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	draw.Draw(p.img, r, src, sp, draw.Src)
	p.frames++
	return nil
}

// Frames counts completed blits.
func (p *MemoryPanel) Frames() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.frames
}

// At reads one pixel of the last frame.
func (p *MemoryPanel) At(x, y int) color.RGBA {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.img.RGBAAt(x, y)
}

// SSD1306 is the I2C OLED panel. Close releases the bus.
type SSD1306 struct {
	*ssd1306.Dev
	bus i2c.BusCloser
}

// OpenSSD1306 initializes periph and the panel on the named I2C bus ("" is
// the first bus).
func OpenSSD1306(busName string) (*SSD1306, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("display: periph init: %w", err)
	}
	bus, err := i2creg.Open(busName)
	if err != nil {
		return nil, fmt.Errorf("display: open I2C bus %q: %w", busName, err)
	}
	dev, err := ssd1306.NewI2C(bus, &ssd1306.DefaultOpts)
	if err != nil {
		bus.Close()
		return nil, fmt.Errorf("display: ssd1306 init: %w", err)
	}
	return &SSD1306{Dev: dev, bus: bus}, nil
}

// Close halts the panel and closes the bus.
func (p *SSD1306) Close() error {
	haltErr := p.Dev.Halt()
	if err := p.bus.Close(); err != nil {
		return err
	}
	return haltErr
}
