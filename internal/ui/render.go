// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package ui

import (
	"image"
	"image/color"
	"image/draw"
	"time"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/relabs-tech/gforce_gauge/internal/screen"
)

const lineHeight = 13

var (
	background = color.RGBA{A: 0xFF}
	foreground = color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}
)

// Renderer draws the model onto a frame sized to the panel. Model
// coordinates live on a canvas x canvas logical square.
type Renderer struct {
	canvas int
	frame  *image.RGBA
}

// NewRenderer creates a renderer for the given panel bounds.
func NewRenderer(canvas int, bounds image.Rectangle) *Renderer {
	return &Renderer{canvas: canvas, frame: image.NewRGBA(bounds)}
}

// Frame returns the last rendered frame.
func (r *Renderer) Frame() *image.RGBA { return r.frame }

// Render paints m as seen at now.
func (r *Renderer) Render(m *Model, now time.Time) *image.RGBA {
	draw.Draw(r.frame, r.frame.Bounds(), &image.Uniform{background}, image.Point{}, draw.Src)

	switch m.Screen {
	case screen.Splash:
		r.text(r.midLine(0), "G-Force Gauge")
	case screen.Dot:
		r.disc(m.Dot, r.dotSize(), m.DotColor)
	case screen.Stats:
		for i, label := range m.Peaks {
			r.text(r.midLine(i-1), label)
		}
	case screen.Timer:
		r.text(r.line(0), m.Timer)
		for i, lap := range m.Laps {
			r.text(r.line(i+1), lap)
		}
	case screen.Stamps:
		for _, s := range m.Stamps {
			c := s.Color
			o := m.Opacity(s, now)
			c.R = uint8(float64(c.R) * o)
			c.G = uint8(float64(c.G) * o)
			c.B = uint8(float64(c.B) * o)
			r.disc(s.Pos, r.dotSize()/2, c)
		}
	}
	return r.frame
}

func (r *Renderer) scale(v int) int {
	return v * r.frame.Bounds().Dx() / r.canvas
}

func (r *Renderer) dotSize() int {
	d := r.frame.Bounds().Dx() / 24
	if d < 2 {
		d = 2
	}
	return d
}

// disc fills a circle of radius rad (panel pixels) centered on a canvas
// point.
func (r *Renderer) disc(p Point, rad int, c color.RGBA) {
	b := r.frame.Bounds()
	cx, cy := b.Min.X+r.scale(p.X), b.Min.Y+r.scale(p.Y)
	for y := cy - rad; y <= cy+rad; y++ {
		for x := cx - rad; x <= cx+rad; x++ {
			dx, dy := x-cx, y-cy
			if dx*dx+dy*dy <= rad*rad && image.Pt(x, y).In(b) {
				r.frame.SetRGBA(x, y, c)
			}
		}
	}
}

// line returns the baseline of text row i from the top.
func (r *Renderer) line(i int) int {
	return r.frame.Bounds().Min.Y + lineHeight*(i+1)
}

// midLine returns a baseline offset by i rows from the vertical middle.
func (r *Renderer) midLine(i int) int {
	b := r.frame.Bounds()
	return b.Min.Y + b.Dy()/2 + lineHeight/2 + i*lineHeight
}

func (r *Renderer) text(baseline int, s string) {
	drawer := &font.Drawer{
		Dst:  r.frame,
		Src:  &image.Uniform{foreground},
		Face: basicfont.Face7x13,
	}
	width := drawer.MeasureString(s).Ceil()
	x := r.frame.Bounds().Min.X + (r.frame.Bounds().Dx()-width)/2
	if x < 0 {
		x = 0
	}
	drawer.Dot = fixed.P(x, baseline)
	drawer.DrawString(s)
}
