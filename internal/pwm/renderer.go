// Package pwm renders RGB intensity targets onto three binary output
// lines by software pulse-width modulation: counting ticks instead of
// using a hardware comparator.
package pwm

import (
	"context"
	"log"
	"time"

	"github.com/tinkerlog/fireflies/internal/gpio"
)

// FrameTicks is the length of one PWM frame in renderer ticks.
const FrameTicks = 256

// Renderer drives the LED lines from the shared color cell. It keeps a
// free-running 8-bit duty counter. At every counter wrap it latches the
// current color and switches each non-zero channel on; each channel is
// switched off again on the tick where the counter reaches that
// channel's latched intensity. Over one 256-tick frame a channel with
// latched value V is therefore on for exactly V ticks: 0 = never on,
// 255 = on for all but one tick.
//
// Writes to the color cell during a frame only take effect at the next
// frame start — the latch is a single atomic snapshot of all three
// channels.
type Renderer struct {
	color *Color
	lines gpio.Writer

	duty       uint8
	lr, lg, lb uint8 // intensities latched at the last frame start
	r, g, b    bool  // current line states
}

// NewRenderer creates a Renderer that reads color and drives lines.
func NewRenderer(color *Color, lines gpio.Writer) *Renderer {
	return &Renderer{
		color: color,
		lines: lines,
	}
}

// Tick advances the duty counter by one and updates the output lines.
// The counter wrapping to 0 marks a frame start. The line writer is
// only touched when a line actually changes state.
func (r *Renderer) Tick() error {
	r.duty++

	// At the frame start, take over new values and switch on every
	// channel with a non-zero latched intensity.
	if r.duty == 0 {
		r.lr, r.lg, r.lb = r.color.Load()
		r.r = r.lr > 0
		r.g = r.lg > 0
		r.b = r.lb > 0
		return r.lines.SetRGB(r.r, r.g, r.b)
	}

	// Switch off each channel when the counter reaches its latch.
	nr, ng, nb := r.r, r.g, r.b
	if r.duty == r.lr {
		nr = false
	}
	if r.duty == r.lg {
		ng = false
	}
	if r.duty == r.lb {
		nb = false
	}
	if nr == r.r && ng == r.g && nb == r.b {
		return nil
	}

	r.r, r.g, r.b = nr, ng, nb
	return r.lines.SetRGB(nr, ng, nb)
}

// Run ticks the renderer at the given interval until the context is
// canceled. Line write errors are logged and rendering continues.
func (r *Renderer) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := r.Tick(); err != nil {
				log.Printf("pwm write error: %v", err)
			}
		}
	}
}
