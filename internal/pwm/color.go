package pwm

import "sync/atomic"

// Color is the shared RGB intensity target. The control loop writes
// it, the renderer latches it once per frame. The three channels are
// packed into one atomic word so a frame snapshot can never mix
// intensities from two different writes.
type Color struct {
	v atomic.Uint32
}

// Set stores the three channel intensities as a single atomic write.
func (c *Color) Set(r, g, b uint8) {
	c.v.Store(uint32(r)<<16 | uint32(g)<<8 | uint32(b))
}

// Off turns all three channels off.
func (c *Color) Off() {
	c.v.Store(0)
}

// Load returns the three channel intensities as a single atomic read.
func (c *Color) Load() (r, g, b uint8) {
	v := c.v.Load()
	return uint8(v >> 16), uint8(v >> 8), uint8(v)
}
