package adc

import "sync/atomic"

// Cell holds the most recent ambient light reading. The sampler
// overwrites it on every conversion and the control loop reads it at
// its own, slower cadence — latest value wins, no history. The value
// lives in a single atomic word so reads never tear.
type Cell struct {
	v atomic.Uint32
}

// Store replaces the current reading.
func (c *Cell) Store(light uint8) {
	c.v.Store(uint32(light))
}

// Load returns the most recent reading.
func (c *Cell) Load() uint8 {
	return uint8(c.v.Load())
}
