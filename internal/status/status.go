// Package status provides a thread-safe status tracker for the firefly daemon.
// It is read by HTTP handlers and by the heartbeat publisher.
package status

import (
	"sync"
	"time"

	"github.com/tinkerlog/fireflies/internal/logic"
)

// Config contains daemon configuration for display.
type Config struct {
	Node          string
	ControlTickUs int64
	FlashPower    uint32
	PowerBoost    uint32
	NervousMax    uint8
	HeartbeatMs   int64
	Broker        string
	HTTPAddr      string
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type — safe to use after the lock is released.
type Snapshot struct {
	Power   uint32
	Blind   uint32
	Nervous uint8
	Light   uint8

	// Threshold is the ambient detection threshold, valid once Ready
	// is true.
	Threshold uint16
	Ready     bool

	Counts       logic.EventCounts
	LastFlash    time.Time
	LastFlashHue uint8

	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			StartTime: startTime,
			Config:    cfg,
		},
	}
}

// Update sets the oscillator state and event counts.
// Called from the control loop on every tick.
func (t *Tracker) Update(power, blind uint32, nervous, light uint8, counts logic.EventCounts) {
	t.mu.Lock()
	t.snap.Power = power
	t.snap.Blind = blind
	t.snap.Nervous = nervous
	t.snap.Light = light
	t.snap.Counts = counts
	t.mu.Unlock()
}

// SetReady records the ambient threshold once the baseline measurement
// is done.
func (t *Tracker) SetReady(threshold uint16) {
	t.mu.Lock()
	t.snap.Ready = true
	t.snap.Threshold = threshold
	t.mu.Unlock()
}

// SetLastFlash records the time and hue of the most recent flash.
func (t *Tracker) SetLastFlash(ts time.Time, hue uint8) {
	t.mu.Lock()
	t.snap.LastFlash = ts
	t.snap.LastFlashHue = hue
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
