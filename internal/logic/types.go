// Package logic contains the pure synchronization state machine for a
// firefly node. This package has NO external dependencies (no GPIO,
// MQTT, OS, or time.Sleep). Time is always injectable via time.Time
// parameters.
package logic

import "time"

// EventType represents a state transition event.
type EventType string

const (
	// EventFlash is a self-triggered flash: the power level crossed
	// the trigger level.
	EventFlash EventType = "FLASH"
	// EventSeen is a detected neighbour flash.
	EventSeen EventType = "SEEN"
	// EventDaylight means the ambient light is too bright to work.
	EventDaylight EventType = "DAYLIGHT"
)

// Event represents a state transition to be published.
type Event struct {
	Timestamp time.Time
	Type      EventType
	// Light is the sensor reading at the tick the event fired.
	Light uint8
	// Power is the power level right after the transition's own
	// adjustments: boosted for SEEN, at the trigger (before reset)
	// for FLASH.
	Power uint32
	// Nervous is the nervous level used by the transition: adjusted
	// for SEEN, the pre-decay value that chose the hue for FLASH.
	Nervous uint8
	// Hue is the flash color on the 252-unit wheel (FLASH only).
	Hue uint8
}

// Input represents a single control tick: the latest ambient light
// sample and the wall clock time.
type Input struct {
	Light uint8
	Time  time.Time
}

// Flash tells the control loop to render a flash.
type Flash struct {
	// Hue on the 252-unit wheel. A calm node flashes at hue 168
	// (blue); rising nervousness shifts the flash toward green,
	// yellow and finally red.
	Hue uint8
}

// Output is what one control tick asks the loop to do.
type Output struct {
	// Events to publish for this tick, in the order they occurred.
	Events []Event

	// Daylight, when true, tells the loop to show the dim daylight
	// marker and hold it for the configured daylight wait.
	Daylight bool

	// Flash, when non-nil, tells the loop to render the hue at full
	// power, hold it for the configured flash duration, then clear
	// all channels.
	Flash *Flash
}

// EventCounts tracks the number of each event type since startup.
type EventCounts struct {
	Flashes  int
	Seen     int
	Daylight int
}

// Params are the tunable constants of the oscillator.
type Params struct {
	// FlashPower is the power level at which the node flashes.
	FlashPower uint32
	// PowerBoost is the power added for every neighbour flash.
	PowerBoost uint32
	// Daylight is the light level above which it is too bright to
	// synchronize.
	Daylight uint8
	// BlindAfterOther is how many ticks detection is suppressed
	// after a neighbour flash.
	BlindAfterOther uint32
	// BlindAfterSelf is how many ticks detection is suppressed
	// after our own flash.
	BlindAfterSelf uint32
	// ThresholdMargin is added to the boot-time ambient average to
	// form the detection threshold.
	ThresholdMargin uint8
	// NervousMax caps the nervous level. The flash hue is
	// NervousMax minus the nervous level, so the cap also anchors
	// the calm end of the color range.
	NervousMax uint8
	// NervousUp is the increase for an out-of-phase neighbour flash.
	NervousUp uint8
	// NervousDown is the decrease for an in-phase neighbour flash.
	NervousDown uint8
	// NervousSelfDown is the decrease after our own flash.
	NervousSelfDown uint8
}

// DefaultParams returns the tuning the original hardware shipped with.
func DefaultParams() Params {
	return Params{
		FlashPower:      8000,
		PowerBoost:      400,
		Daylight:        240,
		BlindAfterOther: 800,
		BlindAfterSelf:  100,
		ThresholdMargin: 20,
		NervousMax:      168,
		NervousUp:       10,
		NervousDown:     5,
		NervousSelfDown: 3,
	}
}
