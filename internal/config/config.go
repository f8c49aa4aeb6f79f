// Package config loads and validates the node configuration from TOML.
package config

import (
	"encoding"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/pelletier/go-toml"
	"github.com/pkg/errors"

	"github.com/tinkerlog/fireflies/internal/adc"
	"github.com/tinkerlog/fireflies/internal/gpio"
	"github.com/tinkerlog/fireflies/internal/logic"
)

// Config is the full configuration for a firefly node.
type Config struct {
	// Node is the node name used in MQTT topics and event payloads.
	// Defaults to the hostname.
	Node string `toml:"node"`

	Hardware HardwareConfig `toml:"hardware"`
	Timing   TimingConfig   `toml:"timing"`
	Sync     SyncConfig     `toml:"sync"`
	MQTT     MQTTConfig     `toml:"mqtt"`
	HTTP     HTTPConfig     `toml:"http"`
}

// HardwareConfig names the GPIO lines driving the RGB LED and the
// sysfs ADC channel the light sensor hangs off.
type HardwareConfig struct {
	PinR int `toml:"pin_r"`
	PinG int `toml:"pin_g"`
	PinB int `toml:"pin_b"`

	// ADCPath is the sysfs IIO attribute with the raw light reading.
	ADCPath string `toml:"adc_path"`
	// ADCBits is the resolution of the raw reading.
	ADCBits int `toml:"adc_bits"`
}

// TimingConfig holds the loop intervals and hold times.
type TimingConfig struct {
	// PWMTick is the soft-PWM tick; one LED frame is 256 ticks.
	PWMTick Duration `toml:"pwm_tick"`
	// SampleTick is how often the light sensor is read.
	SampleTick Duration `toml:"sample_tick"`
	// ControlTick is the synchronization loop tick.
	ControlTick Duration `toml:"control_tick"`
	// FlashHold is how long the LED stays on for one flash.
	FlashHold Duration `toml:"flash_hold"`
	// DaylightHold is how long the loop pauses when daylight is
	// detected.
	DaylightHold Duration `toml:"daylight_hold"`
}

// SyncConfig tunes the synchronization state machine.
type SyncConfig struct {
	FlashPower      uint32 `toml:"flash_power"`
	PowerBoost      uint32 `toml:"power_boost"`
	Daylight        uint8  `toml:"daylight"`
	BlindAfterOther uint32 `toml:"blind_after_other"`
	BlindAfterSelf  uint32 `toml:"blind_after_self"`
	ThresholdMargin uint8  `toml:"threshold_margin"`
	NervousMax      uint8  `toml:"nervous_max"`
	NervousUp       uint8  `toml:"nervous_up"`
	NervousDown     uint8  `toml:"nervous_down"`
	NervousSelfDown uint8  `toml:"nervous_self_down"`
}

// MQTTConfig configures event publishing. An empty broker disables
// MQTT entirely.
type MQTTConfig struct {
	Broker string `toml:"broker"`
	// Heartbeat is the interval between HEARTBEAT system events.
	// Zero disables heartbeats.
	Heartbeat Duration `toml:"heartbeat"`
}

// HTTPConfig configures the status page. An empty address disables
// the server.
type HTTPConfig struct {
	Addr string `toml:"addr"`
}

// Default returns the configuration matching the original firefly
// tuning.
func Default() Config {
	node, _ := os.Hostname()
	return Config{
		Node: node,
		Hardware: HardwareConfig{
			PinR:    gpio.DefaultPinR,
			PinG:    gpio.DefaultPinG,
			PinB:    gpio.DefaultPinB,
			ADCPath: adc.DefaultDevicePath,
			ADCBits: adc.DefaultRawBits,
		},
		Timing: TimingConfig{
			PWMTick:      Duration(50 * time.Microsecond),
			SampleTick:   Duration(time.Millisecond),
			ControlTick:  Duration(500 * time.Microsecond),
			FlashHold:    Duration(200 * time.Millisecond),
			DaylightHold: Duration(10 * time.Second),
		},
		Sync: SyncConfig{
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
		},
		MQTT: MQTTConfig{
			Heartbeat: Duration(time.Minute),
		},
	}
}

// ParseConfig reads a TOML configuration, overlaying it on the
// defaults.
func ParseConfig(r io.Reader) (*Config, error) {
	config := Default()
	if err := toml.NewDecoder(r).Decode(&config); err != nil {
		return nil, errors.Wrap(err, "decoding config")
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// Load reads and parses the TOML configuration file at path.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "opening config")
	}
	defer f.Close()
	return ParseConfig(f)
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Hardware.PinR < 0 || c.Hardware.PinG < 0 || c.Hardware.PinB < 0 {
		return errors.New("GPIO pin numbers must not be negative")
	}
	if c.Hardware.PinR == c.Hardware.PinG ||
		c.Hardware.PinR == c.Hardware.PinB ||
		c.Hardware.PinG == c.Hardware.PinB {
		return fmt.Errorf("GPIO pins %d/%d/%d must be distinct",
			c.Hardware.PinR, c.Hardware.PinG, c.Hardware.PinB)
	}
	if c.Hardware.ADCPath == "" {
		return errors.New("adc_path must not be empty")
	}
	if c.Hardware.ADCBits < 8 || c.Hardware.ADCBits > 16 {
		return fmt.Errorf("adc_bits %d out of range 8..16", c.Hardware.ADCBits)
	}
	if c.Timing.PWMTick <= 0 || c.Timing.SampleTick <= 0 || c.Timing.ControlTick <= 0 {
		return errors.New("tick intervals must be positive")
	}
	if c.Timing.FlashHold <= 0 || c.Timing.DaylightHold <= 0 {
		return errors.New("hold durations must be positive")
	}
	if c.Sync.FlashPower == 0 {
		return errors.New("flash_power must be positive")
	}
	if c.Sync.NervousMax > 252 {
		return fmt.Errorf("nervous_max %d exceeds the hue wheel", c.Sync.NervousMax)
	}
	if c.Sync.NervousUp == 0 || c.Sync.NervousUp > c.Sync.NervousMax {
		return fmt.Errorf("nervous_up %d out of range 1..%d", c.Sync.NervousUp, c.Sync.NervousMax)
	}
	return nil
}

// Logic returns the oscillator tuning derived from the configuration.
func (c *Config) Logic() logic.Params {
	return logic.Params{
		FlashPower:      c.Sync.FlashPower,
		PowerBoost:      c.Sync.PowerBoost,
		Daylight:        c.Sync.Daylight,
		BlindAfterOther: c.Sync.BlindAfterOther,
		BlindAfterSelf:  c.Sync.BlindAfterSelf,
		ThresholdMargin: c.Sync.ThresholdMargin,
		NervousMax:      c.Sync.NervousMax,
		NervousUp:       c.Sync.NervousUp,
		NervousDown:     c.Sync.NervousDown,
		NervousSelfDown: c.Sync.NervousSelfDown,
	}
}

// Duration is a time.Duration that parses from a TOML string like
// "200ms".
type Duration time.Duration

var (
	_ encoding.TextUnmarshaler = (*Duration)(nil)
	_ encoding.TextMarshaler   = (*Duration)(nil)
)

func (d *Duration) UnmarshalText(text []byte) error {
	duration, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(duration)
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}
