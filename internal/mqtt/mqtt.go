// Package mqtt provides MQTT publishing with abstraction for testing.
package mqtt

import (
	"encoding/json"
	"time"

	"github.com/tinkerlog/fireflies/internal/logic"
)

// EventsTopic returns the MQTT topic for a node's firefly events.
func EventsTopic(node string) string {
	return "firefly/" + node + "/events"
}

// SystemTopic returns the MQTT topic for a node's system lifecycle
// events.
func SystemTopic(node string) string {
	return "firefly/" + node + "/system"
}

// Publisher publishes events to MQTT.
type Publisher interface {
	// Publish sends a firefly event to the broker.
	// Returns error if publishing fails (should not crash the process).
	Publish(event logic.Event) error

	// PublishSystem sends a system lifecycle event to the broker.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// SystemEvent represents a system lifecycle event (e.g., startup, shutdown, heartbeat).
type SystemEvent struct {
	Timestamp  time.Time
	Event      string         // e.g., "STARTUP", "SHUTDOWN", "HEARTBEAT"
	Reason     string         // e.g., "SIGTERM", "SIGINT" (shutdown only)
	Config     *SystemConfig  // Effective configuration (startup only)
	Heartbeat  *HeartbeatInfo // Uptime and counters (heartbeat only)
	RawPayload []byte         // Pre-formatted JSON payload; if set, FormatSystemPayload returns it directly
	Retained   bool           // Whether the message should be retained by the broker
}

// SystemConfig is the effective tuning reported with STARTUP events.
type SystemConfig struct {
	ControlTickUs int64  `json:"control_tick_us"`
	FlashPower    uint32 `json:"flash_power"`
	PowerBoost    uint32 `json:"power_boost"`
	HeartbeatMs   int64  `json:"heartbeat_ms"`
	Broker        string `json:"broker"`
}

// HeartbeatInfo carries uptime and event counters for HEARTBEAT events.
type HeartbeatInfo struct {
	UptimeSeconds int64           `json:"uptime_seconds"`
	EventCounts   HeartbeatCounts `json:"event_counts"`
}

// HeartbeatCounts holds the per-type event counters since startup.
type HeartbeatCounts struct {
	Flash    int `json:"flash"`
	Seen     int `json:"seen"`
	Daylight int `json:"daylight"`
}

// Payload represents the MQTT message payload structure.
type Payload struct {
	Firefly FireflyPayload `json:"firefly"`
}

// FireflyPayload contains the firefly event details.
type FireflyPayload struct {
	Timestamp string `json:"timestamp"`
	Node      string `json:"node,omitempty"`
	Event     string `json:"event"`
	Light     uint8  `json:"light"`
	Power     uint32 `json:"power"`
	Nervous   uint8  `json:"nervous"`
	// Hue is only present on FLASH events.
	Hue *uint8 `json:"hue,omitempty"`
}

// FormatPayload creates the JSON payload for a firefly event.
func FormatPayload(node string, event logic.Event) ([]byte, error) {
	payload := Payload{
		Firefly: FireflyPayload{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339Nano),
			Node:      node,
			Event:     string(event.Type),
			Light:     event.Light,
			Power:     event.Power,
			Nervous:   event.Nervous,
		},
	}
	if event.Type == logic.EventFlash {
		hue := event.Hue
		payload.Firefly.Hue = &hue
	}
	return json.Marshal(payload)
}

// SystemPayload represents the MQTT message payload for system events.
// Used for simple events that don't carry a full status snapshot.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the system event details.
type SystemPayloadInner struct {
	Timestamp string         `json:"timestamp"`
	Event     string         `json:"event"`
	Reason    string         `json:"reason,omitempty"`
	Config    *SystemConfig  `json:"config,omitempty"`
	Heartbeat *HeartbeatInfo `json:"heartbeat,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a system event.
// If event.RawPayload is set, it is returned directly (used for full status snapshots).
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}

	payload := SystemPayload{
		System: SystemPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     event.Event,
			Reason:    event.Reason,
			Config:    event.Config,
			Heartbeat: event.Heartbeat,
		},
	}
	return json.Marshal(payload)
}
