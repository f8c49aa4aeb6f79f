package status

import (
	"encoding/json"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string     `json:"event,omitempty"`
	Reason        string     `json:"reason,omitempty"`
	Node          string     `json:"node,omitempty"`
	Power         uint32     `json:"power"`
	Trigger       uint32     `json:"trigger"`
	Blind         uint32     `json:"blind"`
	Nervous       uint8      `json:"nervous"`
	Light         uint8      `json:"light"`
	Threshold     uint16     `json:"threshold"`
	Ready         bool       `json:"ready"`
	LastFlash     string     `json:"last_flash,omitempty"`
	LastFlashHue  uint8      `json:"last_flash_hue,omitempty"`
	UptimeSeconds int64      `json:"uptime_seconds"`
	StartTime     string     `json:"start_time"`
	Timestamp     string     `json:"timestamp"`
	MQTT          MQTTStatus `json:"mqtt"`
	Counts        CountsJSON `json:"event_counts"`
	Config        ConfigJSON `json:"config"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// CountsJSON is the JSON representation of event counts.
type CountsJSON struct {
	Flash    int `json:"flash"`
	Seen     int `json:"seen"`
	Daylight int `json:"daylight"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	ControlTickUs int64  `json:"control_tick_us"`
	FlashPower    uint32 `json:"flash_power"`
	PowerBoost    uint32 `json:"power_boost"`
	HeartbeatMs   int64  `json:"heartbeat_ms"`
	Broker        string `json:"broker"`
	HTTPAddr      string `json:"http_addr,omitempty"`
}

func buildInner(snap Snapshot) StatusInner {
	inner := StatusInner{
		Node:          snap.Config.Node,
		Power:         snap.Power,
		Trigger:       snap.Config.FlashPower,
		Blind:         snap.Blind,
		Nervous:       snap.Nervous,
		Light:         snap.Light,
		Threshold:     snap.Threshold,
		Ready:         snap.Ready,
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Counts: CountsJSON{
			Flash:    snap.Counts.Flashes,
			Seen:     snap.Counts.Seen,
			Daylight: snap.Counts.Daylight,
		},
		Config: ConfigJSON{
			ControlTickUs: snap.Config.ControlTickUs,
			FlashPower:    snap.Config.FlashPower,
			PowerBoost:    snap.Config.PowerBoost,
			HeartbeatMs:   snap.Config.HeartbeatMs,
			Broker:        snap.Config.Broker,
			HTTPAddr:      snap.Config.HTTPAddr,
		},
	}
	if !snap.LastFlash.IsZero() {
		inner.LastFlash = snap.LastFlash.UTC().Format(time.RFC3339)
		inner.LastFlashHue = snap.LastFlashHue
	}
	return inner
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	data, _ := json.MarshalIndent(StatusJSON{Status: buildInner(snap)}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
