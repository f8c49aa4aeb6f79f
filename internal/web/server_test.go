package web

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/tinkerlog/fireflies/internal/logic"
	"github.com/tinkerlog/fireflies/internal/status"
)

func newTestServer(t *testing.T) (*httptest.Server, *status.Tracker) {
	t.Helper()
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cfg := status.Config{
		Node:          "garden-3",
		ControlTickUs: 500,
		FlashPower:    8000,
		PowerBoost:    400,
		NervousMax:    168,
		HeartbeatMs:   60000,
		Broker:        "tcp://192.168.1.200:1883",
		HTTPAddr:      ":8080",
	}
	tr := status.NewTracker(start, cfg)
	srv := New(":0", tr)
	ts := httptest.NewServer(srv.srv.Handler)
	t.Cleanup(ts.Close)
	return ts, tr
}

func TestJSONEndpoint(t *testing.T) {
	ts, tr := newTestServer(t)
	tr.Update(4500, 80, 30, 14, logic.EventCounts{Flashes: 5, Seen: 2})
	tr.SetReady(133)
	tr.SetMQTTConnected(true)

	resp, err := http.Get(ts.URL + "/index.json")
	if err != nil {
		t.Fatalf("GET /index.json: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type: got %q, want application/json", ct)
	}

	var sj status.StatusJSON
	if err := json.NewDecoder(resp.Body).Decode(&sj); err != nil {
		t.Fatalf("decode JSON: %v", err)
	}

	if sj.Status.Node != "garden-3" {
		t.Errorf("Node: got %q, want garden-3", sj.Status.Node)
	}
	if sj.Status.Power != 4500 {
		t.Errorf("Power: got %d, want 4500", sj.Status.Power)
	}
	if sj.Status.Trigger != 8000 {
		t.Errorf("Trigger: got %d, want 8000", sj.Status.Trigger)
	}
	if sj.Status.Threshold != 133 {
		t.Errorf("Threshold: got %d, want 133", sj.Status.Threshold)
	}
	if !sj.Status.Ready {
		t.Error("expected Ready=true")
	}
	if !sj.Status.MQTT.Connected {
		t.Error("expected MQTT.Connected=true")
	}
	if sj.Status.MQTT.Broker != "tcp://192.168.1.200:1883" {
		t.Errorf("MQTT.Broker: got %q", sj.Status.MQTT.Broker)
	}
	if sj.Status.Counts.Flash != 5 {
		t.Errorf("Counts.Flash: got %d, want 5", sj.Status.Counts.Flash)
	}
	if sj.Status.Counts.Seen != 2 {
		t.Errorf("Counts.Seen: got %d, want 2", sj.Status.Counts.Seen)
	}
	if sj.Status.Config.ControlTickUs != 500 {
		t.Errorf("Config.ControlTickUs: got %d, want 500", sj.Status.Config.ControlTickUs)
	}
}

func TestHTMLEndpointRoot(t *testing.T) {
	ts, tr := newTestServer(t)
	tr.Update(4500, 0, 30, 14, logic.EventCounts{})
	tr.SetReady(133)

	resp, err := http.Get(ts.URL + "/")
	if err != nil {
		t.Fatalf("GET /: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}
	ct := resp.Header.Get("Content-Type")
	if !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type: got %q, want text/html", ct)
	}

	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "Firefly garden-3") {
		t.Error("expected node name in page")
	}
	if !strings.Contains(string(body), "4500") {
		t.Error("expected power level in page")
	}
}

func TestHTMLEndpointIndexHTML(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/index.html")
	if err != nil {
		t.Fatalf("GET /index.html: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}
}

func TestHTMLShowsLastFlash(t *testing.T) {
	ts, tr := newTestServer(t)
	tr.SetLastFlash(time.Date(2026, 6, 12, 22, 0, 0, 0, time.UTC), 128)

	resp, err := http.Get(ts.URL + "/")
	if err != nil {
		t.Fatalf("GET /: %v", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "hue 128") {
		t.Error("expected last flash hue in page")
	}
}

func TestNotFoundForUnknownPath(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/nonexistent")
	if err != nil {
		t.Fatalf("GET /nonexistent: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 404 {
		t.Errorf("status: got %d, want 404", resp.StatusCode)
	}
}

func TestStateChangesReflectedInResponse(t *testing.T) {
	ts, tr := newTestServer(t)

	// Initially not ready
	resp1, _ := http.Get(ts.URL + "/index.json")
	var sj1 status.StatusJSON
	json.NewDecoder(resp1.Body).Decode(&sj1)
	resp1.Body.Close()
	if sj1.Status.Ready {
		t.Error("expected Ready=false initially")
	}

	tr.SetReady(120)
	tr.Update(100, 0, 0, 10, logic.EventCounts{Seen: 1})
	tr.SetMQTTConnected(true)

	resp2, _ := http.Get(ts.URL + "/index.json")
	var sj2 status.StatusJSON
	json.NewDecoder(resp2.Body).Decode(&sj2)
	resp2.Body.Close()

	if !sj2.Status.Ready {
		t.Error("expected Ready=true after update")
	}
	if sj2.Status.Counts.Seen != 1 {
		t.Errorf("Counts.Seen: got %d, want 1", sj2.Status.Counts.Seen)
	}
	if !sj2.Status.MQTT.Connected {
		t.Error("expected MQTT connected after update")
	}
}
