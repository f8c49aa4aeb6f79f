package main

import (
	"context"
	"log"
	"os"
	"syscall"
	"time"

	"github.com/tinkerlog/fireflies/internal/adc"
	"github.com/tinkerlog/fireflies/internal/config"
	"github.com/tinkerlog/fireflies/internal/hue"
	"github.com/tinkerlog/fireflies/internal/logic"
	"github.com/tinkerlog/fireflies/internal/mqtt"
	"github.com/tinkerlog/fireflies/internal/pwm"
	"github.com/tinkerlog/fireflies/internal/status"
)

const (
	introBlinks     = 5
	introHold       = 100 * time.Millisecond
	baselineSamples = 4
	baselineGap     = 500 * time.Millisecond

	// daylightGreen is the dim marker shown while it is too bright to
	// synchronize.
	daylightGreen = 32
)

// controller drives the synchronization loop: it owns the oscillator,
// turns its outputs into LED colors and MQTT events, and keeps the
// status tracker fresh.
type controller struct {
	cfg     *config.Config
	color   *pwm.Color
	light   *adc.Cell
	pub     mqtt.Publisher
	mqttSt  mqtt.ConnectionStatus
	tracker *status.Tracker
	cancel  context.CancelFunc

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// run performs the startup sequence and then enters the control loop.
func (c *controller) run(ctx context.Context, tick <-chan time.Time, sig <-chan os.Signal) error {
	if err := c.intro(ctx); err != nil {
		return err
	}

	threshold, light, err := c.baseline(ctx)
	if err != nil {
		return err
	}
	c.tracker.SetReady(threshold)
	log.Printf("ambient baseline done: light=%d threshold=%d", light, threshold)

	// Nodes that power up together must not start in phase; the low
	// sensor bits are noisy enough to spread the restarts out.
	if delay := time.Duration(light&0x03) * time.Second; delay > 0 {
		log.Printf("desync delay %v", delay)
		if err := c.sleep(ctx, delay); err != nil {
			return err
		}
	}

	osc := logic.NewOscillator(c.cfg.Logic(), threshold)
	return c.loop(ctx, osc, tick, sig)
}

// intro blinks red a few times so a freshly powered node is visible.
func (c *controller) intro(ctx context.Context) error {
	for i := 0; i < introBlinks; i++ {
		c.color.Set(hue.Full, 0, 0)
		if err := c.sleep(ctx, introHold); err != nil {
			return err
		}
		c.color.Off()
		if err := c.sleep(ctx, introHold); err != nil {
			return err
		}
	}
	return nil
}

// baseline averages a few ambient samples into the detection
// threshold. Returns the threshold and the last raw sample.
func (c *controller) baseline(ctx context.Context) (uint16, uint8, error) {
	samples := make([]uint8, 0, baselineSamples)
	var last uint8
	for i := 0; i < baselineSamples; i++ {
		if i > 0 {
			if err := c.sleep(ctx, baselineGap); err != nil {
				return 0, 0, err
			}
		}
		last = c.light.Load()
		samples = append(samples, last)
	}
	return logic.ComputeThreshold(samples, c.cfg.Sync.ThresholdMargin), last, nil
}

func (c *controller) loop(ctx context.Context, osc *logic.Oscillator, tick <-chan time.Time, sig <-chan os.Signal) error {
	heartbeat := time.Duration(c.cfg.MQTT.Heartbeat)
	lastHeartbeat := c.now()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case s := <-sig:
			log.Printf("received %v, shutting down", s)
			signalName := "UNKNOWN"
			if s == syscall.SIGINT {
				signalName = "SIGINT"
			} else if s == syscall.SIGTERM {
				signalName = "SIGTERM"
			}
			c.color.Off()
			c.publishShutdown(signalName)
			c.cancel()
			return nil

		case <-tick:
			t := c.now()
			in := logic.Input{Light: c.light.Load(), Time: t}
			out := osc.Step(in)

			for _, event := range out.Events {
				log.Printf("event: %s (light=%d power=%d nervous=%d)",
					event.Type, event.Light, event.Power, event.Nervous)
				if c.pub != nil {
					if err := c.pub.Publish(event); err != nil {
						log.Printf("publish error: %v", err)
					}
				}
			}

			// A flash that triggers on a daylight tick still renders,
			// after the daylight hold.
			if out.Daylight {
				// Dim green marker, then wait out the bright spell.
				c.color.Set(0, daylightGreen, 0)
				if err := c.sleep(ctx, time.Duration(c.cfg.Timing.DaylightHold)); err != nil {
					c.color.Off()
					return err
				}
				c.color.Off()
			}
			if out.Flash != nil {
				r, g, b := hue.ToRGB(out.Flash.Hue)
				c.color.Set(r, g, b)
				c.tracker.SetLastFlash(t, out.Flash.Hue)
				if err := c.sleep(ctx, time.Duration(c.cfg.Timing.FlashHold)); err != nil {
					c.color.Off()
					return err
				}
				c.color.Off()
			}

			if heartbeat > 0 && t.Sub(lastHeartbeat) >= heartbeat {
				lastHeartbeat = t
				c.publishHeartbeat(t, osc, in.Light)
			}

			c.updateTracker(osc, in.Light)
		}
	}
}

func (c *controller) updateTracker(osc *logic.Oscillator, light uint8) {
	c.tracker.Update(osc.Power(), osc.Blind(), osc.Nervous(), light, osc.Counts())
	if c.mqttSt != nil {
		c.tracker.SetMQTTConnected(c.mqttSt.IsConnected())
	}
}

func (c *controller) publishHeartbeat(t time.Time, osc *logic.Oscillator, light uint8) {
	c.updateTracker(osc, light)
	snap := c.tracker.Snapshot()
	counts := osc.Counts()
	log.Printf("heartbeat: uptime=%v flash=%d seen=%d daylight=%d",
		snap.Uptime().Truncate(time.Second), counts.Flashes, counts.Seen, counts.Daylight)

	if c.pub == nil {
		return
	}
	event := mqtt.SystemEvent{
		Timestamp:  t,
		Event:      "HEARTBEAT",
		RawPayload: status.FormatStatusEvent(snap, "HEARTBEAT", ""),
	}
	if err := c.pub.PublishSystem(event); err != nil {
		log.Printf("heartbeat publish error: %v", err)
	}
}

func (c *controller) publishShutdown(signalName string) {
	if c.mqttSt != nil {
		c.tracker.SetMQTTConnected(c.mqttSt.IsConnected())
	}
	snap := c.tracker.Snapshot()
	event := mqtt.SystemEvent{
		Timestamp:  c.now(),
		Event:      "SHUTDOWN",
		Reason:     signalName,
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, "SHUTDOWN", signalName),
	}
	if c.pub == nil {
		return
	}
	if err := c.pub.PublishSystem(event); err != nil {
		log.Printf("failed to publish shutdown event: %v", err)
	} else {
		log.Printf("published shutdown event")
	}
}

// sleepCtx sleeps for d unless the context is cancelled first.
func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
