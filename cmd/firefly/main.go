// Command firefly drives one node of a firefly swarm: it renders an
// RGB LED with software PWM, watches ambient light for neighbour
// flashes, and nudges its own flash phase toward the swarm's.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tinkerlog/fireflies/internal/adc"
	"github.com/tinkerlog/fireflies/internal/config"
	"github.com/tinkerlog/fireflies/internal/gpio"
	"github.com/tinkerlog/fireflies/internal/mqtt"
	"github.com/tinkerlog/fireflies/internal/pwm"
	"github.com/tinkerlog/fireflies/internal/status"
	"github.com/tinkerlog/fireflies/internal/web"
)

func main() {
	configPath := flag.String("config", "", "TOML config file")
	node := flag.String("node", "", "node name (default: hostname)")
	broker := flag.String("broker", "", "MQTT broker address (empty to disable)")
	heartbeat := flag.Duration("heartbeat", time.Minute, "heartbeat interval (0 to disable)")
	httpAddr := flag.String("http", "", "HTTP status address (empty to disable)")
	pinR := flag.Int("pin-r", gpio.DefaultPinR, "BCM pin number for the red channel")
	pinG := flag.Int("pin-g", gpio.DefaultPinG, "BCM pin number for the green channel")
	pinB := flag.Int("pin-b", gpio.DefaultPinB, "BCM pin number for the blue channel")
	adcPath := flag.String("adc", adc.DefaultDevicePath, "sysfs attribute with the raw light reading")
	printLight := flag.Bool("print-light", false, "print the current light level and exit")

	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("fatal: %v", err)
	}

	// Flags given on the command line win over the config file.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "node":
			cfg.Node = *node
		case "broker":
			cfg.MQTT.Broker = *broker
		case "heartbeat":
			cfg.MQTT.Heartbeat = config.Duration(*heartbeat)
		case "http":
			cfg.HTTP.Addr = *httpAddr
		case "pin-r":
			cfg.Hardware.PinR = *pinR
		case "pin-g":
			cfg.Hardware.PinG = *pinG
		case "pin-b":
			cfg.Hardware.PinB = *pinB
		case "adc":
			cfg.Hardware.ADCPath = *adcPath
		}
	})
	if err := cfg.Validate(); err != nil {
		log.Fatalf("fatal: %v", err)
	}

	if err := run(cfg, *printLight); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		cfg := config.Default()
		return &cfg, nil
	}
	return config.Load(path)
}

func run(cfg *config.Config, printLight bool) error {
	reader, err := adc.NewFileReader(cfg.Hardware.ADCPath, cfg.Hardware.ADCBits)
	if err != nil {
		return fmt.Errorf("init adc: %w", err)
	}
	defer reader.Close()

	// Print light mode
	if printLight {
		light, err := reader.Read()
		if err != nil {
			return fmt.Errorf("read light: %w", err)
		}
		fmt.Printf("light: %d\n", light)
		return nil
	}

	lines, err := gpio.NewRealWriter(cfg.Hardware.PinR, cfg.Hardware.PinG, cfg.Hardware.PinB)
	if err != nil {
		return fmt.Errorf("init gpio: %w", err)
	}
	defer lines.Close()

	var publisher mqtt.Publisher
	var mqttStatus mqtt.ConnectionStatus
	if cfg.MQTT.Broker != "" {
		real, err := mqtt.NewRealPublisher(cfg.MQTT.Broker, cfg.Node)
		if err != nil {
			return fmt.Errorf("init mqtt: %w", err)
		}
		defer real.Close()
		publisher = real
		mqttStatus = real
	}

	// Initialize status tracker (before STARTUP so snapshot is available)
	tracker := status.NewTracker(time.Now(), status.Config{
		Node:          cfg.Node,
		ControlTickUs: time.Duration(cfg.Timing.ControlTick).Microseconds(),
		FlashPower:    cfg.Sync.FlashPower,
		PowerBoost:    cfg.Sync.PowerBoost,
		NervousMax:    cfg.Sync.NervousMax,
		HeartbeatMs:   time.Duration(cfg.MQTT.Heartbeat).Milliseconds(),
		Broker:        cfg.MQTT.Broker,
		HTTPAddr:      cfg.HTTP.Addr,
	})

	// Publish startup event with full status snapshot
	if publisher != nil {
		snap := tracker.Snapshot()
		startup := mqtt.SystemEvent{
			Timestamp:  snap.Now,
			Event:      "STARTUP",
			Retained:   true,
			RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
		}
		if err := publisher.PublishSystem(startup); err != nil {
			log.Printf("failed to publish startup event: %v", err)
		} else {
			log.Printf("published startup event")
		}
	}

	// Start HTTP status server
	if cfg.HTTP.Addr != "" {
		srv := web.New(cfg.HTTP.Addr, tracker)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("http server error: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Printf("http status server listening on %s", cfg.HTTP.Addr)
	}

	log.Printf("started: node=%s control=%v broker=%s heartbeat=%v",
		cfg.Node, time.Duration(cfg.Timing.ControlTick), cfg.MQTT.Broker,
		time.Duration(cfg.MQTT.Heartbeat))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var color pwm.Color
	var light adc.Cell

	renderer := pwm.NewRenderer(&color, lines)
	sampler := adc.NewSampler(reader, &light)

	ticker := time.NewTicker(time.Duration(cfg.Timing.ControlTick))
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	ctrl := &controller{
		cfg:     cfg,
		color:   &color,
		light:   &light,
		pub:     publisher,
		mqttSt:  mqttStatus,
		tracker: tracker,
		cancel:  cancel,
		now:     time.Now,
		sleep:   sleepCtx,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return renderer.Run(gctx, time.Duration(cfg.Timing.PWMTick)) })
	g.Go(func() error { return sampler.Run(gctx, time.Duration(cfg.Timing.SampleTick)) })
	g.Go(func() error { return ctrl.run(gctx, ticker.C, sigCh) })

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
