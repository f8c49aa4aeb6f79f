//go:build linux

package gpio

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

// RealWriter drives the LED lines on actual hardware using the Linux
// GPIO character device.
type RealWriter struct {
	chip  *gpiocdev.Chip
	lines *gpiocdev.Lines
}

// NewRealWriter requests the three LED pins as outputs, initially low
// (LED dark), for actual Raspberry Pi hardware.
func NewRealWriter(pinR, pinG, pinB int) (*RealWriter, error) {
	chip, err := gpiocdev.NewChip("gpiochip0")
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	lines, err := chip.RequestLines([]int{pinR, pinG, pinB}, gpiocdev.AsOutput(0, 0, 0))
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request led pins %d/%d/%d: %w", pinR, pinG, pinB, err)
	}

	return &RealWriter{
		chip:  chip,
		lines: lines,
	}, nil
}

// SetRGB drives the three lines in one request.
func (w *RealWriter) SetRGB(r, g, b bool) error {
	if err := w.lines.SetValues([]int{level(r), level(g), level(b)}); err != nil {
		return fmt.Errorf("set led lines: %w", err)
	}
	return nil
}

// Close blanks the LED and releases GPIO resources. Driving the lines
// low before closing leaves the pins in the Pi boot default state so
// the LED cannot stay lit across a restart.
func (w *RealWriter) Close() error {
	var errs []error

	if w.lines != nil {
		if err := w.lines.SetValues([]int{0, 0, 0}); err != nil {
			errs = append(errs, fmt.Errorf("blank led lines: %w", err))
		}
		if err := w.lines.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close led lines: %w", err))
		}
	}
	if w.chip != nil {
		if err := w.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}

func level(on bool) int {
	if on {
		return 1
	}
	return 0
}
