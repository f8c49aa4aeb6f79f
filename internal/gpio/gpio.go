// Package gpio drives the three RGB LED output lines with hardware
// abstraction. The real implementation uses the Linux GPIO character
// device. The fake implementation allows testing without hardware.
package gpio

// Writer sets the on/off state of the R, G and B output lines.
type Writer interface {
	// SetRGB drives the three lines. true = line high = LED segment
	// lit (the LED is a common cathode type).
	SetRGB(r, g, b bool) error

	// Close releases GPIO resources.
	Close() error
}

// Default pin assignment (BCM numbering)
const (
	DefaultPinR = 17
	DefaultPinG = 27
	DefaultPinB = 22
)
