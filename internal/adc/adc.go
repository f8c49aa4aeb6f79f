// Package adc reads the ambient light sensor with hardware abstraction.
// The real implementation polls a Linux IIO ADC channel through sysfs.
// The fake implementation allows testing without hardware.
package adc

// Reader reads the ambient light level.
type Reader interface {
	// Read returns the current ambient light as an 8-bit level
	// (0 = dark, 255 = saturated).
	Read() (uint8, error)

	// Close releases sensor resources.
	Close() error
}

// DefaultDevicePath is the sysfs attribute of the ADC channel the
// photo transistor voltage divider is wired to.
const DefaultDevicePath = "/sys/bus/iio/devices/iio:device0/in_voltage0_raw"

// DefaultRawBits is the resolution of the ADC channel. Raw readings
// are scaled down to 8 bits.
const DefaultRawBits = 10
