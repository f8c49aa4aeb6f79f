package adc

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// FileReader reads an ADC channel exposed as a sysfs attribute (Linux
// IIO). IIO raw channels are meant to be polled by re-reading the
// attribute file, so Read opens and parses it on every call.
type FileReader struct {
	path  string
	shift uint // right shift from the raw resolution down to 8 bits
}

// NewFileReader creates a reader for the given sysfs attribute.
// rawBits is the resolution of the channel; readings are shifted down
// to 8 bits.
func NewFileReader(path string, rawBits int) (*FileReader, error) {
	if rawBits < 8 {
		return nil, fmt.Errorf("adc resolution %d bits: need at least 8", rawBits)
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("adc channel %s: %w", path, err)
	}

	return &FileReader{
		path:  path,
		shift: uint(rawBits - 8),
	}, nil
}

// Read returns the current conversion result scaled to 8 bits.
func (r *FileReader) Read() (uint8, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		return 0, fmt.Errorf("read adc channel: %w", err)
	}

	text := strings.TrimSpace(string(data))
	raw, err := strconv.Atoi(text)
	if err != nil {
		return 0, fmt.Errorf("parse adc value %q: %w", text, err)
	}

	v := raw >> r.shift
	if v < 0 {
		v = 0
	}
	if v > 255 {
		v = 255
	}
	return uint8(v), nil
}

// Close releases sensor resources. Sysfs attributes are opened per
// read, so there is nothing to release.
func (r *FileReader) Close() error {
	return nil
}
