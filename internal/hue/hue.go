// Package hue converts a cyclic hue value into RGB channel intensities.
//
// The hue wheel here is 252 units around instead of the usual 360
// degrees. 252 fits in a byte and is divisible by the six HSV segments,
// so both segment selection and the in-segment ramp work out in pure
// integer arithmetic. Within each segment one channel is held at full
// power, one is off, and the third ramps linearly up or down.
//
// Landmarks on the wheel: red at 0 (and 252), yellow at 42, green at
// 84, turquoise at 126, blue at 168, pink at 210.
package hue

const (
	// Wheel is the number of units in a full hue circle.
	Wheel = 252
	// Segments is the number of HSV color segments on the wheel.
	Segments = 6
	// SegmentSize is the width of one segment in hue units.
	SegmentSize = Wheel / Segments
	// Full is the intensity of a channel held at full power.
	Full = 252
)

// ToRGB maps a hue on the 252-unit wheel to the three channel
// intensities at full saturation and value. Any input is valid: values
// at or beyond Wheel wrap around to the start of the circle.
func ToRGB(h uint8) (r, g, b uint8) {
	seg := (h / SegmentSize) % Segments
	f := h % SegmentSize   // position within the segment, 0..41
	fs := f * Segments     // rescaled to the 0..252 output range

	switch seg {
	case 0:
		return Full, fs, 0 // red full, green ramps up
	case 1:
		return Full - fs, Full, 0 // red ramps down
	case 2:
		return 0, Full, fs // blue ramps up
	case 3:
		return 0, Full - fs, Full // green ramps down
	case 4:
		return fs, 0, Full // red ramps up
	default:
		return Full, 0, Full - fs // blue ramps down
	}
}
