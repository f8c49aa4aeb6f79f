package hue

import "testing"

func TestSegmentLandmarks(t *testing.T) {
	tests := []struct {
		name    string
		h       uint8
		r, g, b uint8
	}{
		{"red", 0, 252, 0, 0},
		{"yellow", 42, 252, 252, 0},
		{"green", 84, 0, 252, 0},
		{"turquoise", 126, 0, 252, 252},
		{"blue", 168, 0, 0, 252},
		{"pink", 210, 252, 0, 252},
	}

	for _, tt := range tests {
		r, g, b := ToRGB(tt.h)
		if r != tt.r || g != tt.g || b != tt.b {
			t.Errorf("%s: ToRGB(%d) = (%d,%d,%d), want (%d,%d,%d)",
				tt.name, tt.h, r, g, b, tt.r, tt.g, tt.b)
		}
	}
}

func TestWheelWrapsAround(t *testing.T) {
	// 252 is one full circle, so it must land on the same color as 0.
	r0, g0, b0 := ToRGB(0)
	r1, g1, b1 := ToRGB(Wheel)
	if r0 != r1 || g0 != g1 || b0 != b1 {
		t.Errorf("ToRGB(252) = (%d,%d,%d), want same as ToRGB(0) = (%d,%d,%d)",
			r1, g1, b1, r0, g0, b0)
	}

	// The few byte values past the wheel continue into segment 0.
	r, g, b := ToRGB(253)
	if r != Full || g != Segments || b != 0 {
		t.Errorf("ToRGB(253) = (%d,%d,%d), want (252,6,0)", r, g, b)
	}
}

func TestRampWithinSegment(t *testing.T) {
	// In segment 0 green ramps up in steps of 6 while red stays full.
	for f := uint8(0); f < SegmentSize; f++ {
		r, g, b := ToRGB(f)
		if r != Full {
			t.Errorf("hue %d: red = %d, want %d", f, r, Full)
		}
		if g != f*Segments {
			t.Errorf("hue %d: green = %d, want %d", f, g, f*Segments)
		}
		if b != 0 {
			t.Errorf("hue %d: blue = %d, want 0", f, b)
		}
	}
}

// TestOneRampingChannel checks the structural property of the sextant
// table: for every hue at most one channel is strictly between 0 and
// full power, and at least one channel sits exactly at 0 or 252.
func TestOneRampingChannel(t *testing.T) {
	for h := 0; h < 256; h++ {
		r, g, b := ToRGB(uint8(h))

		ramping := 0
		pinned := 0
		for _, v := range []uint8{r, g, b} {
			if v > 0 && v < Full {
				ramping++
			} else {
				pinned++
			}
		}

		if ramping > 1 {
			t.Errorf("hue %d: %d channels ramping, want at most 1 (got %d,%d,%d)", h, ramping, r, g, b)
		}
		if pinned == 0 {
			t.Errorf("hue %d: no channel pinned at 0 or 252 (got %d,%d,%d)", h, r, g, b)
		}
	}
}

func TestNoChannelExceedsFull(t *testing.T) {
	for h := 0; h < 256; h++ {
		r, g, b := ToRGB(uint8(h))
		for _, v := range []uint8{r, g, b} {
			if v > Full {
				t.Errorf("hue %d: channel value %d exceeds %d", h, v, Full)
			}
		}
	}
}
