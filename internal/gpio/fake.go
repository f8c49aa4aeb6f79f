package gpio

// FakeWriter is a test double that records the line states it is
// driven to.
type FakeWriter struct {
	// R, G, B are the current line states.
	R, G, B bool

	// Writes counts SetRGB calls.
	Writes int

	// Closed tracks if Close was called
	Closed bool

	// WriteError, if set, will be returned by SetRGB
	WriteError error
}

// NewFakeWriter creates a FakeWriter with all lines low.
func NewFakeWriter() *FakeWriter {
	return &FakeWriter{}
}

// SetRGB records the new line states.
func (f *FakeWriter) SetRGB(r, g, b bool) error {
	if f.WriteError != nil {
		return f.WriteError
	}

	f.R, f.G, f.B = r, g, b
	f.Writes++
	return nil
}

// Close marks the writer as closed.
func (f *FakeWriter) Close() error {
	f.Closed = true
	return nil
}

// Reset returns the writer to its initial state.
func (f *FakeWriter) Reset() {
	f.R, f.G, f.B = false, false, false
	f.Writes = 0
	f.Closed = false
	f.WriteError = nil
}
