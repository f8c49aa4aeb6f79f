package mqtt

import "github.com/tinkerlog/fireflies/internal/logic"

// FakePublisher records everything published through it. Tests inspect
// the Events and SystemEvents slices (and their formatted payloads)
// and steer behavior through the error and Connected fields. Node is
// used when formatting payloads.
type FakePublisher struct {
	Node string

	Events         []logic.Event
	Payloads       [][]byte
	SystemEvents   []SystemEvent
	SystemPayloads [][]byte

	PublishError       error
	PublishSystemError error

	Closed    bool
	Connected bool
}

func NewFakePublisher() *FakePublisher {
	return &FakePublisher{}
}

func (f *FakePublisher) Publish(event logic.Event) error {
	if f.PublishError != nil {
		return f.PublishError
	}
	f.Events = append(f.Events, event)

	payload, err := FormatPayload(f.Node, event)
	if err != nil {
		return err
	}
	f.Payloads = append(f.Payloads, payload)
	return nil
}

func (f *FakePublisher) PublishSystem(event SystemEvent) error {
	if f.PublishSystemError != nil {
		return f.PublishSystemError
	}
	f.SystemEvents = append(f.SystemEvents, event)

	payload, err := FormatSystemPayload(event)
	if err != nil {
		return err
	}
	f.SystemPayloads = append(f.SystemPayloads, payload)
	return nil
}

func (f *FakePublisher) Close() error {
	f.Closed = true
	return nil
}

func (f *FakePublisher) IsConnected() bool {
	return f.Connected
}

// Reset clears all recorded state and injected behavior.
func (f *FakePublisher) Reset() {
	*f = FakePublisher{Node: f.Node}
}
