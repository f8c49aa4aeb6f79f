package mqtt

import (
	"errors"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/tinkerlog/fireflies/internal/logic"
)

type fakeToken struct {
	timeout bool
	err     error
}

func (t *fakeToken) Wait() bool                     { return true }
func (t *fakeToken) WaitTimeout(time.Duration) bool { return !t.timeout }
func (t *fakeToken) Error() error                   { return t.err }
func (t *fakeToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}

type sentMsg struct {
	topic    string
	qos      byte
	retained bool
	payload  []byte
}

// fakeBrokerClient stands in for the paho client: Publish records the
// message and returns the configured token.
type fakeBrokerClient struct {
	connected bool
	token     *fakeToken
	sent      []sentMsg
}

func (c *fakeBrokerClient) IsConnected() bool      { return c.connected }
func (c *fakeBrokerClient) IsConnectionOpen() bool { return c.connected }
func (c *fakeBrokerClient) Connect() paho.Token    { return &fakeToken{} }
func (c *fakeBrokerClient) Disconnect(uint)        {}

func (c *fakeBrokerClient) Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token {
	c.sent = append(c.sent, sentMsg{topic: topic, qos: qos, retained: retained, payload: payload.([]byte)})
	return c.token
}

func (c *fakeBrokerClient) Subscribe(string, byte, paho.MessageHandler) paho.Token {
	return &fakeToken{}
}

func (c *fakeBrokerClient) SubscribeMultiple(map[string]byte, paho.MessageHandler) paho.Token {
	return &fakeToken{}
}

func (c *fakeBrokerClient) Unsubscribe(...string) paho.Token        { return &fakeToken{} }
func (c *fakeBrokerClient) AddRoute(string, paho.MessageHandler)    {}
func (c *fakeBrokerClient) OptionsReader() paho.ClientOptionsReader { return paho.ClientOptionsReader{} }

func newTestRealPublisher(client paho.Client) *RealPublisher {
	return &RealPublisher{
		client:      client,
		node:        "garden-3",
		topicEvents: EventsTopic("garden-3"),
		topicSystem: SystemTopic("garden-3"),
		out:         newOutbox(10),
	}
}

func flashEvent() logic.Event {
	return logic.Event{
		Timestamp: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		Type:      logic.EventFlash,
		Hue:       128,
	}
}

func TestRealPublisherDeliversWhenConnected(t *testing.T) {
	client := &fakeBrokerClient{connected: true, token: &fakeToken{}}
	p := newTestRealPublisher(client)

	if err := p.Publish(flashEvent()); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	if len(client.sent) != 1 {
		t.Fatalf("expected 1 sent message, got %d", len(client.sent))
	}
	if client.sent[0].topic != "firefly/garden-3/events" {
		t.Errorf("topic: got %s", client.sent[0].topic)
	}
	if client.sent[0].qos != 0 || client.sent[0].retained {
		t.Errorf("events should go out qos 0 unretained, got qos=%d retained=%v",
			client.sent[0].qos, client.sent[0].retained)
	}
	if p.out.size() != 0 {
		t.Errorf("nothing should be queued, outbox has %d", p.out.size())
	}
}

func TestRealPublisherSystemQoSAndRetain(t *testing.T) {
	client := &fakeBrokerClient{connected: true, token: &fakeToken{}}
	p := newTestRealPublisher(client)

	event := SystemEvent{
		Timestamp: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		Event:     "SHUTDOWN",
		Reason:    "SIGTERM",
		Retained:  true,
	}
	if err := p.PublishSystem(event); err != nil {
		t.Fatalf("PublishSystem: %v", err)
	}

	if len(client.sent) != 1 {
		t.Fatalf("expected 1 sent message, got %d", len(client.sent))
	}
	if client.sent[0].topic != "firefly/garden-3/system" {
		t.Errorf("topic: got %s", client.sent[0].topic)
	}
	if client.sent[0].qos != 1 || !client.sent[0].retained {
		t.Errorf("system events should go out qos 1 retained, got qos=%d retained=%v",
			client.sent[0].qos, client.sent[0].retained)
	}
}

func TestRealPublisherQueuesWhileDisconnected(t *testing.T) {
	client := &fakeBrokerClient{connected: false}
	p := newTestRealPublisher(client)

	if err := p.Publish(flashEvent()); err != nil {
		t.Fatalf("Publish while disconnected should not error, got %v", err)
	}

	if len(client.sent) != 0 {
		t.Errorf("nothing should reach the client, got %d messages", len(client.sent))
	}
	if p.out.size() != 1 {
		t.Errorf("expected 1 queued message, outbox has %d", p.out.size())
	}
}

func TestRealPublisherQueuesOnTimeout(t *testing.T) {
	client := &fakeBrokerClient{connected: true, token: &fakeToken{timeout: true}}
	p := newTestRealPublisher(client)

	if err := p.Publish(flashEvent()); err == nil {
		t.Fatal("expected an error on publish timeout")
	}
	if p.out.size() != 1 {
		t.Errorf("expected the timed-out message queued, outbox has %d", p.out.size())
	}
}

func TestRealPublisherQueuesOnTokenError(t *testing.T) {
	tokenErr := errors.New("broker rejected publish")
	client := &fakeBrokerClient{connected: true, token: &fakeToken{err: tokenErr}}
	p := newTestRealPublisher(client)

	err := p.Publish(flashEvent())
	if !errors.Is(err, tokenErr) {
		t.Fatalf("expected the token error wrapped, got %v", err)
	}

	// The failed message awaits replay just like a timeout does.
	if p.out.size() != 1 {
		t.Errorf("expected the failed message queued, outbox has %d", p.out.size())
	}
}

func TestRealPublisherReplaysOutboxOnConnect(t *testing.T) {
	client := &fakeBrokerClient{connected: false}
	p := newTestRealPublisher(client)

	if err := p.Publish(flashEvent()); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	event := SystemEvent{
		Timestamp: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		Event:     "HEARTBEAT",
	}
	if err := p.PublishSystem(event); err != nil {
		t.Fatalf("PublishSystem: %v", err)
	}
	if p.out.size() != 2 {
		t.Fatalf("expected 2 queued messages, got %d", p.out.size())
	}

	client.connected = true
	client.token = &fakeToken{}
	p.onConnect(client)

	if len(client.sent) != 2 {
		t.Fatalf("expected 2 replayed messages, got %d", len(client.sent))
	}
	if client.sent[0].topic != "firefly/garden-3/events" {
		t.Errorf("replay order: first topic = %s", client.sent[0].topic)
	}
	if client.sent[1].topic != "firefly/garden-3/system" {
		t.Errorf("replay order: second topic = %s", client.sent[1].topic)
	}
	if p.out.size() != 0 {
		t.Errorf("outbox should be empty after replay, has %d", p.out.size())
	}
}
