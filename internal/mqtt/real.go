package mqtt

import (
	"fmt"
	"log"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/tinkerlog/fireflies/internal/logic"
)

// outboxLimit bounds the messages held while the broker is
// unreachable. A flashing node produces a handful of events per
// minute, so this covers hours of outage.
const outboxLimit = 1000

// RealPublisher publishes to an actual MQTT broker. Messages that
// cannot be delivered while the connection is down are buffered and
// replayed on reconnect.
type RealPublisher struct {
	client      paho.Client
	node        string
	topicEvents string
	topicSystem string

	mu  sync.Mutex
	out *outbox
}

// NewRealPublisher creates a publisher connected to the given broker.
func NewRealPublisher(broker, node string) (*RealPublisher, error) {
	p := &RealPublisher{
		node:        node,
		topicEvents: EventsTopic(node),
		topicSystem: SystemTopic(node),
		out:         newOutbox(outboxLimit),
	}

	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID("firefly-" + node).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetOnConnectHandler(p.onConnect).
		SetConnectionLostHandler(func(_ paho.Client, err error) {
			log.Printf("mqtt: connection lost: %v", err)
		})

	p.client = paho.NewClient(opts)
	token := p.client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		return nil, fmt.Errorf("connection timeout")
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect to broker: %w", err)
	}

	return p, nil
}

// Publish sends a firefly event to the MQTT broker.
func (p *RealPublisher) Publish(event logic.Event) error {
	payload, err := FormatPayload(p.node, event)
	if err != nil {
		return fmt.Errorf("format payload: %w", err)
	}

	// QoS 0 (at-most-once), not retained
	return p.send(p.topicEvents, 0, false, payload)
}

// PublishSystem sends a system lifecycle event to the MQTT broker.
func (p *RealPublisher) PublishSystem(event SystemEvent) error {
	payload, err := FormatSystemPayload(event)
	if err != nil {
		return fmt.Errorf("format system payload: %w", err)
	}

	// QoS 1 (at-least-once) for lifecycle events
	return p.send(p.topicSystem, 1, event.Retained, payload)
}

// send publishes one message. Whenever delivery cannot be confirmed
// (connection down, timeout, or a failed token) the message goes to
// the outbox for replay on reconnect.
func (p *RealPublisher) send(topic string, qos byte, retained bool, payload []byte) error {
	if !p.client.IsConnected() {
		p.queue(topic, qos, retained, payload)
		return nil
	}

	token := p.client.Publish(topic, qos, retained, payload)
	if !token.WaitTimeout(5 * time.Second) {
		p.queue(topic, qos, retained, payload)
		return fmt.Errorf("publish timeout")
	}
	if err := token.Error(); err != nil {
		p.queue(topic, qos, retained, payload)
		return fmt.Errorf("publish: %w", err)
	}

	return nil
}

func (p *RealPublisher) queue(topic string, qos byte, retained bool, payload []byte) {
	p.mu.Lock()
	p.out.add(outboxMsg{topic: topic, payload: payload, qos: qos, retained: retained})
	p.mu.Unlock()
}

// onConnect replays messages buffered while the connection was down.
func (p *RealPublisher) onConnect(client paho.Client) {
	p.mu.Lock()
	msgs := p.out.takeAll()
	p.mu.Unlock()

	if len(msgs) == 0 {
		return
	}
	log.Printf("mqtt: replaying %d queued messages", len(msgs))
	for _, msg := range msgs {
		token := client.Publish(msg.topic, msg.qos, msg.retained, msg.payload)
		if !token.WaitTimeout(5 * time.Second) {
			log.Printf("mqtt: replay timeout on %s", msg.topic)
			continue
		}
		if err := token.Error(); err != nil {
			log.Printf("mqtt: replay failed on %s: %v", msg.topic, err)
		}
	}
}

// IsConnected reports whether the broker connection is up.
func (p *RealPublisher) IsConnected() bool {
	return p.client.IsConnected()
}

// Close disconnects from the broker.
func (p *RealPublisher) Close() error {
	p.client.Disconnect(1000) // 1 second timeout
	return nil
}
