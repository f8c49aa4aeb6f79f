package mqtt

import "log"

// outboxMsg is one serialized publish held back while the broker is
// unreachable.
type outboxMsg struct {
	topic    string
	payload  []byte
	qos      byte
	retained bool
}

// outbox queues publishes during broker outages for replay on
// reconnect. When the limit is reached the oldest message is dropped
// first, so an outage costs the tail of history rather than the most
// recent state. Callers must synchronize access.
type outbox struct {
	msgs    []outboxMsg
	limit   int
	dropped int
}

func newOutbox(limit int) *outbox {
	return &outbox{limit: limit}
}

func (o *outbox) add(msg outboxMsg) {
	if len(o.msgs) == o.limit {
		if o.dropped == 0 {
			log.Printf("mqtt: outbox full (%d messages), dropping oldest", o.limit)
		}
		o.dropped++
		copy(o.msgs, o.msgs[1:])
		o.msgs = o.msgs[:o.limit-1]
	}
	o.msgs = append(o.msgs, msg)
}

// takeAll returns the queued messages in publish order and resets the
// outbox.
func (o *outbox) takeAll() []outboxMsg {
	msgs := o.msgs
	o.msgs = nil
	o.dropped = 0
	return msgs
}

func (o *outbox) size() int {
	return len(o.msgs)
}
