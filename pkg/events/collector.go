package events

// EventCollector buffers the events an aggregate raises until the caller
// has persisted it and handed them to a publisher.
type EventCollector struct {
	pending []DomainEvent
}

// Record queues event.
func (c *EventCollector) Record(event DomainEvent) {
	c.pending = append(c.pending, event)
}

// Pending reports how many events are queued.
func (c *EventCollector) Pending() int {
	return len(c.pending)
}

// Events returns a copy of the queued events.
func (c *EventCollector) Events() []DomainEvent {
	if len(c.pending) == 0 {
		return nil
	}
	out := make([]DomainEvent, len(c.pending))
	copy(out, c.pending)
	return out
}

// ClearEvents drains the queue and returns what it held.
func (c *EventCollector) ClearEvents() []DomainEvent {
	drained := c.pending
	c.pending = nil
	return drained
}
