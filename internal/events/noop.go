package events

import "context"

// NoopPublisher is a Publisher that does nothing. Used when FOIAD_NATS_URL
// is not set; the durable event log in the store is unaffected.
type NoopPublisher struct{}

func (n *NoopPublisher) Publish(ctx context.Context, topic string, event any) error {
	return nil
}

func (n *NoopPublisher) Close() error {
	return nil
}
