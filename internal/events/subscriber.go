package events

// Subscriber receives lifecycle events from the bus. The `foiad watch`
// command is the main consumer; alerting integrations are external.
type Subscriber interface {
	// Subscribe delivers raw event payloads on the returned channel.
	// Call the returned cancel function to unsubscribe and close the channel.
	Subscribe(topic string) (<-chan []byte, func(), error)
	Close() error
}
