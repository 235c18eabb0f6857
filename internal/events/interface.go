package events

import "context"

// EventPublisher is the behavior the service layer and the TUI depend on
type EventPublisher interface {
	// Connect establishes a connection to the daemon socket
	Connect(ctx context.Context) error

	// SendEvent queues an event to be sent to the daemon
	SendEvent(event Event) error

	// Listen starts listening for events from the daemon
	Listen(ctx context.Context) (<-chan Event, error)

	// Subscribe changes the subscription to a specific collection
	Subscribe(table string) error

	// Close closes the connection to the daemon and stops all goroutines
	Close() error
}

var _ EventPublisher = (*Client)(nil)
