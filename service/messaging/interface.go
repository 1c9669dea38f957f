package messaging

import (
	"context"
)

// Queue represents an abstract point-to-point message queue for any payload
// type. The coordinator owns one assignment queue per worker plus a single
// shared result queue; both directions use the same abstraction.
type Queue[T any] interface {
	// Publish adds a new message with payload to the queue.
	Publish(ctx context.Context, t *T) error

	// Consume blocks until a single message is available or ctx is done.
	Consume(ctx context.Context) (Message[T], error)
}

// Message represents a message retrieved from a queue.
type Message[T any] interface {
	// T returns the payload of this message.
	T() *T

	// Ack acknowledges successful processing of this message. There is no
	// Nack counterpart: a failed job is fatal to the whole run, never
	// redelivered.
	Ack() error
}
