package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cellrun/cellrun/service/messaging"
	"github.com/google/uuid"
)

// Config for memory queue implementation.
type Config struct {
	QueueBuffer int
}

// DefaultConfig returns a standard configuration for memory queue.
func DefaultConfig() Config {
	return Config{QueueBuffer: 100}
}

// Message implements messaging.Message for the in-memory queue.
type Message[T any] struct {
	id        string
	payload   T
	mu        sync.Mutex
	processed bool
	createdAt time.Time
}

// T returns the message payload.
func (m *Message[T]) T() *T {
	return &m.payload
}

// Ack acknowledges the message as processed successfully.
func (m *Message[T]) Ack() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.processed {
		return fmt.Errorf("message %v already processed", m.id)
	}
	m.processed = true
	return nil
}

// Queue implements an in-memory messaging.Queue backed by a buffered channel.
type Queue[T any] struct {
	messages chan *Message[T]
	config   Config
}

// NewQueue creates a new in-memory queue.
func NewQueue[T any](config Config) *Queue[T] {
	if config.QueueBuffer <= 0 {
		config.QueueBuffer = DefaultConfig().QueueBuffer
	}
	return &Queue[T]{
		messages: make(chan *Message[T], config.QueueBuffer),
		config:   config,
	}
}

// Publish adds a new item to the queue.
func (q *Queue[T]) Publish(ctx context.Context, t *T) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	msg := &Message[T]{
		id:        uuid.New().String(),
		payload:   *t,
		createdAt: time.Now(),
	}
	select {
	case q.messages <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Consume retrieves a single item from the queue.
func (q *Queue[T]) Consume(ctx context.Context) (messaging.Message[T], error) {
	select {
	case msg := <-q.messages:
		return msg, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Size returns the current number of messages in the queue.
func (q *Queue[T]) Size() int {
	return len(q.messages)
}

// ensure Queue implements messaging.Queue interface
var _ messaging.Queue[any] = (*Queue[any])(nil)
