package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Value int
}

func TestPublishConsume(t *testing.T) {
	ctx := context.Background()
	queue := NewQueue[payload](DefaultConfig())

	require.NoError(t, queue.Publish(ctx, &payload{Value: 1}))
	require.NoError(t, queue.Publish(ctx, &payload{Value: 2}))
	assert.Equal(t, 2, queue.Size())

	msg, err := queue.Consume(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, msg.T().Value)
	require.NoError(t, msg.Ack())
	assert.Error(t, msg.Ack())

	msg, err = queue.Consume(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, msg.T().Value)
	assert.Equal(t, 0, queue.Size())
}

func TestConsumeCancelled(t *testing.T) {
	queue := NewQueue[payload](Config{QueueBuffer: 1})
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := queue.Consume(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestPublishBlockedCancelled(t *testing.T) {
	queue := NewQueue[payload](Config{QueueBuffer: 1})
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	require.NoError(t, queue.Publish(ctx, &payload{Value: 1}))
	err := queue.Publish(ctx, &payload{Value: 2})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
