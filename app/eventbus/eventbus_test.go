package eventbus

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/Black-And-White-Club/tcr-bot/app/shared/observability"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryBus_PublishSubscribe(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bus, err := New(ctx, Config{}, observability.NoOpLogger)
	require.NoError(t, err)
	defer bus.Close()

	msgs, err := bus.Subscribe(ctx, "test.topic")
	require.NoError(t, err)

	msg, err := NewMessage("corr-1", map[string]int{"tag": 7})
	require.NoError(t, err)
	require.NoError(t, bus.Publish("test.topic", msg))

	select {
	case got := <-msgs:
		got.Ack()
		assert.Equal(t, "corr-1", middleware.MessageCorrelationID(got))
		var payload map[string]int
		require.NoError(t, json.Unmarshal(got.Payload, &payload))
		assert.Equal(t, 7, payload["tag"])
	case <-time.After(2 * time.Second):
		t.Fatal("message not delivered")
	}
}

func TestNewMessage_RejectsUnencodablePayload(t *testing.T) {
	_, err := NewMessage("", make(chan int))
	require.Error(t, err)
}
