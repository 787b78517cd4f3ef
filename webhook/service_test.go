package webhook_test

import (
	"context"
	"testing"

	"github.com/ralborta/cucuru-bridge/webhook"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEvent(t *testing.T) {
	t.Run("well-formed payload", func(t *testing.T) {
		body := []byte(`{"id":"evt_1","type":"collection.received","data":{"amount":500},"created_at":"2024-03-01T10:00:00Z"}`)
		event := webhook.ParseEvent(body)
		assert.Equal(t, "evt_1", event.ID)
		assert.Equal(t, "collection.received", event.Type)
		assert.JSONEq(t, `{"amount":500}`, string(event.Data))
		assert.Equal(t, "2024-03-01T10:00:00Z", event.CreatedAt)
	})

	t.Run("malformed JSON yields an empty event", func(t *testing.T) {
		event := webhook.ParseEvent([]byte(`{not json`))
		assert.Equal(t, webhook.Event{}, event)
	})

	t.Run("empty body yields an empty event", func(t *testing.T) {
		event := webhook.ParseEvent(nil)
		assert.Equal(t, webhook.Event{}, event)
	})
}

func TestReceive(t *testing.T) {
	ctx := context.Background()
	service := webhook.NewService(zerolog.Nop())

	t.Run("acknowledges a delivery", func(t *testing.T) {
		event := webhook.ParseEvent([]byte(`{"id":"evt_1","type":"settlement.received"}`))

		ack, err := service.Receive(ctx, "settlement_received", event, 0)

		require.NoError(t, err)
		assert.True(t, ack.Received)
	})

	t.Run("redeliveries are acknowledged independently", func(t *testing.T) {
		event := webhook.ParseEvent([]byte(`{"id":"evt_1","type":"settlement.received"}`))

		first, err := service.Receive(ctx, "settlement_received", event, 0)
		require.NoError(t, err)
		second, err := service.Receive(ctx, "settlement_received", event, 1)
		require.NoError(t, err)

		assert.True(t, first.Received)
		assert.True(t, second.Received)
	})

	t.Run("empty event is still acknowledged", func(t *testing.T) {
		ack, err := service.Receive(ctx, "cucuru", webhook.Event{}, 0)
		require.NoError(t, err)
		assert.True(t, ack.Received)
	})
}
