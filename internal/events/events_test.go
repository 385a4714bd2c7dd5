package events

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvent_JSONEnvelope(t *testing.T) {
	t.Parallel()

	ev := New("order_placed", map[string]any{"order_id": "INV-1", "total": 19.98})
	raw, err := json.Marshal(ev)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "order_placed", decoded["type"])
	assert.NotEmpty(t, decoded["occurred_at"])
	assert.Equal(t, "INV-1", decoded["data"].(map[string]any)["order_id"])
}

func TestRecorder_Types(t *testing.T) {
	t.Parallel()

	r := &Recorder{}
	ctx := context.Background()
	require.NoError(t, r.PublishEvent(ctx, TopicCart, Key(1), New("cart_item_added", nil)))
	require.NoError(t, r.PublishEvent(ctx, TopicOrder, Key(1), New("order_placed", nil)))
	require.NoError(t, r.PublishEvent(ctx, TopicCart, Key(1), New("cart_item_removed", nil)))

	assert.Equal(t, []string{"cart_item_added", "cart_item_removed"}, r.Types(TopicCart))
	assert.Equal(t, []string{"order_placed"}, r.Types(TopicOrder))
	assert.Empty(t, r.Types(TopicUser))
}

func TestNewKafkaPublisher_PrefixesTopic(t *testing.T) {
	t.Parallel()

	p := NewKafkaPublisher([]string{"localhost:9092"}, "dev.")
	defer p.Close()

	assert.Equal(t, "dev.", p.prefix)
	assert.Equal(t, "localhost:9092", p.writer.Addr.String())
}
