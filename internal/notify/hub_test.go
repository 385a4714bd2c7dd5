package notify

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestHub_PublishReachesOnlyThatSession(t *testing.T) {
	t.Parallel()

	h := NewHub()
	a1, err := h.Subscribe("a")
	require.NoError(t, err)
	a2, err := h.Subscribe("a")
	require.NoError(t, err)
	b, err := h.Subscribe("b")
	require.NoError(t, err)
	assert.Equal(t, 2, h.Subscribers("a"))

	require.NoError(t, h.Publish("a", "hello"))

	assert.Equal(t, "hello", <-a1.C)
	assert.Equal(t, "hello", <-a2.C)
	select {
	case v := <-b.C:
		t.Fatalf("unexpected value for b: %v", v)
	default:
	}
	h.Close()
}

func TestHub_PublishWithoutSubscribers(t *testing.T) {
	t.Parallel()

	h := NewHub()
	assert.NoError(t, h.Publish("nobody", 1))
	assert.Zero(t, h.Dropped())
}

func TestHub_FullBufferDrops(t *testing.T) {
	t.Parallel()

	h := NewHub()
	h.buffer = 1
	sub, err := h.Subscribe("a")
	require.NoError(t, err)

	require.NoError(t, h.Publish("a", 1))
	require.NoError(t, h.Publish("a", 2))
	assert.Equal(t, int64(1), h.Dropped())
	assert.Equal(t, 1, <-sub.C)
	sub.Close()
}

func TestSubscription_CloseIsIdempotent(t *testing.T) {
	t.Parallel()

	h := NewHub()
	sub, err := h.Subscribe("a")
	require.NoError(t, err)

	sub.Close()
	sub.Close()
	_, ok := <-sub.C
	assert.False(t, ok)
	assert.Zero(t, h.Subscribers("a"))
}

func TestHub_RunClosesOnCancel(t *testing.T) {
	t.Parallel()

	h := NewHub()
	sub, err := h.Subscribe("a")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- h.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not return")
	}

	_, ok := <-sub.C
	assert.False(t, ok)
	assert.ErrorIs(t, h.Publish("a", 1), ErrClosed)
	_, err = h.Subscribe("a")
	assert.ErrorIs(t, err, ErrClosed)

	sub.Close()
}
