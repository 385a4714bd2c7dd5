package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func sampleSession() *Session {
	s := New("sid-1")
	s.SetUser(&User{ID: 1, Username: "ann", Email: "a@x.io", Role: "user"})
	s.AddFlash(FlashSuccess, "Login successful!")
	s.AddNotification(Invoice("INV-9"))
	s.AddOrder(Order{OrderID: "INV-9", Total: 19.98, Items: []OrderItem{{ProductID: 1, ProductName: "Widget", Quantity: 2, Price: 9.99}}})
	return s
}

func exerciseStore(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	_, err := store.Get(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)

	in := sampleSession()
	require.NoError(t, store.Save(ctx, in, time.Hour))

	out, err := store.Get(ctx, in.ID)
	require.NoError(t, err)
	assert.Equal(t, in.User, out.User)
	assert.Equal(t, in.Flashes, out.Flashes)
	require.Len(t, out.Notifications, 1)
	assert.Equal(t, KindInvoice, out.Notifications[0].Kind)
	assert.Equal(t, in.Notifications[0].ID, out.Notifications[0].ID)
	assert.Equal(t, in.Orders, out.Orders)
	assert.False(t, out.Dirty())

	require.NoError(t, store.Delete(ctx, in.ID))
	_, err = store.Get(ctx, in.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore(t *testing.T) {
	t.Parallel()
	exerciseStore(t, NewMemoryStore())
}

func TestMemoryStore_Expiry(t *testing.T) {
	t.Parallel()

	m := NewMemoryStore()
	now := time.Now()
	m.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, m.Save(ctx, New("a"), time.Minute))
	require.NoError(t, m.Save(ctx, New("b"), time.Hour))

	now = now.Add(2 * time.Minute)
	_, err := m.Get(ctx, "a")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.Equal(t, 0, m.Sweep())
	assert.Equal(t, 1, m.Len())

	now = now.Add(2 * time.Hour)
	assert.Equal(t, 1, m.Sweep())
	assert.Equal(t, 0, m.Len())
}

func TestMemoryStore_RunStopsOnCancel(t *testing.T) {
	defer goleak.VerifyNone(t)

	m := NewMemoryStore()
	ctx, cancel := context.WithCancel(context.Background())

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		assert.NoError(t, m.Run(ctx, time.Millisecond))
	}()

	time.Sleep(5 * time.Millisecond)
	cancel()
	wg.Wait()
}

func TestRedisStore(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := NewRedisStore(client)
	exerciseStore(t, store)

	ctx := context.Background()
	require.NoError(t, store.Save(ctx, New("ttl"), 30*time.Minute))
	assert.True(t, mr.Exists("session:ttl"))
	assert.Equal(t, 30*time.Minute, mr.TTL("session:ttl"))

	mr.FastForward(31 * time.Minute)
	_, err := store.Get(ctx, "ttl")
	assert.ErrorIs(t, err, ErrNotFound)
}
