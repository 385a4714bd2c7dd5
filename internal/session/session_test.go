package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/internal/models"
)

func TestSession_Flashes(t *testing.T) {
	t.Parallel()

	s := New("sid")
	s.MarkClean()
	s.AddFlash(FlashError, "All fields are required.")
	s.AddFlash(FlashSuccess, "Login successful!")
	s.AddFlash(FlashError, "second")
	assert.True(t, s.Dirty())

	assert.Equal(t, []string{"All fields are required.", "second"}, s.TakeFlashes(FlashError))
	assert.Empty(t, s.TakeFlashes(FlashError))
	assert.Equal(t, []string{"Login successful!"}, s.TakeFlashes(FlashSuccess))
	assert.Empty(t, s.Flashes)
}

func TestSession_FormData(t *testing.T) {
	t.Parallel()

	s := New("sid")
	assert.Empty(t, s.TakeFormData())

	s.SetFormData(map[string]string{"username": "ann"})
	assert.Equal(t, "ann", s.TakeFormData()["username"])
	assert.Empty(t, s.TakeFormData())
}

func TestSession_AddNotification_PrependsWithUniqueIDs(t *testing.T) {
	t.Parallel()

	s := New("sid")
	first := s.AddNotification(OrderConfirmation("INV-1", 19.98))
	second := s.AddNotification(Invoice("INV-1"))

	require.Len(t, s.Notifications, 2)
	assert.Equal(t, KindInvoice, s.Notifications[0].Kind)
	assert.Equal(t, KindOrderConfirmation, s.Notifications[1].Kind)
	assert.Greater(t, second.ID, first.ID)
	assert.False(t, s.Notifications[0].Read)
	assert.False(t, s.Notifications[0].CreatedAt.IsZero())
	assert.Equal(t, "Order INV-1 confirmed. Total $19.98.", s.Notifications[1].Message)
	assert.Equal(t, "Invoice for INV-1 is ready.", s.Notifications[0].Message)
	assert.Equal(t, 2, s.UnreadCount())
}

func TestSession_NilIsNoOp(t *testing.T) {
	t.Parallel()

	var s *Session
	assert.NotPanics(t, func() {
		s.AddNotification(ProfileUpdated())
		s.MarkAllRead()
	})
	assert.Zero(t, s.UnreadCount())
	assert.False(t, s.Dirty())
}

func TestSession_MarkAllRead(t *testing.T) {
	t.Parallel()

	empty := New("sid")
	empty.MarkClean()
	empty.MarkAllRead()
	assert.False(t, empty.Dirty())

	s := New("sid")
	s.AddNotification(ProfileUpdated())
	s.AddNotification(Invoice("INV-2"))
	s.MarkAllRead()
	for _, n := range s.Notifications {
		assert.True(t, n.Read)
	}
	assert.Zero(t, s.UnreadCount())
}

func TestSession_AddOrderNewestFirst(t *testing.T) {
	t.Parallel()

	s := New("sid")
	s.AddOrder(Order{OrderID: "INV-1"})
	s.AddOrder(Order{OrderID: "INV-2"})
	assert.Equal(t, "INV-2", s.Orders[0].OrderID)
	assert.Equal(t, "INV-1", s.Orders[1].OrderID)
}

func TestUserFromModel(t *testing.T) {
	t.Parallel()

	u := UserFromModel(&models.User{ID: 3, Username: "ann", Email: "a@x.io", Role: models.RoleAdmin})
	assert.Equal(t, uint(3), u.ID)
	assert.True(t, u.IsAdmin())

	var nilUser *User
	assert.False(t, nilUser.IsAdmin())
}
