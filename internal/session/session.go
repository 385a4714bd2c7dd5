package session

import (
	"fmt"
	"time"

	"github.com/Skotchmaster/storefront/internal/models"
)

// User is the authenticated account snapshot kept in the session.
type User struct {
	ID       uint        `json:"id"`
	Username string      `json:"username"`
	Email    string      `json:"email"`
	Address  string      `json:"address"`
	Contact  string      `json:"contact"`
	Role     models.Role `json:"role"`
}

func UserFromModel(u *models.User) *User {
	return &User{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		Address:  u.Address,
		Contact:  u.Contact,
		Role:     u.Role,
	}
}

func (u *User) IsAdmin() bool { return u != nil && u.Role == models.RoleAdmin }

type FlashKind string

const (
	FlashError   FlashKind = "error"
	FlashSuccess FlashKind = "success"
)

type Flash struct {
	Kind    FlashKind `json:"kind"`
	Message string    `json:"message"`
}

type NotificationKind string

const (
	KindOrderConfirmation NotificationKind = "Order Confirmation"
	KindInvoice           NotificationKind = "Invoice"
	KindProfileUpdate     NotificationKind = "Profile Update"
)

type Notification struct {
	ID        int64            `json:"id"`
	Kind      NotificationKind `json:"type"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	Link      string           `json:"link"`
	Read      bool             `json:"read"`
	CreatedAt time.Time        `json:"createdAt"`
}

func OrderConfirmation(orderID string, total float64) Notification {
	return Notification{
		Kind:    KindOrderConfirmation,
		Title:   "Order placed successfully",
		Message: fmt.Sprintf("Order %s confirmed. Total $%.2f.", orderID, total),
		Link:    "/checkout",
	}
}

func Invoice(orderID string) Notification {
	return Notification{
		Kind:    KindInvoice,
		Title:   "Invoice available",
		Message: fmt.Sprintf("Invoice for %s is ready.", orderID),
		Link:    "/checkout",
	}
}

func ProfileUpdated() Notification {
	return Notification{
		Kind:    KindProfileUpdate,
		Title:   "Profile updated",
		Message: "Your account details have been updated.",
		Link:    "/profile",
	}
}

type OrderItem struct {
	ProductID   uint    `json:"productId"`
	ProductName string  `json:"productName"`
	Quantity    int     `json:"quantity"`
	Price       float64 `json:"price"`
}

type Order struct {
	OrderID  string      `json:"orderId"`
	PlacedAt time.Time   `json:"placedAt"`
	Total    float64     `json:"total"`
	Items    []OrderItem `json:"items"`
}

// Session is everything the server keeps for one browser.
type Session struct {
	ID            string            `json:"id"`
	User          *User             `json:"user,omitempty"`
	Flashes       []Flash           `json:"flashes,omitempty"`
	FormData      map[string]string `json:"formData,omitempty"`
	Notifications []Notification    `json:"notifications,omitempty"`
	Orders        []Order           `json:"orders,omitempty"`
	CreatedAt     time.Time         `json:"createdAt"`

	dirty bool
}

func New(id string) *Session {
	return &Session{ID: id, CreatedAt: time.Now().UTC(), dirty: true}
}

func (s *Session) Dirty() bool { return s != nil && s.dirty }

func (s *Session) MarkClean() {
	if s != nil {
		s.dirty = false
	}
}

func (s *Session) SetUser(u *User) {
	s.User = u
	s.dirty = true
}

func (s *Session) AddFlash(kind FlashKind, msg string) {
	s.Flashes = append(s.Flashes, Flash{Kind: kind, Message: msg})
	s.dirty = true
}

// TakeFlashes returns and removes the messages of one kind.
func (s *Session) TakeFlashes(kind FlashKind) []string {
	var out []string
	kept := s.Flashes[:0]
	for _, f := range s.Flashes {
		if f.Kind == kind {
			out = append(out, f.Message)
			continue
		}
		kept = append(kept, f)
	}
	if len(out) > 0 {
		s.Flashes = kept
		s.dirty = true
	}
	return out
}

func (s *Session) SetFormData(data map[string]string) {
	s.FormData = data
	s.dirty = true
}

func (s *Session) TakeFormData() map[string]string {
	data := s.FormData
	if data != nil {
		s.FormData = nil
		s.dirty = true
	}
	if data == nil {
		data = map[string]string{}
	}
	return data
}

// AddNotification prepends n and returns the stored copy. A nil session is a no-op.
func (s *Session) AddNotification(n Notification) Notification {
	if s == nil {
		return n
	}
	now := time.Now()
	n.ID = now.UnixMilli()
	if len(s.Notifications) > 0 && n.ID <= s.Notifications[0].ID {
		n.ID = s.Notifications[0].ID + 1
	}
	n.Read = false
	n.CreatedAt = now.UTC()

	s.Notifications = append([]Notification{n}, s.Notifications...)
	s.dirty = true
	return n
}

func (s *Session) MarkAllRead() {
	if s == nil || len(s.Notifications) == 0 {
		return
	}
	for i := range s.Notifications {
		s.Notifications[i].Read = true
	}
	s.dirty = true
}

func (s *Session) UnreadCount() int {
	if s == nil {
		return 0
	}
	n := 0
	for _, x := range s.Notifications {
		if !x.Read {
			n++
		}
	}
	return n
}

// AddOrder prepends o so the newest order is listed first.
func (s *Session) AddOrder(o Order) {
	s.Orders = append([]Order{o}, s.Orders...)
	s.dirty = true
}
