package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Skotchmaster/storefront/internal/events"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/session"
)

const TimestampLayout = "2006-01-02 15:04:05"

// Receipt describes a completed checkout.
type Receipt struct {
	OrderID  string
	PlacedAt time.Time
	Lines    []models.CartLine
	Total    float64
}

func (r *Receipt) Timestamp() string { return r.PlacedAt.Format(TimestampLayout) }

// Order converts the receipt into the entry kept in the session order list.
func (r *Receipt) Order() session.Order {
	items := make([]session.OrderItem, 0, len(r.Lines))
	for _, l := range r.Lines {
		items = append(items, session.OrderItem{
			ProductID:   l.ProductID,
			ProductName: l.ProductName,
			Quantity:    l.Quantity,
			Price:       l.Price,
		})
	}
	return session.Order{OrderID: r.OrderID, PlacedAt: r.PlacedAt, Total: r.Total, Items: items}
}

type CheckoutService struct {
	Repo   *repo.GormRepo
	Events events.Publisher
	Now    func() time.Time
}

func (s *CheckoutService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Checkout reserves stock for the whole cart and empties it. Nothing changes
// when any line is short of stock.
func (s *CheckoutService) Checkout(ctx context.Context, userID uint) (*Receipt, error) {
	lines, err := s.Repo.PlaceOrder(ctx, userID)
	var stockErr *repo.StockError
	switch {
	case errors.Is(err, repo.ErrEmptyCart):
		return nil, fail(ErrEmptyCart, "Your cart is empty.")
	case errors.As(err, &stockErr):
		return nil, &StockError{
			ProductID:   stockErr.ProductID,
			ProductName: stockErr.ProductName,
			Available:   stockErr.Available,
		}
	case err != nil:
		return nil, fmt.Errorf("place order: %w", err)
	}

	placed := s.now()
	rcpt := &Receipt{
		OrderID:  fmt.Sprintf("INV-%d", placed.UnixMilli()),
		PlacedAt: placed,
		Lines:    lines,
		Total:    models.CartTotal(lines),
	}

	items := make([]map[string]any, 0, len(lines))
	for _, l := range lines {
		items = append(items, map[string]any{"productID": l.ProductID, "quantity": l.Quantity, "price": l.Price})
	}
	emit(ctx, s.Events, events.TopicOrder, events.Key(userID), events.New("order_placed", map[string]any{
		"userID":  userID,
		"orderID": rcpt.OrderID,
		"total":   rcpt.Total,
		"items":   items,
	}))
	return rcpt, nil
}
