package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/events"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
)

// ParseAddQuantity reads the quantity of an add to cart form. Missing,
// unparsable and non-positive values all mean one.
func ParseAddQuantity(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// ParseUpdateQuantity reads the quantity of a cart update form. ok is false
// when the value is not a number of at least one.
func ParseUpdateQuantity(raw string) (n int, ok bool) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

type CartService struct {
	Repo   *repo.GormRepo
	Events events.Publisher
}

func (s *CartService) Cart(ctx context.Context, userID uint) ([]models.CartLine, float64, error) {
	lines, err := s.Repo.CartLines(ctx, userID)
	if err != nil {
		return nil, 0, fmt.Errorf("load cart: %w", err)
	}
	return lines, models.CartTotal(lines), nil
}

func (s *CartService) Add(ctx context.Context, userID, productID uint, qty int) (*models.CartItem, error) {
	if qty < 1 {
		return nil, fail(ErrValidation, "Quantity must be at least 1.")
	}
	if _, err := s.Repo.ProductByID(ctx, productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fail(ErrNotFound, "Product not found")
		}
		return nil, fmt.Errorf("load product: %w", err)
	}

	item, err := s.Repo.AddToCart(ctx, userID, productID, qty)
	if err != nil {
		return nil, fmt.Errorf("add to cart: %w", err)
	}
	emit(ctx, s.Events, events.TopicCart, events.Key(userID), events.New("cart_item_added", map[string]any{
		"userID":    userID,
		"productID": productID,
		"added":     qty,
		"quantity":  item.Quantity,
	}))
	return item, nil
}

// UpdateQuantity sets the quantity of a row owned by userID. Rows of other
// users are left alone and reported as unchanged.
func (s *CartService) UpdateQuantity(ctx context.Context, userID, itemID uint, qty int) (bool, error) {
	if qty < 1 {
		return false, fail(ErrValidation, "Quantity must be at least 1.")
	}
	changed, err := s.Repo.UpdateCartQuantity(ctx, itemID, userID, qty)
	if err != nil {
		return false, fmt.Errorf("update cart item: %w", err)
	}
	if changed {
		emit(ctx, s.Events, events.TopicCart, events.Key(userID), events.New("cart_item_updated", map[string]any{
			"userID":     userID,
			"cartItemID": itemID,
			"quantity":   qty,
		}))
	}
	return changed, nil
}

func (s *CartService) Remove(ctx context.Context, userID, itemID uint) (bool, error) {
	removed, err := s.Repo.DeleteCartItem(ctx, itemID, userID)
	if err != nil {
		return false, fmt.Errorf("delete cart item: %w", err)
	}
	if removed {
		emit(ctx, s.Events, events.TopicCart, events.Key(userID), events.New("cart_item_removed", map[string]any{
			"userID":     userID,
			"cartItemID": itemID,
		}))
	}
	return removed, nil
}
