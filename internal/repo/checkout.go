package repo

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/models"
)

var ErrEmptyCart = errors.New("cart is empty")

// StockError reports a line whose requested quantity exceeds the product stock.
type StockError struct {
	ProductID   uint
	ProductName string
	Available   int
}

func (e *StockError) Error() string {
	return fmt.Sprintf("Not enough stock for %s. Available: %d", e.ProductName, e.Available)
}

// PlaceOrder reserves stock for every cart line and clears the cart in one
// transaction. Any failure rolls back all decrements made so far. The returned
// lines are the cart as it was read inside the transaction.
func (r *GormRepo) PlaceOrder(ctx context.Context, userID uint) ([]models.CartLine, error) {
	var lines []models.CartLine

	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		lines, err = cartLines(tx, userID)
		if err != nil {
			return fmt.Errorf("load cart: %w", err)
		}
		if len(lines) == 0 {
			return ErrEmptyCart
		}

		for _, l := range lines {
			if l.Quantity > l.Stock {
				return &StockError{ProductID: l.ProductID, ProductName: l.ProductName, Available: l.Stock}
			}
		}

		for _, l := range lines {
			n, err := decrementQuantity(tx, l.ProductID, l.Quantity)
			if err != nil {
				return fmt.Errorf("decrement stock for product %d: %w", l.ProductID, err)
			}
			if n == 0 {
				available, err := currentStock(tx, l.ProductID)
				if err != nil {
					return fmt.Errorf("reload stock for product %d: %w", l.ProductID, err)
				}
				return &StockError{ProductID: l.ProductID, ProductName: l.ProductName, Available: available}
			}
		}

		if err := tx.Where("user_id = ?", userID).Delete(&models.CartItem{}).Error; err != nil {
			return fmt.Errorf("clear cart: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return lines, nil
}

// currentStock reads the quantity as the transaction sees it now. A product
// deleted since the cart was read has nothing available.
func currentStock(tx *gorm.DB, id uint) (int, error) {
	var p models.Product
	err := tx.Select("quantity").First(&p, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return p.Quantity, nil
}
