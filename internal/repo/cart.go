package repo

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/storefront/internal/models"
)

// AddToCart merges qty into the (user, product) row, creating it when absent.
// The unique index on (user_id, product_id) turns a concurrent first insert
// into an update instead of a second row.
func (r *GormRepo) AddToCart(ctx context.Context, userID, productID uint, qty int) (*models.CartItem, error) {
	item := models.CartItem{UserID: userID, ProductID: productID, Quantity: qty}

	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.CartItem{}).
			Where("user_id = ? AND product_id = ?", userID, productID).
			Update("quantity", gorm.Expr("quantity + ?", qty))
		if res.Error != nil {
			return res.Error
		}

		if res.RowsAffected == 0 {
			err := tx.Clauses(clause.OnConflict{
				Columns: []clause.Column{{Name: "user_id"}, {Name: "product_id"}},
				DoUpdates: clause.Assignments(map[string]any{
					"quantity": gorm.Expr("cart_items.quantity + excluded.quantity"),
				}),
			}).Create(&item).Error
			if err != nil {
				return err
			}
		}

		return tx.Where("user_id = ? AND product_id = ?", userID, productID).First(&item).Error
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *GormRepo) CartLines(ctx context.Context, userID uint) ([]models.CartLine, error) {
	return cartLines(r.DB.WithContext(ctx), userID)
}

func cartLines(tx *gorm.DB, userID uint) ([]models.CartLine, error) {
	lines := []models.CartLine{}
	err := tx.Table("cart_items AS c").
		Select("c.id AS cart_item_id, c.product_id, c.quantity, p.product_name, p.price, p.image, p.quantity AS stock").
		Joins("JOIN products AS p ON p.id = c.product_id").
		Where("c.user_id = ?", userID).
		Order("c.id ASC").
		Scan(&lines).Error
	if err != nil {
		return nil, err
	}
	return lines, nil
}

// UpdateCartQuantity reports whether a row owned by userID was changed.
func (r *GormRepo) UpdateCartQuantity(ctx context.Context, itemID, userID uint, qty int) (bool, error) {
	res := r.DB.WithContext(ctx).Model(&models.CartItem{}).
		Where("id = ? AND user_id = ?", itemID, userID).
		Update("quantity", qty)
	return res.RowsAffected > 0, res.Error
}

func (r *GormRepo) DeleteCartItem(ctx context.Context, itemID, userID uint) (bool, error) {
	res := r.DB.WithContext(ctx).Where("id = ? AND user_id = ?", itemID, userID).Delete(&models.CartItem{})
	return res.RowsAffected > 0, res.Error
}

func (r *GormRepo) ClearCart(ctx context.Context, userID uint) error {
	return r.DB.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.CartItem{}).Error
}
