package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/models"
)

// ProductFilter narrows a product listing. Nil fields are not applied.
type ProductFilter struct {
	Term     *string
	MinPrice *float64
	MaxPrice *float64
}

func (f ProductFilter) Empty() bool {
	return f.Term == nil && f.MinPrice == nil && f.MaxPrice == nil
}

func (r *GormRepo) ListProducts(ctx context.Context, f ProductFilter) ([]models.Product, error) {
	q := r.DB.WithContext(ctx).Model(&models.Product{})
	if f.Term != nil {
		q = q.Where("product_name LIKE ?", "%"+*f.Term+"%")
	}
	if f.MinPrice != nil {
		q = q.Where("price >= ?", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		q = q.Where("price <= ?", *f.MaxPrice)
	}

	var items []models.Product
	if err := q.Order("id ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *GormRepo) ProductByID(ctx context.Context, id uint) (*models.Product, error) {
	var product models.Product
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *GormRepo) CreateProduct(ctx context.Context, p *models.Product) error {
	return r.DB.WithContext(ctx).Create(p).Error
}

func (r *GormRepo) UpdateProduct(ctx context.Context, p *models.Product) error {
	res := r.DB.WithContext(ctx).Model(&models.Product{}).Where("id = ?", p.ID).Updates(map[string]any{
		"product_name": p.ProductName,
		"quantity":     p.Quantity,
		"price":        p.Price,
		"image":        p.Image,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteProduct removes the product together with every cart row pointing at it.
func (r *GormRepo) DeleteProduct(ctx context.Context, id uint) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", id).Delete(&models.CartItem{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Product{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// DecrementQuantity subtracts amount from the stock only when enough is left.
// Zero affected rows means the stock was insufficient at the time of the update.
func (r *GormRepo) DecrementQuantity(ctx context.Context, id uint, amount int) (int64, error) {
	return decrementQuantity(r.DB.WithContext(ctx), id, amount)
}

func decrementQuantity(tx *gorm.DB, id uint, amount int) (int64, error) {
	res := tx.Model(&models.Product{}).
		Where("id = ? AND quantity >= ?", id, amount).
		Update("quantity", gorm.Expr("quantity - ?", amount))
	return res.RowsAffected, res.Error
}
