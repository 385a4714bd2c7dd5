package models

import (
	"errors"
	"strings"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

var ErrInvalidRole = errors.New("role must be user or admin")

func ParseRole(s string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleUser:
		return RoleUser, nil
	case RoleAdmin:
		return RoleAdmin, nil
	}
	return "", ErrInvalidRole
}

func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

type User struct {
	ID           uint   `gorm:"primaryKey;autoIncrement"                      json:"id"`
	Username     string `gorm:"not null"                                      json:"username"`
	Email        string `gorm:"uniqueIndex;not null"                          json:"email"`
	PasswordHash string `gorm:"not null"                                      json:"-"`
	Address      string `json:"address"`
	Contact      string `json:"contact"`
	Role         Role   `gorm:"type:varchar(16);not null;default:user;check:role IN ('user','admin')" json:"role"`
}

func (u User) IsAdmin() bool { return u.Role == RoleAdmin }

type Product struct {
	ID          uint    `gorm:"primaryKey;autoIncrement"        json:"id"`
	ProductName string  `gorm:"column:product_name;not null"    json:"productName"`
	Quantity    int     `gorm:"not null;default:0;check:quantity >= 0" json:"quantity"`
	Price       float64 `gorm:"not null;check:price >= 0"       json:"price"`
	Image       *string `json:"image"`
}

func (Product) TableName() string {
	return "products"
}

type CartItem struct {
	ID        uint `gorm:"primaryKey"                             json:"id"`
	UserID    uint `gorm:"uniqueIndex:idx_user_product;not null"  json:"user_id"`
	ProductID uint `gorm:"uniqueIndex:idx_user_product;not null"  json:"product_id"`
	Quantity  int  `gorm:"not null;default:1;check:quantity > 0"  json:"quantity"`
}

func (CartItem) TableName() string {
	return "cart_items"
}

// CartLine is a cart row joined with the live product state.
type CartLine struct {
	CartItemID  uint    `json:"cartItemId"`
	ProductID   uint    `json:"productId"`
	ProductName string  `json:"productName"`
	Quantity    int     `json:"quantity"`
	Price       float64 `json:"price"`
	Image       *string `json:"image"`
	Stock       int     `json:"stock"`
}

func (l CartLine) Subtotal() float64 {
	return l.Price * float64(l.Quantity)
}

// CartTotal sums price times quantity without rounding.
func CartTotal(lines []CartLine) float64 {
	var total float64
	for _, l := range lines {
		total += l.Subtotal()
	}
	return total
}

func All() []any {
	return []any{&User{}, &Product{}, &CartItem{}}
}
