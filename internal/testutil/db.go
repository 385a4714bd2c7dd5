// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/pkg/db"
	"github.com/Skotchmaster/storefront/pkg/hash"
)

// InitTestDB opens a private in-memory sqlite database with every table migrated.
func InitTestDB(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	gdb, err := db.OpenSQLite(context.Background(), dsn)
	require.NoError(t, err)
	require.NoError(t, gdb.AutoMigrate(models.All()...))

	t.Cleanup(func() { _ = db.Close(gdb) })
	return gdb
}

func CreateUser(t testing.TB, gdb *gorm.DB, email, password string, role models.Role) *models.User {
	t.Helper()

	pw, err := hash.HashPassword(password)
	require.NoError(t, err)
	u := &models.User{
		Username:     "user-" + email,
		Email:        email,
		PasswordHash: pw,
		Address:      "1 Test Street",
		Contact:      "555-0100",
		Role:         role,
	}
	require.NoError(t, gdb.Create(u).Error)
	return u
}

func CreateProduct(t testing.TB, gdb *gorm.DB, name string, price float64, stock int) *models.Product {
	t.Helper()

	p := &models.Product{ProductName: name, Price: price, Quantity: stock}
	require.NoError(t, gdb.Create(p).Error)
	return p
}

func AddCartItem(t testing.TB, gdb *gorm.DB, userID, productID uint, qty int) *models.CartItem {
	t.Helper()

	item := &models.CartItem{UserID: userID, ProductID: productID, Quantity: qty}
	require.NoError(t, gdb.Create(item).Error)
	return item
}
