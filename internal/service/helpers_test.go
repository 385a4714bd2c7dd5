package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/events"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/testutil"
)

func newRepo(t *testing.T) (*repo.GormRepo, *gorm.DB, *events.Recorder) {
	t.Helper()
	db := testutil.InitTestDB(t)
	return &repo.GormRepo{DB: db}, db, &events.Recorder{}
}

func requireMessage(t *testing.T, err error, kind error, msg string) {
	t.Helper()
	require.Error(t, err)
	require.ErrorIs(t, err, kind)
	require.Equal(t, msg, Message(err, "fallback"))
}

// fakeIndex is an in-memory search.Indexer.
type fakeIndex struct {
	mu        sync.Mutex
	docs      map[uint]models.Product
	searchErr error
}

func newFakeIndex() *fakeIndex { return &fakeIndex{docs: map[uint]models.Product{}} }

func (f *fakeIndex) IndexProduct(_ context.Context, p models.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.docs[p.ID] = p
	return nil
}

func (f *fakeIndex) DeleteProduct(_ context.Context, id uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.docs, id)
	return nil
}

func (f *fakeIndex) Search(_ context.Context, _ string, _, _ int) (int64, []models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.searchErr != nil {
		return 0, nil, f.searchErr
	}
	out := []models.Product{{ID: 99, ProductName: "from index"}}
	return 1, out, nil
}

var errIndexDown = errors.New("index down")

func createUser(t *testing.T, db *gorm.DB, email, password string, role models.Role) *models.User {
	t.Helper()
	return testutil.CreateUser(t, db, email, password, role)
}
