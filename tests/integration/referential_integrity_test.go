//go:build integration

package integration

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/buneko/backend/internal/application/background"
	catalogapp "github.com/buneko/backend/internal/application/catalog"
	identityapp "github.com/buneko/backend/internal/application/identity"
	apptrade "github.com/buneko/backend/internal/application/trade"
	"github.com/buneko/backend/internal/domain/identity"
	"github.com/buneko/backend/internal/domain/shared"
	"github.com/buneko/backend/internal/infrastructure/auth"
	"github.com/buneko/backend/internal/infrastructure/persistence"
	"github.com/buneko/backend/internal/infrastructure/storage"
)

func TestProductReferencedByOrderCannotBeDeleted(t *testing.T) {
	f := newStoreFixture(t)
	u := f.customer(t, "sita@example.com")
	rose := f.product(t, "Rose Bouquet", 100, 5)
	spare := f.product(t, "Spare Stem", 20, 5)
	ctx := context.Background()

	_, err := f.orders.CreateOrder(ctx, u.ID, orderFor(apptrade.OrderLineRequest{ProductID: rose.ID, Quantity: 1}))
	require.NoError(t, err)

	tasks := background.NewRunner(zap.NewNop(), background.Synchronous())
	products := catalogapp.NewProductService(
		persistence.NewGormProductRepository(f.db.DB),
		persistence.NewGormCategoryRepository(f.db.DB),
		storage.NewDisabledMediaStore(), tasks, nil,
	)

	err = products.Delete(ctx, rose.ID)
	assert.ErrorIs(t, err, persistence.ErrProductInUse)
	assert.Equal(t, 4, f.stockOf(t, rose.ID), "product row is kept")

	require.NoError(t, products.Delete(ctx, spare.ID))
}

func TestCategoryWithProductsCannotBeDeleted(t *testing.T) {
	f := newStoreFixture(t)
	f.product(t, "Rose Bouquet", 100, 5)

	err := persistence.NewGormCategoryRepository(f.db.DB).Delete(context.Background(), f.category.ID)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "CATEGORY_IN_USE", domainErr.Code)
	var n int64
	require.NoError(t, f.db.DB.Table("categories").Count(&n).Error)
	assert.Equal(t, int64(1), n)
}

func TestUserWithOrdersCannotBeDeleted(t *testing.T) {
	f := newStoreFixture(t)
	buyer := f.customer(t, "sita@example.com")
	browser := f.customer(t, "ram@example.com")
	rose := f.product(t, "Rose Bouquet", 100, 5)
	ctx := context.Background()

	_, err := f.orders.CreateOrder(ctx, buyer.ID, orderFor(apptrade.OrderLineRequest{ProductID: rose.ID, Quantity: 1}))
	require.NoError(t, err)
	require.NoError(t, f.db.DB.Exec(
		"INSERT INTO wishlist (user_id, product_id) VALUES (?, ?)", browser.ID, rose.ID,
	).Error)

	users := identityapp.NewUserService(
		persistence.NewGormUserRepository(f.db.DB),
		auth.NewInMemoryTokenBlacklist(),
		storage.NewDisabledMediaStore(),
		background.NewRunner(zap.NewNop(), background.Synchronous()),
		0, nil,
	)
	admin := identityapp.Actor{UserID: 999, Role: identity.RoleAdmin}

	err = users.Delete(ctx, admin, buyer.ID)
	assert.ErrorIs(t, err, shared.ErrConflict)
	assert.ErrorIs(t, err, persistence.ErrUserHasOrders)

	require.NoError(t, users.Delete(ctx, admin, browser.ID))
	var wishlist int64
	require.NoError(t, f.db.DB.Table("wishlist").Count(&wishlist).Error)
	assert.Zero(t, wishlist, "wishlist rows cascade with the user")
}

func TestStockCheckConstraint(t *testing.T) {
	f := newStoreFixture(t)
	rose := f.product(t, "Rose Bouquet", 100, 1)

	err := f.db.DB.Exec("UPDATE products SET stock = stock - 2 WHERE id = ?", rose.ID).Error
	require.Error(t, err, "stock may never go negative")
	assert.Equal(t, 1, f.stockOf(t, rose.ID))
}
