package persistence

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	apptrade "github.com/buneko/backend/internal/application/trade"
	"github.com/buneko/backend/internal/domain/catalog"
	"github.com/buneko/backend/internal/domain/identity"
	"github.com/buneko/backend/internal/domain/shared"
	"github.com/buneko/backend/internal/domain/trade"
	"github.com/buneko/backend/tests/testutil"
)

type fixture struct {
	db       *gorm.DB
	user     *identity.User
	category *catalog.Category
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewSQLiteDB(t, Models()...)

	user := &identity.User{Name: "Sita", Email: "sita@example.com", PasswordHash: "x", Role: identity.RoleCustomer}
	require.NoError(t, db.Create(user).Error)
	category := &catalog.Category{Name: "Bouquets"}
	require.NoError(t, db.Create(category).Error)

	return &fixture{db: db, user: user, category: category}
}

func (f *fixture) product(t *testing.T, name string, price int64, stock int) *catalog.Product {
	t.Helper()
	p := &catalog.Product{
		Name:        name,
		Description: "Handmade paper flowers",
		Price:       decimal.NewFromInt(price),
		CategoryID:  f.category.ID,
		Stock:       stock,
	}
	require.NoError(t, f.db.Create(p).Error)
	return p
}

func (f *fixture) stockOf(t *testing.T, id int64) int {
	t.Helper()
	p, err := NewGormProductRepository(f.db).FindByID(context.Background(), id)
	require.NoError(t, err)
	return p.Stock
}

func shipping() trade.ShippingDetails {
	return trade.ShippingDetails{Address: "Thamel, Kathmandu", Phone: "9800000000"}
}

func TestGormProductRepository_StockGuard(t *testing.T) {
	f := newFixture(t)
	repo := NewGormProductRepository(f.db)
	ctx := context.Background()
	p := f.product(t, "Rose Bouquet", 100, 5)

	ok, err := repo.DecrementStock(ctx, p.ID, 3)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 2, f.stockOf(t, p.ID))

	ok, err = repo.DecrementStock(ctx, p.ID, 3)
	require.NoError(t, err)
	assert.False(t, ok, "guard must reject when stock is short")
	assert.Equal(t, 2, f.stockOf(t, p.ID))

	require.NoError(t, repo.RestoreStock(ctx, p.ID, 3))
	assert.Equal(t, 5, f.stockOf(t, p.ID))
}

func TestGormProductRepository_FindAll(t *testing.T) {
	f := newFixture(t)
	repo := NewGormProductRepository(f.db)
	f.product(t, "Rose Bouquet", 100, 5)
	f.product(t, "Tulip Stem", 40, 10)
	f.product(t, "Lily Basket", 250, 1)

	products, total, err := repo.FindAll(context.Background(), catalog.ProductFilter{
		Filter: shared.Filter{Page: 1, PageSize: 2, OrderBy: "price", OrderDir: "asc"},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, products, 2)
	assert.Equal(t, "Tulip Stem", products[0].Name)
	assert.Equal(t, "Bouquets", products[0].CategoryName)

	products, total, err = repo.FindAll(context.Background(), catalog.ProductFilter{
		Filter: shared.Filter{Page: 1, PageSize: 10, Search: "ROSE"},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "Rose Bouquet", products[0].Name)
}

func TestGormCategoryRepository_ProductCount(t *testing.T) {
	f := newFixture(t)
	repo := NewGormCategoryRepository(f.db)
	f.product(t, "Rose Bouquet", 100, 5)

	c, err := repo.FindByID(context.Background(), f.category.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), c.ProductCount)
	assert.Error(t, c.CanDelete())

	exists, err := repo.ExistsByName(context.Background(), "bouquets", 0)
	require.NoError(t, err)
	assert.True(t, exists)
	exists, err = repo.ExistsByName(context.Background(), "bouquets", f.category.ID)
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = repo.FindByID(context.Background(), 999)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormOrderRepository_CreateAndFind(t *testing.T) {
	f := newFixture(t)
	repo := NewGormOrderRepository(f.db)
	ctx := context.Background()
	p := f.product(t, "Rose Bouquet", 100, 5)

	item, err := trade.NewOrderItem(p.ID, 3, p.Price)
	require.NoError(t, err)
	order, err := trade.NewOrder(f.user.ID, shipping(), []trade.OrderItem{*item})
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, order))
	require.NotZero(t, order.ID)
	require.NotZero(t, order.Items[0].ID)

	loaded, err := repo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, "Sita", loaded.CustomerName)
	assert.True(t, decimal.NewFromInt(300).Equal(loaded.TotalAmount))
	require.Len(t, loaded.Items, 1)
	assert.Equal(t, "Rose Bouquet", loaded.Items[0].ProductName)
	assert.True(t, decimal.NewFromInt(300).Equal(loaded.Items[0].Subtotal))

	_, err = repo.FindByID(ctx, 12345)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormOrderRepository_UpdateStatusIsConditional(t *testing.T) {
	f := newFixture(t)
	repo := NewGormOrderRepository(f.db)
	ctx := context.Background()
	order, err := trade.NewOrderWithTotal(f.user.ID, shipping(), decimal.NewFromInt(500))
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, order))

	ok, err := repo.UpdateStatus(ctx, order.ID, trade.OrderStatusPending, trade.OrderStatusCancelled)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.UpdateStatus(ctx, order.ID, trade.OrderStatusPending, trade.OrderStatusCancelled)
	require.NoError(t, err)
	assert.False(t, ok, "second writer must observe the status change")
}

func TestGormOrderRepository_Stats(t *testing.T) {
	f := newFixture(t)
	repo := NewGormOrderRepository(f.db)
	ctx := context.Background()

	paid := shipping()
	paid.PaymentStatus = trade.PaymentStatusPaid
	for _, s := range []trade.ShippingDetails{paid, paid, shipping()} {
		o, err := trade.NewOrderWithTotal(f.user.ID, s, decimal.RequireFromString("125.50"))
		require.NoError(t, err)
		require.NoError(t, repo.Create(ctx, o))
	}

	revenue, err := repo.SumPaidRevenue(ctx)
	require.NoError(t, err)
	assert.Equal(t, "251", revenue.String())

	n, err := repo.Count(ctx, f.user.ID, trade.ActiveOrderStatuses...)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	recent, err := repo.FindRecent(ctx, 0, 2)
	require.NoError(t, err)
	assert.Len(t, recent, 2)
	assert.Equal(t, "Sita", recent[0].CustomerName)
}

func TestGormCustomizationRepository_MarkCompleted(t *testing.T) {
	f := newFixture(t)
	repo := NewGormCustomizationRepository(f.db)
	ctx := context.Background()

	c, err := trade.NewCustomization(f.user.ID, trade.CustomizationDraft{Title: "Wedding", Description: "Red roses"})
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, c))

	ok, err := repo.MarkCompleted(ctx, c.ID, 1)
	require.NoError(t, err)
	assert.False(t, ok, "pending request cannot complete")

	require.NoError(t, repo.Update(ctx, c.ID, map[string]any{"status": "accepted", "quoted_price": decimal.NewFromInt(500)}))
	ok, err = repo.MarkCompleted(ctx, c.ID, 1)
	require.NoError(t, err)
	assert.True(t, ok)

	loaded, err := repo.FindByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, trade.CustomizationStatusCompleted, loaded.Status)
	require.NotNil(t, loaded.OrderID)
	assert.Equal(t, int64(1), *loaded.OrderID)
	assert.Equal(t, "sita@example.com", loaded.UserEmail)
}

func TestGormWishlistRepository(t *testing.T) {
	f := newFixture(t)
	repo := NewGormWishlistRepository(f.db)
	ctx := context.Background()
	p := f.product(t, "Rose Bouquet", 100, 5)

	require.NoError(t, repo.Add(ctx, f.user.ID, p.ID))
	require.NoError(t, repo.Add(ctx, f.user.ID, p.ID), "adding twice is a no-op")

	items, err := repo.FindByUser(ctx, f.user.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Rose Bouquet", items[0].Name)
	assert.Equal(t, "Bouquets", items[0].CategoryName)

	n, err := repo.CountByUser(ctx, f.user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	removed, err := repo.Remove(ctx, f.user.ID, p.ID)
	require.NoError(t, err)
	assert.True(t, removed)
	removed, err = repo.Remove(ctx, f.user.ID, p.ID)
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestGormUserRepository(t *testing.T) {
	f := newFixture(t)
	repo := NewGormUserRepository(f.db)
	ctx := context.Background()

	u, err := repo.FindByEmail(ctx, "  SITA@example.com ")
	require.NoError(t, err)
	assert.Equal(t, f.user.ID, u.ID)

	dup := &identity.User{Name: "Other", Email: "sita@example.com", PasswordHash: "x", Role: identity.RoleCustomer}
	assert.ErrorIs(t, repo.Create(ctx, dup), ErrEmailTaken)

	taken, err := repo.ExistsByEmail(ctx, "sita@example.com", f.user.ID)
	require.NoError(t, err)
	assert.False(t, taken)

	n, err := repo.CountByRole(ctx, identity.RoleCustomer)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestGormTransactionScope_RollbackLeavesNoTrace(t *testing.T) {
	f := newFixture(t)
	scope := NewGormTransactionScope(f.db)
	ctx := context.Background()
	p := f.product(t, "Rose Bouquet", 100, 5)
	boom := errors.New("boom")

	err := scope.Execute(ctx, func(repos apptrade.TransactionalRepositories) error {
		if _, err := repos.Products().DecrementStock(ctx, p.ID, 2); err != nil {
			return err
		}
		o, err := trade.NewOrderWithTotal(f.user.ID, shipping(), decimal.NewFromInt(200))
		if err != nil {
			return err
		}
		if err := repos.Orders().Create(ctx, o); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	assert.Equal(t, 5, f.stockOf(t, p.ID))
	n, err := NewGormOrderRepository(f.db).Count(ctx, 0)
	require.NoError(t, err)
	assert.Zero(t, n)
}
