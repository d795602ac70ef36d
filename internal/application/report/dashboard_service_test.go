package report

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/buneko/backend/internal/domain/catalog"
	"github.com/buneko/backend/internal/domain/identity"
	"github.com/buneko/backend/internal/domain/trade"
)

// The dashboard only reads counts, so the mocks embed the repository
// interfaces and implement just the methods it calls.

type mockProducts struct {
	catalog.ProductRepository
	mock.Mock
}

func (m *mockProducts) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type mockOrders struct {
	trade.OrderRepository
	mock.Mock
}

func (m *mockOrders) Count(ctx context.Context, userID int64, statuses ...trade.OrderStatus) (int64, error) {
	args := m.Called(ctx, userID, statuses)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockOrders) SumPaidRevenue(ctx context.Context) (decimal.Decimal, error) {
	args := m.Called(ctx)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *mockOrders) FindRecent(ctx context.Context, userID int64, limit int) ([]trade.Order, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]trade.Order), args.Error(1)
}

type mockUsers struct {
	identity.UserRepository
	mock.Mock
}

func (m *mockUsers) CountByRole(ctx context.Context, role identity.Role) (int64, error) {
	args := m.Called(ctx, role)
	return args.Get(0).(int64), args.Error(1)
}

type mockWishlist struct {
	catalog.WishlistRepository
	mock.Mock
}

func (m *mockWishlist) CountByUser(ctx context.Context, userID int64) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func recentOrder(id int64, status trade.OrderStatus, customer string) trade.Order {
	o := trade.Order{
		TotalAmount:   decimal.RequireFromString("1250.00"),
		Status:        status,
		PaymentStatus: trade.PaymentStatusPaid,
		CustomerName:  customer,
	}
	o.ID = id
	o.CreatedAt = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	return o
}

func TestDashboardService_AdminStats(t *testing.T) {
	ctx := context.Background()
	products, orders, users, wishlist := new(mockProducts), new(mockOrders), new(mockUsers), new(mockWishlist)
	svc := NewDashboardService(products, orders, users, wishlist)

	products.On("Count", ctx).Return(int64(42), nil)
	orders.On("Count", ctx, int64(0), []trade.OrderStatus(nil)).Return(int64(17), nil)
	users.On("CountByRole", ctx, identity.RoleCustomer).Return(int64(9), nil)
	orders.On("SumPaidRevenue", ctx).Return(decimal.RequireFromString("15400.50"), nil)
	orders.On("FindRecent", ctx, int64(0), 5).Return([]trade.Order{
		recentOrder(17, trade.OrderStatusPending, "Sita"),
		recentOrder(16, trade.OrderStatusShipped, "Ram"),
	}, nil)

	stats, err := svc.AdminStats(ctx)

	require.NoError(t, err)
	assert.Equal(t, int64(42), stats.TotalProducts)
	assert.Equal(t, int64(17), stats.TotalOrders)
	assert.Equal(t, int64(9), stats.TotalCustomers)
	assert.Equal(t, "15400.5", stats.TotalRevenue.String())
	require.Len(t, stats.RecentOrders, 2)
	assert.Equal(t, "Sita", stats.RecentOrders[0].CustomerName)
	assert.Equal(t, "paid", stats.RecentOrders[0].PaymentStatus)
}

func TestDashboardService_CustomerStats(t *testing.T) {
	ctx := context.Background()
	products, orders, users, wishlist := new(mockProducts), new(mockOrders), new(mockUsers), new(mockWishlist)
	svc := NewDashboardService(products, orders, users, wishlist)

	orders.On("Count", ctx, int64(7), []trade.OrderStatus(nil)).Return(int64(4), nil)
	orders.On("Count", ctx, int64(7), trade.ActiveOrderStatuses).Return(int64(2), nil)
	wishlist.On("CountByUser", ctx, int64(7)).Return(int64(3), nil)
	orders.On("FindRecent", ctx, int64(7), 5).Return([]trade.Order{recentOrder(11, trade.OrderStatusProcessing, "")}, nil)

	stats, err := svc.CustomerStats(ctx, 7)

	require.NoError(t, err)
	assert.Equal(t, int64(4), stats.TotalOrders)
	assert.Equal(t, int64(2), stats.ActiveOrders)
	assert.Equal(t, int64(3), stats.WishlistItems)
	require.Len(t, stats.RecentOrders, 1)
	assert.Equal(t, "processing", stats.RecentOrders[0].Status)
}

func TestDashboardService_StopsOnError(t *testing.T) {
	ctx := context.Background()
	products, orders, users, wishlist := new(mockProducts), new(mockOrders), new(mockUsers), new(mockWishlist)
	svc := NewDashboardService(products, orders, users, wishlist)
	products.On("Count", ctx).Return(int64(0), errors.New("connection refused"))

	_, err := svc.AdminStats(ctx)

	assert.EqualError(t, err, "connection refused")
	orders.AssertNotCalled(t, "SumPaidRevenue", mock.Anything)
}
