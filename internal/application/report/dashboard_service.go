package report

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/buneko/backend/internal/domain/catalog"
	"github.com/buneko/backend/internal/domain/identity"
	"github.com/buneko/backend/internal/domain/trade"
)

const recentOrderLimit = 5

// RecentOrder is an order row on a dashboard
type RecentOrder struct {
	ID            int64           `json:"id"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	Status        string          `json:"status"`
	PaymentStatus string          `json:"payment_status"`
	CustomerName  string          `json:"customer_name,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// AdminStats is the back-office overview
type AdminStats struct {
	TotalProducts  int64           `json:"total_products"`
	TotalOrders    int64           `json:"total_orders"`
	TotalCustomers int64           `json:"total_customers"`
	TotalRevenue   decimal.Decimal `json:"total_revenue"`
	RecentOrders   []RecentOrder   `json:"recent_orders"`
}

// CustomerStats is the overview shown to a signed-in customer
type CustomerStats struct {
	TotalOrders   int64         `json:"total_orders"`
	ActiveOrders  int64         `json:"active_orders"`
	WishlistItems int64         `json:"wishlist_items"`
	RecentOrders  []RecentOrder `json:"recent_orders"`
}

// DashboardService computes dashboard figures from the live tables
type DashboardService struct {
	products catalog.ProductRepository
	orders   trade.OrderRepository
	users    identity.UserRepository
	wishlist catalog.WishlistRepository
}

// NewDashboardService creates a new DashboardService
func NewDashboardService(
	products catalog.ProductRepository,
	orders trade.OrderRepository,
	users identity.UserRepository,
	wishlist catalog.WishlistRepository,
) *DashboardService {
	return &DashboardService{
		products: products,
		orders:   orders,
		users:    users,
		wishlist: wishlist,
	}
}

// AdminStats returns store-wide totals. Revenue counts paid orders only.
func (s *DashboardService) AdminStats(ctx context.Context) (*AdminStats, error) {
	var (
		stats AdminStats
		err   error
	)
	if stats.TotalProducts, err = s.products.Count(ctx); err != nil {
		return nil, err
	}
	if stats.TotalOrders, err = s.orders.Count(ctx, 0); err != nil {
		return nil, err
	}
	if stats.TotalCustomers, err = s.users.CountByRole(ctx, identity.RoleCustomer); err != nil {
		return nil, err
	}
	if stats.TotalRevenue, err = s.orders.SumPaidRevenue(ctx); err != nil {
		return nil, err
	}
	if stats.RecentOrders, err = s.recentOrders(ctx, 0); err != nil {
		return nil, err
	}
	return &stats, nil
}

// CustomerStats returns the figures of one customer
func (s *DashboardService) CustomerStats(ctx context.Context, userID int64) (*CustomerStats, error) {
	var (
		stats CustomerStats
		err   error
	)
	if stats.TotalOrders, err = s.orders.Count(ctx, userID); err != nil {
		return nil, err
	}
	if stats.ActiveOrders, err = s.orders.Count(ctx, userID, trade.ActiveOrderStatuses...); err != nil {
		return nil, err
	}
	if stats.WishlistItems, err = s.wishlist.CountByUser(ctx, userID); err != nil {
		return nil, err
	}
	if stats.RecentOrders, err = s.recentOrders(ctx, userID); err != nil {
		return nil, err
	}
	return &stats, nil
}

func (s *DashboardService) recentOrders(ctx context.Context, userID int64) ([]RecentOrder, error) {
	orders, err := s.orders.FindRecent(ctx, userID, recentOrderLimit)
	if err != nil {
		return nil, err
	}
	out := make([]RecentOrder, len(orders))
	for i, o := range orders {
		out[i] = RecentOrder{
			ID:            o.ID,
			TotalAmount:   o.TotalAmount,
			Status:        o.Status.String(),
			PaymentStatus: string(o.PaymentStatus),
			CustomerName:  o.CustomerName,
			CreatedAt:     o.CreatedAt,
		}
	}
	return out, nil
}
