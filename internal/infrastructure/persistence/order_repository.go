package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/buneko/backend/internal/domain/trade"
)

// GormOrderRepository implements OrderRepository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// withDetails selects orders joined with their customer and preloads items
// joined with their product name and image.
func (r *GormOrderRepository) withDetails(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&trade.Order{}).
		Select("orders.*, users.name AS customer_name, users.email AS customer_email").
		Joins("LEFT JOIN users ON users.id = orders.user_id").
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.
				Select("order_items.*, products.name AS product_name, products.image_url AS product_image").
				Joins("LEFT JOIN products ON products.id = order_items.product_id").
				Order("order_items.id ASC")
		})
}

// Create inserts the order, then its items with the generated order ID.
// Run it inside a transaction so both inserts commit together.
func (r *GormOrderRepository) Create(ctx context.Context, order *trade.Order) error {
	db := r.db.WithContext(ctx)
	if err := db.Omit(clause.Associations).Create(order).Error; err != nil {
		return err
	}
	if len(order.Items) == 0 {
		return nil
	}
	now := time.Now()
	for i := range order.Items {
		order.Items[i].OrderID = order.ID
		order.Items[i].CreatedAt = now
	}
	return db.Create(&order.Items).Error
}

// FindByID loads an order with customer details and items
func (r *GormOrderRepository) FindByID(ctx context.Context, id int64) (*trade.Order, error) {
	var order trade.Order
	if err := r.withDetails(ctx).Where("orders.id = ?", id).First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, trade.ErrOrderNotFound
		}
		return nil, err
	}
	return &order, nil
}

// FindAll returns one page of orders with items and the total number of matches
func (r *GormOrderRepository) FindAll(ctx context.Context, filter trade.OrderFilter) ([]trade.Order, int64, error) {
	where := func(db *gorm.DB) *gorm.DB {
		if filter.UserID > 0 {
			db = db.Where("orders.user_id = ?", filter.UserID)
		}
		if filter.Status != "" {
			db = db.Where("orders.status = ?", filter.Status)
		}
		return db
	}

	var total int64
	if err := r.db.WithContext(ctx).Model(&trade.Order{}).Scopes(where).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orders []trade.Order
	if err := r.withDetails(ctx).
		Scopes(where, pageScope("orders", filter.Filter, OrderSortFields)).
		Find(&orders).Error; err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// UpdateStatus moves the order only while it is still in from. Because the
// check and the write are one statement, two racing writers cannot both win.
func (r *GormOrderRepository) UpdateStatus(ctx context.Context, id int64, from, to trade.OrderStatus) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&trade.Order{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]any{"status": string(to)})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// Count returns the number of orders, optionally for one user and a set of statuses
func (r *GormOrderRepository) Count(ctx context.Context, userID int64, statuses ...trade.OrderStatus) (int64, error) {
	q := r.db.WithContext(ctx).Model(&trade.Order{})
	if userID > 0 {
		q = q.Where("user_id = ?", userID)
	}
	if len(statuses) > 0 {
		q = q.Where("status IN ?", statuses)
	}
	var n int64
	err := q.Count(&n).Error
	return n, err
}

// SumPaidRevenue totals the amount of every paid order
func (r *GormOrderRepository) SumPaidRevenue(ctx context.Context) (decimal.Decimal, error) {
	var total decimal.Decimal
	row := r.db.WithContext(ctx).
		Model(&trade.Order{}).
		Select("COALESCE(SUM(total_amount), 0)").
		Where("payment_status = ?", trade.PaymentStatusPaid).
		Row()
	if err := row.Scan(&total); err != nil {
		return decimal.Zero, err
	}
	return total.Round(2), nil
}

// FindRecent returns the latest orders with customer names, without items
func (r *GormOrderRepository) FindRecent(ctx context.Context, userID int64, limit int) ([]trade.Order, error) {
	q := r.db.WithContext(ctx).
		Model(&trade.Order{}).
		Select("orders.*, users.name AS customer_name, users.email AS customer_email").
		Joins("LEFT JOIN users ON users.id = orders.user_id")
	if userID > 0 {
		q = q.Where("orders.user_id = ?", userID)
	}
	var orders []trade.Order
	if err := q.Order("orders.created_at DESC").Order("orders.id DESC").Limit(limit).Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

var _ trade.OrderRepository = (*GormOrderRepository)(nil)

// GormCustomizationRepository implements CustomizationRepository using GORM
type GormCustomizationRepository struct {
	db *gorm.DB
}

// NewGormCustomizationRepository creates a new GormCustomizationRepository
func NewGormCustomizationRepository(db *gorm.DB) *GormCustomizationRepository {
	return &GormCustomizationRepository{db: db}
}

func (r *GormCustomizationRepository) withUser(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&trade.Customization{}).
		Select("customizations.*, users.name AS user_name, users.email AS user_email").
		Joins("LEFT JOIN users ON users.id = customizations.user_id")
}

// Create inserts a customization request
func (r *GormCustomizationRepository) Create(ctx context.Context, c *trade.Customization) error {
	return r.db.WithContext(ctx).Create(c).Error
}

// FindByID loads a customization with its requester
func (r *GormCustomizationRepository) FindByID(ctx context.Context, id int64) (*trade.Customization, error) {
	var c trade.Customization
	if err := r.withUser(ctx).Where("customizations.id = ?", id).First(&c).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, trade.ErrCustomizationNotFound
		}
		return nil, err
	}
	return &c, nil
}

// FindAll returns one page of customizations and the total number of matches
func (r *GormCustomizationRepository) FindAll(ctx context.Context, filter trade.CustomizationFilter) ([]trade.Customization, int64, error) {
	where := func(db *gorm.DB) *gorm.DB {
		if filter.UserID > 0 {
			db = db.Where("customizations.user_id = ?", filter.UserID)
		}
		if filter.Status != "" {
			db = db.Where("customizations.status = ?", filter.Status)
		}
		return db
	}

	var total int64
	if err := r.db.WithContext(ctx).Model(&trade.Customization{}).Scopes(where).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []trade.Customization
	if err := r.withUser(ctx).
		Scopes(where, pageScope("customizations", filter.Filter, CommonSortFields)).
		Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// Update writes the given columns
func (r *GormCustomizationRepository) Update(ctx context.Context, id int64, columns map[string]any) error {
	return r.db.WithContext(ctx).Model(&trade.Customization{}).Where("id = ?", id).Updates(columns).Error
}

// MarkCompleted is a conditional accepted -> completed write that links the order
func (r *GormCustomizationRepository) MarkCompleted(ctx context.Context, id, orderID int64) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&trade.Customization{}).
		Where("id = ? AND status = ?", id, trade.CustomizationStatusAccepted).
		Updates(map[string]any{
			"status":   string(trade.CustomizationStatusCompleted),
			"order_id": orderID,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

var _ trade.CustomizationRepository = (*GormCustomizationRepository)(nil)
