package trade

import (
	"fmt"
	"strings"
	"time"

	"github.com/buneko/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// OrderStatus represents the status of an order
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// ActiveOrderStatuses are the statuses of orders still in flight
var ActiveOrderStatuses = []OrderStatus{OrderStatusPending, OrderStatusProcessing, OrderStatusShipped}

// IsValid checks if the status is a valid OrderStatus value
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of OrderStatus
func (s OrderStatus) String() string {
	return string(s)
}

// IsTerminal reports whether no further transition is allowed
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// CanTransitionTo checks if the status can transition to the target status
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	switch s {
	case OrderStatusPending:
		return target == OrderStatusProcessing || target == OrderStatusCancelled
	case OrderStatusProcessing:
		return target == OrderStatusShipped || target == OrderStatusCancelled
	case OrderStatusShipped:
		return target == OrderStatusDelivered || target == OrderStatusCancelled
	case OrderStatusDelivered, OrderStatusCancelled:
		return false // Terminal states
	}
	return false
}

// PaymentStatus tracks whether an order has been paid
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
)

// IsValid checks if the payment status is known
func (p PaymentStatus) IsValid() bool {
	return p == PaymentStatusPending || p == PaymentStatusPaid
}

// OrderItem is one product line of an order. Price is the unit price at the
// time the order was placed and never follows later catalog changes.
type OrderItem struct {
	ID        int64           `gorm:"primaryKey"`
	OrderID   int64           `gorm:"not null;index"`
	ProductID int64           `gorm:"not null;index"`
	Quantity  int             `gorm:"not null"`
	Price     decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Subtotal  decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	CreatedAt time.Time       `gorm:"not null"`

	ProductName  string `gorm:"->;-:migration"`
	ProductImage string `gorm:"->;-:migration"`
}

// TableName returns the table name for GORM
func (OrderItem) TableName() string {
	return "order_items"
}

// NewOrderItem snapshots the unit price and computes the subtotal
func NewOrderItem(productID int64, quantity int, unitPrice decimal.Decimal) (*OrderItem, error) {
	if productID <= 0 {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID must be a positive integer")
	}
	if quantity < 1 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be at least 1")
	}
	if quantity > MaxLineQuantity {
		return nil, quantityTooLarge()
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}
	price := unitPrice.Round(2)
	return &OrderItem{
		ProductID: productID,
		Quantity:  quantity,
		Price:     price,
		Subtotal:  price.Mul(decimal.NewFromInt(int64(quantity))).Round(2),
	}, nil
}

// MaxLineQuantity caps the units of one product in a single order
const MaxLineQuantity = 1000

func quantityTooLarge() error {
	return shared.NewDomainError("INVALID_QUANTITY", fmt.Sprintf("Quantity cannot exceed %d per product", MaxLineQuantity))
}

// OrderLine is a requested (product, quantity) pair
type OrderLine struct {
	ProductID int64
	Quantity  int
}

// MergeLines validates lines and folds repeated products into one line,
// keeping the order in which products first appear.
func MergeLines(lines []OrderLine) ([]OrderLine, error) {
	if len(lines) == 0 {
		return nil, shared.NewDomainError("EMPTY_ORDER", "Order must contain at least one item")
	}
	index := make(map[int64]int, len(lines))
	merged := make([]OrderLine, 0, len(lines))
	for _, l := range lines {
		if l.ProductID <= 0 {
			return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID must be a positive integer")
		}
		if l.Quantity < 1 {
			return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be at least 1")
		}
		if l.Quantity > MaxLineQuantity {
			return nil, quantityTooLarge()
		}
		if i, ok := index[l.ProductID]; ok {
			if merged[i].Quantity > MaxLineQuantity-l.Quantity {
				return nil, quantityTooLarge()
			}
			merged[i].Quantity += l.Quantity
			continue
		}
		index[l.ProductID] = len(merged)
		merged = append(merged, l)
	}
	return merged, nil
}

// ShippingDetails is where and how an order is delivered
type ShippingDetails struct {
	Address       string
	Phone         string
	Latitude      *float64
	Longitude     *float64
	Notes         string
	PaymentStatus PaymentStatus
}

// Validate checks the shipping details
func (d ShippingDetails) Validate() error {
	if strings.TrimSpace(d.Address) == "" {
		return shared.NewDomainError("INVALID_ADDRESS", "Shipping address is required")
	}
	if strings.TrimSpace(d.Phone) == "" {
		return shared.NewDomainError("INVALID_PHONE", "Phone number is required")
	}
	if d.Latitude != nil && (*d.Latitude < -90 || *d.Latitude > 90) {
		return shared.NewDomainError("INVALID_LOCATION", "Latitude must be between -90 and 90")
	}
	if d.Longitude != nil && (*d.Longitude < -180 || *d.Longitude > 180) {
		return shared.NewDomainError("INVALID_LOCATION", "Longitude must be between -180 and 180")
	}
	if d.PaymentStatus != "" && !d.PaymentStatus.IsValid() {
		return shared.NewDomainError("INVALID_PAYMENT_STATUS", "Payment status must be pending or paid")
	}
	return nil
}

// Order is a placed customer order
type Order struct {
	shared.BaseEntity
	UserID          int64           `gorm:"not null;index"`
	TotalAmount     decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Status          OrderStatus     `gorm:"type:varchar(20);not null;default:'pending'"`
	PaymentStatus   PaymentStatus   `gorm:"type:varchar(20);not null;default:'pending'"`
	ShippingAddress string          `gorm:"type:text;not null"`
	Phone           string          `gorm:"type:varchar(20);not null"`
	Latitude        *float64        `gorm:"type:decimal(10,8)"`
	Longitude       *float64        `gorm:"type:decimal(11,8)"`
	Notes           string          `gorm:"type:text"`
	Items           []OrderItem     `gorm:"foreignKey:OrderID"`

	CustomerName  string `gorm:"->;-:migration"`
	CustomerEmail string `gorm:"->;-:migration"`
}

// TableName returns the table name for GORM
func (Order) TableName() string {
	return "orders"
}

// NewOrder creates a pending order whose total is the sum of the item subtotals
func NewOrder(userID int64, shipping ShippingDetails, items []OrderItem) (*Order, error) {
	if userID <= 0 {
		return nil, shared.NewDomainError("INVALID_USER", "User ID is required")
	}
	if len(items) == 0 {
		return nil, shared.NewDomainError("EMPTY_ORDER", "Order must contain at least one item")
	}
	o, err := newOrder(userID, shipping)
	if err != nil {
		return nil, err
	}
	o.Items = items
	o.recalculateTotal()
	return o, nil
}

// NewOrderWithTotal creates a pending order with a fixed total and no items
func NewOrderWithTotal(userID int64, shipping ShippingDetails, total decimal.Decimal) (*Order, error) {
	if userID <= 0 {
		return nil, shared.NewDomainError("INVALID_USER", "User ID is required")
	}
	if total.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Order total cannot be negative")
	}
	o, err := newOrder(userID, shipping)
	if err != nil {
		return nil, err
	}
	o.TotalAmount = total.Round(2)
	return o, nil
}

func newOrder(userID int64, shipping ShippingDetails) (*Order, error) {
	if err := shipping.Validate(); err != nil {
		return nil, err
	}
	payment := shipping.PaymentStatus
	if payment == "" {
		payment = PaymentStatusPending
	}
	return &Order{
		UserID:          userID,
		Status:          OrderStatusPending,
		PaymentStatus:   payment,
		ShippingAddress: strings.TrimSpace(shipping.Address),
		Phone:           strings.TrimSpace(shipping.Phone),
		Latitude:        shipping.Latitude,
		Longitude:       shipping.Longitude,
		Notes:           strings.TrimSpace(shipping.Notes),
	}, nil
}

func (o *Order) recalculateTotal() {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.Subtotal)
	}
	o.TotalAmount = total.Round(2)
}

// IsOwnedBy reports whether the order belongs to userID
func (o *Order) IsOwnedBy(userID int64) bool {
	return o.UserID == userID
}

// CheckCancellable returns the domain error that forbids cancelling, if any
func (o *Order) CheckCancellable() error {
	switch o.Status {
	case OrderStatusCancelled:
		return ErrOrderAlreadyCancelled
	case OrderStatusDelivered:
		return ErrOrderDelivered
	}
	return nil
}

// CheckTransition returns the domain error that forbids moving to target, if any
func (o *Order) CheckTransition(target OrderStatus) error {
	if !target.IsValid() {
		return shared.NewDomainError("INVALID_STATUS", fmt.Sprintf("Invalid order status: %s", target))
	}
	if target == OrderStatusCancelled {
		return o.CheckCancellable()
	}
	if o.Status == target {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Order is already %s", o.Status))
	}
	if !o.Status.CanTransitionTo(target) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot change order from %s to %s", o.Status, target))
	}
	return nil
}

// Order workflow errors
var (
	ErrOrderAlreadyCancelled = shared.NewDomainError("ORDER_ALREADY_CANCELLED", "Order is already cancelled")
	ErrOrderDelivered        = shared.NewDomainError("ORDER_DELIVERED", "Cannot cancel a delivered order")
	ErrOrderNotFound         = shared.NewDomainError(shared.ErrNotFound.Code, "Order not found")
)

// InsufficientStock names the product whose stock cannot cover the request
func InsufficientStock(productName string) error {
	return shared.NewDomainErrorf(shared.ErrInsufficientStock.Code, "Insufficient stock for product %s", productName)
}

// ProductNotFound names the missing product id
func ProductNotFound(productID int64) error {
	return shared.NotFoundf("Product with ID %d not found", productID)
}
