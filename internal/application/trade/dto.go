package trade

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/buneko/backend/internal/domain/shared"
	"github.com/buneko/backend/internal/domain/trade"
)

// ==================== Order DTOs ====================

// OrderLineRequest is one product line of a new order
type OrderLineRequest struct {
	ProductID int64 `json:"product_id" binding:"required,gt=0"`
	Quantity  int   `json:"quantity" binding:"required,gt=0,lte=1000"`
}

// ShippingRequest carries delivery details shared by every order entry point
type ShippingRequest struct {
	ShippingAddress string   `json:"shipping_address" binding:"required,max=500"`
	Phone           string   `json:"phone" binding:"required,phone"`
	Latitude        *float64 `json:"latitude" binding:"omitempty,gte=-90,lte=90"`
	Longitude       *float64 `json:"longitude" binding:"omitempty,gte=-180,lte=180"`
	Notes           string   `json:"notes" binding:"max=1000"`
	PaymentStatus   string   `json:"payment_status" binding:"omitempty,oneof=pending paid"`
}

// Details converts the request into domain shipping details
func (r ShippingRequest) Details() trade.ShippingDetails {
	return trade.ShippingDetails{
		Address:       r.ShippingAddress,
		Phone:         r.Phone,
		Latitude:      r.Latitude,
		Longitude:     r.Longitude,
		Notes:         r.Notes,
		PaymentStatus: trade.PaymentStatus(r.PaymentStatus),
	}
}

// CreateOrderRequest places an order for catalog products
type CreateOrderRequest struct {
	Items []OrderLineRequest `json:"items" binding:"required,min=1,dive"`
	ShippingRequest
}

// Lines converts the requested items into domain order lines
func (r CreateOrderRequest) Lines() []trade.OrderLine {
	lines := make([]trade.OrderLine, len(r.Items))
	for i, item := range r.Items {
		lines[i] = trade.OrderLine{ProductID: item.ProductID, Quantity: item.Quantity}
	}
	return lines
}

// UpdateOrderStatusRequest is an admin status change
type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=pending processing shipped delivered cancelled"`
}

// OrderListFilter narrows the admin order listing
type OrderListFilter struct {
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"limit" binding:"omitempty,min=1,max=100"`
	Status   string `form:"status" binding:"omitempty,oneof=pending processing shipped delivered cancelled"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// OrderItemResponse is one line of an order
type OrderItemResponse struct {
	ID           int64           `json:"id"`
	ProductID    int64           `json:"product_id"`
	ProductName  string          `json:"product_name,omitempty"`
	ProductImage string          `json:"product_image,omitempty"`
	Quantity     int             `json:"quantity"`
	Price        decimal.Decimal `json:"price"`
	Subtotal     decimal.Decimal `json:"subtotal"`
}

// OrderResponse is the API view of an order
type OrderResponse struct {
	ID              int64               `json:"id"`
	UserID          int64               `json:"user_id"`
	CustomerName    string              `json:"customer_name,omitempty"`
	CustomerEmail   string              `json:"customer_email,omitempty"`
	TotalAmount     decimal.Decimal     `json:"total_amount"`
	Status          string              `json:"status"`
	PaymentStatus   string              `json:"payment_status"`
	ShippingAddress string              `json:"shipping_address"`
	Phone           string              `json:"phone"`
	Latitude        *float64            `json:"latitude,omitempty"`
	Longitude       *float64            `json:"longitude,omitempty"`
	Notes           string              `json:"notes,omitempty"`
	Items           []OrderItemResponse `json:"items"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}

// ToOrderResponse converts a domain order to its API view
func ToOrderResponse(o *trade.Order) OrderResponse {
	items := make([]OrderItemResponse, len(o.Items))
	for i, item := range o.Items {
		items[i] = OrderItemResponse{
			ID:           item.ID,
			ProductID:    item.ProductID,
			ProductName:  item.ProductName,
			ProductImage: item.ProductImage,
			Quantity:     item.Quantity,
			Price:        item.Price,
			Subtotal:     item.Subtotal,
		}
	}
	return OrderResponse{
		ID:              o.ID,
		UserID:          o.UserID,
		CustomerName:    o.CustomerName,
		CustomerEmail:   o.CustomerEmail,
		TotalAmount:     o.TotalAmount,
		Status:          o.Status.String(),
		PaymentStatus:   string(o.PaymentStatus),
		ShippingAddress: o.ShippingAddress,
		Phone:           o.Phone,
		Latitude:        o.Latitude,
		Longitude:       o.Longitude,
		Notes:           o.Notes,
		Items:           items,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
}

// ToOrderResponses converts a slice of orders
func ToOrderResponses(orders []trade.Order) []OrderResponse {
	out := make([]OrderResponse, len(orders))
	for i := range orders {
		out[i] = ToOrderResponse(&orders[i])
	}
	return out
}

// ==================== Customization DTOs ====================

// dateLayout is the ISO-8601 calendar date accepted for delivery dates
const dateLayout = "2006-01-02"

// CreateCustomizationRequest submits a bespoke order request
type CreateCustomizationRequest struct {
	Title               string           `json:"title" binding:"required,max=200"`
	Description         string           `json:"description" binding:"required"`
	CustomizationType   string           `json:"customization_type" binding:"omitempty,oneof=bouquet flower arrangement other"`
	Occasion            string           `json:"occasion" binding:"max=100"`
	PreferredColors     string           `json:"preferred_colors" binding:"max=255"`
	Budget              *decimal.Decimal `json:"budget"`
	DeliveryDate        string           `json:"delivery_date" binding:"omitempty,datetime=2006-01-02"`
	SpecialRequirements string           `json:"special_requirements"`
}

// Draft converts the request into a domain draft
func (r CreateCustomizationRequest) Draft() (trade.CustomizationDraft, error) {
	d := trade.CustomizationDraft{
		Title:               r.Title,
		Description:         r.Description,
		Type:                trade.CustomizationType(r.CustomizationType),
		Occasion:            r.Occasion,
		PreferredColors:     r.PreferredColors,
		Budget:              r.Budget,
		SpecialRequirements: r.SpecialRequirements,
	}
	if s := strings.TrimSpace(r.DeliveryDate); s != "" {
		date, err := time.Parse(dateLayout, s)
		if err != nil {
			return d, shared.NewDomainError("INVALID_DATE", "Delivery date must be a valid date (YYYY-MM-DD)")
		}
		d.DeliveryDate = &date
	}
	return d, nil
}

// UpdateCustomizationStatusRequest is an admin review of a request
type UpdateCustomizationStatusRequest struct {
	Status      string           `json:"status" binding:"required,oneof=pending reviewing quoted accepted rejected"`
	QuotedPrice *decimal.Decimal `json:"quoted_price"`
	AdminNotes  *string          `json:"admin_notes"`
}

// Review converts the request into a domain review
func (r UpdateCustomizationStatusRequest) Review() trade.CustomizationReview {
	return trade.CustomizationReview{
		Status:      trade.CustomizationStatus(r.Status),
		QuotedPrice: r.QuotedPrice,
		AdminNotes:  r.AdminNotes,
	}
}

// ConvertCustomizationRequest carries shipping details for a custom order
type ConvertCustomizationRequest struct {
	ShippingRequest
}

// CustomizationListFilter narrows the admin customization listing
type CustomizationListFilter struct {
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"limit" binding:"omitempty,min=1,max=100"`
	Status   string `form:"status" binding:"omitempty,oneof=pending reviewing quoted accepted rejected completed"`
}

// CustomizationResponse is the API view of a customization request
type CustomizationResponse struct {
	ID                  int64            `json:"id"`
	UserID              int64            `json:"user_id"`
	UserName            string           `json:"user_name,omitempty"`
	UserEmail           string           `json:"user_email,omitempty"`
	Title               string           `json:"title"`
	Description         string           `json:"description"`
	CustomizationType   string           `json:"customization_type"`
	Occasion            string           `json:"occasion,omitempty"`
	PreferredColors     string           `json:"preferred_colors,omitempty"`
	Budget              *decimal.Decimal `json:"budget,omitempty"`
	DeliveryDate        string           `json:"delivery_date,omitempty"`
	SpecialRequirements string           `json:"special_requirements,omitempty"`
	Status              string           `json:"status"`
	AdminNotes          string           `json:"admin_notes,omitempty"`
	QuotedPrice         *decimal.Decimal `json:"quoted_price,omitempty"`
	OrderID             *int64           `json:"order_id,omitempty"`
	CreatedAt           time.Time        `json:"created_at"`
	UpdatedAt           time.Time        `json:"updated_at"`
}

// ToCustomizationResponse converts a domain customization to its API view
func ToCustomizationResponse(c *trade.Customization) CustomizationResponse {
	resp := CustomizationResponse{
		ID:                  c.ID,
		UserID:              c.UserID,
		UserName:            c.UserName,
		UserEmail:           c.UserEmail,
		Title:               c.Title,
		Description:         c.Description,
		CustomizationType:   string(c.Type),
		Occasion:            c.Occasion,
		PreferredColors:     c.PreferredColors,
		Budget:              c.Budget,
		SpecialRequirements: c.SpecialRequirements,
		Status:              string(c.Status),
		AdminNotes:          c.AdminNotes,
		QuotedPrice:         c.QuotedPrice,
		OrderID:             c.OrderID,
		CreatedAt:           c.CreatedAt,
		UpdatedAt:           c.UpdatedAt,
	}
	if c.DeliveryDate != nil {
		resp.DeliveryDate = c.DeliveryDate.Format(dateLayout)
	}
	return resp
}

// ToCustomizationResponses converts a slice of customizations
func ToCustomizationResponses(cs []trade.Customization) []CustomizationResponse {
	out := make([]CustomizationResponse, len(cs))
	for i := range cs {
		out[i] = ToCustomizationResponse(&cs[i])
	}
	return out
}
