package trade

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/buneko/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// CustomizationStatus is the review state of a custom order request
type CustomizationStatus string

const (
	CustomizationStatusPending   CustomizationStatus = "pending"
	CustomizationStatusReviewing CustomizationStatus = "reviewing"
	CustomizationStatusQuoted    CustomizationStatus = "quoted"
	CustomizationStatusAccepted  CustomizationStatus = "accepted"
	CustomizationStatusRejected  CustomizationStatus = "rejected"
	CustomizationStatusCompleted CustomizationStatus = "completed"
)

// IsValid checks if the status is known
func (s CustomizationStatus) IsValid() bool {
	switch s {
	case CustomizationStatusPending, CustomizationStatusReviewing, CustomizationStatusQuoted,
		CustomizationStatusAccepted, CustomizationStatusRejected, CustomizationStatusCompleted:
		return true
	}
	return false
}

// CustomizationType is the kind of piece requested
type CustomizationType string

const (
	CustomizationTypeBouquet     CustomizationType = "bouquet"
	CustomizationTypeFlower      CustomizationType = "flower"
	CustomizationTypeArrangement CustomizationType = "arrangement"
	CustomizationTypeOther       CustomizationType = "other"
)

// IsValid checks if the type is known
func (t CustomizationType) IsValid() bool {
	switch t {
	case CustomizationTypeBouquet, CustomizationTypeFlower, CustomizationTypeArrangement, CustomizationTypeOther:
		return true
	}
	return false
}

// Customization is a bespoke order request that an admin reviews and quotes.
// Once accepted with a quoted price it converts into exactly one order.
type Customization struct {
	shared.BaseEntity
	UserID              int64               `gorm:"not null;index"`
	Title               string              `gorm:"type:varchar(200);not null"`
	Description         string              `gorm:"type:text;not null"`
	Type                CustomizationType   `gorm:"type:varchar(20);not null;default:'bouquet'"`
	Occasion            string              `gorm:"type:varchar(100)"`
	PreferredColors     string              `gorm:"type:varchar(255)"`
	Budget              *decimal.Decimal    `gorm:"type:decimal(10,2)"`
	DeliveryDate        *time.Time          `gorm:"type:date"`
	SpecialRequirements string              `gorm:"type:text"`
	Status              CustomizationStatus `gorm:"type:varchar(20);not null;default:'pending';index"`
	AdminNotes          string              `gorm:"type:text"`
	QuotedPrice         *decimal.Decimal    `gorm:"type:decimal(10,2)"`
	OrderID             *int64              `gorm:"index"`

	UserName  string `gorm:"->;-:migration"`
	UserEmail string `gorm:"->;-:migration"`
}

// TableName returns the table name for GORM
func (Customization) TableName() string {
	return "customizations"
}

// CustomizationDraft holds the customer-supplied fields of a new request
type CustomizationDraft struct {
	Title               string
	Description         string
	Type                CustomizationType
	Occasion            string
	PreferredColors     string
	Budget              *decimal.Decimal
	DeliveryDate        *time.Time
	SpecialRequirements string
}

// NewCustomization creates a pending customization request
func NewCustomization(userID int64, d CustomizationDraft) (*Customization, error) {
	if userID <= 0 {
		return nil, shared.NewDomainError("INVALID_USER", "User ID is required")
	}
	title := strings.TrimSpace(d.Title)
	if title == "" || utf8.RuneCountInString(title) > 200 {
		return nil, shared.NewDomainError("INVALID_TITLE", "Title is required and must be less than 200 characters")
	}
	description := strings.TrimSpace(d.Description)
	if description == "" {
		return nil, shared.NewDomainError("INVALID_DESCRIPTION", "Description is required")
	}
	kind := d.Type
	if kind == "" {
		kind = CustomizationTypeBouquet
	}
	if !kind.IsValid() {
		return nil, shared.NewDomainError("INVALID_TYPE", "Invalid customization type")
	}
	if d.Budget != nil && d.Budget.IsNegative() {
		return nil, shared.NewDomainError("INVALID_BUDGET", "Budget must be a positive number")
	}
	var budget *decimal.Decimal
	if d.Budget != nil {
		b := d.Budget.Round(2)
		budget = &b
	}
	return &Customization{
		UserID:              userID,
		Title:               title,
		Description:         description,
		Type:                kind,
		Occasion:            strings.TrimSpace(d.Occasion),
		PreferredColors:     strings.TrimSpace(d.PreferredColors),
		Budget:              budget,
		DeliveryDate:        d.DeliveryDate,
		SpecialRequirements: strings.TrimSpace(d.SpecialRequirements),
		Status:              CustomizationStatusPending,
	}, nil
}

// IsOwnedBy reports whether the request belongs to userID
func (c *Customization) IsOwnedBy(userID int64) bool {
	return c.UserID == userID
}

// CustomizationReview is an admin status change with optional quote and notes
type CustomizationReview struct {
	Status      CustomizationStatus
	QuotedPrice *decimal.Decimal
	AdminNotes  *string
}

// Validate checks the review against the current request
func (r CustomizationReview) Validate(current *Customization) error {
	if !r.Status.IsValid() {
		return shared.NewDomainError("INVALID_STATUS", "Invalid status")
	}
	if current.Status == CustomizationStatusCompleted {
		return shared.NewDomainError("INVALID_STATE", "Customization is already completed")
	}
	if r.Status == CustomizationStatusCompleted {
		return shared.NewDomainError("INVALID_STATE", "A customization is completed by converting it into an order")
	}
	if r.QuotedPrice != nil && r.QuotedPrice.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Quoted price must be a positive number")
	}
	return nil
}

// Columns returns the column/value pairs to write
func (r CustomizationReview) Columns() map[string]any {
	cols := map[string]any{"status": string(r.Status)}
	if r.QuotedPrice != nil {
		cols["quoted_price"] = r.QuotedPrice.Round(2)
	}
	if r.AdminNotes != nil {
		cols["admin_notes"] = strings.TrimSpace(*r.AdminNotes)
	}
	return cols
}

// CheckConvertible returns the precondition that blocks conversion, if any
func (c *Customization) CheckConvertible() error {
	if c.Status != CustomizationStatusAccepted {
		return shared.NewDomainErrorf(ErrCustomizationNotAccepted.Code,
			"Customization must be accepted before creating an order (current status: %s)", c.Status)
	}
	if c.QuotedPrice == nil {
		return ErrCustomizationNotQuoted
	}
	return nil
}

// ToOrder builds the pending order for an accepted customization
func (c *Customization) ToOrder(shipping ShippingDetails) (*Order, error) {
	if err := c.CheckConvertible(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(shipping.Notes) == "" {
		shipping.Notes = c.ConversionNote()
	}
	return NewOrderWithTotal(c.UserID, shipping, *c.QuotedPrice)
}

// ConversionNote is the default order note pointing back at the request
func (c *Customization) ConversionNote() string {
	return fmt.Sprintf("Custom order from customization #%d: %s", c.ID, c.Title)
}

// Customization workflow errors
var (
	ErrCustomizationNotAccepted = shared.NewDomainError("CUSTOMIZATION_NOT_ACCEPTED", "Customization must be accepted before creating an order")
	ErrCustomizationNotQuoted   = shared.NewDomainError("CUSTOMIZATION_NOT_QUOTED", "Customization must have a quoted price before creating an order")
	ErrCustomizationNotFound    = shared.NewDomainError(shared.ErrNotFound.Code, "Customization not found")
)
