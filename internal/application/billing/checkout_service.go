package billing

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/buneko/backend/internal/domain/catalog"
	"github.com/buneko/backend/internal/domain/identity"
	"github.com/buneko/backend/internal/domain/shared"
	"github.com/buneko/backend/internal/domain/trade"
	"github.com/buneko/backend/internal/infrastructure/billing"
	"github.com/buneko/backend/internal/infrastructure/logger"
)

// ErrPaymentUnavailable is returned when no payment provider is configured
var ErrPaymentUnavailable = shared.NewDomainError("PAYMENT_UNAVAILABLE", "Online payment is not available")

// CheckoutGateway opens hosted checkout sessions with a payment provider
type CheckoutGateway interface {
	CreateSession(ctx context.Context, input billing.CheckoutSessionInput) (*billing.CheckoutSession, error)
}

var hundred = decimal.NewFromInt(100)

// CheckoutService prices a cart from the catalog and opens a card checkout
type CheckoutService struct {
	products catalog.ProductRepository
	users    identity.UserRepository
	gateway  CheckoutGateway
	logger   *zap.Logger
}

// NewCheckoutService creates a new CheckoutService. A nil gateway disables online payment.
func NewCheckoutService(products catalog.ProductRepository, users identity.UserRepository, gateway CheckoutGateway, zapLogger *zap.Logger) *CheckoutService {
	if zapLogger == nil {
		zapLogger = zap.NewNop()
	}
	return &CheckoutService{
		products: products,
		users:    users,
		gateway:  gateway,
		logger:   zapLogger,
	}
}

// Enabled reports whether online payment is configured
func (s *CheckoutService) Enabled() bool {
	return s.gateway != nil
}

// CreateCheckoutSession opens a checkout for the cart. Names, images and unit
// prices come from the catalog, never from the request.
func (s *CheckoutService) CreateCheckoutSession(ctx context.Context, userID int64, req CreateCheckoutSessionRequest) (*CheckoutSessionResponse, error) {
	if s.gateway == nil {
		return nil, ErrPaymentUnavailable
	}

	requested := make([]trade.OrderLine, len(req.Items))
	for i, item := range req.Items {
		requested[i] = trade.OrderLine{ProductID: item.ProductID, Quantity: item.Quantity}
	}
	lines, err := trade.MergeLines(requested)
	if err != nil {
		return nil, err
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	input := billing.CheckoutSessionInput{
		UserID:        user.ID,
		CustomerEmail: user.Email,
		Lines:         make([]billing.CheckoutLine, 0, len(lines)),
	}
	for _, line := range lines {
		product, err := s.products.FindByID(ctx, line.ProductID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return nil, trade.ProductNotFound(line.ProductID)
			}
			return nil, err
		}
		input.Lines = append(input.Lines, billing.CheckoutLine{
			Name:       product.Name,
			ImageURL:   product.ImageURL,
			UnitAmount: product.Price.Mul(hundred).Round(0).IntPart(),
			Quantity:   int64(line.Quantity),
		})
	}

	session, err := s.gateway.CreateSession(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("create checkout session: %w", err)
	}

	logger.Enrich(ctx, s.logger).Info("checkout session created",
		zap.String("session_id", session.ID),
		zap.Int("lines", len(input.Lines)),
	)
	return &CheckoutSessionResponse{ID: session.ID, URL: session.URL}, nil
}
