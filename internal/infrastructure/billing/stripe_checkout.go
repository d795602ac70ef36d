package billing

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/checkout/session"
	"go.uber.org/zap"

	"github.com/buneko/backend/internal/infrastructure/config"
)

// CheckoutLine is one priced line of a hosted checkout page.
// UnitAmount is in the smallest currency unit (paisa for NPR).
type CheckoutLine struct {
	Name       string
	ImageURL   string
	UnitAmount int64
	Quantity   int64
}

// CheckoutSessionInput describes the checkout to open
type CheckoutSessionInput struct {
	UserID        int64
	CustomerEmail string
	Lines         []CheckoutLine
}

// CheckoutSession is the created hosted checkout
type CheckoutSession struct {
	ID  string
	URL string
}

// StripeCheckout opens Stripe hosted checkout sessions for card payments
type StripeCheckout struct {
	currency   string
	successURL string
	cancelURL  string
	logger     *zap.Logger
}

// NewStripeCheckout validates the configuration and sets the Stripe API key
func NewStripeCheckout(cfg *config.StripeConfig, logger *zap.Logger) (*StripeCheckout, error) {
	if cfg.SecretKey == "" {
		return nil, fmt.Errorf("stripe: secret key is required")
	}
	if !strings.HasPrefix(cfg.SecretKey, "sk_") && !strings.HasPrefix(cfg.SecretKey, "rk_") {
		return nil, fmt.Errorf("stripe: secret key must start with sk_ or rk_")
	}
	if cfg.SuccessURL == "" || cfg.CancelURL == "" {
		return nil, fmt.Errorf("stripe: success and cancel URLs are required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	currency := strings.ToLower(cfg.Currency)
	if currency == "" {
		currency = "npr"
	}

	stripe.Key = cfg.SecretKey

	return &StripeCheckout{
		currency:   currency,
		successURL: cfg.SuccessURL,
		cancelURL:  cfg.CancelURL,
		logger:     logger,
	}, nil
}

// CreateSession opens a one-off card payment session for the given lines
func (c *StripeCheckout) CreateSession(ctx context.Context, input CheckoutSessionInput) (*CheckoutSession, error) {
	if len(input.Lines) == 0 {
		return nil, fmt.Errorf("stripe: checkout needs at least one line")
	}

	items := make([]*stripe.CheckoutSessionLineItemParams, 0, len(input.Lines))
	for _, line := range input.Lines {
		product := &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
			Name: stripe.String(line.Name),
		}
		if line.ImageURL != "" {
			product.Images = stripe.StringSlice([]string{line.ImageURL})
		}
		items = append(items, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:    stripe.String(c.currency),
				ProductData: product,
				UnitAmount:  stripe.Int64(line.UnitAmount),
			},
			Quantity: stripe.Int64(line.Quantity),
		})
	}

	userID := strconv.FormatInt(input.UserID, 10)
	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems:          items,
		SuccessURL:         stripe.String(c.successURL),
		CancelURL:          stripe.String(c.cancelURL),
		ClientReferenceID:  stripe.String(userID),
	}
	if input.CustomerEmail != "" {
		params.CustomerEmail = stripe.String(input.CustomerEmail)
	}
	params.Context = ctx
	params.AddMetadata("user_id", userID)

	s, err := session.New(params)
	if err != nil {
		c.logger.Error("Failed to create Stripe checkout session",
			zap.Int64("user_id", input.UserID),
			zap.Error(err))
		return nil, fmt.Errorf("stripe: failed to create checkout session: %w", err)
	}

	c.logger.Info("Created Stripe checkout session",
		zap.Int64("user_id", input.UserID),
		zap.String("session_id", s.ID),
		zap.Int("lines", len(items)))

	return &CheckoutSession{ID: s.ID, URL: s.URL}, nil
}
