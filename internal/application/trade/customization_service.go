package trade

import (
	"context"

	"go.uber.org/zap"

	"github.com/buneko/backend/internal/application/background"
	"github.com/buneko/backend/internal/domain/shared"
	"github.com/buneko/backend/internal/domain/trade"
	"github.com/buneko/backend/internal/infrastructure/logger"
	"github.com/buneko/backend/internal/infrastructure/telemetry"
)

// DefaultCustomizationPageSize is the admin customization listing page size
const DefaultCustomizationPageSize = 20

// CustomizationService handles bespoke order requests and their conversion
// into orders.
type CustomizationService struct {
	customizations trade.CustomizationRepository
	txScope        TransactionScope
	events         trade.OrderEventPublisher
	tasks          *background.Runner
	logger         *zap.Logger
}

// NewCustomizationService creates a new CustomizationService
func NewCustomizationService(customizations trade.CustomizationRepository, txScope TransactionScope, tasks *background.Runner, zapLogger *zap.Logger) *CustomizationService {
	if zapLogger == nil {
		zapLogger = zap.NewNop()
	}
	if tasks == nil {
		tasks = background.NewRunner(zapLogger)
	}
	return &CustomizationService{
		customizations: customizations,
		txScope:        txScope,
		tasks:          tasks,
		logger:         zapLogger,
	}
}

// SetEventPublisher sets the publisher for orders created from requests
func (s *CustomizationService) SetEventPublisher(publisher trade.OrderEventPublisher) {
	s.events = publisher
}

// Create submits a new request in pending status
func (s *CustomizationService) Create(ctx context.Context, userID int64, req CreateCustomizationRequest) (*CustomizationResponse, error) {
	draft, err := req.Draft()
	if err != nil {
		return nil, err
	}
	c, err := trade.NewCustomization(userID, draft)
	if err != nil {
		return nil, err
	}
	if err := s.customizations.Create(ctx, c); err != nil {
		return nil, err
	}
	resp := ToCustomizationResponse(c)
	return &resp, nil
}

// ListMine returns every request of one customer, newest first
func (s *CustomizationService) ListMine(ctx context.Context, userID int64) ([]CustomizationResponse, error) {
	items, _, err := s.customizations.FindAll(ctx, trade.CustomizationFilter{
		Filter: shared.Filter{OrderBy: "created_at", OrderDir: "desc"},
		UserID: userID,
	})
	if err != nil {
		return nil, err
	}
	return ToCustomizationResponses(items), nil
}

// List returns one page of all requests
func (s *CustomizationService) List(ctx context.Context, filter CustomizationListFilter) ([]CustomizationResponse, int64, error) {
	items, total, err := s.customizations.FindAll(ctx, trade.CustomizationFilter{
		Filter: shared.Filter{Page: filter.Page, PageSize: filter.PageSize}.Normalize(DefaultCustomizationPageSize),
		Status: trade.CustomizationStatus(filter.Status),
	})
	if err != nil {
		return nil, 0, err
	}
	return ToCustomizationResponses(items), total, nil
}

// Get returns one request to its owner or an admin
func (s *CustomizationService) Get(ctx context.Context, id int64, requester Requester) (*CustomizationResponse, error) {
	c, err := s.customizations.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !requester.CanRead(c.UserID) {
		return nil, trade.ErrCustomizationNotFound
	}
	resp := ToCustomizationResponse(c)
	return &resp, nil
}

// UpdateStatus records an admin review: a new status with optional quote and notes
func (s *CustomizationService) UpdateStatus(ctx context.Context, id int64, req UpdateCustomizationStatusRequest) (*CustomizationResponse, error) {
	c, err := s.customizations.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	review := req.Review()
	if err := review.Validate(c); err != nil {
		return nil, err
	}
	if err := s.customizations.Update(ctx, id, review.Columns()); err != nil {
		return nil, err
	}

	c.Status = review.Status
	if review.QuotedPrice != nil {
		price := review.QuotedPrice.Round(2)
		c.QuotedPrice = &price
	}
	if notes, ok := review.Columns()["admin_notes"].(string); ok {
		c.AdminNotes = notes
	}

	logger.Enrich(ctx, s.logger).Info("customization reviewed",
		zap.Int64("customization_id", id),
		zap.String("status", string(c.Status)),
	)
	resp := ToCustomizationResponse(c)
	return &resp, nil
}

// CreateOrder converts any accepted request into an order (admin)
func (s *CustomizationService) CreateOrder(ctx context.Context, id int64, req ConvertCustomizationRequest) (*OrderResponse, error) {
	return s.convert(ctx, id, 0, req)
}

// CompleteOrder converts the caller's own accepted request into an order.
// Requests of other users are reported as not found.
func (s *CustomizationService) CompleteOrder(ctx context.Context, id, userID int64, req ConvertCustomizationRequest) (*OrderResponse, error) {
	return s.convert(ctx, id, userID, req)
}

// convert inserts the order and completes the request in one transaction.
// The completion only matches an accepted request, so a request converts once.
// ownerID 0 skips the ownership check.
func (s *CustomizationService) convert(ctx context.Context, id, ownerID int64, req ConvertCustomizationRequest) (_ *OrderResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "customization", "convert",
		telemetry.SpanAttrCustomizationID, id,
	)
	defer func() {
		telemetry.RecordError(span, err)
		span.End()
	}()

	var order *trade.Order
	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		c, err := repos.Customizations().FindByID(ctx, id)
		if err != nil {
			return err
		}
		if ownerID != 0 && !c.IsOwnedBy(ownerID) {
			return trade.ErrCustomizationNotFound
		}
		o, err := c.ToOrder(req.Details())
		if err != nil {
			return err
		}
		if err := repos.Orders().Create(ctx, o); err != nil {
			return err
		}
		completed, err := repos.Customizations().MarkCompleted(ctx, c.ID, o.ID)
		if err != nil {
			return err
		}
		if !completed {
			return trade.ErrCustomizationNotAccepted
		}
		order = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	telemetry.SetAttributes(span, telemetry.SpanAttrOrderID, order.ID)
	logger.Enrich(ctx, s.logger).Info("customization converted to order",
		zap.Int64("customization_id", id),
		zap.Int64("order_id", order.ID),
		zap.String("total_amount", order.TotalAmount.StringFixed(2)),
	)
	if s.events != nil {
		event := trade.NewOrderEvent(trade.EventTypeOrderCreated, order, "")
		event.CustomizationID = &id
		s.tasks.Go(ctx, "order-event", func(ctx context.Context) error {
			return s.events.PublishOrderEvent(ctx, event)
		})
	}

	resp := ToOrderResponse(order)
	return &resp, nil
}
