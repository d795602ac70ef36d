package trade

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/buneko/backend/internal/application/background"
	"github.com/buneko/backend/internal/domain/shared"
	"github.com/buneko/backend/internal/domain/trade"
	"github.com/buneko/backend/internal/infrastructure/logger"
	"github.com/buneko/backend/internal/infrastructure/telemetry"
)

// OrderNotifier tells a customer their order changed status
type OrderNotifier interface {
	NotifyOrderStatus(ctx context.Context, order *trade.Order) error
}

// Requester identifies who is reading a resource
type Requester struct {
	UserID  int64
	IsAdmin bool
}

// CanRead reports whether the requester may see a resource owned by ownerID
func (r Requester) CanRead(ownerID int64) bool {
	return r.IsAdmin || r.UserID == ownerID
}

// DefaultOrderPageSize is the admin order listing page size
const DefaultOrderPageSize = 20

// ErrOrderStatusChanged is returned when a concurrent writer moved the order first
var ErrOrderStatusChanged = shared.NewDomainError(shared.ErrInvalidState.Code, "Order status changed while processing the request, please retry")

// OrderService runs the order workflows. Stock changes and order writes of one
// workflow share a single transaction; notifications and events are sent
// after commit and never affect the result.
type OrderService struct {
	orders   trade.OrderRepository
	txScope  TransactionScope
	notifier OrderNotifier
	events   trade.OrderEventPublisher
	tasks    *background.Runner
	logger   *zap.Logger
}

// NewOrderService creates a new OrderService
func NewOrderService(orders trade.OrderRepository, txScope TransactionScope, tasks *background.Runner, zapLogger *zap.Logger) *OrderService {
	if zapLogger == nil {
		zapLogger = zap.NewNop()
	}
	if tasks == nil {
		tasks = background.NewRunner(zapLogger)
	}
	return &OrderService{
		orders:  orders,
		txScope: txScope,
		tasks:   tasks,
		logger:  zapLogger,
	}
}

// SetNotifier sets the customer notifier for status changes
func (s *OrderService) SetNotifier(notifier OrderNotifier) {
	s.notifier = notifier
}

// SetEventPublisher sets the publisher for order events
func (s *OrderService) SetEventPublisher(publisher trade.OrderEventPublisher) {
	s.events = publisher
}

// CreateOrder places an order, taking stock for every line. Either the order,
// its items and all stock decrements commit, or nothing does.
func (s *OrderService) CreateOrder(ctx context.Context, userID int64, req CreateOrderRequest) (_ *OrderResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "order", "create", telemetry.SpanAttrUserID, userID)
	defer func() {
		telemetry.RecordError(span, err)
		span.End()
	}()

	lines, err := trade.MergeLines(req.Lines())
	if err != nil {
		return nil, err
	}
	shipping := req.Details()
	if err := shipping.Validate(); err != nil {
		return nil, err
	}

	var order *trade.Order
	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		items := make([]trade.OrderItem, 0, len(lines))
		for _, line := range lines {
			product, err := repos.Products().FindByID(ctx, line.ProductID)
			if err != nil {
				if errors.Is(err, shared.ErrNotFound) {
					return trade.ProductNotFound(line.ProductID)
				}
				return err
			}
			taken, err := repos.Products().DecrementStock(ctx, product.ID, line.Quantity)
			if err != nil {
				return err
			}
			if !taken {
				return trade.InsufficientStock(product.Name)
			}
			item, err := trade.NewOrderItem(product.ID, line.Quantity, product.Price)
			if err != nil {
				return err
			}
			item.ProductName = product.Name
			item.ProductImage = product.ImageURL
			items = append(items, *item)
		}

		o, err := trade.NewOrder(userID, shipping, items)
		if err != nil {
			return err
		}
		if err := repos.Orders().Create(ctx, o); err != nil {
			return err
		}
		order = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	telemetry.SetAttributes(span,
		telemetry.SpanAttrOrderID, order.ID,
		telemetry.SpanAttrItemCount, len(order.Items),
	)
	logger.Enrich(ctx, s.logger).Info("order created",
		zap.Int64("order_id", order.ID),
		zap.Int("lines", len(order.Items)),
		zap.String("total_amount", order.TotalAmount.StringFixed(2)),
	)
	s.publish(ctx, trade.NewOrderEvent(trade.EventTypeOrderCreated, order, ""))

	resp := ToOrderResponse(order)
	return &resp, nil
}

// CancelOrder cancels a customer's own order and puts its stock back.
// Orders of other users are reported as not found.
func (s *OrderService) CancelOrder(ctx context.Context, orderID, userID int64) (_ *OrderResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "order", "cancel",
		telemetry.SpanAttrOrderID, orderID,
		telemetry.SpanAttrUserID, userID,
	)
	defer func() {
		telemetry.RecordError(span, err)
		span.End()
	}()

	var order *trade.Order
	var previous trade.OrderStatus
	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		o, err := repos.Orders().FindByID(ctx, orderID)
		if err != nil {
			return err
		}
		if !o.IsOwnedBy(userID) {
			return trade.ErrOrderNotFound
		}
		previous = o.Status
		if err := cancelInTx(ctx, repos, o); err != nil {
			return err
		}
		order = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Enrich(ctx, s.logger).Info("order cancelled",
		zap.Int64("order_id", order.ID),
		zap.String("previous_status", previous.String()),
	)
	s.publish(ctx, trade.NewOrderEvent(trade.EventTypeOrderCancelled, order, previous))

	resp := ToOrderResponse(order)
	return &resp, nil
}

// cancelInTx claims the status change first, so a concurrent cancel blocks on
// the row and then matches nothing, and only the winner restores stock.
func cancelInTx(ctx context.Context, repos TransactionalRepositories, o *trade.Order) error {
	if err := o.CheckCancellable(); err != nil {
		return err
	}
	moved, err := repos.Orders().UpdateStatus(ctx, o.ID, o.Status, trade.OrderStatusCancelled)
	if err != nil {
		return err
	}
	if !moved {
		return statusRaceError(ctx, repos.Orders(), o.ID)
	}
	for _, item := range o.Items {
		if err := repos.Products().RestoreStock(ctx, item.ProductID, item.Quantity); err != nil {
			return err
		}
	}
	o.Status = trade.OrderStatusCancelled
	return nil
}

// statusRaceError explains why a conditional status write matched no row
func statusRaceError(ctx context.Context, orders trade.OrderRepository, id int64) error {
	current, err := orders.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := current.CheckCancellable(); err != nil {
		return err
	}
	return ErrOrderStatusChanged
}

// UpdateOrderStatus applies an admin status change and notifies the customer.
// Moving to cancelled runs the cancellation workflow so stock is restored.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, orderID int64, req UpdateOrderStatusRequest) (_ *OrderResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "order", "update_status",
		telemetry.SpanAttrOrderID, orderID,
		telemetry.SpanAttrOrderStatus, req.Status,
	)
	defer func() {
		telemetry.RecordError(span, err)
		span.End()
	}()

	target := trade.OrderStatus(req.Status)
	if !target.IsValid() {
		return nil, shared.Validationf("Invalid order status: %s", req.Status)
	}

	var order *trade.Order
	var previous trade.OrderStatus
	if target == trade.OrderStatusCancelled {
		err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
			o, err := repos.Orders().FindByID(ctx, orderID)
			if err != nil {
				return err
			}
			previous = o.Status
			if err := cancelInTx(ctx, repos, o); err != nil {
				return err
			}
			order = o
			return nil
		})
		if err != nil {
			return nil, err
		}
		s.publish(ctx, trade.NewOrderEvent(trade.EventTypeOrderCancelled, order, previous))
	} else {
		o, err := s.orders.FindByID(ctx, orderID)
		if err != nil {
			return nil, err
		}
		if err := o.CheckTransition(target); err != nil {
			return nil, err
		}
		moved, err := s.orders.UpdateStatus(ctx, o.ID, o.Status, target)
		if err != nil {
			return nil, err
		}
		if !moved {
			return nil, ErrOrderStatusChanged
		}
		previous = o.Status
		o.Status = target
		order = o
		s.publish(ctx, trade.NewOrderEvent(trade.EventTypeOrderStatusChanged, order, previous))
	}

	logger.Enrich(ctx, s.logger).Info("order status updated",
		zap.Int64("order_id", order.ID),
		zap.String("from", previous.String()),
		zap.String("to", order.Status.String()),
	)
	s.notify(ctx, order)

	resp := ToOrderResponse(order)
	return &resp, nil
}

// ListOrders returns one page of all orders
func (s *OrderService) ListOrders(ctx context.Context, filter OrderListFilter) ([]OrderResponse, int64, error) {
	domainFilter := trade.OrderFilter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			OrderBy:  filter.OrderBy,
			OrderDir: filter.OrderDir,
		}.Normalize(DefaultOrderPageSize),
		Status: trade.OrderStatus(filter.Status),
	}
	orders, total, err := s.orders.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	return ToOrderResponses(orders), total, nil
}

// ListUserOrders returns every order of one customer, newest first
func (s *OrderService) ListUserOrders(ctx context.Context, userID int64) ([]OrderResponse, error) {
	orders, _, err := s.orders.FindAll(ctx, trade.OrderFilter{
		Filter: shared.Filter{OrderBy: "created_at", OrderDir: "desc"},
		UserID: userID,
	})
	if err != nil {
		return nil, err
	}
	return ToOrderResponses(orders), nil
}

// GetOrder returns one order. Customers only see their own orders.
func (s *OrderService) GetOrder(ctx context.Context, orderID int64, requester Requester) (*OrderResponse, error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !requester.CanRead(order.UserID) {
		return nil, trade.ErrOrderNotFound
	}
	resp := ToOrderResponse(order)
	return &resp, nil
}

// Wait blocks until pending notifications and events are sent or ctx ends
func (s *OrderService) Wait(ctx context.Context) error {
	return s.tasks.Wait(ctx)
}

func (s *OrderService) notify(ctx context.Context, order *trade.Order) {
	if s.notifier == nil {
		return
	}
	snapshot := *order
	s.tasks.Go(ctx, "order-status-email", func(ctx context.Context) error {
		return s.notifier.NotifyOrderStatus(ctx, &snapshot)
	})
}

func (s *OrderService) publish(ctx context.Context, event trade.OrderEvent) {
	if s.events == nil {
		return
	}
	s.tasks.Go(ctx, "order-event", func(ctx context.Context) error {
		return s.events.PublishOrderEvent(ctx, event)
	})
}
