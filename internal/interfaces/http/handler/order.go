package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apptrade "github.com/buneko/backend/internal/application/trade"
)

// OrderHandler handles the order workflow endpoints
type OrderHandler struct {
	BaseHandler
	orderService *apptrade.OrderService
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orderService *apptrade.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

// List returns one page of all orders.
// GET /orders
func (h *OrderHandler) List(c *gin.Context) {
	var filter apptrade.OrderListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	orders, total, err := h.orderService.ListOrders(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	page, size := pageMeta(filter.Page, filter.PageSize, apptrade.DefaultOrderPageSize)
	h.SuccessWithMeta(c, orders, total, page, size)
}

// MyOrders returns the caller's orders, newest first.
// GET /orders/my-orders
func (h *OrderHandler) MyOrders(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	orders, err := h.orderService.ListUserOrders(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, orders)
}

// Get returns an order the caller owns, or any order for admins.
// GET /orders/:id
func (h *OrderHandler) Get(c *gin.Context) {
	requester, ok := h.requester(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	order, err := h.orderService.GetOrder(c.Request.Context(), id, requester)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// Create places an order and reserves its stock.
// POST /orders
func (h *OrderHandler) Create(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	var req apptrade.CreateOrderRequest
	if !h.bindJSON(c, &req) {
		return
	}
	order, err := h.orderService.CreateOrder(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, "Order created successfully", order)
}

// UpdateStatus moves an order along its lifecycle and emails the customer.
// PATCH /orders/:id/status
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req apptrade.UpdateOrderStatusRequest
	if !h.bindJSON(c, &req) {
		return
	}
	order, err := h.orderService.UpdateOrderStatus(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMessage(c, http.StatusOK, "Order status updated successfully", order)
}

// Cancel cancels the caller's order and puts its stock back.
// PATCH /orders/:id/cancel
func (h *OrderHandler) Cancel(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	order, err := h.orderService.CancelOrder(c.Request.Context(), id, userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMessage(c, http.StatusOK, "Order cancelled successfully", order)
}
