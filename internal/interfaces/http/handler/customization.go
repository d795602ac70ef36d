package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apptrade "github.com/buneko/backend/internal/application/trade"
)

// CustomizationHandler handles bespoke order requests
type CustomizationHandler struct {
	BaseHandler
	customizationService *apptrade.CustomizationService
}

// NewCustomizationHandler creates a new CustomizationHandler
func NewCustomizationHandler(customizationService *apptrade.CustomizationService) *CustomizationHandler {
	return &CustomizationHandler{customizationService: customizationService}
}

// Create submits a customization request.
// POST /customizations
func (h *CustomizationHandler) Create(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	var req apptrade.CreateCustomizationRequest
	if !h.bindJSON(c, &req) {
		return
	}
	item, err := h.customizationService.Create(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, "Customization request submitted successfully", item)
}

// Mine returns the caller's requests.
// GET /customizations/my-customizations
func (h *CustomizationHandler) Mine(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	items, err := h.customizationService.ListMine(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, items)
}

// List returns one page of all requests.
// GET /customizations
func (h *CustomizationHandler) List(c *gin.Context) {
	var filter apptrade.CustomizationListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	items, total, err := h.customizationService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	page, size := pageMeta(filter.Page, filter.PageSize, apptrade.DefaultCustomizationPageSize)
	h.SuccessWithMeta(c, items, total, page, size)
}

// Get returns a request the caller owns, or any request for admins.
// GET /customizations/:id
func (h *CustomizationHandler) Get(c *gin.Context) {
	requester, ok := h.requester(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	item, err := h.customizationService.Get(c.Request.Context(), id, requester)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, item)
}

// UpdateStatus records an admin review, usually with a quote.
// PATCH /customizations/:id/status
func (h *CustomizationHandler) UpdateStatus(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req apptrade.UpdateCustomizationStatusRequest
	if !h.bindJSON(c, &req) {
		return
	}
	item, err := h.customizationService.UpdateStatus(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMessage(c, http.StatusOK, "Customization status updated successfully", item)
}

// CreateOrder converts an accepted request into an order on the customer's behalf.
// POST /customizations/:id/create-order
func (h *CustomizationHandler) CreateOrder(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req apptrade.ConvertCustomizationRequest
	if !h.bindJSON(c, &req) {
		return
	}
	order, err := h.customizationService.CreateOrder(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, "Order created from customization successfully", order)
}

// CompleteOrder lets the owner turn their accepted request into an order.
// POST /customizations/:id/complete-order
func (h *CustomizationHandler) CompleteOrder(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req apptrade.ConvertCustomizationRequest
	if !h.bindJSON(c, &req) {
		return
	}
	order, err := h.customizationService.CompleteOrder(c.Request.Context(), id, userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, "Order placed successfully", order)
}
