package handler

import (
	"github.com/gin-gonic/gin"

	billingapp "github.com/buneko/backend/internal/application/billing"
)

// PaymentHandler opens card checkouts
type PaymentHandler struct {
	BaseHandler
	checkoutService *billingapp.CheckoutService
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(checkoutService *billingapp.CheckoutService) *PaymentHandler {
	return &PaymentHandler{checkoutService: checkoutService}
}

// CreateCheckoutSession prices the cart from the catalog and returns the
// hosted checkout URL.
// POST /payment/create-checkout-session
func (h *PaymentHandler) CreateCheckoutSession(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	var req billingapp.CreateCheckoutSessionRequest
	if !h.bindJSON(c, &req) {
		return
	}
	session, err := h.checkoutService.CreateCheckoutSession(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, session)
}
