package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/buneko/backend/internal/application/report"
)

// DashboardHandler serves the admin and customer dashboards
type DashboardHandler struct {
	BaseHandler
	dashboardService *report.DashboardService
}

// NewDashboardHandler creates a new DashboardHandler
func NewDashboardHandler(dashboardService *report.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// Admin returns store-wide totals and the latest orders.
// GET /dashboard/admin
func (h *DashboardHandler) Admin(c *gin.Context) {
	stats, err := h.dashboardService.AdminStats(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stats)
}

// Customer returns the caller's order and wishlist totals.
// GET /dashboard/customer
func (h *DashboardHandler) Customer(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	stats, err := h.dashboardService.CustomerStats(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stats)
}
