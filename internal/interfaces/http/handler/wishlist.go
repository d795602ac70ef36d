package handler

import (
	"github.com/gin-gonic/gin"

	catalogapp "github.com/buneko/backend/internal/application/catalog"
)

// WishlistHandler handles the caller's saved products
type WishlistHandler struct {
	BaseHandler
	wishlistService *catalogapp.WishlistService
}

// NewWishlistHandler creates a new WishlistHandler
func NewWishlistHandler(wishlistService *catalogapp.WishlistService) *WishlistHandler {
	return &WishlistHandler{wishlistService: wishlistService}
}

// List returns the caller's wishlist.
// GET /wishlist
func (h *WishlistHandler) List(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	items, err := h.wishlistService.List(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, items)
}

// Add saves a product. Saving it twice is not an error.
// POST /wishlist
func (h *WishlistHandler) Add(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	var req catalogapp.AddWishlistRequest
	if !h.bindJSON(c, &req) {
		return
	}
	if err := h.wishlistService.Add(c.Request.Context(), userID, req); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, "Product added to wishlist", nil)
}

// Remove drops a product from the wishlist.
// DELETE /wishlist/:productId
func (h *WishlistHandler) Remove(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	productID, ok := h.pathID(c, "productId")
	if !ok {
		return
	}
	if err := h.wishlistService.Remove(c.Request.Context(), userID, productID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Message(c, "Product removed from wishlist")
}
