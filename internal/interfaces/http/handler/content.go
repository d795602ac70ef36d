package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	marketingapp "github.com/buneko/backend/internal/application/marketing"
)

// ContentHandler handles the storefront's social media links
type ContentHandler struct {
	BaseHandler
	contentService *marketingapp.ContentService
}

// NewContentHandler creates a new ContentHandler
func NewContentHandler(contentService *marketingapp.ContentService) *ContentHandler {
	return &ContentHandler{contentService: contentService}
}

// List returns one page of content links.
// GET /contents
func (h *ContentHandler) List(c *gin.Context) {
	var filter marketingapp.ContentListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	items, total, err := h.contentService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	page, size := pageMeta(filter.Page, filter.PageSize, marketingapp.DefaultContentPageSize)
	h.SuccessWithMeta(c, items, total, page, size)
}

// Get returns one content link.
// GET /contents/:id
func (h *ContentHandler) Get(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	item, err := h.contentService.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, item)
}

// Create adds a content link.
// POST /contents
func (h *ContentHandler) Create(c *gin.Context) {
	var req marketingapp.CreateContentRequest
	if !h.bindJSON(c, &req) {
		return
	}
	item, err := h.contentService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, "Content created successfully", item)
}

// Update edits a content link.
// PUT /contents/:id
func (h *ContentHandler) Update(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req marketingapp.UpdateContentRequest
	if !h.bindJSON(c, &req) {
		return
	}
	item, err := h.contentService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMessage(c, http.StatusOK, "Content updated successfully", item)
}

// Delete removes a content link.
// DELETE /contents/:id
func (h *ContentHandler) Delete(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	if err := h.contentService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Message(c, "Content deleted successfully")
}
