package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	catalogapp "github.com/buneko/backend/internal/application/catalog"
)

// CategoryHandler handles category endpoints
type CategoryHandler struct {
	BaseHandler
	categoryService *catalogapp.CategoryService
}

// NewCategoryHandler creates a new CategoryHandler
func NewCategoryHandler(categoryService *catalogapp.CategoryService) *CategoryHandler {
	return &CategoryHandler{categoryService: categoryService}
}

// List returns all categories with their product counts.
// GET /categories
func (h *CategoryHandler) List(c *gin.Context) {
	categories, err := h.categoryService.List(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, categories)
}

// Get returns one category.
// GET /categories/:id
func (h *CategoryHandler) Get(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	category, err := h.categoryService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, category)
}

// Create adds a category with an optional image.
// POST /categories
func (h *CategoryHandler) Create(c *gin.Context) {
	var req catalogapp.CreateCategoryRequest
	if !h.bind(c, &req) {
		return
	}
	image, ok := h.imageUpload(c)
	if !ok {
		return
	}
	category, err := h.categoryService.Create(c.Request.Context(), req, image)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, "Category created successfully", category)
}

// Update edits a category and optionally replaces its image.
// PUT /categories/:id
func (h *CategoryHandler) Update(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req catalogapp.UpdateCategoryRequest
	if !h.bind(c, &req) {
		return
	}
	image, ok := h.imageUpload(c)
	if !ok {
		return
	}
	category, err := h.categoryService.Update(c.Request.Context(), id, req, image)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMessage(c, http.StatusOK, "Category updated successfully", category)
}

// Delete removes an empty category.
// DELETE /categories/:id
func (h *CategoryHandler) Delete(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	if err := h.categoryService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Message(c, "Category deleted successfully")
}
