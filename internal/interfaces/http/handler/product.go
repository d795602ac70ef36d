package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	catalogapp "github.com/buneko/backend/internal/application/catalog"
)

// ProductHandler handles product endpoints
type ProductHandler struct {
	BaseHandler
	productService *catalogapp.ProductService
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(productService *catalogapp.ProductService) *ProductHandler {
	return &ProductHandler{productService: productService}
}

// List returns one page of products filtered by category and search text.
// GET /products
func (h *ProductHandler) List(c *gin.Context) {
	var filter catalogapp.ProductListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	products, total, err := h.productService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	page, size := pageMeta(filter.Page, filter.PageSize, catalogapp.DefaultProductPageSize)
	h.SuccessWithMeta(c, products, total, page, size)
}

// ListByCategory returns every product of a category.
// GET /products/category/:categoryId
func (h *ProductHandler) ListByCategory(c *gin.Context) {
	categoryID, ok := h.pathID(c, "categoryId")
	if !ok {
		return
	}
	products, err := h.productService.ListByCategory(c.Request.Context(), categoryID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, products)
}

// Get returns one product.
// GET /products/:id
func (h *ProductHandler) Get(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	product, err := h.productService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// Create adds a product with an optional image.
// POST /products
func (h *ProductHandler) Create(c *gin.Context) {
	var req catalogapp.CreateProductRequest
	if !h.bind(c, &req) {
		return
	}
	image, ok := h.imageUpload(c)
	if !ok {
		return
	}
	product, err := h.productService.Create(c.Request.Context(), req, image)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, "Product created successfully", product)
}

// Update edits a product and optionally replaces its image.
// PUT /products/:id
func (h *ProductHandler) Update(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req catalogapp.UpdateProductRequest
	if !h.bind(c, &req) {
		return
	}
	image, ok := h.imageUpload(c)
	if !ok {
		return
	}
	product, err := h.productService.Update(c.Request.Context(), id, req, image)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMessage(c, http.StatusOK, "Product updated successfully", product)
}

// Delete removes a product no order refers to.
// DELETE /products/:id
func (h *ProductHandler) Delete(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	if err := h.productService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Message(c, "Product deleted successfully")
}
