// Package handler holds the gin handlers of the storefront API.
package handler

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apptrade "github.com/buneko/backend/internal/application/trade"
	"github.com/buneko/backend/internal/domain/shared"
	"github.com/buneko/backend/internal/infrastructure/logger"
	"github.com/buneko/backend/internal/interfaces/http/dto"
	"github.com/buneko/backend/internal/interfaces/http/middleware"
)

// MaxImageSize is the largest accepted image upload
const MaxImageSize = 5 << 20

// imageField is the multipart field carrying an image
const imageField = "image"

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// Success sends a 200 response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// SuccessWithMessage sends a response carrying a message alongside data
func (h *BaseHandler) SuccessWithMessage(c *gin.Context, status int, message string, data any) {
	resp := dto.NewSuccessResponse(data)
	resp.Message = message
	c.JSON(status, resp)
}

// SuccessWithMeta sends a success response with pagination meta
func (h *BaseHandler) SuccessWithMeta(c *gin.Context, data any, total int64, page, pageSize int) {
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(data, total, page, pageSize))
}

// Created sends a 201 response
func (h *BaseHandler) Created(c *gin.Context, message string, data any) {
	h.SuccessWithMessage(c, http.StatusCreated, message, data)
}

// Message sends a 200 response with only a message
func (h *BaseHandler) Message(c *gin.Context, message string) {
	c.JSON(http.StatusOK, dto.NewMessageResponse(message))
}

// Error sends an error response with the given status
func (h *BaseHandler) Error(c *gin.Context, status int, code, message string) {
	c.JSON(status, dto.NewErrorResponseWithRequestID(code, message, middleware.GetRequestID(c)))
}

// BadRequest sends a 400 response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

// Unauthorized sends a 401 response
func (h *BaseHandler) Unauthorized(c *gin.Context, message string) {
	h.Error(c, http.StatusUnauthorized, dto.ErrCodeUnauthorized, message)
}

// ValidationError sends a 400 response listing the rejected fields
func (h *BaseHandler) ValidationError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, middleware.FormatValidationErrors(err, middleware.GetRequestID(c)))
}

// HandleError renders err. Domain errors keep their code and message;
// anything else is logged and reported as a generic 500.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		h.Error(c, dto.DomainErrorStatus(domainErr.Code), domainErr.Code, domainErr.Message)
		return
	}

	logger.FromGin(c).Error("Request failed",
		zap.String("handler", c.HandlerName()),
		zap.Error(err),
	)
	_ = c.Error(err)
	h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, "An unexpected error occurred")
}

// bind decodes the body by content type (JSON or multipart form) into req
// and renders the 400 itself on failure.
func (h *BaseHandler) bind(c *gin.Context, req any) bool {
	return h.finishBind(c, c.ShouldBind(req))
}

// bindJSON decodes a JSON body into req
func (h *BaseHandler) bindJSON(c *gin.Context, req any) bool {
	return h.finishBind(c, c.ShouldBindJSON(req))
}

// bindQuery decodes query parameters into req
func (h *BaseHandler) bindQuery(c *gin.Context, req any) bool {
	return h.finishBind(c, c.ShouldBindQuery(req))
}

func (h *BaseHandler) finishBind(c *gin.Context, err error) bool {
	if err == nil {
		return true
	}
	if middleware.ValidationDetails(err) != nil {
		h.ValidationError(c, err)
		return false
	}
	var maxBytes *http.MaxBytesError
	if errors.As(err, &maxBytes) {
		h.Error(c, http.StatusRequestEntityTooLarge, dto.ErrCodeRequestTooLarge, "Request body exceeds maximum allowed size")
		return false
	}
	h.BadRequest(c, "Invalid request body")
	return false
}

// pathID parses a positive integer path parameter
func (h *BaseHandler) pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidInput, "Invalid "+name)
		return 0, false
	}
	return id, true
}

// currentUser returns the authenticated user id, answering 401 when absent
func (h *BaseHandler) currentUser(c *gin.Context) (int64, bool) {
	id, ok := middleware.GetUserID(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
	}
	return id, ok
}

// requester describes the caller for owner-or-admin reads
func (h *BaseHandler) requester(c *gin.Context) (apptrade.Requester, bool) {
	id, ok := h.currentUser(c)
	if !ok {
		return apptrade.Requester{}, false
	}
	return apptrade.Requester{UserID: id, IsAdmin: middleware.IsAdmin(c)}, true
}

// imageUpload reads the optional image part of a multipart request. Only
// image content up to MaxImageSize is accepted.
func (h *BaseHandler) imageUpload(c *gin.Context) (*shared.MediaUpload, bool) {
	if !strings.HasPrefix(c.ContentType(), "multipart/") {
		return nil, true
	}
	header, err := c.FormFile(imageField)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, true
	}
	if err != nil {
		h.BadRequest(c, "Invalid image upload")
		return nil, false
	}
	if header.Size > MaxImageSize {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidInput, "Image must be 5MB or smaller")
		return nil, false
	}

	f, err := header.Open()
	if err != nil {
		h.BadRequest(c, "Invalid image upload")
		return nil, false
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, MaxImageSize+1))
	if err != nil {
		h.BadRequest(c, "Invalid image upload")
		return nil, false
	}
	if len(data) > MaxImageSize {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidInput, "Image must be 5MB or smaller")
		return nil, false
	}

	contentType := http.DetectContentType(data)
	if !strings.HasPrefix(contentType, "image/") {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidInput, "Only image files are allowed")
		return nil, false
	}
	return &shared.MediaUpload{
		Filename:    header.Filename,
		ContentType: contentType,
		Data:        data,
	}, true
}

// pageMeta returns the page and page size a listing actually used
func pageMeta(page, pageSize, defaultPageSize int) (int, int) {
	f := shared.Filter{Page: page, PageSize: pageSize}.Normalize(defaultPageSize)
	return f.Page, f.PageSize
}
