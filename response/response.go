package response

import (
	"net/http"

	apperr "rentspace/errors"

	"github.com/gin-gonic/gin"
)

// Response is the envelope every endpoint returns.
type Response struct {
	Success    bool        `json:"success"`
	Message    string      `json:"message"`
	Data       interface{} `json:"data,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

// ErrorResponse is the envelope for failures.
type ErrorResponse struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Code    apperr.ErrorCode  `json:"code,omitempty"`
	Errors  map[string]string `json:"errors,omitempty"`
	Details map[string]any    `json:"details,omitempty"`
}

// Pagination describes a page of a list endpoint. Page is zero-based.
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"total_pages"`
}

func NewPagination(page, limit int, total int64) *Pagination {
	p := &Pagination{Page: page, Limit: limit, Total: total}
	if limit > 0 {
		p.TotalPages = (total + int64(limit) - 1) / int64(limit)
	}
	return p
}

// Success returns 200 with data.
func Success(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Created returns 201 with data.
func Created(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// SuccessWithPagination returns a page of a list endpoint.
func SuccessWithPagination(c *gin.Context, data interface{}, page, limit int, total int64) {
	c.JSON(http.StatusOK, Response{
		Success:    true,
		Message:    "ok",
		Data:       data,
		Pagination: NewPagination(page, limit, total),
	})
}

// Error writes err as an error envelope. Internal errors are replaced by a
// generic message; the caller is expected to have logged the cause.
func Error(c *gin.Context, err error) {
	appErr := apperr.GetAppError(err)
	if appErr == nil {
		appErr = apperr.Internal(err)
	}
	status := appErr.Status()
	message := appErr.Message
	if status >= http.StatusInternalServerError {
		message = "internal server error"
	}
	c.AbortWithStatusJSON(status, ErrorResponse{
		Success: false,
		Message: message,
		Code:    appErr.Code,
		Details: appErr.Details,
	})
}

// ServerError returns a 500 without disclosing the cause.
func ServerError(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{
		Success: false,
		Message: "internal server error",
		Code:    apperr.ErrCodeInternal,
	})
}

// Unauthorized returns 401.
func Unauthorized(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
		Success: false,
		Message: "unauthenticated",
		Code:    apperr.ErrCodeUnauthorized,
	})
}

// Forbidden returns 403.
func Forbidden(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{
		Success: false,
		Message: "you are not allowed to perform this action",
		Code:    apperr.ErrCodeForbidden,
	})
}

// ValidationError returns 422 with per-field messages.
func ValidationError(c *gin.Context, fields map[string]string) {
	c.AbortWithStatusJSON(http.StatusUnprocessableEntity, ErrorResponse{
		Success: false,
		Message: "the given data was invalid",
		Code:    apperr.ErrCodeValidation,
		Errors:  fields,
	})
}

// BadRequest returns 422 for malformed input that did not reach field validation.
func BadRequest(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnprocessableEntity, ErrorResponse{
		Success: false,
		Message: message,
		Code:    apperr.ErrCodeInvalidFormat,
	})
}
