package response

import (
	"errors"
	"net/http"

	"github.com/Shine-Mobile-Detailing/service-dispatch/internal/domain"
	"github.com/gin-gonic/gin"
)

// Body is the uniform envelope for all API responses.
type Body struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorBody  `json:"error,omitempty"`
	Meta    *Meta       `json:"meta,omitempty"`
}

// ErrorBody carries a machine-readable code and a human message.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Meta carries pagination information for list responses.
type Meta struct {
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
}

// Success writes a 200 response with the given payload.
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Body{Success: true, Data: data})
}

// Created writes a 201 response with the given payload.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Body{Success: true, Data: data})
}

// Paginated writes a 200 list response with pagination metadata.
func Paginated(c *gin.Context, items interface{}, total int64, page, limit int) {
	c.JSON(http.StatusOK, Body{
		Success: true,
		Data:    items,
		Meta:    &Meta{Total: total, Page: page, Limit: limit},
	})
}

// BadRequest writes a 400 response with a validation error body.
func BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, Body{
		Success: false,
		Error:   &ErrorBody{Code: string(domain.CodeValidation), Message: message},
	})
}

// Unauthorized writes a 401 response.
func Unauthorized(c *gin.Context, message string) {
	c.JSON(http.StatusUnauthorized, Body{
		Success: false,
		Error:   &ErrorBody{Code: "UNAUTHORIZED", Message: message},
	})
}

// Forbidden writes a 403 response.
func Forbidden(c *gin.Context, message string) {
	c.JSON(http.StatusForbidden, Body{
		Success: false,
		Error:   &ErrorBody{Code: string(domain.CodeForbidden), Message: message},
	})
}

// Error maps a domain error to the appropriate HTTP status. Unrecognized
// errors become opaque 500s.
func Error(c *gin.Context, err error) {
	var domainErr *domain.Error
	if !errors.As(err, &domainErr) {
		c.JSON(http.StatusInternalServerError, Body{
			Success: false,
			Error:   &ErrorBody{Code: "INTERNAL", Message: "internal server error"},
		})
		return
	}

	c.JSON(statusFor(domainErr.Code), Body{
		Success: false,
		Error:   &ErrorBody{Code: string(domainErr.Code), Message: domainErr.Message},
	})
}

func statusFor(code domain.ErrorCode) int {
	switch code {
	case domain.CodeNotFound:
		return http.StatusNotFound
	case domain.CodeConflict, domain.CodeIllegalTransition, domain.CodeAlreadyActive, domain.CodeNotActive:
		return http.StatusConflict
	case domain.CodeForbidden:
		return http.StatusForbidden
	case domain.CodeValidation, domain.CodeInvalidVehicleType, domain.CodeInvalidPrice:
		return http.StatusBadRequest
	case domain.CodeDetailerUnavailable, domain.CodeNoDetailerAvailable:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
