// Package middleware provides HTTP middleware for the API.
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	domainerrors "github.com/crewhub/chatbot-service/internal/domain/errors"
)

// ErrorMiddleware handles error recovery and formatting.
type ErrorMiddleware struct{}

// NewErrorMiddleware creates a new ErrorMiddleware.
func NewErrorMiddleware() *ErrorMiddleware {
	return &ErrorMiddleware{}
}

// Recovery returns a gin middleware that recovers from panics. A panic
// mid-conversation must never take the widget connection down with it.
func (m *ErrorMiddleware) Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logger := GetRequestLogger(c)
				logger.Error().
					Interface("panic", r).
					Str("method", c.Request.Method).
					Str("path", c.Request.URL.Path).
					Msg("panic recovered")

				c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{
					Code:      "INTERNAL_ERROR",
					Message:   "internal server error",
					RequestID: GetRequestID(c),
				})
			}
		}()
		c.Next()
	}
}

// ErrorResponse represents a standardized error response. RequestID is
// echoed back so widget-side errors can be correlated with server logs.
type ErrorResponse struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Details   string `json:"details,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}

// HandleError handles errors and sends appropriate HTTP responses.
func HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	// Check for domain errors
	if domainErr, ok := domainerrors.GetDomainError(err); ok {
		c.AbortWithStatusJSON(domainErr.HTTPStatus, ErrorResponse{
			Code:      domainErr.Code,
			Message:   domainErr.Message,
			Details:   domainErr.Details,
			RequestID: GetRequestID(c),
		})
		return
	}

	// Default to internal server error
	logger := GetRequestLogger(c)
	logger.Error().Err(err).Msg("unhandled error")
	c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{
		Code:      "INTERNAL_ERROR",
		Message:   "internal server error",
		RequestID: GetRequestID(c),
	})
}

// NotFound returns a 404 handler.
func NotFound() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Code:      "NOT_FOUND",
			Message:   "no chatbot endpoint at this path",
			Details:   c.Request.URL.Path,
			RequestID: GetRequestID(c),
		})
	}
}

// MethodNotAllowed returns a 405 handler.
func MethodNotAllowed() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, ErrorResponse{
			Code:      "METHOD_NOT_ALLOWED",
			Message:   "method not allowed",
			Details:   c.Request.Method,
			RequestID: GetRequestID(c),
		})
	}
}
