package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/payhook/internal/payment/domain"
)

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

var (
	ErrRateLimited        = errors.New("rate_limited")
	ErrServiceUnavailable = errors.New("service_unavailable")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, message := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Success: false, Error: message})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func mapError(err error) (int, string) {
	switch {
	case err == nil:
		return http.StatusInternalServerError, "internal server error"
	case errors.Is(err, domain.ErrInvalidAmount):
		return http.StatusBadRequest, "Invalid amount"
	case errors.Is(err, domain.ErrInvalidCurrency):
		return http.StatusBadRequest, "Invalid currency"
	case errors.Is(err, domain.ErrAuthenticationMissing):
		return http.StatusBadRequest, "Missing signature or secret"
	case errors.Is(err, domain.ErrInvalidSignature):
		return http.StatusBadRequest, "Invalid signature"
	case errors.Is(err, domain.ErrMalformedPayload):
		return http.StatusBadRequest, "Malformed payload"
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests, "Too many requests"
	case errors.Is(err, ErrServiceUnavailable):
		return http.StatusServiceUnavailable, "service unavailable"
	case errors.Is(err, domain.ErrGateway), errors.Is(err, domain.ErrGatewayNotConfigured):
		return http.StatusInternalServerError, err.Error()
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

// classifyErrorForLog returns the error type and code attached to request logs.
func classifyErrorForLog(err error) (string, string) {
	switch {
	case err == nil:
		return "", ""
	case errors.Is(err, domain.ErrInvalidAmount):
		return "validation_error", domain.ErrInvalidAmount.Error()
	case errors.Is(err, domain.ErrInvalidCurrency):
		return "validation_error", domain.ErrInvalidCurrency.Error()
	case errors.Is(err, domain.ErrMalformedPayload):
		return "validation_error", domain.ErrMalformedPayload.Error()
	case errors.Is(err, domain.ErrAuthenticationMissing):
		return "authentication_error", domain.ErrAuthenticationMissing.Error()
	case errors.Is(err, domain.ErrInvalidSignature):
		return "authentication_error", domain.ErrInvalidSignature.Error()
	case errors.Is(err, ErrRateLimited):
		return "rate_limited", ErrRateLimited.Error()
	case errors.Is(err, ErrServiceUnavailable):
		return "unavailable", ErrServiceUnavailable.Error()
	case errors.Is(err, domain.ErrGatewayNotConfigured):
		return "gateway_error", domain.ErrGatewayNotConfigured.Error()
	case errors.Is(err, domain.ErrGateway):
		return "gateway_error", domain.ErrGateway.Error()
	case errors.Is(err, domain.ErrStore):
		return "store_error", domain.ErrStore.Error()
	default:
		return "internal_error", "internal_error"
	}
}
