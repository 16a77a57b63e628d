package server

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	obscontext "github.com/smallbiznis/payhook/internal/observability/context"
	"github.com/smallbiznis/payhook/internal/payment/domain"
)

// maxWebhookBody caps the webhook body read into memory.
const maxWebhookBody = 1 << 20

func (s *Server) CreateOrder(c *gin.Context) {
	var req domain.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, domain.ErrInvalidAmount)
		return
	}

	order, err := s.orderSvc.CreateOrder(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "order": order})
}

// HandlePaymentWebhook reads the body untouched so the signature is checked
// against the bytes Razorpay signed.
func (s *Server) HandlePaymentWebhook(c *gin.Context) {
	payload, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBody))
	if err != nil {
		// Oversized or truncated bodies cannot be verified.
		AbortWithError(c, domain.ErrMalformedPayload)
		return
	}

	result, err := s.webhookSvc.IngestWebhook(c.Request.Context(), payload, c.Request.Header)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Request = c.Request.WithContext(obscontext.WithEventID(c.Request.Context(), result.EventID))
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
