package domain

import (
	"context"
	"net/http"

	"gorm.io/gorm"
)

// SignatureHeader carries the hex HMAC-SHA256 of the raw webhook body.
const SignatureHeader = "X-Razorpay-Signature"

// EventIDHeader carries the event id on deliveries whose body has none.
const EventIDHeader = "X-Razorpay-Event-Id"

type Repository interface {
	// InsertIfAbsent inserts event unless a row with the same EventID exists.
	// It reports whether a row was written.
	InsertIfAbsent(ctx context.Context, db *gorm.DB, event *PaymentEvent) (bool, error)
	FindByEventID(ctx context.Context, db *gorm.DB, eventID string) (*PaymentEvent, error)
	Count(ctx context.Context, db *gorm.DB) (int64, error)
}

// Gateway creates orders on the payment gateway.
type Gateway interface {
	CreateOrder(ctx context.Context, amount int64, currency string, receipt string) (*Order, error)
}

type WebhookService interface {
	IngestWebhook(ctx context.Context, payload []byte, headers http.Header) (*WebhookResult, error)
}

type OrderService interface {
	CreateOrder(ctx context.Context, req CreateOrderRequest) (*Order, error)
}
