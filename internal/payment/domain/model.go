package domain

import (
	"encoding/json"
	"time"
)

// PaymentEvent is the deduplicated record of a verified gateway webhook.
// Rows are inserted once and never updated.
type PaymentEvent struct {
	ID        int64     `json:"-" gorm:"primaryKey;autoIncrement"`
	EventID   string    `json:"event_id" gorm:"type:varchar(255);not null;uniqueIndex:ux_payments_event_id"`
	Status    string    `json:"status" gorm:"type:text;not null"`
	Amount    int64     `json:"amount" gorm:"not null"`
	Currency  string    `json:"currency" gorm:"type:text;not null"`
	Email     *string   `json:"email" gorm:"type:text"`
	Contact   *string   `json:"contact" gorm:"type:text"`
	CreatedAt time.Time `json:"created_at" gorm:"not null"`
}

func (PaymentEvent) TableName() string { return "payments" }

const (
	DefaultCurrency = "INR"
	UnknownStatus   = "unknown"

	// MaxEventIDLength bounds event_id, the only length-limited column.
	MaxEventIDLength = 255
)

// WebhookEvent is the subset of a Razorpay webhook body that is persisted.
// Every field is optional and kept raw; a value of the wrong JSON type is
// treated as absent.
type WebhookEvent struct {
	ID      json.RawMessage `json:"id"`
	Event   json.RawMessage `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

type WebhookPayload struct {
	Payment json.RawMessage `json:"payment"`
}

type PaymentWrapper struct {
	Entity json.RawMessage `json:"entity"`
}

type PaymentEntity struct {
	Status   json.RawMessage `json:"status"`
	Amount   json.RawMessage `json:"amount"`
	Currency json.RawMessage `json:"currency"`
	Email    json.RawMessage `json:"email"`
	Contact  json.RawMessage `json:"contact"`
}

// CreateOrderRequest is the create-order input. Amount is kept raw so that
// every non-numeric shape can be rejected the same way.
type CreateOrderRequest struct {
	Amount   json.RawMessage `json:"amount"`
	Currency string          `json:"currency"`
}

// Order is the gateway order object returned to the caller as-is.
type Order struct {
	ID         string          `json:"id"`
	Entity     string          `json:"entity"`
	Amount     int64           `json:"amount"`
	AmountPaid int64           `json:"amount_paid"`
	AmountDue  int64           `json:"amount_due"`
	Currency   string          `json:"currency"`
	Receipt    string          `json:"receipt"`
	OfferID    *string         `json:"offer_id"`
	Status     string          `json:"status"`
	Attempts   int             `json:"attempts"`
	Notes      json.RawMessage `json:"notes,omitempty"`
	CreatedAt  int64           `json:"created_at"`
}

// WebhookResult reports what a verified delivery did to the store.
type WebhookResult struct {
	EventID  string
	Status   string
	Inserted bool
}
