package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/smallbiznis/payhook/internal/clock"
	"github.com/smallbiznis/payhook/internal/config"
	"github.com/smallbiznis/payhook/internal/observability/metrics"
	"github.com/smallbiznis/payhook/internal/payment/domain"
	"github.com/smallbiznis/payhook/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	Secret  *config.WebhookSecret
	Repo    domain.Repository
	Clock   clock.Clock      `optional:"true"`
	Metrics *metrics.Metrics `optional:"true"`
	Cfg     config.Config
}

type Service struct {
	db           *gorm.DB
	log          *zap.Logger
	secret       *config.WebhookSecret
	repo         domain.Repository
	metrics      *metrics.Metrics
	storeTimeout time.Duration
	clock        clock.Clock
}

func NewService(p Params) domain.WebhookService {
	clk := p.Clock
	if clk == nil {
		clk = clock.SystemClock{}
	}
	return &Service{
		db:           p.DB,
		log:          p.Log.Named("payment.webhook"),
		secret:       p.Secret,
		repo:         p.Repo,
		metrics:      p.Metrics,
		storeTimeout: p.Cfg.StoreTimeout,
		clock:        clk,
	}
}

func (s *Service) IngestWebhook(ctx context.Context, payload []byte, headers http.Header) (*domain.WebhookResult, error) {
	if err := VerifySignature(s.secret.Get(), payload, headers.Get(domain.SignatureHeader)); err != nil {
		s.reject(ctx, err)
		return nil, err
	}

	event, err := decodeEvent(payload, headers)
	if err != nil {
		s.reject(ctx, err)
		return nil, err
	}

	row := s.toRecord(event)

	storeCtx, cancel := db.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	inserted, err := s.repo.InsertIfAbsent(storeCtx, s.db, row)
	if err != nil {
		s.reject(ctx, domain.ErrStore)
		s.log.Error("failed to store payment event",
			zap.String("event_id", row.EventID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%w: %v", domain.ErrStore, err)
	}

	outcome := "inserted"
	if !inserted {
		outcome = "duplicate"
	}
	s.metrics.RecordWebhookEvent(ctx, row.Status, outcome)
	s.log.Info("payment event received",
		zap.String("event_id", row.EventID),
		zap.String("status", row.Status),
		zap.String("outcome", outcome),
	)

	return &domain.WebhookResult{
		EventID:  row.EventID,
		Status:   row.Status,
		Inserted: inserted,
	}, nil
}

func (s *Service) reject(ctx context.Context, err error) {
	reason := "unknown"
	switch {
	case errors.Is(err, domain.ErrAuthenticationMissing):
		reason = "missing_signature"
	case errors.Is(err, domain.ErrInvalidSignature):
		reason = "invalid_signature"
	case errors.Is(err, domain.ErrMalformedPayload):
		reason = "malformed_payload"
	case errors.Is(err, domain.ErrStore):
		reason = "store_error"
	}
	s.metrics.RecordWebhookRejected(ctx, reason)
}

type webhookEvent struct {
	id     string
	name   string
	entity domain.PaymentEntity
}

// decodeEvent rejects only bodies that are not a JSON object and events with
// no usable id. The body id wins over the event id header.
func decodeEvent(payload []byte, headers http.Header) (*webhookEvent, error) {
	var raw domain.WebhookEvent
	if !decodeObject(payload, &raw) {
		return nil, domain.ErrMalformedPayload
	}

	id := stringValue(raw.ID)
	if id == "" {
		id = strings.TrimSpace(headers.Get(domain.EventIDHeader))
	}
	if id == "" || len(id) > domain.MaxEventIDLength {
		return nil, domain.ErrMalformedPayload
	}

	event := &webhookEvent{id: id, name: stringValue(raw.Event)}

	var (
		body    domain.WebhookPayload
		payment domain.PaymentWrapper
	)
	if decodeObject(raw.Payload, &body) && decodeObject(body.Payment, &payment) {
		decodeObject(payment.Entity, &event.entity)
	}
	return event, nil
}

// toRecord applies the field fallbacks. Empty strings and values of the wrong
// type count as absent.
func (s *Service) toRecord(event *webhookEvent) *domain.PaymentEvent {
	entity := event.entity

	status := firstNonEmpty(stringValue(entity.Status), event.name, domain.UnknownStatus)
	currency := firstNonEmpty(stringValue(entity.Currency), domain.DefaultCurrency)

	amount, ok := parseAmount(entity.Amount)
	if !ok {
		s.log.Warn("payment amount is not an integer, storing 0",
			zap.String("event_id", event.id),
			zap.ByteString("amount", entity.Amount),
		)
	}

	return &domain.PaymentEvent{
		EventID:   event.id,
		Status:    status,
		Amount:    amount,
		Currency:  currency,
		Email:     nonEmpty(stringValue(entity.Email)),
		Contact:   nonEmpty(stringValue(entity.Contact)),
		CreatedAt: s.clock.Now().UTC(),
	}
}

// parseAmount reads an integer amount in minor units. Absent or null amounts
// are 0 and valid; anything non-integral is 0 and reported.
func parseAmount(raw json.RawMessage) (int64, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0, true
	}
	if v, err := strconv.ParseInt(string(raw), 10, 64); err == nil {
		return v, true
	}
	f, err := strconv.ParseFloat(string(raw), 64)
	if err != nil || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	// float64(math.MaxInt64) is 2^63, one past the largest int64.
	if f >= math.MaxInt64 || f < math.MinInt64 {
		return 0, false
	}
	return int64(f), true
}

func decodeObject(raw json.RawMessage, v any) bool {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '{' {
		return false
	}
	return json.Unmarshal(raw, v) == nil
}

// stringValue returns the trimmed JSON string in raw, or "" for anything else.
func stringValue(raw json.RawMessage) string {
	var v string
	if err := json.Unmarshal(raw, &v); err != nil {
		return ""
	}
	return strings.TrimSpace(v)
}

func nonEmpty(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
