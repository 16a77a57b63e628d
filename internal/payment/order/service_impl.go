package order

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/payhook/internal/config"
	"github.com/smallbiznis/payhook/internal/observability/metrics"
	"github.com/smallbiznis/payhook/internal/payment/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const receiptPrefix = "rcpt_"

var currencyPattern = regexp.MustCompile(`^[A-Z]{3}$`)

type Params struct {
	fx.In

	Log     *zap.Logger
	GenID   *snowflake.Node
	Gateway domain.Gateway
	Metrics *metrics.Metrics `optional:"true"`
	Cfg     config.Config
}

type Service struct {
	log     *zap.Logger
	genID   *snowflake.Node
	gateway domain.Gateway
	metrics *metrics.Metrics
	timeout time.Duration
}

func NewService(p Params) domain.OrderService {
	return &Service{
		log:     p.Log.Named("payment.order"),
		genID:   p.GenID,
		gateway: p.Gateway,
		metrics: p.Metrics,
		timeout: p.Cfg.Razorpay.Timeout,
	}
}

func (s *Service) CreateOrder(ctx context.Context, req domain.CreateOrderRequest) (*domain.Order, error) {
	minor, err := toMinorUnits(req.Amount)
	if err != nil {
		return nil, err
	}
	currency, err := normalizeCurrency(req.Currency)
	if err != nil {
		return nil, err
	}
	receipt := receiptPrefix + s.genID.Generate().String()

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	order, err := s.gateway.CreateOrder(ctx, minor, currency, receipt)
	s.metrics.RecordGatewayCall(ctx, "create_order", time.Since(start), err)
	if err != nil {
		s.log.Error("gateway rejected order",
			zap.Int64("amount", minor),
			zap.String("currency", currency),
			zap.String("receipt", receipt),
			zap.Error(err),
		)
		return nil, &domain.GatewayError{Err: err}
	}

	s.metrics.RecordOrderCreated(ctx, currency)
	s.log.Info("order created",
		zap.String("order_id", order.ID),
		zap.Int64("amount", minor),
		zap.String("currency", currency),
		zap.String("receipt", receipt),
	)
	return order, nil
}

// toMinorUnits accepts a positive JSON number in major units and returns the
// amount in minor units, rounded half away from zero.
func toMinorUnits(raw json.RawMessage) (int64, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] == '"' {
		return 0, domain.ErrInvalidAmount
	}

	var amount float64
	if err := json.Unmarshal(raw, &amount); err != nil {
		return 0, domain.ErrInvalidAmount
	}
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount <= 0 {
		return 0, domain.ErrInvalidAmount
	}

	minor := math.Round(amount * 100)
	if minor < 1 || minor >= math.MaxInt64 {
		return 0, domain.ErrInvalidAmount
	}
	return int64(minor), nil
}

func normalizeCurrency(currency string) (string, error) {
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if currency == "" {
		return domain.DefaultCurrency, nil
	}
	if !currencyPattern.MatchString(currency) {
		return "", domain.ErrInvalidCurrency
	}
	return currency, nil
}
