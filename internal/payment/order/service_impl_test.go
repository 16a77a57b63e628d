package order

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/payhook/internal/config"
	"github.com/smallbiznis/payhook/internal/payment/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type fakeGateway struct {
	calls    int
	amount   int64
	currency string
	receipt  string
	deadline bool
	err      error
}

func (f *fakeGateway) CreateOrder(ctx context.Context, amount int64, currency string, receipt string) (*domain.Order, error) {
	f.calls++
	f.amount = amount
	f.currency = currency
	f.receipt = receipt
	_, f.deadline = ctx.Deadline()
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Order{
		ID:        "order_test",
		Entity:    "order",
		Amount:    amount,
		AmountDue: amount,
		Currency:  currency,
		Receipt:   receipt,
		Status:    "created",
	}, nil
}

func newTestService(t *testing.T, gw domain.Gateway) domain.OrderService {
	t.Helper()
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	return NewService(Params{
		Log:     zaptest.NewLogger(t),
		GenID:   node,
		Gateway: gw,
		Cfg:     config.Config{Razorpay: config.RazorpayConfig{Timeout: time.Second}},
	})
}

func TestCreateOrderConvertsToMinorUnits(t *testing.T) {
	gw := &fakeGateway{}
	svc := newTestService(t, gw)

	order, err := svc.CreateOrder(context.Background(), domain.CreateOrderRequest{Amount: json.RawMessage(`100`)})
	require.NoError(t, err)

	assert.Equal(t, 1, gw.calls)
	assert.EqualValues(t, 10000, gw.amount)
	assert.Equal(t, "INR", gw.currency)
	assert.True(t, strings.HasPrefix(gw.receipt, "rcpt_"))
	assert.True(t, gw.deadline)
	assert.Equal(t, "order_test", order.ID)
	assert.Equal(t, gw.receipt, order.Receipt)
}

func TestCreateOrderReceiptsAreUnique(t *testing.T) {
	gw := &fakeGateway{}
	svc := newTestService(t, gw)

	_, err := svc.CreateOrder(context.Background(), domain.CreateOrderRequest{Amount: json.RawMessage(`1`)})
	require.NoError(t, err)
	first := gw.receipt

	_, err = svc.CreateOrder(context.Background(), domain.CreateOrderRequest{Amount: json.RawMessage(`1`)})
	require.NoError(t, err)
	assert.NotEqual(t, first, gw.receipt)
}

func TestCreateOrderRejectsInvalidAmounts(t *testing.T) {
	for _, raw := range []string{``, `0`, `-5`, `"abc"`, `"100"`, `null`, `true`, `{}`, `0.001`, `1e300`} {
		t.Run(raw, func(t *testing.T) {
			gw := &fakeGateway{}
			svc := newTestService(t, gw)

			_, err := svc.CreateOrder(context.Background(), domain.CreateOrderRequest{Amount: json.RawMessage(raw)})
			assert.ErrorIs(t, err, domain.ErrInvalidAmount)
			assert.Zero(t, gw.calls)
		})
	}
}

func TestCreateOrderCurrency(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr error
	}{
		{in: "", want: "INR"},
		{in: "usd", want: "USD"},
		{in: " EUR ", want: "EUR"},
		{in: "RUPEES", wantErr: domain.ErrInvalidCurrency},
		{in: "U$D", wantErr: domain.ErrInvalidCurrency},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			gw := &fakeGateway{}
			svc := newTestService(t, gw)

			_, err := svc.CreateOrder(context.Background(), domain.CreateOrderRequest{
				Amount:   json.RawMessage(`10`),
				Currency: tt.in,
			})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Zero(t, gw.calls)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, gw.currency)
		})
	}
}

func TestCreateOrderWrapsGatewayFailure(t *testing.T) {
	gw := &fakeGateway{err: errors.New("Authentication failed")}
	svc := newTestService(t, gw)

	_, err := svc.CreateOrder(context.Background(), domain.CreateOrderRequest{Amount: json.RawMessage(`5`)})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrGateway)
	assert.Equal(t, "Authentication failed", err.Error())
}

func TestToMinorUnitsRounding(t *testing.T) {
	tests := []struct {
		raw  string
		want int64
	}{
		{raw: `1`, want: 100},
		{raw: `10.5`, want: 1050},
		{raw: `0.01`, want: 1},
		{raw: `0.005`, want: 1},
		{raw: `19.999`, want: 2000},
		{raw: `1.234`, want: 123},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := toMinorUnits(json.RawMessage(tt.raw))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
