package payment

import (
	"github.com/smallbiznis/payhook/internal/payment/gateway/razorpay"
	"github.com/smallbiznis/payhook/internal/payment/order"
	"github.com/smallbiznis/payhook/internal/payment/repository"
	"github.com/smallbiznis/payhook/internal/payment/webhook"
	"go.uber.org/fx"
)

var Module = fx.Module("payment.service",
	fx.Provide(repository.Provide),
	fx.Provide(razorpay.Provide),
	fx.Provide(order.NewService),
	fx.Provide(webhook.NewService),
)
