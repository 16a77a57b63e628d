package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strings"

	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/payhook/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const keyCreateOrderClient = "payhook:create_order:client:%s"

// CreateOrderLimiter throttles order creation per client. A nil limiter allows
// everything.
type CreateOrderLimiter struct {
	bucket *TokenBucket
	rate   float64
	burst  int
}

func NewCreateOrderLimiter(client *redis.Client, rate float64, burst int) (*CreateOrderLimiter, error) {
	if client == nil {
		return nil, errors.New("rate limit redis client is required")
	}
	if rate <= 0 || burst <= 0 {
		return nil, errors.New("create order rate limit must be positive")
	}
	return &CreateOrderLimiter{
		bucket: NewTokenBucket(client),
		rate:   rate,
		burst:  burst,
	}, nil
}

// Provide builds the limiter from config. It returns nil when REDIS_ADDR is unset.
func Provide(lc fx.Lifecycle, cfg config.Config, log *zap.Logger) (*CreateOrderLimiter, error) {
	if !cfg.RateLimitEnabled() {
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     strings.TrimSpace(cfg.Redis.Addr),
		Password: strings.TrimSpace(cfg.Redis.Password),
		DB:       cfg.Redis.DB,
	})

	limiter, err := NewCreateOrderLimiter(client, cfg.CreateOrderRate, cfg.CreateOrderBurst)
	if err != nil {
		_ = client.Close()
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := client.Ping(ctx).Err(); err != nil {
				log.Warn("rate limit redis unreachable", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
			}
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return client.Close()
		},
	})
	return limiter, nil
}

func (l *CreateOrderLimiter) Enabled() bool {
	return l != nil && l.bucket != nil
}

func (l *CreateOrderLimiter) Allow(ctx context.Context, clientKey string) (*RateLimitResult, error) {
	if !l.Enabled() {
		return &RateLimitResult{Allowed: true}, nil
	}
	clientKey = strings.TrimSpace(clientKey)
	if clientKey == "" {
		clientKey = "unknown"
	}
	return l.bucket.Allow(ctx, fmt.Sprintf(keyCreateOrderClient, clientKey), l.rate, l.burst)
}
