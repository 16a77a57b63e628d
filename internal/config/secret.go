package config

import (
	"context"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// WebhookSecret holds the webhook HMAC secret. It can be swapped at runtime when
// the config file changes, so readers must call Get per request.
type WebhookSecret struct {
	current atomic.Pointer[string]
}

func NewWebhookSecret(cfg Config) *WebhookSecret {
	s := &WebhookSecret{}
	s.Set(cfg.Razorpay.WebhookSecret)
	return s
}

func (s *WebhookSecret) Get() string {
	if s == nil {
		return ""
	}
	if v := s.current.Load(); v != nil {
		return *v
	}
	return ""
}

func (s *WebhookSecret) Set(secret string) {
	if s == nil {
		return
	}
	secret = strings.TrimSpace(secret)
	s.current.Store(&secret)
}

// WatchWebhookSecret reloads the webhook secret whenever the config file changes.
// It is a no-op without PAYHOOK_CONFIG_FILE.
func WatchWebhookSecret(lc fx.Lifecycle, cfg Config, secret *WebhookSecret, log *zap.Logger) {
	if strings.TrimSpace(cfg.ConfigFile) == "" {
		return
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			v := newViper()
			v.SetConfigFile(cfg.ConfigFile)
			if err := v.ReadInConfig(); err != nil {
				return err
			}

			v.OnConfigChange(func(e fsnotify.Event) {
				if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
					return
				}
				next := strings.TrimSpace(v.GetString("razorpay.webhook_secret"))
				if next == "" {
					log.Warn("config reload left webhook secret empty, keeping previous value",
						zap.String("file", e.Name),
					)
					return
				}
				if next == secret.Get() {
					return
				}
				secret.Set(next)
				log.Info("webhook secret reloaded", zap.String("file", e.Name))
			})
			v.WatchConfig()
			return nil
		},
	})
}
