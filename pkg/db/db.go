package db

import (
	"context"
	"fmt"
	"time"

	"github.com/smallbiznis/payhook/internal/observability/logger"
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormprometheus "gorm.io/plugin/prometheus"
)

var Module = fx.Module("db",
	fx.Provide(
		ConfigFrom,
		provide,
	),
)

type options struct {
	instrument bool
	gormLogger *logger.GormLogger
}

type Option func(*options)

// WithInstrumentation enables otel spans and Prometheus pool metrics.
func WithInstrumentation() Option {
	return func(o *options) { o.instrument = true }
}

func WithLogger(l *logger.GormLogger) Option {
	return func(o *options) { o.gormLogger = l }
}

// Open connects to the store named by cfg.URL and applies pool settings.
func Open(cfg Config, opts ...Option) (*gorm.DB, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	kind, dialector, err := Dialect(cfg.URL)
	if err != nil {
		return nil, err
	}

	gormCfg := &gorm.Config{TranslateError: true}
	if o.gormLogger != nil {
		gormCfg.Logger = o.gormLogger
	}
	conn, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", kind, err)
	}

	sqlDB, err := conn.DB()
	if err != nil {
		return nil, err
	}
	if cfg.MaxIdleConn > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConn)
	}
	if cfg.MaxOpenConn > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConn)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
	// SQLite allows a single writer.
	if kind == TypeSQLite {
		sqlDB.SetMaxOpenConns(1)
	}

	if o.instrument {
		if err := conn.Use(otelgorm.NewPlugin()); err != nil {
			return nil, fmt.Errorf("register otelgorm: %w", err)
		}
		if err := conn.Use(gormprometheus.New(gormprometheus.Config{
			DBName:          "payhook",
			RefreshInterval: 15,
		})); err != nil {
			return nil, fmt.Errorf("register gorm prometheus: %w", err)
		}
	}

	return conn, nil
}

func provide(lc fx.Lifecycle, cfg Config, log *zap.Logger) (*gorm.DB, error) {
	conn, err := Open(cfg,
		WithInstrumentation(),
		WithLogger(logger.NewGormLogger(logger.DefaultGormLoggerConfig())),
	)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := sqlDB.PingContext(ctx); err != nil {
				return fmt.Errorf("ping database: %w", err)
			}
			log.Info("database connected", zap.String("dialect", conn.Dialector.Name()))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		},
	})
	return conn, nil
}

// WithTimeout bounds a store call. A non-positive timeout leaves ctx untouched.
func WithTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}
