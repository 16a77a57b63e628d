package db

import (
	"time"

	"github.com/smallbiznis/payhook/internal/config"
)

type Config struct {
	URL             string
	MaxIdleConn     int
	MaxOpenConn     int
	ConnMaxLifetime time.Duration
	// Timeout bounds every repository call made through WithTimeout.
	Timeout time.Duration
}

func ConfigFrom(cfg config.Config) Config {
	return Config{
		URL:             cfg.DatabaseURL,
		MaxIdleConn:     cfg.DBMaxIdleConn,
		MaxOpenConn:     cfg.DBMaxOpenConn,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
		Timeout:         cfg.StoreTimeout,
	}
}
