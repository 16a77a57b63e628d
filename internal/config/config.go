package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string
	Port        string

	// ConfigFile is an optional YAML file layered under the environment.
	ConfigFile string

	DatabaseURL       string
	DBMaxIdleConn     int
	DBMaxOpenConn     int
	DBConnMaxLifetime time.Duration
	StoreTimeout      time.Duration

	Razorpay RazorpayConfig
	Redis    RedisConfig

	CreateOrderRate  float64
	CreateOrderBurst int

	LogLevel  string
	LogFormat string

	OtelEnabled          bool
	OtelExporterEndpoint string
	OtelExporterProtocol string
	OtelSamplingRatio    float64
}

type RazorpayConfig struct {
	KeyID         string
	KeySecret     string
	WebhookSecret string
	APIBaseURL    string
	Timeout       time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// RateLimitEnabled reports whether create-order requests are throttled.
func (c Config) RateLimitEnabled() bool {
	return strings.TrimSpace(c.Redis.Addr) != ""
}

func (c Config) Addr() string {
	port := strings.TrimSpace(c.Port)
	if port == "" {
		port = DefaultPort
	}
	return ":" + strings.TrimPrefix(port, ":")
}

const (
	DefaultPort           = "5000"
	DefaultDatabaseURL    = "sqlite://payhook.db"
	DefaultRazorpayAPIURL = "https://api.razorpay.com"
	configFileEnv         = "PAYHOOK_CONFIG_FILE"
)

// Load loads configuration from the environment, a .env file and the optional
// YAML file named by PAYHOOK_CONFIG_FILE. Environment values win over the file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := newViper()
	file := strings.TrimSpace(os.Getenv(configFileEnv))
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config file %s: %w", file, err)
		}
	}

	cfg := fromViper(v)
	cfg.ConfigFile = file
	return cfg, nil
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("app.service", "payhook")
	v.SetDefault("app.version", "0.1.0")
	v.SetDefault("environment", "development")
	v.SetDefault("port", DefaultPort)

	v.SetDefault("database.url", DefaultDatabaseURL)
	v.SetDefault("database.max_idle_conn", 5)
	v.SetDefault("database.max_open_conn", 20)
	v.SetDefault("database.conn_max_lifetime", 30*time.Minute)
	v.SetDefault("store.timeout", 5*time.Second)

	v.SetDefault("razorpay.api_base_url", DefaultRazorpayAPIURL)
	v.SetDefault("gateway.timeout", 12*time.Second)

	v.SetDefault("redis.db", 0)
	v.SetDefault("create_order.rate", 5.0)
	v.SetDefault("create_order.burst", 10)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("otel.enabled", false)
	v.SetDefault("otel.endpoint", "localhost:4317")
	v.SetDefault("otel.protocol", "grpc")
	v.SetDefault("otel.sampling_ratio", 0.1)

	// OTel variables do not follow the dotted key scheme.
	_ = v.BindEnv("otel.endpoint", "OTEL_EXPORTER_OTLP_ENDPOINT")
	_ = v.BindEnv("otel.protocol", "OTEL_EXPORTER_OTLP_PROTOCOL")
	return v
}

func fromViper(v *viper.Viper) Config {
	return Config{
		AppName:     strings.TrimSpace(v.GetString("app.service")),
		AppVersion:  strings.TrimSpace(v.GetString("app.version")),
		Environment: strings.TrimSpace(v.GetString("environment")),
		Port:        strings.TrimSpace(v.GetString("port")),

		DatabaseURL:       strings.TrimSpace(v.GetString("database.url")),
		DBMaxIdleConn:     v.GetInt("database.max_idle_conn"),
		DBMaxOpenConn:     v.GetInt("database.max_open_conn"),
		DBConnMaxLifetime: v.GetDuration("database.conn_max_lifetime"),
		StoreTimeout:      v.GetDuration("store.timeout"),

		Razorpay: RazorpayConfig{
			KeyID:         strings.TrimSpace(v.GetString("razorpay.key_id")),
			KeySecret:     strings.TrimSpace(v.GetString("razorpay.key_secret")),
			WebhookSecret: strings.TrimSpace(v.GetString("razorpay.webhook_secret")),
			APIBaseURL:    strings.TrimRight(strings.TrimSpace(v.GetString("razorpay.api_base_url")), "/"),
			Timeout:       v.GetDuration("gateway.timeout"),
		},
		Redis: RedisConfig{
			Addr:     strings.TrimSpace(v.GetString("redis.addr")),
			Password: strings.TrimSpace(v.GetString("redis.password")),
			DB:       v.GetInt("redis.db"),
		},

		CreateOrderRate:  v.GetFloat64("create_order.rate"),
		CreateOrderBurst: v.GetInt("create_order.burst"),

		LogLevel:  strings.ToLower(strings.TrimSpace(v.GetString("log.level"))),
		LogFormat: strings.ToLower(strings.TrimSpace(v.GetString("log.format"))),

		OtelEnabled:          v.GetBool("otel.enabled"),
		OtelExporterEndpoint: strings.TrimSpace(v.GetString("otel.endpoint")),
		OtelExporterProtocol: strings.ToLower(strings.TrimSpace(v.GetString("otel.protocol"))),
		OtelSamplingRatio:    v.GetFloat64("otel.sampling_ratio"),
	}
}
