package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv(configFileEnv, "")
	t.Setenv("PORT", "")
	t.Setenv("DATABASE_URL", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "5000", cfg.Port)
	assert.Equal(t, ":5000", cfg.Addr())
	assert.Equal(t, DefaultDatabaseURL, cfg.DatabaseURL)
	assert.Equal(t, DefaultRazorpayAPIURL, cfg.Razorpay.APIBaseURL)
	assert.Equal(t, 12*time.Second, cfg.Razorpay.Timeout)
	assert.Equal(t, 5*time.Second, cfg.StoreTimeout)
	assert.False(t, cfg.RateLimitEnabled())
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv(configFileEnv, "")
	t.Setenv("PORT", "8081")
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/payments")
	t.Setenv("RAZORPAY_KEY_ID", "rzp_test_key")
	t.Setenv("RAZORPAY_KEY_SECRET", "rzp_secret")
	t.Setenv("RAZORPAY_WEBHOOK_SECRET", " whsec ")
	t.Setenv("GATEWAY_TIMEOUT", "3s")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "collector:4317")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8081", cfg.Addr())
	assert.Equal(t, "postgres://u:p@db:5432/payments", cfg.DatabaseURL)
	assert.Equal(t, "rzp_test_key", cfg.Razorpay.KeyID)
	assert.Equal(t, "rzp_secret", cfg.Razorpay.KeySecret)
	assert.Equal(t, "whsec", cfg.Razorpay.WebhookSecret)
	assert.Equal(t, 3*time.Second, cfg.Razorpay.Timeout)
	assert.Equal(t, "collector:4317", cfg.OtelExporterEndpoint)
	assert.True(t, cfg.RateLimitEnabled())
}

func TestLoadConfigFileUnderEnvironment(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "payhook.yml")
	content := []byte("port: \"7000\"\nrazorpay:\n  webhook_secret: from_file\n  key_id: file_key\n")
	require.NoError(t, os.WriteFile(file, content, 0o600))

	t.Setenv(configFileEnv, file)
	t.Setenv("PORT", "")
	t.Setenv("RAZORPAY_WEBHOOK_SECRET", "")
	t.Setenv("RAZORPAY_KEY_ID", "env_key")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, file, cfg.ConfigFile)
	assert.Equal(t, "7000", cfg.Port)
	assert.Equal(t, "from_file", cfg.Razorpay.WebhookSecret)
	assert.Equal(t, "env_key", cfg.Razorpay.KeyID)
}

func TestLoadMissingConfigFile(t *testing.T) {
	t.Setenv(configFileEnv, filepath.Join(t.TempDir(), "missing.yml"))

	_, err := Load()
	assert.Error(t, err)
}

func TestWebhookSecretSwap(t *testing.T) {
	secret := NewWebhookSecret(Config{Razorpay: RazorpayConfig{WebhookSecret: "first"}})
	assert.Equal(t, "first", secret.Get())

	secret.Set("  second ")
	assert.Equal(t, "second", secret.Get())

	var nilSecret *WebhookSecret
	assert.Equal(t, "", nilSecret.Get())
}
