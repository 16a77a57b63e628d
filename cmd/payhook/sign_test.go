package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/smallbiznis/payhook/internal/payment/webhook"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runSign(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append([]string{"sign"}, args...))
	t.Cleanup(func() {
		_ = signCmd.Flags().Set("secret", "")
		_ = signCmd.Flags().Set("file", "")
	})

	err := rootCmd.Execute()
	return strings.TrimSpace(out.String()), err
}

func TestSignFromStdin(t *testing.T) {
	body := `{"id":"evt_1"}`
	got, err := runSign(t, body, "--secret", "whsec_test")
	require.NoError(t, err)
	assert.Equal(t, webhook.Sign("whsec_test", []byte(body)), got)
}

func TestSignFromFileKeepsExactBytes(t *testing.T) {
	body := "{\"id\":\"evt_2\"}\n"
	path := filepath.Join(t.TempDir(), "payload.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	got, err := runSign(t, "", "--secret", "whsec_test", "--file", path)
	require.NoError(t, err)
	assert.Equal(t, webhook.Sign("whsec_test", []byte(body)), got)
	assert.NotEqual(t, webhook.Sign("whsec_test", []byte(strings.TrimSpace(body))), got)
}

func TestSignRequiresSecret(t *testing.T) {
	t.Setenv("RAZORPAY_WEBHOOK_SECRET", "")
	_, err := runSign(t, "{}")
	assert.Error(t, err)
}

func TestSignFallsBackToEnv(t *testing.T) {
	t.Setenv("RAZORPAY_WEBHOOK_SECRET", "whsec_env")
	got, err := runSign(t, "{}")
	require.NoError(t, err)
	assert.Equal(t, webhook.Sign("whsec_env", []byte("{}")), got)
}
