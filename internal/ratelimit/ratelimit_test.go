package ratelimit

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestCreateOrderLimiterExhaustsBurst(t *testing.T) {
	ctx := context.Background()
	limiter, err := NewCreateOrderLimiter(newTestClient(t), 0.001, 2)
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		res, err := limiter.Allow(ctx, "10.0.0.1")
		require.NoError(t, err)
		assert.True(t, res.Allowed, "request %d", i)
	}

	res, err := limiter.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Positive(t, res.RetryAfter)
	assert.Equal(t, 2, res.Limit)

	other, err := limiter.Allow(ctx, "10.0.0.2")
	require.NoError(t, err)
	assert.True(t, other.Allowed)
}

func TestNilLimiterAllows(t *testing.T) {
	var limiter *CreateOrderLimiter
	assert.False(t, limiter.Enabled())

	res, err := limiter.Allow(context.Background(), "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, res.Allowed)
}

func TestNewCreateOrderLimiterValidates(t *testing.T) {
	_, err := NewCreateOrderLimiter(nil, 1, 1)
	assert.Error(t, err)

	_, err = NewCreateOrderLimiter(newTestClient(t), 0, 1)
	assert.Error(t, err)

	_, err = NewCreateOrderLimiter(newTestClient(t), 1, 0)
	assert.Error(t, err)
}

func TestTokenBucketRejectsBadInput(t *testing.T) {
	bucket := NewTokenBucket(newTestClient(t))

	_, err := bucket.Allow(context.Background(), "", 1, 1)
	assert.Error(t, err)

	var nilBucket *TokenBucket
	res, err := nilBucket.Allow(context.Background(), "k", 1, 1)
	assert.Error(t, err)
	assert.False(t, res.Allowed)
}

func TestDefaultBucketTTL(t *testing.T) {
	assert.Equal(t, 20_000_000_000, int(defaultBucketTTL(1, 10)))
	assert.Equal(t, 1_000_000_000, int(defaultBucketTTL(100, 1)))
}
