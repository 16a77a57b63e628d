package repository_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/smallbiznis/payhook/internal/payment/domain"
	"github.com/smallbiznis/payhook/internal/payment/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:repo_%d?mode=memory&cache=shared", time.Now().UnixNano())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&domain.PaymentEvent{}))

	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return conn
}

func strPtr(v string) *string { return &v }

func TestInsertIfAbsentIsIdempotent(t *testing.T) {
	ctx := context.Background()
	conn := setupTestDB(t)
	repo := repository.Provide()

	first := &domain.PaymentEvent{
		EventID:   "evt_1",
		Status:    "captured",
		Amount:    50000,
		Currency:  "INR",
		Email:     strPtr("a@b.com"),
		CreatedAt: time.Now().UTC(),
	}
	inserted, err := repo.InsertIfAbsent(ctx, conn, first)
	require.NoError(t, err)
	assert.True(t, inserted)

	second := &domain.PaymentEvent{
		EventID:   "evt_1",
		Status:    "failed",
		Amount:    1,
		Currency:  "USD",
		CreatedAt: time.Now().UTC(),
	}
	inserted, err = repo.InsertIfAbsent(ctx, conn, second)
	require.NoError(t, err)
	assert.False(t, inserted)

	n, err := repo.Count(ctx, conn)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	stored, err := repo.FindByEventID(ctx, conn, "evt_1")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "captured", stored.Status)
	assert.EqualValues(t, 50000, stored.Amount)
	require.NotNil(t, stored.Email)
	assert.Equal(t, "a@b.com", *stored.Email)
	assert.Nil(t, stored.Contact)
}

func TestInsertIfAbsentConcurrentDuplicates(t *testing.T) {
	ctx := context.Background()
	conn := setupTestDB(t)
	repo := repository.Provide()

	const workers = 8
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		inserted int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := repo.InsertIfAbsent(ctx, conn, &domain.PaymentEvent{
				EventID:   "evt_race",
				Status:    "captured",
				Currency:  "INR",
				CreatedAt: time.Now().UTC(),
			})
			assert.NoError(t, err)
			if ok {
				mu.Lock()
				inserted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, inserted)
	n, err := repo.Count(ctx, conn)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestFindByEventIDMissing(t *testing.T) {
	conn := setupTestDB(t)
	stored, err := repository.Provide().FindByEventID(context.Background(), conn, "evt_missing")
	require.NoError(t, err)
	assert.Nil(t, stored)
}
