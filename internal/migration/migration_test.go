package migration

import (
	"io/fs"
	"testing"

	"github.com/smallbiznis/payhook/internal/payment/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestEmbeddedMigrationsPresent(t *testing.T) {
	ups, err := fs.Glob(embeddedMigrations, migrationsDir+"/*.up.sql")
	require.NoError(t, err)
	assert.NotEmpty(t, ups)
}

func TestRunAutoMigratesNonPostgres(t *testing.T) {
	conn, err := gorm.Open(sqlite.Open("file:migration_test?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, Run(conn))
	assert.True(t, conn.Migrator().HasTable(&domain.PaymentEvent{}))
	assert.True(t, conn.Migrator().HasIndex(&domain.PaymentEvent{}, "ux_payments_event_id"))

	// Re-running is a no-op.
	require.NoError(t, Run(conn))
}

func TestRunRequiresHandle(t *testing.T) {
	assert.Error(t, Run(nil))
	assert.Error(t, RunMigrations(nil))
}
