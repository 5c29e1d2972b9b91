// Package dbtest opens throwaway in-memory databases for tests.
package dbtest

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"mail-assistant-go/internal/config"
	"mail-assistant-go/internal/db"
)

// New returns a migrated in-memory sqlite database private to the calling test
func New(t testing.TB) *gorm.DB {
	t.Helper()

	conn, err := db.Init(config.DatabaseConfig{
		Driver: config.DriverSQLite,
		Path:   "file:" + uuid.NewString() + "?mode=memory&cache=shared",
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		if err := db.Close(conn); err != nil {
			t.Logf("db.Close failed: %v", err)
		}
	})

	return conn
}
