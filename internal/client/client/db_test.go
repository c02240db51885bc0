package client

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func tableExists(t *testing.T, db *sql.DB, name string) bool {
	t.Helper()
	var n int
	err := db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?`, name).Scan(&n)
	require.NoError(t, err)
	return n > 0
}

func TestInitDatabaseAppliesMigrations(t *testing.T) {
	ctx := context.Background()
	dsn := filepath.Join(t.TempDir(), "app.db")

	repos, err := InitDatabase(ctx, dsn)
	require.NoError(t, err)
	defer repos.DB.Close()

	require.NoError(t, repos.DB.PingContext(ctx))
	require.True(t, tableExists(t, repos.DB, "goose_db_version"))
	require.True(t, tableExists(t, repos.DB, "settings"))
}

func TestInitDatabaseWiresSettingsRepository(t *testing.T) {
	ctx := context.Background()
	dsn := filepath.Join(t.TempDir(), "app.db")

	repos, err := InitDatabase(ctx, dsn)
	require.NoError(t, err)
	defer repos.DB.Close()

	require.NoError(t, repos.Settings.SetBool(ctx, "verification_acknowledged:u1", true))
	v, err := repos.Settings.GetBool(ctx, "verification_acknowledged:u1")
	require.NoError(t, err)
	require.True(t, v)
}

func TestRunMigrationsIsIdempotent(t *testing.T) {
	ctx := context.Background()
	dsn := filepath.Join(t.TempDir(), "app.db")

	db, err := sql.Open("sqlite", dsn)
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, RunMigrations(ctx, db))
	require.NoError(t, RunMigrations(ctx, db))
	require.True(t, tableExists(t, db, "goose_db_version"))
}
