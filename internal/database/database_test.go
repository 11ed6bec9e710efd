package database

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ocaso/ocaso-api/internal/logger"
)

func TestOpenSQLiteAndMigrate(t *testing.T) {
	ctx := context.Background()
	db, err := OpenSQLite(ctx, filepath.Join(t.TempDir(), "test.db"), logger.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	assert.Equal(t, SQLite, db.Dialect)
	require.NoError(t, db.Migrate(ctx))
	// Second run must be a no-op.
	require.NoError(t, db.Migrate(ctx))

	for _, table := range []string{"categories", "subcategories", "listings", "listing_categories", "bids"} {
		var name string
		err := db.QueryRowContext(ctx, "SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		assert.NoError(t, err, "table %s", table)
	}

	var fk int
	require.NoError(t, db.QueryRowContext(ctx, "PRAGMA foreign_keys").Scan(&fk))
	assert.Equal(t, 1, fk)
}

func TestSplitStatements(t *testing.T) {
	got := splitStatements("CREATE TABLE a (x INT);\n\n  CREATE INDEX i ON a (x);\n")
	assert.Equal(t, []string{"CREATE TABLE a (x INT)", "CREATE INDEX i ON a (x)"}, got)
}

func TestSchemasEmbedded(t *testing.T) {
	for _, d := range []Dialect{MySQL, SQLite} {
		raw, err := schemaFS.ReadFile("schema/" + string(d) + ".sql")
		require.NoError(t, err)
		assert.Contains(t, string(raw), "listing_categories")
	}
}

func TestSQLiteLowerFoldsUnicode(t *testing.T) {
	ctx := context.Background()
	db, err := OpenSQLite(ctx, filepath.Join(t.TempDir(), "test.db"), logger.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	var got string
	require.NoError(t, db.QueryRowContext(ctx, "SELECT LOWER(?)", "ÉCRAN Liège ÑANDÚ").Scan(&got))
	assert.Equal(t, "écran liège ñandú", got)

	var null sql.NullString
	require.NoError(t, db.QueryRowContext(ctx, "SELECT LOWER(NULL)").Scan(&null))
	assert.False(t, null.Valid)
}
