package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alc6/mig2sqlite/providers"
)

func TestSQLiteManagerSetup(t *testing.T) {
	ctx := context.Background()

	t.Run("successful_setup", func(t *testing.T) {
		manager := NewSQLiteManager()
		require.NoError(t, manager.Setup(ctx))
		defer manager.Close(ctx)

		db := manager.GetDB()
		require.NotNil(t, db)
		assert.NoError(t, db.PingContext(ctx))
		assert.Equal(t, providers.DialectSQLite, manager.Dialect())

		var foreignKeys int
		require.NoError(t, db.QueryRowContext(ctx, "PRAGMA foreign_keys").Scan(&foreignKeys))
		assert.Equal(t, 1, foreignKeys)
	})
}

func TestSQLiteManagerRunMigrations(t *testing.T) {
	ctx := context.Background()

	manager := NewSQLiteManager()
	require.NoError(t, manager.Setup(ctx))
	defer manager.Close(ctx)

	t.Run("successful_migration", func(t *testing.T) {
		testDir := t.TempDir()
		testFile := filepath.Join(testDir, "001_test.up.sql")
		require.NoError(t, os.WriteFile(testFile, []byte(`
			CREATE TABLE test_table (id INTEGER PRIMARY KEY, name TEXT);
			CREATE INDEX idx_test_table_name ON test_table (name);
		`), 0644))

		migrations := []Migration{{Name: "001_test", UpFile: testFile}}
		require.NoError(t, manager.RunMigrations(ctx, migrations))

		var count int
		require.NoError(t, manager.GetDB().QueryRowContext(ctx,
			`SELECT count(*) FROM sqlite_master WHERE name IN ('test_table', 'idx_test_table_name')`).Scan(&count))
		assert.Equal(t, 2, count)
	})

	t.Run("migration_file_not_found", func(t *testing.T) {
		migrations := []Migration{{Name: "nonexistent", UpFile: "/nonexistent/file.sql"}}

		err := manager.RunMigrations(ctx, migrations)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to read migration file")
	})

	t.Run("invalid_sql", func(t *testing.T) {
		testFile := filepath.Join(t.TempDir(), "002_bad.up.sql")
		require.NoError(t, os.WriteFile(testFile, []byte("CREATE TABEL broken (id INTEGER);"), 0644))

		err := manager.RunMigrations(ctx, []Migration{{Name: "002_bad", UpFile: testFile}})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to execute migration 002_bad")
	})
}

func TestSQLiteManagerClose(t *testing.T) {
	ctx := context.Background()

	t.Run("close_valid_database", func(t *testing.T) {
		manager := NewSQLiteManager()
		require.NoError(t, manager.Setup(ctx))

		assert.NoError(t, manager.Close(ctx))
		assert.Nil(t, manager.GetDB())
		assert.NoError(t, manager.Close(ctx), "second close is a no-op")
	})

	t.Run("close_without_setup", func(t *testing.T) {
		manager := NewSQLiteManager()
		assert.NoError(t, manager.Close(ctx))
	})

	t.Run("migrations_without_setup", func(t *testing.T) {
		manager := NewSQLiteManager()
		err := manager.RunMigrations(ctx, []Migration{{Name: "001", UpFile: "001.up.sql"}})
		assert.ErrorIs(t, err, providers.ErrNoDatabase)
	})
}

func TestSQLiteVerifier(t *testing.T) {
	ctx := context.Background()
	verifier := NewSQLiteVerifier()

	t.Run("accepts_generated_ddl", func(t *testing.T) {
		ddl := "CREATE TABLE \"order\" (\n" +
			"    id INTEGER,\n" +
			"    total DECIMAL(10, 2) NOT NULL,\n" +
			"    code NVARCHAR(20) COLLATE NOCASE,\n" +
			"    PRIMARY KEY (id),\n" +
			"    UNIQUE (code) ON CONFLICT REPLACE\n" +
			");\n" +
			"\n" +
			"CREATE INDEX idx_order_total ON \"order\" (total);\n"
		assert.NoError(t, verifier.VerifyDDL(ctx, ddl))
	})

	t.Run("empty_ddl", func(t *testing.T) {
		assert.NoError(t, verifier.VerifyDDL(ctx, ""))
		assert.NoError(t, verifier.VerifyDDL(ctx, "\n\n"))
	})

	t.Run("rejects_invalid_ddl", func(t *testing.T) {
		err := verifier.VerifyDDL(ctx, "CREATE TABLE order (id INTEGER);")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sqlite rejected generated ddl")
	})

	t.Run("runs_in_isolation", func(t *testing.T) {
		ddl := "CREATE TABLE users (id INTEGER);\n"
		require.NoError(t, verifier.VerifyDDL(ctx, ddl))
		assert.NoError(t, verifier.VerifyDDL(ctx, ddl), "each verification starts from an empty database")
	})
}
