package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMigrations(t *testing.T) {
	tests := []struct {
		name     string
		files    map[string]string
		expected []string
		withDown []string
	}{
		{
			name: "sequential_naming",
			files: map[string]string{
				"001_create_users.up.sql":   "CREATE TABLE users (id INTEGER PRIMARY KEY);",
				"001_create_users.down.sql": "DROP TABLE users;",
				"002_add_posts.up.sql":      "CREATE TABLE posts (id INTEGER PRIMARY KEY, user_id INTEGER);",
				"003_no_down.up.sql":        "CREATE INDEX idx_users_id ON users (id);",
			},
			expected: []string{"001_create_users", "002_add_posts", "003_no_down"},
			withDown: []string{"001_create_users"},
		},
		{
			name: "timestamp_naming",
			files: map[string]string{
				"20240220143000_add_inventory.up.sql":     "ALTER TABLE products ADD COLUMN inventory INTEGER;",
				"20240115120000_create_products.up.sql":   "CREATE TABLE products (id INTEGER PRIMARY KEY);",
				"20240115120000_create_products.down.sql": "DROP TABLE products;",
			},
			expected: []string{"20240115120000_create_products", "20240220143000_add_inventory"},
			withDown: []string{"20240115120000_create_products"},
		},
		{
			name: "non_sql_files_ignored",
			files: map[string]string{
				"readme.md":        "# README",
				"001_test.txt":     "not a migration",
				"002_valid.up.sql": "CREATE TABLE test (id INTEGER);",
				"002_valid.sql":    "not paired",
			},
			expected: []string{"002_valid"},
		},
		{
			name:     "empty_directory",
			files:    map[string]string{},
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			require.NoError(t, writeMigrations(dir, tt.files))

			migrations, err := ParseMigrations(dir)
			require.NoError(t, err)

			var names, withDown []string
			for _, m := range migrations {
				names = append(names, m.Name)
				assert.Equal(t, filepath.Join(dir, m.Name+".up.sql"), m.UpFile)
				if m.DownFile != "" {
					withDown = append(withDown, m.Name)
				}
			}
			assert.Equal(t, tt.expected, names)
			assert.Equal(t, tt.withDown, withDown)
		})
	}
}

func TestParseMigrationsNonExistentDirectory(t *testing.T) {
	_, err := ParseMigrations("/non/existent/directory")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to walk migration directory")
}

func TestParseMigrationsPermissionError(t *testing.T) {
	if os.Getuid() == 0 {
		t.Skip("skipping permission test when running as root")
	}

	tempDir := t.TempDir()
	defer func() {
		os.Chmod(tempDir, 0755)
	}()

	if err := os.Chmod(tempDir, 0000); err != nil {
		t.Skip("skipping test - cannot change directory permissions")
	}

	_, err := ParseMigrations(tempDir)
	assert.Error(t, err)
}

func TestScanMigrationsOrphanDownFiles(t *testing.T) {
	tempDir := t.TempDir()
	nested := filepath.Join(tempDir, "archive")
	require.NoError(t, os.Mkdir(nested, 0755))

	require.NoError(t, writeMigrations(tempDir, map[string]string{
		"001_users.up.sql":     "CREATE TABLE users (id INTEGER PRIMARY KEY);",
		"001_users.down.sql":   "DROP TABLE users;",
		"002_dropped.down.sql": "DROP TABLE dropped;",
	}))
	require.NoError(t, writeMigrations(nested, map[string]string{
		"000_legacy.down.sql": "DROP TABLE legacy;",
	}))

	scan, err := ScanMigrations(tempDir)
	require.NoError(t, err)

	require.Len(t, scan.Migrations, 1)
	assert.Equal(t, "001_users", scan.Migrations[0].Name)
	assert.Equal(t, filepath.Join(tempDir, "001_users.down.sql"), scan.Migrations[0].DownFile)
	assert.Equal(t, []string{
		filepath.Join(tempDir, "002_dropped.down.sql"),
		filepath.Join(nested, "000_legacy.down.sql"),
	}, scan.OrphanDownFiles)
}

func TestScanMigrationsNestedDirectories(t *testing.T) {
	tempDir := t.TempDir()
	nested := filepath.Join(tempDir, "2024")
	require.NoError(t, os.Mkdir(nested, 0755))

	require.NoError(t, writeMigrations(tempDir, map[string]string{
		"002_posts.up.sql": "CREATE TABLE posts (id INTEGER);",
	}))
	require.NoError(t, writeMigrations(nested, map[string]string{
		"001_users.up.sql":   "CREATE TABLE users (id INTEGER);",
		"001_users.down.sql": "DROP TABLE users;",
	}))

	scan, err := ScanMigrations(tempDir)
	require.NoError(t, err)

	require.Len(t, scan.Migrations, 2)
	assert.Equal(t, "001_users", scan.Migrations[0].Name)
	assert.Equal(t, filepath.Join(nested, "001_users.up.sql"), scan.Migrations[0].UpFile)
	assert.Equal(t, "002_posts", scan.Migrations[1].Name)
	assert.Empty(t, scan.OrphanDownFiles)
}
