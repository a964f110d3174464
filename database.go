package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/alc6/mig2sqlite/providers"
)

const sqliteMemoryDSN = ":memory:"

// SQLiteManager applies SQLite migrations to an in-memory database.
type SQLiteManager struct {
	dsn string
	db  *sql.DB
}

func NewSQLiteManager() DatabaseManager {
	return &SQLiteManager{dsn: sqliteMemoryDSN}
}

func (s *SQLiteManager) Setup(ctx context.Context) error {
	db, err := openSQLite(ctx, s.dsn)
	if err != nil {
		return err
	}
	s.db = db
	slog.Info("sqlite database ready", "dsn", s.dsn)
	return nil
}

func (s *SQLiteManager) Close(_ context.Context) error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *SQLiteManager) RunMigrations(ctx context.Context, migrations []Migration) error {
	return runMigrations(ctx, s.db, migrations)
}

func (s *SQLiteManager) GetDB() *sql.DB {
	return s.db
}

func (s *SQLiteManager) Dialect() providers.Dialect {
	return providers.DialectSQLite
}

// openSQLite opens dsn on a single connection; each connection to an
// in-memory database sees its own empty database.
func openSQLite(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	return db, nil
}

// SQLiteVerifier executes DDL against a fresh in-memory database.
type SQLiteVerifier struct{}

func NewSQLiteVerifier() DDLVerifier {
	return &SQLiteVerifier{}
}

func (v *SQLiteVerifier) VerifyDDL(ctx context.Context, ddl string) error {
	if strings.TrimSpace(ddl) == "" {
		return nil
	}

	db, err := openSQLite(ctx, sqliteMemoryDSN)
	if err != nil {
		return err
	}
	defer db.Close()

	if _, err := db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("sqlite rejected generated ddl: %w", err)
	}

	var tables int
	if err := db.QueryRowContext(ctx,
		`SELECT count(*) FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%'`).Scan(&tables); err != nil {
		return fmt.Errorf("failed to inspect verified schema: %w", err)
	}
	slog.Info("generated ddl verified", "tables", tables)
	return nil
}
