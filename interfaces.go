package main

import (
	"context"
	"database/sql"

	"github.com/alc6/mig2sqlite/providers"
)

// DatabaseManager handles database lifecycle and operations
type DatabaseManager interface {
	// Setup creates and initializes the database connection
	Setup(ctx context.Context) error
	// Close cleans up database resources
	Close(ctx context.Context) error
	// RunMigrations executes the provided migrations
	RunMigrations(ctx context.Context, migrations []Migration) error
	// GetDB returns the underlying database connection
	GetDB() *sql.DB
	// Dialect tells which catalog the database exposes
	Dialect() providers.Dialect
}

// SchemaExtractor handles extracting schema information from a database
type SchemaExtractor interface {
	// ExtractSchema retrieves schema information from the database
	ExtractSchema(ctx context.Context, db *sql.DB, dialect providers.Dialect) ([]providers.Table, error)
	// FormatSchema formats schema information as human-readable text
	FormatSchema(tables []providers.Table) string
	// FormatSchemaAsSQL formats schema information as SQLite CREATE statements
	FormatSchemaAsSQL(tables []providers.Table) (string, error)
}

// MigrationReader handles reading migration files
type MigrationReader interface {
	// DiscoverMigrations finds all migration files in the given directory
	DiscoverMigrations(dir string) ([]Migration, error)
}

// DDLVerifier checks that generated DDL is accepted by SQLite
type DDLVerifier interface {
	VerifyDDL(ctx context.Context, ddl string) error
}
