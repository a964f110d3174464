package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/alc6/mig2sqlite/providers"
)

// MockDatabaseManager is a mock implementation of DatabaseManager for testing
type MockDatabaseManager struct {
	SetupFunc         func(ctx context.Context) error
	CloseFunc         func(ctx context.Context) error
	RunMigrationsFunc func(ctx context.Context, migrations []Migration) error
	GetDBFunc         func() *sql.DB
	DialectValue      providers.Dialect

	// Track calls for verification
	SetupCalled         bool
	CloseCalled         bool
	RunMigrationsCalled bool
	GetDBCalled         bool
}

func (m *MockDatabaseManager) Setup(ctx context.Context) error {
	m.SetupCalled = true
	if m.SetupFunc != nil {
		return m.SetupFunc(ctx)
	}
	return nil
}

func (m *MockDatabaseManager) Close(ctx context.Context) error {
	m.CloseCalled = true
	if m.CloseFunc != nil {
		return m.CloseFunc(ctx)
	}
	return nil
}

func (m *MockDatabaseManager) RunMigrations(ctx context.Context, migrations []Migration) error {
	m.RunMigrationsCalled = true
	if m.RunMigrationsFunc != nil {
		return m.RunMigrationsFunc(ctx, migrations)
	}
	return nil
}

func (m *MockDatabaseManager) GetDB() *sql.DB {
	m.GetDBCalled = true
	if m.GetDBFunc != nil {
		return m.GetDBFunc()
	}
	return nil
}

func (m *MockDatabaseManager) Dialect() providers.Dialect {
	if m.DialectValue == "" {
		return providers.DialectPostgres
	}
	return m.DialectValue
}

// MockSchemaExtractor is a mock implementation of SchemaExtractor for testing
type MockSchemaExtractor struct {
	ExtractSchemaFunc     func(db *sql.DB, dialect providers.Dialect) ([]providers.Table, error)
	FormatSchemaFunc      func(tables []providers.Table) string
	FormatSchemaAsSQLFunc func(tables []providers.Table) (string, error)
}

func (m *MockSchemaExtractor) ExtractSchema(_ context.Context, db *sql.DB, dialect providers.Dialect) ([]providers.Table, error) {
	if m.ExtractSchemaFunc != nil {
		return m.ExtractSchemaFunc(db, dialect)
	}
	return []providers.Table{}, nil
}

func (m *MockSchemaExtractor) FormatSchema(tables []providers.Table) string {
	if m.FormatSchemaFunc != nil {
		return m.FormatSchemaFunc(tables)
	}
	return ""
}

func (m *MockSchemaExtractor) FormatSchemaAsSQL(tables []providers.Table) (string, error) {
	if m.FormatSchemaAsSQLFunc != nil {
		return m.FormatSchemaAsSQLFunc(tables)
	}
	return "", nil
}

// MockMigrationReader is a mock implementation of MigrationReader for testing
type MockMigrationReader struct {
	DiscoverMigrationsFunc func(dir string) ([]Migration, error)
}

func (m *MockMigrationReader) DiscoverMigrations(dir string) ([]Migration, error) {
	if m.DiscoverMigrationsFunc != nil {
		return m.DiscoverMigrationsFunc(dir)
	}
	return []Migration{}, nil
}

// MockDDLVerifier is a mock implementation of DDLVerifier for testing
type MockDDLVerifier struct {
	VerifyDDLFunc func(ddl string) error
	VerifiedDDL   []string
}

func (m *MockDDLVerifier) VerifyDDL(_ context.Context, ddl string) error {
	m.VerifiedDDL = append(m.VerifiedDDL, ddl)
	if m.VerifyDDLFunc != nil {
		return m.VerifyDDLFunc(ddl)
	}
	return nil
}

// writeMigrations creates migration files named by the keys of files in dir.
func writeMigrations(dir string, files map[string]string) error {
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			return err
		}
	}
	return nil
}

// SimulateError simulates various database errors for testing
func SimulateError(errType string) error {
	switch errType {
	case "connection":
		return fmt.Errorf("connection refused")
	case "syntax":
		return fmt.Errorf("near \"INVALID\": syntax error")
	case "permission":
		return fmt.Errorf("permission denied")
	default:
		return fmt.Errorf("simulated error: %s", errType)
	}
}
