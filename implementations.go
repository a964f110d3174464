package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"time"

	_ "github.com/lib/pq"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/alc6/mig2sqlite/formatter"
	"github.com/alc6/mig2sqlite/providers"
)

const DefaultPostgresImage = "postgres:16-alpine"

// PostgreSQLManager runs migrations against a throwaway PostgreSQL container.
type PostgreSQLManager struct {
	image     string
	container testcontainers.Container
	db        *sql.DB
	connStr   string
}

func NewPostgreSQLManager(image string) DatabaseManager {
	if image == "" {
		image = DefaultPostgresImage
	}
	return &PostgreSQLManager{image: image}
}

func (p *PostgreSQLManager) Setup(ctx context.Context) error {
	slog.Debug("starting postgresql container", "image", p.image)
	container, err := postgres.Run(ctx,
		p.image,
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Minute)),
	)
	if err != nil {
		return fmt.Errorf("failed to start container: %w", err)
	}
	p.container = container

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return fmt.Errorf("failed to get connection string: %w", err)
	}
	slog.Debug("got database connection string", "connStr", connStr)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return fmt.Errorf("failed to open database connection: %w", err)
	}
	p.db = db

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}
	p.connStr = connStr

	slog.Info("postgresql container ready")
	return nil
}

func (p *PostgreSQLManager) Close(ctx context.Context) error {
	if p.db != nil {
		p.db.Close()
	}
	if p.container != nil {
		return p.container.Terminate(ctx)
	}
	return nil
}

func (p *PostgreSQLManager) RunMigrations(ctx context.Context, migrations []Migration) error {
	return runMigrations(ctx, p.db, migrations)
}

func (p *PostgreSQLManager) GetDB() *sql.DB {
	return p.db
}

func (p *PostgreSQLManager) Dialect() providers.Dialect {
	return providers.DialectPostgres
}

func (p *PostgreSQLManager) GetConnectionString() string {
	return p.connStr
}

// runMigrations executes the up file of every migration in order.
func runMigrations(ctx context.Context, db *sql.DB, migrations []Migration) error {
	if db == nil {
		return providers.ErrNoDatabase
	}
	for _, migration := range migrations {
		slog.Info("running migration", "name", migration.Name, "file", migration.UpFile)

		content, err := os.ReadFile(migration.UpFile)
		if err != nil {
			return fmt.Errorf("failed to read migration file %s: %w", migration.UpFile, err)
		}

		if _, err := db.ExecContext(ctx, string(content)); err != nil {
			return fmt.Errorf("failed to execute migration %s: %w", migration.Name, err)
		}

		slog.Debug("migration completed successfully", "name", migration.Name)
	}
	slog.Info("all migrations completed successfully", "count", len(migrations))
	return nil
}

// newDatabaseManager picks the engine the migrations are written for.
func newDatabaseManager(source, image string) (DatabaseManager, error) {
	switch providers.Dialect(source) {
	case providers.DialectPostgres:
		return NewPostgreSQLManager(image), nil
	case providers.DialectSQLite:
		return NewSQLiteManager(), nil
	default:
		return nil, fmt.Errorf("unknown source %q, expected %s or %s", source, providers.DialectPostgres, providers.DialectSQLite)
	}
}

// CatalogSchemaExtractor reads the catalog of the migrated database and
// renders it with the configured writer options.
type CatalogSchemaExtractor struct {
	writerOptions []formatter.WriterOption
}

func NewSchemaExtractor(opts ...formatter.WriterOption) SchemaExtractor {
	return &CatalogSchemaExtractor{writerOptions: opts}
}

func (e *CatalogSchemaExtractor) ExtractSchema(ctx context.Context, db *sql.DB, dialect providers.Dialect) ([]providers.Table, error) {
	return ExtractSchema(ctx, db, dialect)
}

func (e *CatalogSchemaExtractor) FormatSchema(tables []providers.Table) string {
	return FormatSchema(tables)
}

func (e *CatalogSchemaExtractor) FormatSchemaAsSQL(tables []providers.Table) (string, error) {
	return FormatSchemaAsSQL(tables, e.writerOptions...)
}

type FileMigrationReader struct{}

func NewFileMigrationReader() MigrationReader {
	return &FileMigrationReader{}
}

func (r *FileMigrationReader) DiscoverMigrations(dir string) ([]Migration, error) {
	return ParseMigrations(dir)
}
