package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var (
	configFile string
	mcpMode    bool
	logLevel   = new(slog.LevelVar)
)

var rootCmd = &cobra.Command{
	Use:   "mig2sqlite [migration-directory]",
	Short: "Convert the schema built by migration files into SQLite DDL",
	Long: `mig2sqlite takes a directory containing migration files (.up.sql and .down.sql),
runs them against a throwaway database and prints the resulting schema as SQLite DDL.

PostgreSQL migrations run in a testcontainers PostgreSQL instance (--source postgres,
the default); SQLite migrations run in an in-memory SQLite database (--source sqlite).

Collations, row-version columns and ON CONFLICT clauses cannot be expressed in the
migrations and are read from mig2sqlite.yaml (see --config).

Modes:
  info mode (default): Shows human-readable schema information
  extract mode (-e): Outputs SQLite CREATE statements
  mcp mode (--mcp): Run as Model Context Protocol server`,
	Args: func(cmd *cobra.Command, args []string) error {
		if mcpMode {
			return nil
		}
		return cobra.ExactArgs(1)(cmd, args)
	},
	Run: runMig2SQLite,
}

func main() {
	if err := run(); err != nil {
		slog.Error("command execution failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})
	slog.SetDefault(slog.New(handler))

	registerFlags(rootCmd)

	return rootCmd.Execute()
}

func registerFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	if flags.Lookup("extract") == nil {
		flags.BoolP("extract", "e", false, "Extract schema as SQLite CREATE statements")
	}
	if flags.Lookup("mcp") == nil {
		flags.BoolVar(&mcpMode, "mcp", false, "Run as Model Context Protocol server")
	}
	if flags.Lookup("config") == nil {
		flags.StringVar(&configFile, "config", "", "Config file (default "+DefaultConfigFile+" if present)")
	}
	if flags.Lookup("source") == nil {
		flags.String("source", "postgres", "Engine the migrations are written for: postgres or sqlite")
	}
	if flags.Lookup("postgres-image") == nil {
		flags.String("postgres-image", DefaultPostgresImage, "PostgreSQL Docker image to use")
	}
	if flags.Lookup("verify") == nil {
		flags.Bool("verify", false, "Execute the generated DDL against an in-memory SQLite database")
	}
	if flags.Lookup("indent") == nil {
		flags.String("indent", "", "Indentation of column definitions: a number of spaces, 'tab' or literal text")
	}
	if flags.Lookup("log-level") == nil {
		flags.String("log-level", "info", "Log level: debug, info, warn or error")
	}
}

func runMig2SQLite(cmd *cobra.Command, args []string) {
	cfg, err := LoadConfig(configFile, cmd.Flags())
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	logLevel.Set(cfg.SlogLevel())

	if mcpMode {
		slog.Info("starting mcp server")
		if err := StartMCPServer(cfg); err != nil {
			slog.Error("failed to start mcp server", "error", err)
			os.Exit(1)
		}
		return
	}

	migrationDir := args[0]

	dbManager, err := newDatabaseManager(cfg.Source, cfg.PostgresImage)
	if err != nil {
		slog.Error("failed to create database manager", "error", err)
		os.Exit(1)
	}
	writerOptions, err := cfg.WriterOptions()
	if err != nil {
		slog.Error("invalid indent", "error", err)
		os.Exit(1)
	}

	deps := schemaDeps{
		migrationReader: NewFileMigrationReader(),
		dbManager:       dbManager,
		schemaExtractor: NewSchemaExtractor(writerOptions...),
		verifier:        NewSQLiteVerifier(),
	}

	if err := processSchema(cmd.Context(), cfg, migrationDir, deps, cmd.OutOrStdout()); err != nil {
		slog.Error("failed to process schema", "error", err)
		os.Exit(1)
	}
}

// schemaDeps are the collaborators of a conversion run.
type schemaDeps struct {
	migrationReader MigrationReader
	dbManager       DatabaseManager
	schemaExtractor SchemaExtractor
	verifier        DDLVerifier
}

func processSchema(ctx context.Context, cfg *Config, migrationDir string, deps schemaDeps, out io.Writer) error {
	slog.Info("processing migration directory", "directory", migrationDir)

	if _, err := os.Stat(migrationDir); os.IsNotExist(err) {
		return fmt.Errorf("migration directory does not exist: %s", migrationDir)
	}

	slog.Info("parsing migration files")
	migrations, err := deps.migrationReader.DiscoverMigrations(migrationDir)
	if err != nil {
		return fmt.Errorf("failed to parse migrations: %w", err)
	}

	if len(migrations) == 0 {
		return fmt.Errorf("no migration files found in directory: %s", migrationDir)
	}

	slog.Info("found migrations", "count", len(migrations))

	slog.Info("setting up database", "dialect", deps.dbManager.Dialect())
	if err := deps.dbManager.Setup(ctx); err != nil {
		return fmt.Errorf("failed to setup database: %w", err)
	}
	defer func() {
		if err := deps.dbManager.Close(ctx); err != nil {
			slog.Error("failed to cleanup", "error", err)
		}
	}()

	slog.Info("running migrations")
	if err := deps.dbManager.RunMigrations(ctx, migrations); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	slog.Info("extracting schema")
	schema, err := deps.schemaExtractor.ExtractSchema(ctx, deps.dbManager.GetDB(), deps.dbManager.Dialect())
	if err != nil {
		return fmt.Errorf("failed to extract schema: %w", err)
	}
	cfg.ApplyAnnotations(schema)

	var ddl string
	if cfg.Extract || cfg.Verify {
		ddl, err = deps.schemaExtractor.FormatSchemaAsSQL(schema)
		if err != nil {
			return fmt.Errorf("failed to format schema: %w", err)
		}
	}

	if cfg.Verify {
		slog.Info("verifying generated ddl")
		if err := deps.verifier.VerifyDDL(ctx, ddl); err != nil {
			return fmt.Errorf("failed to verify schema: %w", err)
		}
	}

	if cfg.Extract {
		fmt.Fprint(out, ddl)
	} else {
		fmt.Fprintln(out, "\n=== DATABASE SCHEMA ===")
		fmt.Fprint(out, deps.schemaExtractor.FormatSchema(schema))
	}

	return nil
}
