package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/alc6/mig2sqlite/formatter"
	"github.com/alc6/mig2sqlite/providers"
)

// StartMCPServer starts the MCP server for schema extraction
func StartMCPServer(cfg *Config) error {
	s := server.NewMCPServer(
		"mig2sqlite",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	extractSchemaTool := mcp.NewTool("extract_schema",
		mcp.WithDescription("Run migration files and return the resulting schema as SQLite DDL"),
		mcp.WithString("migration_directory",
			mcp.Required(),
			mcp.Description("Path to directory containing migration files"),
		),
		mcp.WithString("format",
			mcp.Description("Output format: 'sql' for SQLite CREATE statements (default), 'info' for a readable listing"),
			mcp.Enum("sql", "info"),
		),
		mcp.WithString("source",
			mcp.Description("Engine the migrations are written for (default from configuration)"),
			mcp.Enum(string(providers.DialectPostgres), string(providers.DialectSQLite)),
		),
		mcp.WithString("provider",
			mcp.Description("Schema provider: 'native' (default) or 'sqlite_master' for sqlite sources"),
			mcp.Enum("native", "sqlite_master"),
		),
		mcp.WithString("postgres_image",
			mcp.Description("PostgreSQL Docker image to use (default: "+DefaultPostgresImage+")"),
		),
	)

	s.AddTool(extractSchemaTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleExtractSchema(ctx, cfg, request)
	})

	validateMigrationsTool := mcp.NewTool("validate_migrations",
		mcp.WithDescription("Validate migration files in directory without running them"),
		mcp.WithString("migration_directory",
			mcp.Required(),
			mcp.Description("Path to directory containing migration files"),
		),
	)

	s.AddTool(validateMigrationsTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleValidateMigrations(ctx, request)
	})

	formatColumnTool := mcp.NewTool("format_column",
		mcp.WithDescription("Build the SQLite type fragment of a column, with its COLLATE clause"),
		mcp.WithString("semantic_type",
			mcp.Description("Abstract or PostgreSQL type name, e.g. 'string', 'decimal', 'character varying'"),
		),
		mcp.WithString("store_type",
			mcp.Description("Declared SQLite type; wins over semantic_type"),
		),
		mcp.WithNumber("max_length", mcp.Description("Maximum length of string and binary types")),
		mcp.WithNumber("precision", mcp.Description("Precision of decimal and time types")),
		mcp.WithNumber("scale", mcp.Description("Scale of decimal types")),
		mcp.WithBoolean("row_version", mcp.Description("Column is maintained by the engine as a row version")),
		mcp.WithString("collate", mcp.Description("Collation directive, e.g. 'NoCase' or 'Custom:my_collation'")),
	)

	s.AddTool(formatColumnTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleFormatColumn(ctx, request)
	})

	quoteIdentifierTool := mcp.NewTool("quote_identifier",
		mcp.WithDescription("Quote an identifier if it collides with a SQLite keyword"),
		mcp.WithString("identifier",
			mcp.Required(),
			mcp.Description("Table, column or index name"),
		),
	)

	s.AddTool(quoteIdentifierTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleQuoteIdentifier(ctx, request)
	})

	slog.Info("starting mig2sqlite mcp server")
	return server.ServeStdio(s)
}

// extractRequest holds the arguments of an extract_schema call.
type extractRequest struct {
	MigrationDir  string
	Format        string
	Source        string
	Provider      string
	PostgresImage string
}

// handleExtractSchema processes the extract_schema tool request
func handleExtractSchema(ctx context.Context, cfg *Config, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	migrationDir, err := request.RequireString("migration_directory")
	if err != nil {
		return mcp.NewToolResultError("migration_directory parameter is required"), nil
	}

	req := extractRequest{
		MigrationDir:  migrationDir,
		Format:        request.GetString("format", "sql"),
		Source:        request.GetString("source", cfg.Source),
		Provider:      request.GetString("provider", "native"),
		PostgresImage: request.GetString("postgres_image", cfg.PostgresImage),
	}

	output, err := extractSchemaCore(ctx, cfg, req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("schema extracted successfully:\n\n%s", output)), nil
}

// extractSchemaCore contains the core logic for schema extraction, separated for testing
func extractSchemaCore(ctx context.Context, cfg *Config, req extractRequest) (string, error) {
	registry := providers.NewProviderRegistry()
	registry.Register(providers.NewNativeProvider())
	registry.Register(providers.NewMasterProvider())

	provider, exists := registry.Get(req.Provider)
	if !exists {
		return "", fmt.Errorf("unknown provider: %s", req.Provider)
	}

	if !provider.IsAvailable() {
		return "", fmt.Errorf("provider '%s' is not available in this environment", req.Provider)
	}

	dbManager, err := newDatabaseManager(req.Source, req.PostgresImage)
	if err != nil {
		return "", err
	}

	return extractSchemaCoreWithProvider(ctx, cfg, req.MigrationDir, req.Format, NewFileMigrationReader(), dbManager, provider)
}

// extractSchemaCoreWithProvider is the provider-based extraction function
func extractSchemaCoreWithProvider(ctx context.Context, cfg *Config, migrationDir, format string,
	migrationReader MigrationReader, dbManager DatabaseManager, provider providers.SchemaProvider) (string, error) {
	if _, err := os.Stat(migrationDir); os.IsNotExist(err) {
		return "", fmt.Errorf("migration directory does not exist: %s", migrationDir)
	}

	var schemaFormat providers.SchemaFormat
	switch format {
	case "sql", "":
		schemaFormat = providers.FormatSQL
	case "info":
		schemaFormat = providers.FormatInfo
	default:
		return "", fmt.Errorf("%w: %s", providers.ErrUnsupportedFormat, format)
	}

	writerOptions, err := cfg.WriterOptions()
	if err != nil {
		return "", err
	}

	migrations, err := migrationReader.DiscoverMigrations(migrationDir)
	if err != nil {
		return "", fmt.Errorf("failed to parse migrations: %w", err)
	}

	if len(migrations) == 0 {
		return "", fmt.Errorf("no migration files found in directory")
	}

	if err := dbManager.Setup(ctx); err != nil {
		return "", fmt.Errorf("failed to setup %s database: %w", dbManager.Dialect(), err)
	}
	defer func() {
		if err := dbManager.Close(ctx); err != nil {
			slog.Error("failed to cleanup database", "error", err)
		}
	}()

	if err := dbManager.RunMigrations(ctx, migrations); err != nil {
		return "", fmt.Errorf("failed to run migrations: %w", err)
	}

	params := providers.ExtractParams{
		DB:            dbManager.GetDB(),
		Dialect:       dbManager.Dialect(),
		Format:        schemaFormat,
		Decorate:      cfg.ApplyAnnotations,
		WriterOptions: writerOptions,
	}

	result, err := provider.ExtractSchema(ctx, params)
	if err != nil {
		return "", fmt.Errorf("failed to extract schema: %w", err)
	}

	if schemaFormat == providers.FormatSQL {
		return result.RawSQL, nil
	}
	return providers.FormatSchemaInfo(result.Tables), nil
}

// handleValidateMigrations processes the validate_migrations tool request
func handleValidateMigrations(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	migrationDir, err := request.RequireString("migration_directory")
	if err != nil {
		return mcp.NewToolResultError("migration_directory parameter is required"), nil
	}

	output, err := validateMigrationsCore(migrationDir)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("migration validation completed:\n\n%s", output)), nil
}

type migrationInfo struct {
	Name        string `json:"name"`
	UpFile      string `json:"up_file"`
	HasDownFile bool   `json:"has_down_file"`
	DownFile    string `json:"down_file,omitempty"`
}

type validationReport struct {
	Valid           bool            `json:"valid"`
	MigrationCount  int             `json:"migration_count"`
	Migrations      []migrationInfo `json:"migrations"`
	OrphanDownFiles []string        `json:"orphan_down_files,omitempty"`
}

// validateMigrationsCore contains the core logic for migration validation, separated for testing
func validateMigrationsCore(migrationDir string) (string, error) {
	if _, err := os.Stat(migrationDir); os.IsNotExist(err) {
		return "", fmt.Errorf("migration directory does not exist: %s", migrationDir)
	}

	scan, err := ScanMigrations(migrationDir)
	if err != nil {
		return "", fmt.Errorf("failed to parse migrations: %w", err)
	}

	report := validationReport{
		Valid:           len(scan.OrphanDownFiles) == 0,
		MigrationCount:  len(scan.Migrations),
		Migrations:      make([]migrationInfo, len(scan.Migrations)),
		OrphanDownFiles: scan.OrphanDownFiles,
	}
	for i, migration := range scan.Migrations {
		report.Migrations[i] = migrationInfo{
			Name:        migration.Name,
			UpFile:      migration.UpFile,
			HasDownFile: migration.DownFile != "",
			DownFile:    migration.DownFile,
		}
	}

	jsonOutput, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal result to JSON: %w", err)
	}

	return string(jsonOutput), nil
}

// columnRequest holds the arguments of a format_column call. Negative
// numbers mean the value was not given.
type columnRequest struct {
	SemanticType string
	StoreType    string
	MaxLength    int
	Precision    int
	Scale        int
	RowVersion   bool
	Collate      string
}

func handleFormatColumn(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	req := columnRequest{
		SemanticType: request.GetString("semantic_type", ""),
		StoreType:    request.GetString("store_type", ""),
		MaxLength:    request.GetInt("max_length", -1),
		Precision:    request.GetInt("precision", -1),
		Scale:        request.GetInt("scale", -1),
		RowVersion:   request.GetBool("row_version", false),
		Collate:      request.GetString("collate", ""),
	}

	fragment := formatColumnCore(req)
	if fragment == "" {
		return mcp.NewToolResultError("no SQLite type could be resolved for the given column"), nil
	}
	return mcp.NewToolResultText(fragment), nil
}

// formatColumnCore resolves semantic types through the abstract names first
// and PostgreSQL names second.
func formatColumnCore(req columnRequest) string {
	column := &formatter.ColumnDescriptor{
		StoreType:    req.StoreType,
		SemanticType: req.SemanticType,
		IsTimestamp:  req.RowVersion,
		MaxLength:    optionalInt(req.MaxLength),
		Precision:    optionalInt(req.Precision),
		Scale:        optionalInt(req.Scale),
	}
	resolver := providers.ResolverChain{providers.SemanticTypeResolver{}, providers.PostgresTypeResolver{}}

	fragment := formatter.BuildColumnType(resolver, column)
	if fragment == "" {
		return ""
	}
	if req.Collate != "" {
		fragment += formatter.CollateFunctionText(&formatter.AnnotationValue{NewValue: req.Collate})
	}
	return fragment
}

func optionalInt(v int) *int {
	if v < 0 {
		return nil
	}
	return formatter.IntPtr(v)
}

func handleQuoteIdentifier(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	identifier, err := request.RequireString("identifier")
	if err != nil {
		return mcp.NewToolResultError("identifier parameter is required"), nil
	}

	output, err := quoteIdentifierCore(identifier)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(output), nil
}

func quoteIdentifierCore(identifier string) (string, error) {
	out, err := json.Marshal(map[string]any{
		"identifier": identifier,
		"quoted":     formatter.QuoteIfReserved(identifier),
		"reserved":   formatter.IsReserved(identifier),
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal result to JSON: %w", err)
	}
	return string(out), nil
}
