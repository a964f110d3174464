package providers

import (
	"context"
	"fmt"
	"log/slog"
)

// NativeProvider reads the catalog of the source database and renders the
// tables it finds as SQLite DDL.
type NativeProvider struct{}

// NewNativeProvider creates a new native provider
func NewNativeProvider() SchemaProvider {
	return &NativeProvider{}
}

// Name returns the provider name
func (p *NativeProvider) Name() string {
	return "native"
}

// IsAvailable always returns true for the native provider
func (p *NativeProvider) IsAvailable() bool {
	return true
}

// ExtractSchema extracts the schema with catalog queries of params.Dialect
func (p *NativeProvider) ExtractSchema(ctx context.Context, params ExtractParams) (*SchemaResult, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("native provider: %w", ErrNoDatabase)
	}
	if params.Format != FormatSQL && params.Format != FormatInfo {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, params.Format)
	}

	slog.Debug("extracting schema using native provider", "format", params.Format, "dialect", params.Dialect)

	var tables []Table
	var err error
	switch params.Dialect {
	case DialectSQLite:
		tables, err = ExtractSQLiteSchema(ctx, params.DB)
	case DialectPostgres, "":
		tables, err = ExtractSchemaFromDB(ctx, params.DB)
	default:
		return nil, fmt.Errorf("unsupported dialect: %s", params.Dialect)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to extract schema: %w", err)
	}

	if params.Decorate != nil {
		params.Decorate(tables)
	}

	result := &SchemaResult{
		Tables: tables,
		Format: params.Format,
	}

	// The info format is rendered at the output layer from Tables
	if params.Format == FormatSQL {
		result.RawSQL, err = FormatSchemaSQL(tables, params.WriterOptions...)
		if err != nil {
			return nil, fmt.Errorf("failed to format schema: %w", err)
		}
	}

	return result, nil
}
