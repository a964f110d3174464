package providers

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/alc6/mig2sqlite/formatter"
)

// MasterProvider returns the DDL SQLite itself recorded in sqlite_master
// while the migrations ran. It only works for the SQLite dialect.
type MasterProvider struct{}

// NewMasterProvider creates a new sqlite_master provider
func NewMasterProvider() SchemaProvider {
	return &MasterProvider{}
}

// Name returns the provider name
func (p *MasterProvider) Name() string {
	return "sqlite_master"
}

// IsAvailable checks if a SQLite driver is registered
func (p *MasterProvider) IsAvailable() bool {
	return slices.Contains(sql.Drivers(), "sqlite")
}

// ExtractSchema collects the stored CREATE statements of tables and indexes
func (p *MasterProvider) ExtractSchema(ctx context.Context, params ExtractParams) (*SchemaResult, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("sqlite_master provider: %w", ErrNoDatabase)
	}
	if params.Dialect != DialectSQLite {
		return nil, fmt.Errorf("sqlite_master provider only supports the %s dialect", DialectSQLite)
	}
	if params.Format != FormatSQL {
		return nil, fmt.Errorf("%w: sqlite_master provider only supports SQL format", ErrUnsupportedFormat)
	}

	slog.Debug("extracting schema using sqlite_master provider")

	// Tables sort before their indexes; automatic indexes have no sql.
	rows, err := params.DB.QueryContext(ctx, `
		SELECT sql FROM sqlite_master
		WHERE type IN ('table', 'index')
		AND name NOT LIKE 'sqlite_%'
		AND sql IS NOT NULL
		ORDER BY tbl_name, type DESC, name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query sqlite_master: %w", err)
	}
	defer rows.Close()

	var statements []string
	for rows.Next() {
		var stmt string
		if err := rows.Scan(&stmt); err != nil {
			return nil, err
		}
		statements = append(statements, cleanupMasterSQL(stmt))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	result := &SchemaResult{Format: FormatSQL}
	if len(statements) > 0 {
		result.RawSQL = strings.Join(statements, "\n\n") + "\n"
	}
	return result, nil
}

// cleanupMasterSQL terminates a stored statement and drops schema prefixes
// carried over from other engines.
func cleanupMasterSQL(stmt string) string {
	stmt = strings.TrimSpace(formatter.RemoveDbo(stmt))
	if !strings.HasSuffix(stmt, ";") {
		stmt += ";"
	}
	return stmt
}
