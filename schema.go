package main

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/alc6/mig2sqlite/formatter"
	"github.com/alc6/mig2sqlite/providers"
)

func ExtractSchema(ctx context.Context, db *sql.DB, dialect providers.Dialect) ([]providers.Table, error) {
	switch dialect {
	case providers.DialectSQLite:
		return providers.ExtractSQLiteSchema(ctx, db)
	case providers.DialectPostgres:
		return providers.ExtractSchemaFromDB(ctx, db)
	default:
		return nil, fmt.Errorf("unsupported dialect: %s", dialect)
	}
}

func FormatSchema(tables []providers.Table) string {
	return providers.FormatSchemaInfo(tables)
}

func FormatSchemaAsSQL(tables []providers.Table, opts ...formatter.WriterOption) (string, error) {
	return providers.FormatSchemaSQL(tables, opts...)
}
