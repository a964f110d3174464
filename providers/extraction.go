package providers

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
)

// ExtractSchemaFromDB reads tables, columns and indexes of the public schema
// of a PostgreSQL database through information_schema and pg_catalog.
func ExtractSchemaFromDB(ctx context.Context, db *sql.DB) ([]Table, error) {
	if db == nil {
		return nil, ErrNoDatabase
	}

	slog.Debug("starting postgresql schema extraction")
	tables, err := getTables(ctx, db)
	if err != nil {
		return nil, fmt.Errorf("failed to get tables: %w", err)
	}
	slog.Info("found database tables", "count", len(tables), "tables", tables)

	var schema []Table
	for _, tableName := range tables {
		slog.Debug("processing table", "table", tableName)

		columns, err := getColumns(ctx, db, tableName)
		if err != nil {
			return nil, fmt.Errorf("failed to get columns for table %s: %w", tableName, err)
		}

		indexes, err := getIndexes(ctx, db, tableName)
		if err != nil {
			return nil, fmt.Errorf("failed to get indexes for table %s: %w", tableName, err)
		}
		slog.Debug("found table metadata", "table", tableName, "columns", len(columns), "indexes", len(indexes))

		schema = append(schema, Table{
			Name:    tableName,
			Columns: columns,
			Indexes: indexes,
		})
	}

	slog.Info("schema extraction completed", "tables", len(schema))
	return schema, nil
}

func getTables(ctx context.Context, db *sql.DB) ([]string, error) {
	query := `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = 'public'
		AND table_type = 'BASE TABLE'
		ORDER BY table_name
	`

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var tableName string
		if err := rows.Scan(&tableName); err != nil {
			return nil, err
		}
		tables = append(tables, tableName)
	}

	return tables, rows.Err()
}

func getColumns(ctx context.Context, db *sql.DB, tableName string) ([]Column, error) {
	// numeric_precision is only meaningful for exact numerics here; integer
	// types report their bit width, which SQLite fragments ignore anyway.
	query := `
		SELECT
			c.column_name,
			c.data_type,
			c.is_nullable = 'YES' as is_nullable,
			c.column_default,
			COALESCE(tc.constraint_type = 'PRIMARY KEY', false) as is_primary_key,
			c.character_maximum_length,
			c.numeric_precision,
			c.numeric_scale,
			c.datetime_precision
		FROM information_schema.columns c
		LEFT JOIN information_schema.key_column_usage kcu ON
			c.table_name = kcu.table_name AND c.column_name = kcu.column_name
			AND c.table_schema = kcu.table_schema
		LEFT JOIN information_schema.table_constraints tc ON
			kcu.constraint_name = tc.constraint_name AND tc.constraint_type = 'PRIMARY KEY'
		WHERE c.table_name = $1 AND c.table_schema = 'public'
		ORDER BY c.ordinal_position
	`

	rows, err := db.QueryContext(ctx, query, tableName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var columns []Column
	seen := make(map[string]int)
	for rows.Next() {
		var col Column
		if err := rows.Scan(&col.Name, &col.DataType, &col.IsNullable, &col.DefaultValue, &col.IsPrimaryKey,
			&col.CharacterLength, &col.NumericPrecision, &col.NumericScale, &col.DatetimePrecision); err != nil {
			return nil, err
		}

		// A column taking part in several key constraints comes back once per
		// constraint; keep one row and remember if any of them was the primary key.
		if i, ok := seen[col.Name]; ok {
			columns[i].IsPrimaryKey = columns[i].IsPrimaryKey || col.IsPrimaryKey
			continue
		}
		seen[col.Name] = len(columns)
		columns = append(columns, col)
	}

	return columns, rows.Err()
}

func getIndexes(ctx context.Context, db *sql.DB, tableName string) ([]Index, error) {
	query := `
		SELECT
			i.indexname,
			array_agg(a.attname ORDER BY a.attnum) as columns,
			idx.indisunique as is_unique
		FROM pg_indexes i
		JOIN pg_class c ON c.relname = i.tablename
		JOIN pg_index idx ON idx.indexrelid = (
			SELECT oid FROM pg_class WHERE relname = i.indexname
		)
		JOIN pg_attribute a ON a.attrelid = c.oid AND a.attnum = ANY(idx.indkey)
		WHERE i.tablename = $1
		AND i.schemaname = 'public'
		AND NOT idx.indisprimary
		GROUP BY i.indexname, idx.indisunique
		ORDER BY i.indexname
	`

	rows, err := db.QueryContext(ctx, query, tableName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var indexes []Index
	for rows.Next() {
		var index Index
		var columnsArray string

		if err := rows.Scan(&index.Name, &columnsArray, &index.IsUnique); err != nil {
			return nil, err
		}

		index.Columns = parsePgArray(columnsArray)
		indexes = append(indexes, index)
	}

	return indexes, rows.Err()
}

// parsePgArray splits the text form of a name[] such as {a,b}.
func parsePgArray(s string) []string {
	s = strings.Trim(s, "{}")
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	for i, p := range parts {
		parts[i] = strings.Trim(p, `"`)
	}
	return parts
}
