package providers

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/alc6/mig2sqlite/formatter"
)

// ExtractSQLiteSchema reads tables, columns and indexes of a SQLite database
// through the table-valued PRAGMA functions.
func ExtractSQLiteSchema(ctx context.Context, db *sql.DB) ([]Table, error) {
	if db == nil {
		return nil, ErrNoDatabase
	}

	slog.Debug("starting sqlite schema extraction")
	tables, err := getSQLiteTables(ctx, db)
	if err != nil {
		return nil, fmt.Errorf("failed to get tables: %w", err)
	}
	slog.Info("found database tables", "count", len(tables), "tables", tables)

	var schema []Table
	for _, tableName := range tables {
		columns, err := getSQLiteColumns(ctx, db, tableName)
		if err != nil {
			return nil, fmt.Errorf("failed to get columns for table %s: %w", tableName, err)
		}

		indexes, err := getSQLiteIndexes(ctx, db, tableName)
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

func getSQLiteTables(ctx context.Context, db *sql.DB) ([]string, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		tables = append(tables, name)
	}
	return tables, rows.Err()
}

func getSQLiteColumns(ctx context.Context, db *sql.DB, tableName string) ([]Column, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT name, type, "notnull", dflt_value, pk FROM pragma_table_info(?) ORDER BY cid`, tableName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var columns []Column
	for rows.Next() {
		var (
			col      Column
			declared string
			notNull  bool
			pk       int
		)
		if err := rows.Scan(&col.Name, &declared, &notNull, &col.DefaultValue, &pk); err != nil {
			return nil, err
		}
		col.IsNullable = !notNull
		col.IsPrimaryKey = pk > 0
		applyDeclaredType(&col, declared)
		columns = append(columns, col)
	}
	return columns, rows.Err()
}

func getSQLiteIndexes(ctx context.Context, db *sql.DB, tableName string) ([]Index, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT name, "unique", origin FROM pragma_index_list(?) ORDER BY name`, tableName)
	if err != nil {
		return nil, err
	}

	type listed struct {
		name   string
		unique bool
		origin string
	}
	var found []listed
	for rows.Next() {
		var l listed
		if err := rows.Scan(&l.name, &l.unique, &l.origin); err != nil {
			rows.Close()
			return nil, err
		}
		found = append(found, l)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var indexes []Index
	for _, l := range found {
		// primary keys are rendered from the column flags
		if l.origin == "pk" {
			continue
		}
		cols, hasExpr, err := getSQLiteIndexColumns(ctx, db, l.name)
		if err != nil {
			return nil, fmt.Errorf("failed to get columns of index %s: %w", l.name, err)
		}
		if hasExpr {
			slog.Warn("skipping expression index", "table", tableName, "index", l.name)
			continue
		}
		name := l.name
		// Names of automatic indexes are reserved by SQLite.
		if strings.HasPrefix(name, "sqlite_autoindex_") {
			name = tableName + "_" + strings.Join(cols, "_") + "_key"
		}
		indexes = append(indexes, Index{Name: name, Columns: cols, IsUnique: l.unique})
	}
	return indexes, nil
}

// getSQLiteIndexColumns lists the key columns of an index and reports
// whether any member is an expression, which pragma_index_info leaves unnamed.
func getSQLiteIndexColumns(ctx context.Context, db *sql.DB, indexName string) ([]string, bool, error) {
	rows, err := db.QueryContext(ctx, `SELECT name FROM pragma_index_info(?) ORDER BY seqno`, indexName)
	if err != nil {
		return nil, false, err
	}
	defer rows.Close()

	var cols []string
	hasExpr := false
	for rows.Next() {
		var name sql.NullString
		if err := rows.Scan(&name); err != nil {
			return nil, false, err
		}
		if !name.Valid {
			hasExpr = true
			continue
		}
		cols = append(cols, name.String)
	}
	return cols, hasExpr, rows.Err()
}

var declaredTypePattern = regexp.MustCompile(`^\s*([A-Za-z_][A-Za-z0-9_ ]*?)\s*(?:\(\s*(\d+)\s*(?:,\s*(\d+)\s*)?\))?\s*$`)

// applyDeclaredType splits a declared column type such as "DECIMAL(10, 2)"
// into the bare store type and the length or precision fields it carries.
// Types whose arguments the formatter does not rebuild are kept verbatim.
func applyDeclaredType(col *Column, declared string) {
	col.DataType = declared
	declared = strings.TrimSpace(declared)

	m := declaredTypePattern.FindStringSubmatch(declared)
	if m == nil {
		col.StoreType = declared
		return
	}
	base, arg1, arg2 := m[1], m[2], m[3]

	kind := formatter.SuffixKindOf(base)
	if kind == formatter.SuffixNone {
		col.StoreType = declared
		return
	}
	col.StoreType = base

	switch kind {
	case formatter.SuffixLength:
		col.CharacterLength = parseNullInt(arg1)
	case formatter.SuffixPrecision:
		col.DatetimePrecision = parseNullInt(arg1)
	case formatter.SuffixPrecisionScale:
		col.NumericPrecision = parseNullInt(arg1)
		col.NumericScale = parseNullInt(arg2)
	}
}

func parseNullInt(s string) sql.NullInt64 {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: v, Valid: true}
}
