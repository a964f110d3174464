package providers

import (
	"fmt"
	"log/slog"
	"runtime"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"golang.org/x/sync/errgroup"

	"github.com/alc6/mig2sqlite/formatter"
)

// FormatSchemaInfo formats schema as human-readable text
func FormatSchemaInfo(tables []Table) string {
	var sb strings.Builder

	for _, tbl := range tables {
		fmt.Fprintf(&sb, "Table: %s\n", tbl.Name)

		t := table.NewWriter()
		t.SetOutputMirror(&sb)
		t.SetStyle(table.StyleLight)
		t.AppendHeader(table.Row{"Column", "Type", "Nullable", "Default", "Key", "Collate"})
		for _, col := range tbl.Columns {
			nullable := "NOT NULL"
			if col.IsNullable {
				nullable = "NULL"
			}
			key := ""
			if col.IsPrimaryKey {
				key = "PRIMARY KEY"
			}
			defaultVal := ""
			if col.DefaultValue.Valid {
				defaultVal = col.DefaultValue.String
			}
			t.AppendRow(table.Row{
				col.Name,
				formatter.BuildColumnType(PostgresTypeResolver{}, col.Descriptor()),
				nullable,
				defaultVal,
				key,
				col.Annotation(formatter.AnnotationCollate).Text(),
			})
		}
		t.Render()

		if len(tbl.Indexes) > 0 {
			it := table.NewWriter()
			it.SetOutputMirror(&sb)
			it.SetStyle(table.StyleLight)
			it.AppendHeader(table.Row{"Index", "Columns", "Unique", "On Conflict"})
			for _, idx := range tbl.Indexes {
				unique := ""
				if idx.IsUnique {
					unique = "UNIQUE"
				}
				it.AppendRow(table.Row{
					idx.Name,
					strings.Join(idx.Columns, ", "),
					unique,
					strings.TrimSpace(formatter.UniqueConflictText(idx.Annotation(formatter.AnnotationUnique))),
				})
			}
			it.Render()
		}

		sb.WriteString("\n")
	}

	return sb.String()
}

// FormatSchemaSQL formats schema as SQLite CREATE statements. Tables are
// rendered concurrently, each into its own writer, and joined in input order.
func FormatSchemaSQL(tables []Table, opts ...formatter.WriterOption) (string, error) {
	out := make([]string, len(tables))

	var eg errgroup.Group
	eg.SetLimit(runtime.GOMAXPROCS(0))
	for i := range tables {
		eg.Go(func() error {
			ddl, err := formatTable(tables[i], opts...)
			if err != nil {
				return fmt.Errorf("failed to format table %s: %w", tables[i].Name, err)
			}
			out[i] = ddl
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return "", err
	}

	return strings.Join(out, ""), nil
}

func formatTable(tbl Table, opts ...formatter.WriterOption) (string, error) {
	w, err := formatter.NewIndentedWriter(opts...)
	if err != nil {
		return "", err
	}
	defer w.Close()

	tableName := formatter.QuoteIfReserved(formatter.RemoveDbo(tbl.Name))

	var defs []string
	var primaryKeys []string
	for _, col := range tbl.Columns {
		defs = append(defs, columnDefinition(col))
		if col.IsPrimaryKey {
			primaryKeys = append(primaryKeys, formatter.QuoteIfReserved(col.Name))
		}
	}
	if len(primaryKeys) > 0 {
		defs = append(defs, fmt.Sprintf("PRIMARY KEY (%s)", strings.Join(primaryKeys, ", ")))
	}

	// Unique indexes with a conflict clause can only be expressed as table
	// constraints; CREATE INDEX has no ON CONFLICT.
	var indexes []Index
	for _, idx := range tbl.Indexes {
		if len(idx.Columns) == 0 {
			slog.Warn("skipping index without columns", "table", tbl.Name, "index", idx.Name)
			continue
		}
		conflict := formatter.UniqueConflictText(idx.Annotation(formatter.AnnotationUnique))
		if idx.IsUnique && conflict != "" {
			defs = append(defs, fmt.Sprintf("UNIQUE (%s)%s", quoteAll(idx.Columns), conflict))
			continue
		}
		indexes = append(indexes, idx)
	}

	w.WriteLine(fmt.Sprintf("CREATE TABLE %s (", tableName))
	err = w.Scope(func() error {
		for i, def := range defs {
			if i < len(defs)-1 {
				def += ","
			}
			w.WriteLine(def)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	w.WriteLine(");")
	w.WriteLine("")

	for _, idx := range indexes {
		unique := ""
		if idx.IsUnique {
			unique = "UNIQUE "
		}
		w.WriteLine(fmt.Sprintf("CREATE %sINDEX %s ON %s (%s);",
			unique, formatter.QuoteIfReserved(idx.Name), tableName, quoteAll(idx.Columns)))
	}
	if len(indexes) > 0 {
		w.WriteLine("")
	}

	return w.String(), nil
}

func columnDefinition(col Column) string {
	var sb strings.Builder
	sb.WriteString(formatter.QuoteIfReserved(col.Name))

	if colType := formatter.BuildColumnType(PostgresTypeResolver{}, col.Descriptor()); colType != "" {
		sb.WriteString(" ")
		sb.WriteString(colType)
	}
	if !col.IsNullable {
		sb.WriteString(" NOT NULL")
	}
	if def, ok := sqliteDefault(col.DefaultValue); ok {
		sb.WriteString(" DEFAULT ")
		sb.WriteString(def)
	}
	sb.WriteString(formatter.CollateFunctionText(col.Annotation(formatter.AnnotationCollate)))

	return sb.String()
}

func quoteAll(names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = formatter.QuoteIfReserved(n)
	}
	return strings.Join(quoted, ", ")
}
