package providers

import (
	"database/sql"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/alc6/mig2sqlite/formatter"
)

func TestPostgresTypeResolver(t *testing.T) {
	tests := map[string]string{
		"":                            "",
		"character varying":           "VARCHAR",
		"CHARACTER VARYING":           "VARCHAR",
		"character":                   "CHAR",
		"text":                        "TEXT",
		"integer":                     "INTEGER",
		"bigint":                      "BIGINT",
		"smallint":                    "SMALLINT",
		"boolean":                     "BOOLEAN",
		"double precision":            "DOUBLE",
		"numeric":                     "DECIMAL",
		"money":                       "DECIMAL",
		"timestamp without time zone": "DATETIME",
		"timestamp with time zone":    "DATETIME",
		"time without time zone":      "TIME",
		"date":                        "DATE",
		"bytea":                       "BLOB",
		"uuid":                        "TEXT",
		"jsonb":                       "TEXT",
		"USER-DEFINED":                "TEXT",
		"hstore":                      "HSTORE",
	}

	for input, expected := range tests {
		t.Run(input, func(t *testing.T) {
			assert.Equal(t, expected, PostgresTypeResolver{}.StoreType(input))
		})
	}
}

func TestSemanticTypeResolver(t *testing.T) {
	r := SemanticTypeResolver{}
	assert.Equal(t, "nvarchar", r.StoreType("String"))
	assert.Equal(t, "int", r.StoreType("int32"))
	assert.Equal(t, "integer", r.StoreType(" Int64 "))
	assert.Equal(t, "uniqueidentifier", r.StoreType("guid"))
	assert.Empty(t, r.StoreType("geography"))

	names := SemanticTypes()
	assert.True(t, sort.StringsAreSorted(names))
	assert.Contains(t, names, "decimal")

	column := &formatter.ColumnDescriptor{SemanticType: "string", MaxLength: formatter.IntPtr(64)}
	assert.Equal(t, "nvarchar(64)", formatter.BuildColumnType(r, column))
}

func TestResolverChain(t *testing.T) {
	chain := ResolverChain{SemanticTypeResolver{}, PostgresTypeResolver{}}

	assert.Equal(t, "datetime", chain.StoreType("datetime"))
	assert.Equal(t, "VARCHAR", chain.StoreType("character varying"))
	assert.Empty(t, chain.StoreType(""))
	assert.Empty(t, ResolverChain{}.StoreType("string"))
}

func TestColumnDescriptor(t *testing.T) {
	t.Run("numeric_precision_wins", func(t *testing.T) {
		col := Column{
			Name:              "amount",
			DataType:          "numeric",
			NumericPrecision:  sql.NullInt64{Int64: 12, Valid: true},
			NumericScale:      sql.NullInt64{Int64: 4, Valid: true},
			DatetimePrecision: sql.NullInt64{Int64: 3, Valid: true},
		}
		d := col.Descriptor()
		assert.Equal(t, 12, *d.Precision)
		assert.Equal(t, 4, *d.Scale)
		assert.Nil(t, d.MaxLength)
		assert.Equal(t, "DECIMAL(12, 4)", formatter.BuildColumnType(PostgresTypeResolver{}, d))
	})

	t.Run("datetime_precision_fallback", func(t *testing.T) {
		col := Column{DataType: "time without time zone", DatetimePrecision: sql.NullInt64{Int64: 0, Valid: true}}
		assert.Equal(t, "TIME(0)", formatter.BuildColumnType(PostgresTypeResolver{}, col.Descriptor()))
	})

	t.Run("money_keeps_cents", func(t *testing.T) {
		col := Column{Name: "price", DataType: "money"}
		d := col.Descriptor()
		assert.Equal(t, 19, *d.Precision)
		assert.Equal(t, 2, *d.Scale)
		assert.Equal(t, "DECIMAL(19, 2)", formatter.BuildColumnType(PostgresTypeResolver{}, d))

		col.DataType = " MONEY "
		assert.Equal(t, "DECIMAL(19, 2)", formatter.BuildColumnType(PostgresTypeResolver{}, col.Descriptor()))
	})

	t.Run("money_with_reported_precision", func(t *testing.T) {
		col := Column{
			DataType:         "money",
			NumericPrecision: sql.NullInt64{Int64: 12, Valid: true},
			NumericScale:     sql.NullInt64{Int64: 4, Valid: true},
		}
		assert.Equal(t, "DECIMAL(12, 4)", formatter.BuildColumnType(PostgresTypeResolver{}, col.Descriptor()))
	})

	t.Run("row_version", func(t *testing.T) {
		col := Column{DataType: "bytea", IsRowVersion: true}
		assert.True(t, col.Descriptor().IsTimestamp)
	})
}

func TestAnnotations(t *testing.T) {
	var col Column
	assert.Nil(t, col.Annotation(formatter.AnnotationCollate))

	col.SetAnnotation(formatter.AnnotationCollate, "NoCase")
	col.SetAnnotation(formatter.AnnotationCollate, "RTrim")

	a := col.Annotation(formatter.AnnotationCollate)
	if assert.NotNil(t, a) {
		assert.Equal(t, "NoCase", a.PreviousValue)
		assert.Equal(t, "RTrim", a.NewValue)
	}

	var idx Index
	idx.SetAnnotation(formatter.AnnotationUnique, "OnConflict:Fail")
	assert.Equal(t, " ON CONFLICT FAIL", formatter.UniqueConflictText(idx.Annotation(formatter.AnnotationUnique)))
	assert.Nil(t, idx.Annotation(formatter.AnnotationCollate))
}
