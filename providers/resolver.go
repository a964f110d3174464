package providers

import (
	"sort"
	"strings"

	"github.com/alc6/mig2sqlite/formatter"
)

// PostgresTypeResolver maps information_schema data types of PostgreSQL to
// SQLite store types. Unknown types are upper-cased and passed through.
type PostgresTypeResolver struct{}

var _ formatter.TypeResolver = PostgresTypeResolver{}

func (PostgresTypeResolver) StoreType(dataType string) string {
	switch strings.ToLower(strings.TrimSpace(dataType)) {
	case "":
		return ""
	case "character varying", "varchar":
		return "VARCHAR"
	case "character", "char", "bpchar":
		return "CHAR"
	case "text", "citext", "name":
		return "TEXT"
	case "integer", "int", "int4", "serial":
		return "INTEGER"
	case "bigint", "int8", "bigserial":
		return "BIGINT"
	case "smallint", "int2", "smallserial":
		return "SMALLINT"
	case "boolean", "bool":
		return "BOOLEAN"
	case "real", "float4":
		return "REAL"
	case "double precision", "float8":
		return "DOUBLE"
	case "numeric", "decimal", "money":
		return "DECIMAL"
	case "timestamp without time zone", "timestamp with time zone", "timestamp", "timestamptz":
		return "DATETIME"
	case "time without time zone", "time with time zone", "time", "timetz":
		return "TIME"
	case "date":
		return "DATE"
	case "bytea":
		return "BLOB"
	case "bit", "bit varying", "varbit":
		return "INTEGER"
	case "uuid", "interval", "json", "jsonb", "xml", "cidr", "inet", "macaddr",
		"tsvector", "tsquery", "array", "user-defined":
		return "TEXT"
	default:
		return strings.ToUpper(dataType)
	}
}

// SemanticTypeResolver maps abstract, dialect independent type names to
// SQLite store types.
type SemanticTypeResolver struct{}

var _ formatter.TypeResolver = SemanticTypeResolver{}

var semanticStoreTypes = map[string]string{
	"binary":         "blob",
	"bytes":          "blob",
	"boolean":        "bit",
	"bool":           "bit",
	"byte":           "tinyint",
	"sbyte":          "smallint",
	"int16":          "smallint",
	"int32":          "int",
	"int":            "int",
	"int64":          "integer",
	"single":         "real",
	"float":          "real",
	"double":         "float",
	"decimal":        "decimal",
	"string":         "nvarchar",
	"ansistring":     "varchar",
	"fixedstring":    "nchar",
	"datetime":       "datetime",
	"datetimeoffset": "datetime",
	"time":           "time",
	"date":           "date",
	"guid":           "uniqueidentifier",
	"uuid":           "uniqueidentifier",
}

func (SemanticTypeResolver) StoreType(semanticType string) string {
	return semanticStoreTypes[strings.ToLower(strings.TrimSpace(semanticType))]
}

// SemanticTypes returns the sorted names understood by SemanticTypeResolver.
func SemanticTypes() []string {
	names := make([]string, 0, len(semanticStoreTypes))
	for name := range semanticStoreTypes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ResolverChain asks each resolver in turn and returns the first non-empty
// store type.
type ResolverChain []formatter.TypeResolver

func (c ResolverChain) StoreType(semanticType string) string {
	for _, r := range c {
		if st := r.StoreType(semanticType); st != "" {
			return st
		}
	}
	return ""
}
