// Package formatter translates column metadata and schema annotations into
// SQLite DDL fragments: column type fragments, quoted identifiers and
// ON CONFLICT / COLLATE clause suffixes. It never executes or validates SQL;
// callers assemble the fragments into full statements, usually through an
// IndentedWriter.
package formatter

import (
	"strconv"
	"strings"
)

const (
	// RowVersionKeyword is emitted for engine-maintained row-versioning columns.
	RowVersionKeyword = "rowversion"
	// MaxSuffix marks an unbounded length type such as "nvarchar(max)".
	MaxSuffix = "(max)"

	DefaultStringMaxLength  = 255
	DefaultNumericPrecision = 10
	DefaultNumericScale     = 0
	DefaultTimePrecision    = 7
)

// ColumnDescriptor is a snapshot of the metadata of one column.
// Nil pointers mean the value was not declared.
type ColumnDescriptor struct {
	Name string
	// StoreType is the declared dialect type. When blank the type is resolved
	// from SemanticType.
	StoreType    string
	SemanticType string
	Nullable     bool
	Precision    *int
	Scale        *int
	MaxLength    *int
	IsTimestamp  bool
}

// TypeResolver maps a semantic type to a SQLite base type name.
type TypeResolver interface {
	StoreType(semanticType string) string
}

// TypeResolverFunc adapts a plain function to TypeResolver.
type TypeResolverFunc func(semanticType string) string

func (f TypeResolverFunc) StoreType(semanticType string) string {
	return f(semanticType)
}

// SuffixKind tells which descriptor fields the suffix of a store type is
// built from.
type SuffixKind int

const (
	SuffixNone SuffixKind = iota
	SuffixPrecisionScale
	SuffixPrecision
	SuffixLength
)

var categories = map[string]SuffixKind{
	"DECIMAL":   SuffixPrecisionScale,
	"NUMERIC":   SuffixPrecisionScale,
	"DATETIME":  SuffixPrecision,
	"TIME":      SuffixPrecision,
	"BLOB":      SuffixLength,
	"VARCHAR":   SuffixLength,
	"VARCHAR2":  SuffixLength,
	"CHAR":      SuffixLength,
	"NVARCHAR":  SuffixLength,
	"NVARCHAR2": SuffixLength,
}

// SuffixKindOf returns the suffix kind of a bare store type, ignoring case.
func SuffixKindOf(storeType string) SuffixKind {
	return categories[strings.ToUpper(strings.TrimSpace(storeType))]
}

// BuildColumnType returns the type fragment of a column definition.
// Row-versioning columns always map to RowVersionKeyword.
func BuildColumnType(resolver TypeResolver, column *ColumnDescriptor) string {
	if column == nil {
		return ""
	}
	if column.IsTimestamp {
		return RowVersionKeyword
	}
	return BuildPropertyType(resolver, column)
}

// BuildPropertyType returns the store type of column followed by its
// precision, scale or length suffix, e.g. "DECIMAL(10, 0)" or "VARCHAR(255)".
// The declared store type wins over the resolver; the casing of the base type
// is kept as is.
func BuildPropertyType(resolver TypeResolver, column *ColumnDescriptor) string {
	if resolver == nil || column == nil {
		return ""
	}

	storeType := column.StoreType
	if strings.TrimSpace(storeType) == "" {
		storeType = resolver.StoreType(column.SemanticType)
	}
	if storeType == "" || strings.HasSuffix(storeType, MaxSuffix) {
		return storeType
	}

	switch categories[strings.ToUpper(storeType)] {
	case SuffixPrecisionScale:
		return storeType + "(" + strconv.Itoa(valueOr(column.Precision, DefaultNumericPrecision)) +
			", " + strconv.Itoa(valueOr(column.Scale, DefaultNumericScale)) + ")"
	case SuffixPrecision:
		return storeType + "(" + strconv.Itoa(valueOr(column.Precision, DefaultTimePrecision)) + ")"
	case SuffixLength:
		return storeType + "(" + strconv.Itoa(valueOr(column.MaxLength, DefaultStringMaxLength)) + ")"
	default:
		return storeType
	}
}

func valueOr(v *int, def int) int {
	if v == nil {
		return def
	}
	return *v
}

// IntPtr returns a pointer to v, for filling optional descriptor fields.
func IntPtr(v int) *int {
	return &v
}
