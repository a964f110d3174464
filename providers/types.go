package providers

import (
	"database/sql"
	"strings"

	"github.com/alc6/mig2sqlite/formatter"
)

// Table represents a database table with its columns and indexes
type Table struct {
	Name    string
	Columns []Column
	Indexes []Index
}

// Column represents a database column
type Column struct {
	Name string
	// DataType is the semantic type reported by the source database, resolved
	// into a SQLite type when StoreType is empty.
	DataType string
	// StoreType is a SQLite type declared by the source, without arguments.
	StoreType         string
	IsNullable        bool
	DefaultValue      sql.NullString
	IsPrimaryKey      bool
	IsRowVersion      bool
	CharacterLength   sql.NullInt64
	NumericPrecision  sql.NullInt64
	NumericScale      sql.NullInt64
	DatetimePrecision sql.NullInt64
	Annotations       map[string]formatter.AnnotationValue
}

// Index represents a database index
type Index struct {
	Name        string
	Columns     []string
	IsUnique    bool
	Annotations map[string]formatter.AnnotationValue
}

// Descriptor returns the formatter view of the column.
func (c Column) Descriptor() *formatter.ColumnDescriptor {
	d := &formatter.ColumnDescriptor{
		Name:         c.Name,
		StoreType:    c.StoreType,
		SemanticType: c.DataType,
		Nullable:     c.IsNullable,
		IsTimestamp:  c.IsRowVersion,
		Scale:        nullIntPtr(c.NumericScale),
		MaxLength:    nullIntPtr(c.CharacterLength),
	}
	switch {
	case c.NumericPrecision.Valid:
		d.Precision = nullIntPtr(c.NumericPrecision)
	case isMoney(c.DataType) && !c.NumericScale.Valid:
		// money reports no precision but always carries two fractional digits
		d.Precision, d.Scale = formatter.IntPtr(moneyPrecision), formatter.IntPtr(moneyScale)
	default:
		d.Precision = nullIntPtr(c.DatetimePrecision)
	}
	return d
}

// Annotation returns the named annotation, or nil when absent.
func (c Column) Annotation(name string) *formatter.AnnotationValue {
	return lookupAnnotation(c.Annotations, name)
}

// Annotation returns the named annotation, or nil when absent.
func (i Index) Annotation(name string) *formatter.AnnotationValue {
	return lookupAnnotation(i.Annotations, name)
}

func lookupAnnotation(annotations map[string]formatter.AnnotationValue, name string) *formatter.AnnotationValue {
	a, ok := annotations[name]
	if !ok {
		return nil
	}
	return &a
}

// SetAnnotation records value under name, creating the map when needed.
func (c *Column) SetAnnotation(name string, value any) {
	if c.Annotations == nil {
		c.Annotations = make(map[string]formatter.AnnotationValue)
	}
	c.Annotations[name] = formatter.AnnotationValue{PreviousValue: c.Annotations[name].NewValue, NewValue: value}
}

// SetAnnotation records value under name, creating the map when needed.
func (i *Index) SetAnnotation(name string, value any) {
	if i.Annotations == nil {
		i.Annotations = make(map[string]formatter.AnnotationValue)
	}
	i.Annotations[name] = formatter.AnnotationValue{PreviousValue: i.Annotations[name].NewValue, NewValue: value}
}

const (
	moneyPrecision = 19
	moneyScale     = 2
)

func isMoney(dataType string) bool {
	return strings.EqualFold(strings.TrimSpace(dataType), "money")
}

func nullIntPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	return formatter.IntPtr(int(v.Int64))
}
