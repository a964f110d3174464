package formatter

import (
	"strings"

	"github.com/spf13/cast"
)

// Annotation names understood by the DDL generators.
const (
	AnnotationUnique  = "Unique"
	AnnotationCollate = "Collate"
)

const conflictDirective = "OnConflict"

// AnnotationValue is the change record of a named schema annotation.
// NewValue carries directive text of the form "Directive" or
// "Directive:Parameter".
type AnnotationValue struct {
	PreviousValue any
	NewValue      any
}

// Text returns NewValue as locale-invariant display text. Values that cannot
// be converted yield an empty string.
func (a *AnnotationValue) Text() string {
	if a == nil {
		return ""
	}
	s, err := cast.ToStringE(a.NewValue)
	if err != nil {
		return ""
	}
	return s
}

// Directive is the parsed form of "Name" or "Name:Parameter".
type Directive struct {
	Name         string
	Parameter    string
	HasParameter bool
}

// ParseDirective splits text on its first colon.
func ParseDirective(text string) Directive {
	name, param, found := strings.Cut(text, ":")
	return Directive{Name: name, Parameter: param, HasParameter: found}
}

// ConflictAction is the SQLite conflict resolution algorithm of a constraint.
type ConflictAction int

const (
	ConflictNone ConflictAction = iota
	ConflictRollback
	ConflictAbort
	ConflictFail
	ConflictIgnore
	ConflictReplace
)

var conflictActionNames = []string{"None", "Rollback", "Abort", "Fail", "Ignore", "Replace"}

func (a ConflictAction) String() string {
	if a < 0 || int(a) >= len(conflictActionNames) {
		return "Unknown"
	}
	return conflictActionNames[a]
}

// ParseConflictAction parses an action name, ignoring case and surrounding
// whitespace.
func ParseConflictAction(s string) (ConflictAction, bool) {
	i, ok := lookupName(conflictActionNames, s)
	return ConflictAction(i), ok
}

// CollationFunction is a SQLite collating sequence.
type CollationFunction int

const (
	CollationNone CollationFunction = iota
	CollationBinary
	CollationNoCase
	CollationRTrim
	// CollationCustom refers to a user-registered collating function whose
	// name travels as the directive parameter.
	CollationCustom
)

var collationFunctionNames = []string{"None", "Binary", "NoCase", "RTrim", "Custom"}

func (c CollationFunction) String() string {
	if c < 0 || int(c) >= len(collationFunctionNames) {
		return "Unknown"
	}
	return collationFunctionNames[c]
}

// ParseCollationFunction parses a collation name, ignoring case and
// surrounding whitespace.
func ParseCollationFunction(s string) (CollationFunction, bool) {
	i, ok := lookupName(collationFunctionNames, s)
	return CollationFunction(i), ok
}

func lookupName(names []string, s string) (int, bool) {
	s = strings.TrimSpace(s)
	for i, name := range names {
		if strings.EqualFold(name, s) {
			return i, true
		}
	}
	return 0, false
}

// UniqueConflictText returns the " ON CONFLICT <ACTION>" suffix encoded by an
// annotation of the form "OnConflict:<Action>". Absent, malformed or None
// annotations yield an empty string.
func UniqueConflictText(annotation *AnnotationValue) string {
	if annotation == nil {
		return ""
	}
	d := ParseDirective(annotation.Text())
	if !d.HasParameter || !strings.EqualFold(d.Name, conflictDirective) {
		return ""
	}
	action, ok := ParseConflictAction(d.Parameter)
	if !ok {
		return ""
	}
	return ConflictClause(action)
}

// ConflictClause returns the ON CONFLICT suffix for action, or an empty
// string for ConflictNone and unknown values.
func ConflictClause(action ConflictAction) string {
	if action <= ConflictNone || int(action) >= len(conflictActionNames) {
		return ""
	}
	return " ON CONFLICT " + strings.ToUpper(action.String())
}

// CollateFunctionText returns the " COLLATE <NAME>" suffix encoded by an
// annotation of the form "<Function>" or "Custom:<name>". Absent, malformed
// or None annotations yield an empty string.
func CollateFunctionText(annotation *AnnotationValue) string {
	if annotation == nil {
		return ""
	}
	d := ParseDirective(annotation.Text())
	fn, ok := ParseCollationFunction(d.Name)
	if !ok {
		return ""
	}
	return CollateClause(fn, d.Parameter)
}

// CollateClause returns the COLLATE suffix for fn. The custom name is only
// used with CollationCustom and is emitted verbatim after trimming, even when
// that leaves it empty.
func CollateClause(fn CollationFunction, custom string) string {
	switch {
	case fn == CollationCustom:
		return " COLLATE " + strings.TrimSpace(custom)
	case fn <= CollationNone || int(fn) >= len(collationFunctionNames):
		return ""
	default:
		return " COLLATE " + strings.ToUpper(fn.String())
	}
}
