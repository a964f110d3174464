package formatter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUniqueConflictText(t *testing.T) {
	tests := []struct {
		name       string
		annotation *AnnotationValue
		expected   string
	}{
		{name: "replace", annotation: &AnnotationValue{NewValue: "OnConflict:Replace"}, expected: " ON CONFLICT REPLACE"},
		{name: "rollback", annotation: &AnnotationValue{NewValue: "OnConflict:Rollback"}, expected: " ON CONFLICT ROLLBACK"},
		{name: "abort", annotation: &AnnotationValue{NewValue: "OnConflict:Abort"}, expected: " ON CONFLICT ABORT"},
		{name: "fail", annotation: &AnnotationValue{NewValue: "OnConflict:Fail"}, expected: " ON CONFLICT FAIL"},
		{name: "ignore_case_insensitive", annotation: &AnnotationValue{NewValue: "onconflict:ignore"}, expected: " ON CONFLICT IGNORE"},
		{name: "padded_action", annotation: &AnnotationValue{NewValue: "OnConflict: Replace "}, expected: " ON CONFLICT REPLACE"},
		{name: "none", annotation: &AnnotationValue{NewValue: "OnConflict:None"}, expected: ""},
		{name: "unknown_action", annotation: &AnnotationValue{NewValue: "OnConflict:Merge"}, expected: ""},
		{name: "empty_action", annotation: &AnnotationValue{NewValue: "OnConflict:"}, expected: ""},
		{name: "garbage", annotation: &AnnotationValue{NewValue: "Garbage"}, expected: ""},
		{name: "missing_colon", annotation: &AnnotationValue{NewValue: "OnConflict"}, expected: ""},
		{name: "leading_space_prefix", annotation: &AnnotationValue{NewValue: " OnConflict:Replace"}, expected: ""},
		{name: "nil_value", annotation: &AnnotationValue{}, expected: ""},
		{name: "non_string_value", annotation: &AnnotationValue{NewValue: 42}, expected: ""},
		{name: "absent", annotation: nil, expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, UniqueConflictText(tt.annotation))
		})
	}
}

func TestCollateFunctionText(t *testing.T) {
	tests := []struct {
		name       string
		annotation *AnnotationValue
		expected   string
	}{
		{name: "custom", annotation: &AnnotationValue{NewValue: "Custom:MY_COLLATE"}, expected: " COLLATE MY_COLLATE"},
		{name: "custom_trimmed", annotation: &AnnotationValue{NewValue: "Custom:  unicode_ci "}, expected: " COLLATE unicode_ci"},
		{name: "custom_without_name", annotation: &AnnotationValue{NewValue: "Custom"}, expected: " COLLATE "},
		{name: "custom_empty_name", annotation: &AnnotationValue{NewValue: "Custom:"}, expected: " COLLATE "},
		{name: "custom_blank_name", annotation: &AnnotationValue{NewValue: "Custom:   "}, expected: " COLLATE "},
		{name: "nocase", annotation: &AnnotationValue{NewValue: "NoCase"}, expected: " COLLATE NOCASE"},
		{name: "binary", annotation: &AnnotationValue{NewValue: "Binary"}, expected: " COLLATE BINARY"},
		{name: "rtrim_lower", annotation: &AnnotationValue{NewValue: "rtrim"}, expected: " COLLATE RTRIM"},
		{name: "parameter_ignored_for_builtin", annotation: &AnnotationValue{NewValue: "NoCase:whatever"}, expected: " COLLATE NOCASE"},
		{name: "none", annotation: &AnnotationValue{NewValue: "None"}, expected: ""},
		{name: "empty", annotation: &AnnotationValue{NewValue: ""}, expected: ""},
		{name: "unparseable", annotation: &AnnotationValue{NewValue: "Latin1:x"}, expected: ""},
		{name: "nil_value", annotation: &AnnotationValue{}, expected: ""},
		{name: "absent", annotation: nil, expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CollateFunctionText(tt.annotation))
		})
	}
}

type collationName string

func (c collationName) String() string { return string(c) }

func TestAnnotationValueText(t *testing.T) {
	assert.Equal(t, "", (*AnnotationValue)(nil).Text())
	assert.Equal(t, "NoCase", (&AnnotationValue{NewValue: "NoCase"}).Text())
	assert.Equal(t, "1.5", (&AnnotationValue{NewValue: 1.5}).Text())
	assert.Equal(t, "RTrim", (&AnnotationValue{NewValue: collationName("RTrim")}).Text())
	assert.Equal(t, " COLLATE RTRIM", CollateFunctionText(&AnnotationValue{NewValue: collationName("RTrim")}))
	assert.Equal(t, "", (&AnnotationValue{NewValue: struct{}{}}).Text())
}

func TestParseDirective(t *testing.T) {
	assert.Equal(t, Directive{Name: "NoCase"}, ParseDirective("NoCase"))
	assert.Equal(t, Directive{Name: "Custom", Parameter: "a:b", HasParameter: true}, ParseDirective("Custom:a:b"))
	assert.Equal(t, Directive{Name: "", Parameter: "", HasParameter: true}, ParseDirective(":"))
}

func TestEnumParsing(t *testing.T) {
	t.Run("conflict_actions_round_trip", func(t *testing.T) {
		for a := ConflictNone; a <= ConflictReplace; a++ {
			parsed, ok := ParseConflictAction(a.String())
			assert.True(t, ok)
			assert.Equal(t, a, parsed)
		}
		_, ok := ParseConflictAction("5")
		assert.False(t, ok)
	})

	t.Run("collation_functions_round_trip", func(t *testing.T) {
		for c := CollationNone; c <= CollationCustom; c++ {
			parsed, ok := ParseCollationFunction(c.String())
			assert.True(t, ok)
			assert.Equal(t, c, parsed)
		}
	})

	t.Run("out_of_range", func(t *testing.T) {
		assert.Equal(t, "Unknown", ConflictAction(99).String())
		assert.Equal(t, "Unknown", CollationFunction(-1).String())
		assert.Empty(t, ConflictClause(ConflictAction(99)))
		assert.Empty(t, CollateClause(CollationFunction(99), ""))
	})
}

func TestTypedClauses(t *testing.T) {
	assert.Equal(t, " ON CONFLICT IGNORE", ConflictClause(ConflictIgnore))
	assert.Empty(t, ConflictClause(ConflictNone))
	assert.Equal(t, " COLLATE NOCASE", CollateClause(CollationNoCase, "ignored"))
	assert.Equal(t, " COLLATE my_fn", CollateClause(CollationCustom, "my_fn"))
	assert.Equal(t, " COLLATE ", CollateClause(CollationCustom, " "))
	assert.Empty(t, CollateClause(CollationNone, "x"))
}
