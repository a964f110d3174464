package providers

import (
	"database/sql"
	"regexp"
	"strings"
)

// pgCastSuffix matches trailing PostgreSQL casts such as ::character varying
// or ::text[].
var pgCastSuffix = regexp.MustCompile(`(::[A-Za-z_][A-Za-z0-9_ ]*(\[\])?)+$`)

// sqliteDefault rewrites a column default into an expression SQLite accepts.
// Sequence defaults are dropped, SQLite assigns rowids itself.
func sqliteDefault(v sql.NullString) (string, bool) {
	if !v.Valid {
		return "", false
	}
	expr := strings.TrimSpace(v.String)
	if expr == "" || strings.Contains(strings.ToLower(expr), "nextval(") {
		return "", false
	}

	expr = strings.TrimSpace(pgCastSuffix.ReplaceAllString(expr, ""))
	// '42'::integer leaves a parenthesised literal behind in some catalogs
	if enclosedInParens(expr) && !strings.Contains(expr[1:len(expr)-1], "(") {
		expr = strings.TrimSpace(expr[1 : len(expr)-1])
	}

	switch strings.ToLower(expr) {
	case "now()", "current_timestamp", "localtimestamp", "transaction_timestamp()", "statement_timestamp()":
		return "CURRENT_TIMESTAMP", true
	case "current_date":
		return "CURRENT_DATE", true
	case "current_time", "localtime":
		return "CURRENT_TIME", true
	case "true":
		return "1", true
	case "false":
		return "0", true
	case "null":
		return "NULL", true
	}

	if isLiteral(expr) {
		return expr, true
	}
	// Any other expression must be parenthesised in a SQLite DEFAULT clause.
	return "(" + expr + ")", true
}

func isLiteral(expr string) bool {
	if strings.HasPrefix(expr, "'") && strings.HasSuffix(expr, "'") && len(expr) >= 2 {
		return true
	}
	if enclosedInParens(expr) {
		return true
	}
	s := strings.TrimPrefix(strings.TrimPrefix(expr, "-"), "+")
	if s == "" {
		return false
	}
	dot := false
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
		case r == '.' && !dot:
			dot = true
		default:
			return false
		}
	}
	return true
}

// enclosedInParens reports whether the first "(" of expr is closed by its
// final ")". Parentheses inside single-quoted strings are ignored.
func enclosedInParens(expr string) bool {
	if len(expr) < 2 || expr[0] != '(' || expr[len(expr)-1] != ')' {
		return false
	}
	depth := 0
	quoted := false
	for i := 0; i < len(expr); i++ {
		switch c := expr[i]; {
		case c == '\'':
			quoted = !quoted
		case quoted:
		case c == '(':
			depth++
		case c == ')':
			depth--
			if depth == 0 && i != len(expr)-1 {
				return false
			}
		}
	}
	return depth == 0
}
