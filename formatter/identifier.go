package formatter

import (
	"sort"
	"strings"
)

// IsReserved reports whether word is a SQLite keyword, ignoring case.
func IsReserved(word string) bool {
	_, ok := reservedWords[strings.ToUpper(word)]
	return ok
}

// QuoteIfReserved wraps word in double quotes when it collides with a SQLite
// keyword. Other identifiers are returned unchanged.
func QuoteIfReserved(word string) string {
	if word == "" {
		return ""
	}
	if IsReserved(word) {
		return `"` + word + `"`
	}
	return word
}

// ReservedWords returns the keyword set in sorted order.
func ReservedWords() []string {
	words := make([]string, 0, len(reservedWords))
	for w := range reservedWords {
		words = append(words, w)
	}
	sort.Strings(words)
	return words
}

// RemoveDbo strips every "dbo." schema prefix; SQLite has no schemas.
func RemoveDbo(s string) string {
	return strings.ReplaceAll(s, "dbo.", "")
}
