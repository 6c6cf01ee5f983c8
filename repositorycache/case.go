package repositorycache

import (
	"reflect"
	"strings"
	"unicode"
)

// Namespace returns the cache namespace New derives for T, so
// *billing.InvoiceLine becomes "invoice_line".
func Namespace[T any]() string {
	rt := reflect.TypeOf((*T)(nil)).Elem()
	for rt.Kind() == reflect.Ptr {
		rt = rt.Elem()
	}
	name := rt.Name()
	if name == "" {
		name = rt.String()
	}
	return toSnake(name)
}

// toSnake splits s into lower case words joined by underscores. Anything
// that is not a letter or digit separates words, so generic brackets in
// reflected names vanish.
func toSnake(s string) string {
	runes := []rune(s)
	words := make([]string, 0, 4)
	word := make([]rune, 0, len(runes))

	flush := func() {
		if len(word) > 0 {
			words = append(words, string(word))
			word = word[:0]
		}
	}

	for i, r := range runes {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			flush()
			continue
		}
		if len(word) > 0 && startsWord(runes[i-1], r, peek(runes, i+1)) {
			flush()
		}
		word = append(word, unicode.ToLower(r))
	}
	flush()

	return strings.Join(words, "_")
}

// startsWord reports whether r opens a new word after prev. An upper case
// run ends before its last letter when that letter leads a lower case word,
// as in HTTPServer.
func startsWord(prev, r, next rune) bool {
	switch {
	case unicode.IsUpper(r):
		return !unicode.IsUpper(prev) || unicode.IsLower(next)
	case unicode.IsDigit(r):
		return !unicode.IsDigit(prev)
	}
	return false
}

func peek(runes []rune, i int) rune {
	if i < len(runes) {
		return runes[i]
	}
	return 0
}
