package util

import (
	"strings"
	"unicode"
)

// ToSnakeCase lowers a PascalCase or camelCase name into snake_case. A run of
// capitals is kept together as one word ("HTTPSConnection" -> "https_connection").
func ToSnakeCase(s string) string {
	runes := []rune(s)
	var b strings.Builder
	for i, r := range runes {
		if i > 0 && unicode.IsUpper(r) {
			prevUpper := unicode.IsUpper(runes[i-1])
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if (!prevUpper || nextLower) && runes[i-1] != '_' {
				b.WriteByte('_')
			}
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

// ModuleIdent turns a configured module name into the identifier used for
// the generated package or crate: dashes and dots become underscores and the
// result is snake_case.
func ModuleIdent(module string) string {
	replaced := strings.Map(func(r rune) rune {
		switch r {
		case '-', '.', ' ':
			return '_'
		}
		return r
	}, module)
	return ToSnakeCase(replaced)
}

// EscapeReserved applies escape to name when it is in reserved.
func EscapeReserved(name string, reserved map[string]bool, escape func(string) string) string {
	if reserved[name] {
		return escape(name)
	}
	return name
}
