package deriver

import (
	"strings"
	"unicode"
)

// goName converts a schema name into an exported Go identifier: invalid
// runes become underscores, the first rune is upper-cased, and names that
// would start with a digit get a leading X.
func goName(name string) string {
	if name == "" {
		return "X"
	}

	var b strings.Builder
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	out := b.String()

	runes := []rune(out)
	if unicode.IsDigit(runes[0]) {
		return "X" + out
	}
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

// camelModule converts a generated module name like "types_devc" into a
// CamelCase prefix like "TypesDevc" for barrel aliases.
func camelModule(module string) string {
	parts := strings.Split(module, "_")
	var b strings.Builder
	for _, p := range parts {
		if p == "" {
			continue
		}
		b.WriteString(strings.ToUpper(p[:1]))
		b.WriteString(p[1:])
	}
	return b.String()
}

// ExportPrefix returns the CamelCase form of a generated module name, used
// by the barrel module to prefix re-export aliases.
func ExportPrefix(module string) string {
	return camelModule(module)
}

// constName builds an enumeration constant identifier from its type name
// and literal value.
func constName(typeName, literal string) string {
	cleaned := goName(literal)
	return typeName + cleaned
}
