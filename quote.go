package litemigrate

import "strings"

// QuoteIdentifier wraps a schema, table, or column name in backticks, doubling
// any embedded backtick. An empty name yields a bare pair of backticks.
func QuoteIdentifier(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

// QuoteQualifiedName quotes a possibly dotted name. Each dot-delimited segment
// is quoted independently and the segments are rejoined with a literal dot, so
// "a.b" becomes `a`.`b`. Dots inside a segment cannot be escaped; they always
// act as separators.
func QuoteQualifiedName(name string) string {
	parts := strings.Split(name, ".")
	for i, p := range parts {
		parts[i] = QuoteIdentifier(p)
	}
	return strings.Join(parts, ".")
}

// quoteString renders a SQL string literal, doubling embedded single quotes.
func quoteString(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// asciiLower folds ASCII upper-case letters only. SQLite's built-in lower()
// and NOCASE comparisons are ASCII-only even under ICU builds, so name
// matching must not use Unicode-aware lowering.
func asciiLower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}
