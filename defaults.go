package litemigrate

import (
	"regexp"
	"strconv"
	"strings"
)

// The engine's metadata catalog can return a default value with the inline
// comment that followed it in the CREATE statement, so every pattern accepts
// and discards a trailing comment.
const defaultTail = `(?:\s*(?:--[^\n\r]*|/\*(?s:.*?)\*/))?\s*$`

var (
	defaultStringRe  = regexp.MustCompile(`(?s)^'((?:[^']|'')*)'` + defaultTail)
	defaultMagicRe   = regexp.MustCompile(`(?i)^(current_date|current_time|current_timestamp)` + defaultTail)
	defaultNumericRe = regexp.MustCompile(`^([+-]?(?:\d+(?:\.\d*)?|\.\d+)(?:[eE][+-]?\d+)?)` + defaultTail)
	defaultHexRe     = regexp.MustCompile(`(?i)^0x([0-9a-f]+)` + defaultTail)
	defaultBoolRe    = regexp.MustCompile(`(?i)^(true|false)` + defaultTail)
	defaultNullRe    = regexp.MustCompile(`(?i)^null` + defaultTail)
	trailingComment  = regexp.MustCompile(`\s*(?:--[^\n\r]*|/\*(?s:.*?)\*/)\s*$`)
)

// parseDefault classifies a raw stored default expression into nil, bool,
// int64, float64, a string literal, a canonical magic timestamp keyword, or
// an opaque expression string. First match wins; the hexadecimal form is a
// separate pattern because hex digits do not fit the numeric literal shape.
func parseDefault(raw *string, colType TypeSpec) any {
	if raw == nil {
		return nil
	}
	v := strings.TrimSpace(*raw)

	if m := defaultStringRe.FindStringSubmatch(v); m != nil {
		return strings.ReplaceAll(m[1], "''", "'")
	}
	if m := defaultMagicRe.FindStringSubmatch(v); m != nil {
		return strings.ToUpper(m[1])
	}
	if m := defaultNumericRe.FindStringSubmatch(v); m != nil {
		f, err := strconv.ParseFloat(m[1], 64)
		if err == nil {
			if asciiLower(colType.Name) == TypeBoolean && !colType.Literal {
				return f != 0
			}
			if !strings.ContainsAny(m[1], ".eE") {
				if n, err := strconv.ParseInt(m[1], 10, 64); err == nil {
					return n
				}
			}
			return f
		}
	}
	if m := defaultHexRe.FindStringSubmatch(v); m != nil {
		if n, err := strconv.ParseInt(m[1], 16, 64); err == nil {
			return n
		}
	}
	if m := defaultBoolRe.FindStringSubmatch(v); m != nil {
		return asciiLower(m[1]) == "true"
	}
	if defaultNullRe.MatchString(v) {
		return nil
	}
	return strings.TrimSpace(trailingComment.ReplaceAllString(v, ""))
}
