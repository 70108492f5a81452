package litemigrate

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
)

// typeTables is the immutable type-mapping configuration, built once and
// injected into the adapter.
//
// Native names sometimes carry an affinity suffix (_integer, _text, _blob,
// _real) whose only purpose is steering SQLite's affinity inference away from
// NUMERIC; the suffix is stripped again when mapping back.
type typeTables struct {
	toNative    map[string]string
	fromNative  map[string]string
	aliases     map[string]string
	unsupported map[string]bool
}

func defaultTypeTables() typeTables {
	toNative := map[string]string{
		TypeBigInteger:   "biginteger",
		TypeBinary:       "binary_blob",
		TypeBlob:         "blob",
		TypeBoolean:      "boolean_integer",
		TypeChar:         "char",
		TypeDate:         "date_text",
		TypeDatetime:     "datetime_text",
		TypeDouble:       "double",
		TypeFloat:        "float",
		TypeInteger:      "integer",
		TypeJSON:         "json_text",
		TypeJSONB:        "jsonb_text",
		TypeSmallInteger: "smallinteger",
		TypeString:       "varchar",
		TypeText:         "text",
		TypeTime:         "time_text",
		TypeTimestamp:    "timestamp_text",
		TypeTinyInteger:  "tinyinteger",
		TypeUUID:         "uuid_text",
		TypeVarbinary:    "varbinary_blob",
	}

	fromNative := make(map[string]string, len(toNative))
	for tag, native := range toNative {
		fromNative[native] = tag
	}

	// Legacy spellings found when introspecting schemas the adapter did not
	// create itself.
	aliases := map[string]string{
		"bigint":     TypeBigInteger,
		"int":        TypeInteger,
		"longblob":   TypeBlob,
		"longtext":   TypeText,
		"mediumblob": TypeBlob,
		"mediumint":  TypeInteger,
		"mediumtext": TypeText,
		"real":       TypeFloat,
		"smallint":   TypeSmallInteger,
		"tinyblob":   TypeBlob,
		"tinyint":    TypeTinyInteger,
		"tinytext":   TypeText,
		"varchar":    TypeString,
	}

	unsupported := map[string]bool{
		"bit":        true,
		"cidr":       true,
		"decimal":    true,
		"enum":       true,
		"filestream": true,
		"geometry":   true,
		"inet":       true,
		"interval":   true,
		"linestring": true,
		"macaddr":    true,
		"point":      true,
		"polygon":    true,
		"set":        true,
	}

	return typeTables{
		toNative:    toNative,
		fromNative:  fromNative,
		aliases:     aliases,
		unsupported: unsupported,
	}
}

// typeToNative maps an abstract type to its SQLite declared type. Literal
// types pass through unchanged; recognized-but-unsupported and unknown tags
// fail with distinct ErrUnsupportedType messages, never a silent substitute.
func (tt typeTables) typeToNative(t TypeSpec, limit int) (string, int, error) {
	if t.Literal {
		return t.Name, limit, nil
	}
	tag := asciiLower(t.Name)
	if native, ok := tt.toNative[tag]; ok {
		return native, limit, nil
	}
	if tt.unsupported[tag] {
		return "", 0, fmt.Errorf("column type %q is not supported by SQLite: %w", t.Name, ErrUnsupportedType)
	}
	return "", 0, fmt.Errorf("column type %q is not known by SQLite: %w", t.Name, ErrUnsupportedType)
}

// nativeTypeRe parses BASENAME[_affinity][(limit[,scale])]. Declarations that
// do not fit (multi-word types, expressions) become opaque literal types.
var nativeTypeRe = regexp.MustCompile(`(?i)^\s*([a-z][a-z0-9]*)(_(?:integer|text|blob|real))?\s*(?:\(\s*(\d+)\s*(?:,\s*(\d+)\s*)?\))?\s*$`)

// nativeToType maps a declared SQLite type back to the abstract model. A nil
// declaration (SQLite permits columns with no type at all) yields the zero
// TypeSpec, distinct from an empty-string literal.
func (tt typeTables) nativeToType(def *string) (t TypeSpec, limit, scale int) {
	if def == nil {
		return TypeSpec{}, 0, 0
	}
	m := nativeTypeRe.FindStringSubmatch(*def)
	if m == nil {
		return LiteralType(*def), 0, 0
	}

	base := asciiLower(m[1])
	suffix := asciiLower(m[2])
	if m[3] != "" {
		limit, _ = strconv.Atoi(m[3])
	}
	if m[4] != "" {
		scale, _ = strconv.Atoi(m[4])
	}

	if base == "tinyint" && limit == 1 {
		return Type(TypeBoolean), 0, 0
	}
	if tag, ok := tt.fromNative[base+suffix]; ok {
		return Type(tag), limit, scale
	}
	if tag, ok := tt.aliases[base+suffix]; ok {
		return Type(tag), limit, scale
	}
	return LiteralType(*def), 0, 0
}

// SupportedTypes lists the abstract type tags the adapter can synthesize DDL
// for, in ascending order.
func (a *Adapter) SupportedTypes() []string {
	tags := make([]string, 0, len(a.types.toNative))
	for tag := range a.types.toNative {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// IsValidColumnType reports whether DDL can be synthesized for the column's
// type: any literal type, or any supported abstract tag. Recognized but
// unsupported tags are invalid.
func (a *Adapter) IsValidColumnType(col Column) bool {
	if col.Type.Literal {
		return true
	}
	_, ok := a.types.toNative[asciiLower(col.Type.Name)]
	return ok
}
