package litemigrate

import (
	"fmt"
	"regexp"
	"strings"
)

// statementPatcher rewrites a captured CREATE TABLE statement for the
// rebuild-by-copy engine. This is text surgery standing in for a SQL parser;
// it is isolated here so the patterns can be exercised directly by fixture
// tests.
type statementPatcher interface {
	renameColumnIn(createSQL, oldName, newName string) (string, error)
	retypeColumnIn(createSQL, name, newDef string) (string, error)
	dropColumnIn(createSQL, name string) (string, error)
	addPrimaryKeyIn(createSQL string, columns []string) (string, error)
	dropPrimaryKeyIn(createSQL string) (string, error)
	addForeignKeyIn(createSQL, clause string) (string, error)
	dropForeignKeyIn(createSQL string, columns []string) (string, error)
}

type regexPatcher struct{}

// identAlternatives matches a column name as it may appear in stored DDL:
// bare, backtick-, double-quote-, bracket-, or single-quote-delimited.
func identAlternatives(name string) string {
	variants := []string{
		regexp.QuoteMeta("`" + strings.ReplaceAll(name, "`", "``") + "`"),
		regexp.QuoteMeta(`"` + strings.ReplaceAll(name, `"`, `""`) + `"`),
		regexp.QuoteMeta("[" + name + "]"),
		regexp.QuoteMeta("'" + strings.ReplaceAll(name, "'", "''") + "'"),
		regexp.QuoteMeta(name),
	}
	return "(?:" + strings.Join(variants, "|") + ")"
}

// columnDef locates a column's definition fragment inside the CREATE body.
// The definition runs from the identifier to the comma or closing parenthesis
// that terminates it; comments, string literals, and one level of
// parenthesized groups (type widths, simple default expressions) are skipped.
type columnDef struct {
	identStart int
	identEnd   int
	defEnd     int // index of the terminating ',' or ')'
	term       byte
}

func findColumnDef(createSQL, name string) (columnDef, bool) {
	body := strings.Index(createSQL, "(")
	if body < 0 {
		return columnDef{}, false
	}
	// The definition region must begin with whitespace (or end immediately at
	// the terminator) so a bare name cannot match inside a longer word.
	pattern := fmt.Sprintf(
		`(?is)(^|[(,\s])(%s)(\s(?:/\*.*?\*/|'[^']*'|\([^)]*\)|[^,()])*)?([,)])`,
		identAlternatives(name),
	)
	m := regexp.MustCompile(pattern).FindStringSubmatchIndex(createSQL[body:])
	if m == nil {
		return columnDef{}, false
	}
	d := columnDef{
		identStart: body + m[4],
		identEnd:   body + m[5],
		defEnd:     body + m[8],
		term:       createSQL[body+m[8]],
	}
	return d, true
}

func (regexPatcher) renameColumnIn(createSQL, oldName, newName string) (string, error) {
	d, ok := findColumnDef(createSQL, oldName)
	if !ok {
		return "", fmt.Errorf("column %q not found in %q", oldName, createSQL)
	}
	return createSQL[:d.identStart] + QuoteIdentifier(newName) + createSQL[d.identEnd:], nil
}

func (regexPatcher) retypeColumnIn(createSQL, name, newDef string) (string, error) {
	d, ok := findColumnDef(createSQL, name)
	if !ok {
		return "", fmt.Errorf("column %q not found in %q", name, createSQL)
	}
	return createSQL[:d.identStart] + newDef + createSQL[d.defEnd:], nil
}

func (regexPatcher) dropColumnIn(createSQL, name string) (string, error) {
	d, ok := findColumnDef(createSQL, name)
	if !ok {
		return "", fmt.Errorf("column %q not found in %q", name, createSQL)
	}
	start := d.identStart
	for start > 0 && (createSQL[start-1] == ' ' || createSQL[start-1] == '\t' || createSQL[start-1] == '\n' || createSQL[start-1] == '\r') {
		start--
	}
	if d.term == ',' {
		return createSQL[:start] + createSQL[d.defEnd+1:], nil
	}
	// Last column: the separating comma sits before the identifier.
	if start > 0 && createSQL[start-1] == ',' {
		start--
	}
	return createSQL[:start] + createSQL[d.defEnd:], nil
}

var nullFragmentRe = regexp.MustCompile(`(?i)\b(?:NOT\s+)?NULL\b`)

func (regexPatcher) addPrimaryKeyIn(createSQL string, columns []string) (string, error) {
	if len(columns) != 1 {
		close := strings.LastIndex(createSQL, ")")
		if close < 0 {
			return "", fmt.Errorf("malformed table definition %q", createSQL)
		}
		return createSQL[:close] + ", PRIMARY KEY (" + quoteJoin(columns) + ")" + createSQL[close:], nil
	}

	d, ok := findColumnDef(createSQL, columns[0])
	if !ok {
		return "", fmt.Errorf("column %q not found in %q", columns[0], createSQL)
	}
	def := createSQL[d.identEnd:d.defEnd]

	clause := "NOT NULL PRIMARY KEY"
	if firstWord := strings.Fields(def); len(firstWord) > 0 && asciiLower(firstWord[0]) == "integer" {
		clause += " AUTOINCREMENT"
	}

	if loc := nullFragmentRe.FindStringIndex(def); loc != nil {
		def = def[:loc[0]] + clause + def[loc[1]:]
	} else {
		def += " " + clause
	}
	return createSQL[:d.identEnd] + def + createSQL[d.defEnd:], nil
}

var primaryKeyClauseRe = regexp.MustCompile(`(?is),?\s*PRIMARY\s+KEY\s*\([^)]*\)|\s+PRIMARY\s+KEY(?:\s+AUTOINCREMENT)?`)

func (regexPatcher) dropPrimaryKeyIn(createSQL string) (string, error) {
	loc := primaryKeyClauseRe.FindStringIndex(createSQL)
	if loc == nil {
		return createSQL, nil
	}
	return createSQL[:loc[0]] + createSQL[loc[1]:], nil
}

func (regexPatcher) addForeignKeyIn(createSQL, clause string) (string, error) {
	close := strings.LastIndex(createSQL, ")")
	if close < 0 {
		return "", fmt.Errorf("malformed table definition %q", createSQL)
	}
	return createSQL[:close] + ", " + clause + createSQL[close:], nil
}

func (regexPatcher) dropForeignKeyIn(createSQL string, columns []string) (string, error) {
	alts := make([]string, len(columns))
	for i, c := range columns {
		alts[i] = identAlternatives(c)
	}
	pattern := fmt.Sprintf(
		`(?is),\s*(?:CONSTRAINT\s+(?:`+"`[^`]*`"+`|"[^"]*"|\[[^\]]*\]|\S+)\s+)?FOREIGN\s+KEY\s*\(\s*%s\s*\)\s*REFERENCES[^,()]*\([^)]*\)[^,()]*`,
		strings.Join(alts, `\s*,\s*`),
	)
	re := regexp.MustCompile(pattern)
	loc := re.FindStringIndex(createSQL)
	if loc == nil {
		return "", fmt.Errorf("no foreign key on columns %v in %q", columns, createSQL)
	}
	return createSQL[:loc[0]] + createSQL[loc[1]:], nil
}
