package litemigrate

import (
	"context"
	"fmt"
	"regexp"
)

// Reserved aliases for the engine's implicit row identifier. A user column
// with one of these names shadows the alias.
var rowIDAliases = []string{"rowid", "_rowid_", "oid"}

// withoutRowidRe matches a trailing WITHOUT ROWID clause, tolerating
// whitespace, comments, and a final semicolon after it.
var withoutRowidRe = regexp.MustCompile(`(?is)\bWITHOUT\s+ROWID\s*(?:--[^\n]*|/\*.*?\*/|[\s;])*$`)

// resolveIdentity determines which column, if any, aliases the implicit row
// identifier and therefore auto-increments. Only a table whose sole
// primary-key column is declared exactly "integer", inline and ascending, on
// a rowid table qualifies; the empty string means no identity column.
func (a *Adapter) resolveIdentity(ctx context.Context, tableName string) (string, error) {
	rows, err := a.tablePragma(ctx, "table_info", tableName)
	if err != nil {
		return "", err
	}

	candidate := ""
	shadowed := make(map[string]bool)
	for _, row := range rows {
		name := rowString(row, "name")
		for _, alias := range rowIDAliases {
			if asciiLower(name) == alias {
				shadowed[alias] = true
			}
		}
		switch pk := rowInt(row, "pk"); {
		case pk > 1:
			// Composite primary keys never alias the row id.
			return "", nil
		case pk == 1:
			if asciiLower(rowString(row, "type")) != "integer" {
				return "", nil
			}
			candidate = name
		}
	}
	if candidate == "" {
		return "", nil
	}

	// An automatically generated pk-origin index means the primary key was a
	// table-level constraint or declared DESC; either disables aliasing.
	indexes, err := a.tablePragma(ctx, "index_list", tableName)
	if err != nil {
		return "", err
	}
	for _, row := range indexes {
		if rowString(row, "origin") == "pk" {
			return "", nil
		}
	}

	// WITHOUT ROWID tables have no row identifier to alias. Probe through a
	// free reserved alias when one exists; a metadata error confirms the
	// table lacks one. When every alias is shadowed by a real column, fall
	// back to inspecting the stored CREATE text.
	probe := ""
	for _, alias := range rowIDAliases {
		if !shadowed[alias] {
			probe = alias
			break
		}
	}
	if probe != "" {
		quoted, err := a.quoteResolved(ctx, tableName)
		if err != nil {
			return "", err
		}
		query := fmt.Sprintf("SELECT count(%s) FROM %s", probe, quoted)
		if _, err := a.conn.FetchAll(ctx, query); err != nil {
			return "", nil
		}
	} else {
		createSQL, err := a.declaringSQL(ctx, tableName)
		if err != nil {
			return "", err
		}
		if withoutRowidRe.MatchString(createSQL) {
			return "", nil
		}
	}

	return candidate, nil
}
