package litemigrate

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// tablePragma issues a schema-qualified metadata pragma against the namespace
// the table actually lives in.
func (a *Adapter) tablePragma(ctx context.Context, pragma, tableName string) ([]map[string]any, error) {
	sn := parseQualifiedName(tableName)
	res, err := a.resolveTable(ctx, tableName)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf("PRAGMA %s.%s(%s)", QuoteIdentifier(res.Schema), pragma, QuoteIdentifier(sn.Table))
	return a.conn.FetchAll(ctx, query)
}

// quoteResolved returns the table's fully qualified, quoted name in its
// resolved namespace.
func (a *Adapter) quoteResolved(ctx context.Context, tableName string) (string, error) {
	sn := parseQualifiedName(tableName)
	res, err := a.resolveTable(ctx, tableName)
	if err != nil {
		return "", err
	}
	return QuoteIdentifier(res.Schema) + "." + QuoteIdentifier(sn.Table), nil
}

// declaringSQL fetches the verbatim CREATE statement the engine stored for
// the table, with trailing whitespace and semicolon trimmed.
func (a *Adapter) declaringSQL(ctx context.Context, tableName string) (string, error) {
	sn := parseQualifiedName(tableName)
	res, err := a.resolveTable(ctx, tableName)
	if err != nil {
		return "", err
	}
	query := fmt.Sprintf(
		"SELECT sql FROM %s.sqlite_master WHERE type = 'table' AND lower(name) = %s",
		QuoteIdentifier(res.Schema),
		quoteString(asciiLower(sn.Table)),
	)
	rows, err := a.conn.FetchAll(ctx, query)
	if err != nil {
		return "", err
	}
	if len(rows) == 0 {
		return "", fmt.Errorf("table %q does not exist: %w", tableName, ErrInvalidArgument)
	}
	return strings.TrimRight(rowString(rows[0], "sql"), " \t\r\n;"), nil
}

// Tables lists the user tables of a namespace, main when empty, in name
// order. Internal engine tables are skipped.
func (a *Adapter) Tables(ctx context.Context, schema string) ([]string, error) {
	if schema == "" {
		schema = "main"
	}
	query := fmt.Sprintf(
		"SELECT name FROM %s.sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%%' ORDER BY name",
		QuoteIdentifier(schema),
	)
	rows, err := a.conn.FetchAll(ctx, query)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(rows))
	for _, row := range rows {
		names = append(names, rowString(row, "name"))
	}
	return names, nil
}

// GetColumns introspects the table's columns in declaration order.
func (a *Adapter) GetColumns(ctx context.Context, tableName string) ([]Column, error) {
	rows, err := a.tablePragma(ctx, "table_info", tableName)
	if err != nil {
		return nil, err
	}
	identity, err := a.resolveIdentity(ctx, tableName)
	if err != nil {
		return nil, err
	}

	columns := make([]Column, 0, len(rows))
	for _, row := range rows {
		name := rowString(row, "name")
		typ := rowNullString(row, "type")
		if typ != nil && *typ == "" {
			// SQLite permits columns with no declared type at all.
			typ = nil
		}
		spec, limit, scale := a.types.nativeToType(typ)
		columns = append(columns, Column{
			Name:     name,
			Type:     spec,
			Null:     rowInt(row, "notnull") == 0,
			Default:  parseDefault(rowNullString(row, "dflt_value"), spec),
			Limit:    limit,
			Scale:    scale,
			Identity: name == identity,
		})
	}
	return columns, nil
}

// HasColumn reports whether the table has a column of the given name,
// compared case-insensitively as an opaque string.
func (a *Adapter) HasColumn(ctx context.Context, tableName, columnName string) (bool, error) {
	rows, err := a.tablePragma(ctx, "table_info", tableName)
	if err != nil {
		return false, err
	}
	want := asciiLower(columnName)
	for _, row := range rows {
		if asciiLower(rowString(row, "name")) == want {
			return true, nil
		}
	}
	return false, nil
}

// GetPrimaryKey returns the primary-key column names ordered by the engine's
// reported key position.
func (a *Adapter) GetPrimaryKey(ctx context.Context, tableName string) ([]string, error) {
	rows, err := a.tablePragma(ctx, "table_info", tableName)
	if err != nil {
		return nil, err
	}
	type pkCol struct {
		pos  int
		name string
	}
	var pk []pkCol
	for _, row := range rows {
		if pos := rowInt(row, "pk"); pos > 0 {
			pk = append(pk, pkCol{pos, rowString(row, "name")})
		}
	}
	sort.Slice(pk, func(i, j int) bool { return pk[i].pos < pk[j].pos })
	names := make([]string, len(pk))
	for i, c := range pk {
		names[i] = c.name
	}
	return names, nil
}

// columnSet folds names to lower case and collapses duplicates.
func columnSet(columns []string) map[string]bool {
	set := make(map[string]bool, len(columns))
	for _, c := range columns {
		set[asciiLower(c)] = true
	}
	return set
}

func sameColumnSet(a, b map[string]bool) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if !b[k] {
			return false
		}
	}
	return true
}

// HasPrimaryKey reports whether the table's primary key consists of exactly
// the given columns, ignoring order, case, and duplicates. SQLite has no
// named primary-key constraints, so a constraint name is rejected.
func (a *Adapter) HasPrimaryKey(ctx context.Context, tableName string, columns []string, constraintName string) (bool, error) {
	if constraintName != "" {
		return false, fmt.Errorf("SQLite does not support named primary keys: %w", ErrInvalidArgument)
	}
	actual, err := a.GetPrimaryKey(ctx, tableName)
	if err != nil {
		return false, err
	}
	return sameColumnSet(columnSet(actual), columnSet(columns)), nil
}

// GetForeignKeys returns each foreign-key constraint's local columns, keyed
// by the engine-assigned constraint id and ordered by key position.
func (a *Adapter) GetForeignKeys(ctx context.Context, tableName string) (map[int][]string, error) {
	rows, err := a.tablePragma(ctx, "foreign_key_list", tableName)
	if err != nil {
		return nil, err
	}
	type fkCol struct {
		seq  int
		name string
	}
	grouped := make(map[int][]fkCol)
	for _, row := range rows {
		id := rowInt(row, "id")
		grouped[id] = append(grouped[id], fkCol{rowInt(row, "seq"), rowString(row, "from")})
	}
	out := make(map[int][]string, len(grouped))
	for id, cols := range grouped {
		sort.Slice(cols, func(i, j int) bool { return cols[i].seq < cols[j].seq })
		names := make([]string, len(cols))
		for i, c := range cols {
			names[i] = c.name
		}
		out[id] = names
	}
	return out, nil
}

// HasForeignKey reports whether any foreign key's local column set equals the
// given columns, ignoring order, case, and duplicates. SQLite foreign keys
// cannot be addressed by name.
func (a *Adapter) HasForeignKey(ctx context.Context, tableName string, columns []string, constraintName string) (bool, error) {
	if constraintName != "" {
		return false, fmt.Errorf("SQLite does not support named foreign keys: %w", ErrInvalidArgument)
	}
	fks, err := a.GetForeignKeys(ctx, tableName)
	if err != nil {
		return false, err
	}
	want := columnSet(columns)
	for _, cols := range fks {
		if sameColumnSet(columnSet(cols), want) {
			return true, nil
		}
	}
	return false, nil
}

// GetIndexes returns every index on the table, automatic ones included,
// mapped to their column lists in index order.
func (a *Adapter) GetIndexes(ctx context.Context, tableName string) (map[string][]string, error) {
	rows, err := a.tablePragma(ctx, "index_list", tableName)
	if err != nil {
		return nil, err
	}
	res, err := a.resolveTable(ctx, tableName)
	if err != nil {
		return nil, err
	}

	out := make(map[string][]string, len(rows))
	for _, row := range rows {
		name := rowString(row, "name")
		infoQuery := fmt.Sprintf("PRAGMA %s.index_info(%s)", QuoteIdentifier(res.Schema), QuoteIdentifier(name))
		info, err := a.conn.FetchAll(ctx, infoQuery)
		if err != nil {
			return nil, err
		}
		type idxCol struct {
			seq  int
			name string
		}
		cols := make([]idxCol, 0, len(info))
		for _, ir := range info {
			cols = append(cols, idxCol{rowInt(ir, "seqno"), rowString(ir, "name")})
		}
		sort.Slice(cols, func(i, j int) bool { return cols[i].seq < cols[j].seq })
		names := make([]string, len(cols))
		for i, c := range cols {
			names[i] = c.name
		}
		out[name] = names
	}
	return out, nil
}

// resolveIndex returns the names of indexes whose column sequence equals the
// given columns exactly. Unlike key matching, order matters and duplicates do
// not collapse: a request repeating a column never matches a single-occurrence
// index.
func (a *Adapter) resolveIndex(ctx context.Context, tableName string, columns []string) ([]string, error) {
	indexes, err := a.GetIndexes(ctx, tableName)
	if err != nil {
		return nil, err
	}
	want := make([]string, len(columns))
	for i, c := range columns {
		want[i] = asciiLower(c)
	}

	var matches []string
	for name, cols := range indexes {
		if len(cols) != len(want) {
			continue
		}
		equal := true
		for i, c := range cols {
			if asciiLower(c) != want[i] {
				equal = false
				break
			}
		}
		if equal {
			matches = append(matches, name)
		}
	}
	sort.Strings(matches)
	return matches, nil
}

// HasIndex reports whether an index exists on exactly the given column
// sequence.
func (a *Adapter) HasIndex(ctx context.Context, tableName string, columns []string) (bool, error) {
	matches, err := a.resolveIndex(ctx, tableName, columns)
	if err != nil {
		return false, err
	}
	return len(matches) > 0, nil
}

// HasIndexByName reports whether an index of the given name exists on the
// table, compared case-insensitively.
func (a *Adapter) HasIndexByName(ctx context.Context, tableName, indexName string) (bool, error) {
	indexes, err := a.GetIndexes(ctx, tableName)
	if err != nil {
		return false, err
	}
	want := asciiLower(indexName)
	for name := range indexes {
		if asciiLower(name) == want {
			return true, nil
		}
	}
	return false, nil
}
