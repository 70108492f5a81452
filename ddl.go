package litemigrate

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// defaultValueSQL renders a parsed default value for interpolation into a
// column definition. Magic timestamp keywords and Expr values pass through
// unquoted.
func defaultValueSQL(v any) string {
	switch t := v.(type) {
	case bool:
		if t {
			return "1"
		}
		return "0"
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case Expr:
		return string(t)
	case string:
		switch t {
		case CurrentDate, CurrentTime, CurrentTimestamp:
			return t
		}
		return quoteString(t)
	default:
		return fmt.Sprint(t)
	}
}

// columnSQL assembles one column definition: quoted name, native type with
// display width, nullability, default, identity, update, and inline comment.
// Identity columns are forced to a bare INTEGER declaration since any size
// modifier would break row-id aliasing.
func (a *Adapter) columnSQL(col Column) (string, error) {
	var b strings.Builder
	b.WriteString(QuoteIdentifier(col.Name))

	if col.Identity {
		b.WriteString(" INTEGER NOT NULL PRIMARY KEY AUTOINCREMENT")
	} else {
		native, limit, err := a.types.typeToNative(col.Type, col.Limit)
		if err != nil {
			return "", err
		}
		if native != "" {
			b.WriteString(" ")
			b.WriteString(strings.ToUpper(native))
		}
		if limit > 0 {
			fmt.Fprintf(&b, "(%d)", limit)
		}
		if col.Null {
			b.WriteString(" NULL")
		} else {
			b.WriteString(" NOT NULL")
		}
		if col.Default != nil {
			b.WriteString(" DEFAULT ")
			b.WriteString(defaultValueSQL(col.Default))
		}
	}

	if col.Update != "" {
		b.WriteString(" ON UPDATE ")
		b.WriteString(col.Update)
	}
	if col.Comment != "" {
		b.WriteString(" /* ")
		b.WriteString(col.Comment)
		b.WriteString(" */")
	}
	return b.String(), nil
}

// foreignKeySQL renders a table-level FOREIGN KEY clause.
func foreignKeySQL(fk ForeignKey) string {
	var b strings.Builder
	if fk.Constraint != "" {
		b.WriteString("CONSTRAINT ")
		b.WriteString(QuoteIdentifier(fk.Constraint))
		b.WriteString(" ")
	}
	b.WriteString("FOREIGN KEY (")
	b.WriteString(quoteJoin(fk.Columns))
	b.WriteString(") REFERENCES ")
	b.WriteString(QuoteQualifiedName(fk.ReferencedTable))
	b.WriteString(" (")
	b.WriteString(quoteJoin(fk.ReferencedColumns))
	b.WriteString(")")
	if fk.OnDelete != "" {
		b.WriteString(" ON DELETE ")
		b.WriteString(fk.OnDelete)
	}
	if fk.OnUpdate != "" {
		b.WriteString(" ON UPDATE ")
		b.WriteString(fk.OnUpdate)
	}
	return b.String()
}

func quoteJoin(names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = QuoteIdentifier(n)
	}
	return strings.Join(quoted, ", ")
}

// CreateTable synthesizes and executes the table's CREATE statement, then
// creates its indexes. Unless suppressed through Options.NoID, an integer
// identity column (named "id", or Options.ID) is prepended.
func (a *Adapter) CreateTable(ctx context.Context, table Table) error {
	if table.Options.Comment != "" {
		return fmt.Errorf("table comments: %w", ErrUnsupportedOperation)
	}

	columns := table.Columns
	primaryKey := table.Options.PrimaryKey
	if !table.Options.NoID {
		idName := table.Options.ID
		if idName == "" {
			idName = "id"
		}
		if len(primaryKey) > 0 && !(len(primaryKey) == 1 && asciiLower(primaryKey[0]) == asciiLower(idName)) {
			return fmt.Errorf("cannot combine an implicit identity column with primary key %v: %w", primaryKey, ErrInvalidArgument)
		}
		primaryKey = nil
		columns = append([]Column{{Name: idName, Type: Type(TypeInteger), Identity: true}}, columns...)
	}

	parts := make([]string, 0, len(columns)+len(table.ForeignKeys)+1)
	for _, col := range columns {
		def, err := a.columnSQL(col)
		if err != nil {
			return err
		}
		parts = append(parts, def)
	}
	if len(primaryKey) > 0 {
		parts = append(parts, "PRIMARY KEY ("+quoteJoin(primaryKey)+")")
	}
	for _, fk := range table.ForeignKeys {
		parts = append(parts, foreignKeySQL(fk))
	}

	stmt := fmt.Sprintf("CREATE TABLE %s (%s)", QuoteQualifiedName(table.Name), strings.Join(parts, ", "))
	if err := a.conn.Exec(ctx, stmt); err != nil {
		return err
	}

	for _, idx := range table.Indexes {
		if err := a.AddIndex(ctx, table.Name, idx); err != nil {
			return err
		}
	}
	return nil
}

// RenameTable renames a table within its resolved namespace.
func (a *Adapter) RenameTable(ctx context.Context, tableName, newName string) error {
	quoted, err := a.quoteResolved(ctx, tableName)
	if err != nil {
		return err
	}
	newTable := parseQualifiedName(newName).Table
	return a.conn.Exec(ctx, fmt.Sprintf("ALTER TABLE %s RENAME TO %s", quoted, QuoteIdentifier(newTable)))
}

// DropTable drops a table from its resolved namespace.
func (a *Adapter) DropTable(ctx context.Context, tableName string) error {
	quoted, err := a.quoteResolved(ctx, tableName)
	if err != nil {
		return err
	}
	return a.conn.Exec(ctx, "DROP TABLE "+quoted)
}

// TruncateTable deletes all rows. SQLite has no TRUNCATE statement; the
// AUTOINCREMENT counter is reset separately when the sequence catalog exists.
func (a *Adapter) TruncateTable(ctx context.Context, tableName string) error {
	sn := parseQualifiedName(tableName)
	res, err := a.resolveTable(ctx, tableName)
	if err != nil {
		return err
	}
	quoted := QuoteIdentifier(res.Schema) + "." + QuoteIdentifier(sn.Table)
	if err := a.conn.Exec(ctx, "DELETE FROM "+quoted); err != nil {
		return err
	}
	if a.probeNamespace(ctx, res.Schema, "sqlite_sequence") == probeFound {
		stmt := fmt.Sprintf("DELETE FROM %s.%s WHERE name = %s",
			QuoteIdentifier(res.Schema), QuoteIdentifier("sqlite_sequence"), quoteString(sn.Table))
		return a.conn.Exec(ctx, stmt)
	}
	return nil
}

// AddColumn appends a column using native ADD COLUMN; no rebuild is needed.
func (a *Adapter) AddColumn(ctx context.Context, tableName string, col Column) error {
	def, err := a.columnSQL(col)
	if err != nil {
		return err
	}
	quoted, err := a.quoteResolved(ctx, tableName)
	if err != nil {
		return err
	}
	return a.conn.Exec(ctx, fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s", quoted, def))
}

// indexName returns the index's explicit name or synthesizes
// <table>_<col1>_..._index.
func indexName(tableName string, idx Index) string {
	if idx.Name != "" {
		return idx.Name
	}
	return tableName + "_" + strings.Join(idx.Columns, "_") + "_index"
}

// AddIndex creates an index on the table in its resolved namespace.
func (a *Adapter) AddIndex(ctx context.Context, tableName string, idx Index) error {
	sn := parseQualifiedName(tableName)
	res, err := a.resolveTable(ctx, tableName)
	if err != nil {
		return err
	}
	unique := ""
	if idx.Unique {
		unique = "UNIQUE "
	}
	stmt := fmt.Sprintf("CREATE %sINDEX %s.%s ON %s (%s)",
		unique,
		QuoteIdentifier(res.Schema),
		QuoteIdentifier(indexName(sn.Table, idx)),
		QuoteIdentifier(sn.Table),
		quoteJoin(idx.Columns),
	)
	return a.conn.Exec(ctx, stmt)
}

// DropIndex drops every index matching the exact column sequence.
func (a *Adapter) DropIndex(ctx context.Context, tableName string, columns []string) error {
	matches, err := a.resolveIndex(ctx, tableName, columns)
	if err != nil {
		return err
	}
	if len(matches) == 0 {
		return fmt.Errorf("no index on columns %v of table %q: %w", columns, tableName, ErrInvalidArgument)
	}
	res, err := a.resolveTable(ctx, tableName)
	if err != nil {
		return err
	}
	for _, name := range matches {
		stmt := fmt.Sprintf("DROP INDEX %s.%s", QuoteIdentifier(res.Schema), QuoteIdentifier(name))
		if err := a.conn.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// DropIndexByName drops a single index by its name.
func (a *Adapter) DropIndexByName(ctx context.Context, tableName, name string) error {
	ok, err := a.HasIndexByName(ctx, tableName, name)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("index %q does not exist on table %q: %w", name, tableName, ErrInvalidArgument)
	}
	res, err := a.resolveTable(ctx, tableName)
	if err != nil {
		return err
	}
	stmt := fmt.Sprintf("DROP INDEX %s.%s", QuoteIdentifier(res.Schema), QuoteIdentifier(name))
	return a.conn.Exec(ctx, stmt)
}
