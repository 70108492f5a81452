package litemigrate

import (
	"context"
	"fmt"
	"strings"
)

// alterState is the accumulator threaded through a rebuild's deferred steps.
// Each step reads what earlier steps produced and overwrites what it owns.
type alterState struct {
	createSQL     string
	tmpTableName  string // schema-qualified name of the renamed original
	selectColumns []string
	writeColumns  []string
}

type alterStep func(ctx context.Context, st *alterState) error

// alterInstructions is an ordered list of deferred steps plus trailing
// literal statements. Steps execute strictly in append order; the literal
// statements run after the last step.
type alterInstructions struct {
	steps []alterStep
	sql   []string
}

func (ai *alterInstructions) addStep(step alterStep) {
	ai.steps = append(ai.steps, step)
}

func (ai *alterInstructions) addSQL(stmt string) {
	ai.sql = append(ai.sql, stmt)
}

// execAlter runs the instruction sequence. A failing step aborts the
// sequence where it stands; no wrapping transaction is assumed here, so
// callers wanting atomicity begin one before invoking the alteration.
func (a *Adapter) execAlter(ctx context.Context, ai *alterInstructions) error {
	st := &alterState{}
	for _, step := range ai.steps {
		if err := step(ctx, st); err != nil {
			return err
		}
	}
	for _, stmt := range ai.sql {
		if err := a.conn.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// beginAlterByCopy seeds a rebuild: capture the table's verbatim CREATE
// statement, rename the live table out of the way, and record both in state.
func (a *Adapter) beginAlterByCopy(tableName string) *alterInstructions {
	ai := &alterInstructions{}
	ai.addStep(func(ctx context.Context, st *alterState) error {
		createSQL, err := a.declaringSQL(ctx, tableName)
		if err != nil {
			return err
		}
		sn := parseQualifiedName(tableName)
		res, err := a.resolveTable(ctx, tableName)
		if err != nil {
			return err
		}
		tmp := "tmp_" + sn.Table
		stmt := fmt.Sprintf("ALTER TABLE %s.%s RENAME TO %s",
			QuoteIdentifier(res.Schema), QuoteIdentifier(sn.Table), QuoteIdentifier(tmp))
		if err := a.conn.Exec(ctx, stmt); err != nil {
			return err
		}
		st.createSQL = createSQL
		st.tmpTableName = res.Schema + "." + tmp
		return nil
	})
	return ai
}

// columnMappingStep scans the renamed table's columns and builds the parallel
// select/write lists. renames maps lowered old names to new names; an empty
// new name drops the column from both lists.
func (a *Adapter) columnMappingStep(renames map[string]string) alterStep {
	return func(ctx context.Context, st *alterState) error {
		rows, err := a.tablePragma(ctx, "table_info", st.tmpTableName)
		if err != nil {
			return err
		}
		var selectColumns, writeColumns []string
		for _, row := range rows {
			name := rowString(row, "name")
			newName := name
			if mapped, ok := renames[asciiLower(name)]; ok {
				newName = mapped
			}
			if newName == "" {
				continue
			}
			selectColumns = append(selectColumns, QuoteIdentifier(name))
			writeColumns = append(writeColumns, QuoteIdentifier(newName))
		}
		st.selectColumns = selectColumns
		st.writeColumns = writeColumns
		return nil
	}
}

// patchAndCreateStep rewrites the captured CREATE statement and executes it,
// re-creating the table under its original name.
func (a *Adapter) patchAndCreateStep(patch func(createSQL string) (string, error)) alterStep {
	return func(ctx context.Context, st *alterState) error {
		newSQL, err := patch(st.createSQL)
		if err != nil {
			return err
		}
		if err := a.conn.Exec(ctx, newSQL); err != nil {
			return err
		}
		st.createSQL = newSQL
		return nil
	}
}

// copyAndDropStep moves the rows into the rebuilt table and drops the
// renamed original. Always the last step of a rebuild.
func (a *Adapter) copyAndDropStep(tableName string) alterStep {
	return func(ctx context.Context, st *alterState) error {
		stmt := fmt.Sprintf("INSERT INTO %s(%s) SELECT %s FROM %s",
			QuoteQualifiedName(tableName),
			strings.Join(st.writeColumns, ", "),
			strings.Join(st.selectColumns, ", "),
			QuoteQualifiedName(st.tmpTableName),
		)
		if err := a.conn.Exec(ctx, stmt); err != nil {
			return err
		}
		return a.conn.Exec(ctx, "DROP TABLE "+QuoteQualifiedName(st.tmpTableName))
	}
}

// requireColumn fails with ErrInvalidArgument before any mutating statement
// when the column is missing.
func (a *Adapter) requireColumn(ctx context.Context, tableName, columnName string) error {
	ok, err := a.HasColumn(ctx, tableName, columnName)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("column %q does not exist on table %q: %w", columnName, tableName, ErrInvalidArgument)
	}
	return nil
}

// RenameColumn renames a column by rebuilding the table.
func (a *Adapter) RenameColumn(ctx context.Context, tableName, oldName, newName string) error {
	if err := a.requireColumn(ctx, tableName, oldName); err != nil {
		return err
	}
	ai := a.beginAlterByCopy(tableName)
	ai.addStep(a.columnMappingStep(map[string]string{asciiLower(oldName): newName}))
	ai.addStep(a.patchAndCreateStep(func(createSQL string) (string, error) {
		return a.patcher.renameColumnIn(createSQL, oldName, newName)
	}))
	ai.addStep(a.copyAndDropStep(tableName))
	return a.execAlter(ctx, ai)
}

// ChangeColumn replaces a column's definition under the same name by
// rebuilding the table. Renaming while redefining has no reachable emulation
// and fails before anything executes; use RenameColumn first.
func (a *Adapter) ChangeColumn(ctx context.Context, tableName, columnName string, newColumn Column) error {
	if newColumn.Name != "" && asciiLower(newColumn.Name) != asciiLower(columnName) {
		return fmt.Errorf("renaming a column while redefining it: %w", ErrUnsupportedOperation)
	}
	if err := a.requireColumn(ctx, tableName, columnName); err != nil {
		return err
	}
	newColumn.Name = columnName
	def, err := a.columnSQL(newColumn)
	if err != nil {
		return err
	}
	ai := a.beginAlterByCopy(tableName)
	ai.addStep(a.columnMappingStep(nil))
	ai.addStep(a.patchAndCreateStep(func(createSQL string) (string, error) {
		return a.patcher.retypeColumnIn(createSQL, columnName, def)
	}))
	ai.addStep(a.copyAndDropStep(tableName))
	return a.execAlter(ctx, ai)
}

// DropColumn removes a column by rebuilding the table.
func (a *Adapter) DropColumn(ctx context.Context, tableName, columnName string) error {
	if err := a.requireColumn(ctx, tableName, columnName); err != nil {
		return err
	}
	ai := a.beginAlterByCopy(tableName)
	ai.addStep(a.columnMappingStep(map[string]string{asciiLower(columnName): ""}))
	ai.addStep(a.patchAndCreateStep(func(createSQL string) (string, error) {
		return a.patcher.dropColumnIn(createSQL, columnName)
	}))
	ai.addStep(a.copyAndDropStep(tableName))
	return a.execAlter(ctx, ai)
}

// AddPrimaryKey declares a primary key over the given columns by rebuilding
// the table. A single column is patched inline on its definition, gaining
// AUTOINCREMENT when declared INTEGER; several columns become a table-level
// constraint.
func (a *Adapter) AddPrimaryKey(ctx context.Context, tableName string, columns ...string) error {
	if len(columns) == 0 {
		return fmt.Errorf("a primary key needs at least one column: %w", ErrInvalidArgument)
	}
	for _, col := range columns {
		if err := a.requireColumn(ctx, tableName, col); err != nil {
			return err
		}
	}
	ai := a.beginAlterByCopy(tableName)
	ai.addStep(a.columnMappingStep(nil))
	ai.addStep(a.patchAndCreateStep(func(createSQL string) (string, error) {
		return a.patcher.addPrimaryKeyIn(createSQL, columns)
	}))
	ai.addStep(a.copyAndDropStep(tableName))
	return a.execAlter(ctx, ai)
}

// DropPrimaryKey strips the table's primary key, whether declared inline or
// as a table-level constraint, by rebuilding the table.
func (a *Adapter) DropPrimaryKey(ctx context.Context, tableName string) error {
	ai := a.beginAlterByCopy(tableName)
	ai.addStep(a.columnMappingStep(nil))
	ai.addStep(a.patchAndCreateStep(a.patcher.dropPrimaryKeyIn))
	ai.addStep(a.copyAndDropStep(tableName))
	return a.execAlter(ctx, ai)
}

// AddForeignKey appends a referential constraint by rebuilding the table and
// enables foreign-key enforcement afterwards.
func (a *Adapter) AddForeignKey(ctx context.Context, tableName string, fk ForeignKey) error {
	for _, col := range fk.Columns {
		if err := a.requireColumn(ctx, tableName, col); err != nil {
			return err
		}
	}
	clause := foreignKeySQL(fk)
	ai := a.beginAlterByCopy(tableName)
	ai.addStep(a.columnMappingStep(nil))
	ai.addStep(a.patchAndCreateStep(func(createSQL string) (string, error) {
		return a.patcher.addForeignKeyIn(createSQL, clause)
	}))
	ai.addStep(a.copyAndDropStep(tableName))
	ai.addSQL("PRAGMA foreign_keys = ON")
	return a.execAlter(ctx, ai)
}

// DropForeignKey removes the constraint matching the given local columns by
// rebuilding the table.
func (a *Adapter) DropForeignKey(ctx context.Context, tableName string, columns []string) error {
	if len(columns) == 0 {
		return fmt.Errorf("no columns given to drop a foreign key by: %w", ErrInvalidArgument)
	}
	ok, err := a.HasForeignKey(ctx, tableName, columns, "")
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("no foreign key on columns %v of table %q: %w", columns, tableName, ErrInvalidArgument)
	}
	ai := a.beginAlterByCopy(tableName)
	ai.addStep(a.columnMappingStep(nil))
	ai.addStep(a.patchAndCreateStep(func(createSQL string) (string, error) {
		return a.patcher.dropForeignKeyIn(createSQL, columns)
	}))
	ai.addStep(a.copyAndDropStep(tableName))
	return a.execAlter(ctx, ai)
}

// DropForeignKeyByName fails: SQLite cannot address foreign keys by
// constraint name, and there is no partial emulation worth attempting.
func (a *Adapter) DropForeignKeyByName(ctx context.Context, tableName, constraintName string) error {
	return fmt.Errorf("dropping foreign key %q by name: %w", constraintName, ErrUnsupportedOperation)
}

// ChangeTableComment fails: SQLite has no table-comment facility.
func (a *Adapter) ChangeTableComment(ctx context.Context, tableName, comment string) error {
	return fmt.Errorf("changing the comment of table %q: %w", tableName, ErrUnsupportedOperation)
}
