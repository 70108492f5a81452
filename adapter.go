package litemigrate

import (
	"context"
	"fmt"
	"strconv"
)

// Conn is the engine capability the adapter consumes. *db.Client satisfies
// it; tests substitute a scripted fake. Implementations are not expected to
// be safe for concurrent use.
type Conn interface {
	Exec(ctx context.Context, sqlText string) error
	FetchAll(ctx context.Context, sqlText string) ([]map[string]any, error)
	BeginTransaction(ctx context.Context) error
	Commit() error
	Rollback() error
}

// Adapter translates the abstract migration model into SQLite DDL and
// reverse-engineers the model from live schema metadata. Every operation
// issues sequential statements on the single underlying connection; callers
// needing atomicity across multi-statement alterations wrap the call in
// Begin/Commit themselves.
type Adapter struct {
	conn    Conn
	types   typeTables
	patcher statementPatcher
}

// New creates an adapter over an engine connection.
func New(conn Conn) *Adapter {
	return &Adapter{
		conn:    conn,
		types:   defaultTypeTables(),
		patcher: regexPatcher{},
	}
}

// Begin starts a caller-scoped transaction on the underlying connection.
func (a *Adapter) Begin(ctx context.Context) error { return a.conn.BeginTransaction(ctx) }

// Commit commits the caller-scoped transaction.
func (a *Adapter) Commit() error { return a.conn.Commit() }

// Rollback aborts the caller-scoped transaction.
func (a *Adapter) Rollback() error { return a.conn.Rollback() }

// Execute runs a caller-supplied statement verbatim.
func (a *Adapter) Execute(ctx context.Context, sqlText string) error {
	return a.conn.Exec(ctx, sqlText)
}

// Version reports the engine library version.
func (a *Adapter) Version(ctx context.Context) (string, error) {
	rows, err := a.conn.FetchAll(ctx, "SELECT sqlite_version() AS version")
	if err != nil {
		return "", err
	}
	if len(rows) == 0 {
		return "", fmt.Errorf("version query returned no rows")
	}
	return rowString(rows[0], "version"), nil
}

// AttachedDatabases lists every namespace visible on the connection, in
// catalog order.
func (a *Adapter) AttachedDatabases(ctx context.Context) ([]string, error) {
	rows, err := a.conn.FetchAll(ctx, "PRAGMA database_list")
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(rows))
	for _, row := range rows {
		names = append(names, rowString(row, "name"))
	}
	return names, nil
}

// rowString reads a column from a generic row, tolerating nil.
func rowString(row map[string]any, key string) string {
	switch v := row[key].(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	default:
		return fmt.Sprint(v)
	}
}

// rowInt reads an integer column from a generic row. Pragmas report flags and
// positions as int64, but attached engines may surface text.
func rowInt(row map[string]any, key string) int {
	switch v := row[key].(type) {
	case int64:
		return int(v)
	case int:
		return v
	case float64:
		return int(v)
	case string:
		n, _ := strconv.Atoi(v)
		return n
	default:
		return 0
	}
}

// rowNullString reads a column that distinguishes NULL from empty text.
func rowNullString(row map[string]any, key string) *string {
	switch v := row[key].(type) {
	case nil:
		return nil
	case string:
		return &v
	case []byte:
		s := string(v)
		return &s
	default:
		s := fmt.Sprint(v)
		return &s
	}
}
