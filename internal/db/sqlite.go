// Package db wraps the embedded SQLite engine behind the narrow capability
// the adapter consumes: execute a statement, fetch rows, and demarcate
// transactions. The connection is opened lazily on first use and is not safe
// for concurrent use; callers serialize access or hold one client per worker.
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	_ "github.com/mattn/go-sqlite3"
)

// ErrConnectionFailed marks a failure to establish the engine connection.
var ErrConnectionFailed = errors.New("connection failed")

// Client manages a single SQLite connection handle.
type Client struct {
	path string
	db   *sql.DB
	tx   *sql.Tx
}

// NewClient creates a client for the database at path (":memory:" for an
// in-memory database). No connection is made until the first operation.
func NewClient(path string) *Client {
	return &Client{path: path}
}

// Connect opens and verifies the connection. Operations call this implicitly.
func (c *Client) Connect(ctx context.Context) error {
	if c.db != nil {
		return nil
	}
	db, err := sql.Open("sqlite3", c.path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrConnectionFailed, err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return fmt.Errorf("%w: %v", ErrConnectionFailed, err)
	}
	// The handle is shared by sequential statements only; a larger pool would
	// hand attached databases and transaction state to the wrong connection.
	db.SetMaxOpenConns(1)
	slog.Debug("sqlite connected", "path", c.path)
	c.db = db
	return nil
}

// Disconnect closes the connection. Any in-flight transaction state is lost;
// the next operation reconnects lazily.
func (c *Client) Disconnect() error {
	if c.db == nil {
		return nil
	}
	err := c.db.Close()
	c.db = nil
	c.tx = nil
	slog.Debug("sqlite disconnected", "path", c.path)
	return err
}

// DatabasePath returns the path the client connects to.
func (c *Client) DatabasePath() string {
	return c.path
}

func (c *Client) ensure(ctx context.Context) error {
	if c.db == nil {
		return c.Connect(ctx)
	}
	return nil
}

// Exec runs a statement that returns no rows.
func (c *Client) Exec(ctx context.Context, sqlText string) error {
	if err := c.ensure(ctx); err != nil {
		return err
	}
	slog.Debug("exec", "sql", sqlText)
	var err error
	if c.tx != nil {
		_, err = c.tx.ExecContext(ctx, sqlText)
	} else {
		_, err = c.db.ExecContext(ctx, sqlText)
	}
	return err
}

// Query runs a statement and returns its cursor.
func (c *Client) Query(ctx context.Context, sqlText string) (*sql.Rows, error) {
	if err := c.ensure(ctx); err != nil {
		return nil, err
	}
	slog.Debug("query", "sql", sqlText)
	if c.tx != nil {
		return c.tx.QueryContext(ctx, sqlText)
	}
	return c.db.QueryContext(ctx, sqlText)
}

// FetchAll runs a statement and returns every row as a column-name keyed map.
// Pragma output shapes vary between engine versions, so rows are scanned
// generically rather than positionally.
func (c *Client) FetchAll(ctx context.Context, sqlText string) ([]map[string]any, error) {
	rows, err := c.Query(ctx, sqlText)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var out []map[string]any
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		row := make(map[string]any, len(cols))
		for i, name := range cols {
			if b, ok := values[i].([]byte); ok {
				row[name] = string(b)
			} else {
				row[name] = values[i]
			}
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// BeginTransaction starts a transaction; subsequent Exec/Query/FetchAll calls
// run inside it until Commit or Rollback.
func (c *Client) BeginTransaction(ctx context.Context) error {
	if err := c.ensure(ctx); err != nil {
		return err
	}
	if c.tx != nil {
		return errors.New("transaction already open")
	}
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	c.tx = tx
	return nil
}

// Commit commits the open transaction.
func (c *Client) Commit() error {
	if c.tx == nil {
		return errors.New("no open transaction")
	}
	err := c.tx.Commit()
	c.tx = nil
	return err
}

// Rollback aborts the open transaction.
func (c *Client) Rollback() error {
	if c.tx == nil {
		return errors.New("no open transaction")
	}
	err := c.tx.Rollback()
	c.tx = nil
	return err
}
