// Package litemigrate is a schema-migration adapter for SQLite. It translates
// an engine-independent table/column/index/foreign-key model into SQLite DDL
// and reverse-engineers that model from live schema metadata.
//
// SQLite's ALTER TABLE cannot change, drop, or re-key columns directly, so
// those alterations are emulated by rebuild-by-copy: the live table is renamed
// aside, its captured CREATE statement is rewritten, the table is re-created
// under its original name, rows are copied across, and the renamed original is
// dropped. The adapter does not wrap these steps in a transaction; callers
// wanting atomicity call Begin before the alteration and Commit or Rollback
// after.
//
// # Quick Start
//
//	adapter, err := litemigrate.Open(litemigrate.Config{Name: "app"})
//	if err != nil {
//		log.Fatal(err)
//	}
//	err = adapter.CreateTable(ctx, litemigrate.Table{
//		Name: "users",
//		Columns: []litemigrate.Column{
//			{Name: "email", Type: litemigrate.Type(litemigrate.TypeString), Limit: 255},
//		},
//	})
//
// All operations issue sequential statements on one connection; neither the
// adapter nor the connection is safe for concurrent use.
package litemigrate

import (
	"strings"

	"github.com/litemigrate/litemigrate/internal/db"
)

// DefaultSuffix is appended to the database base name unless the
// configuration overrides or suppresses it.
const DefaultSuffix = ".sqlite3"

// Config describes where the database lives.
type Config struct {
	// Name is the database file base name.
	Name string

	// Suffix is the file-extension suffix; it is normalized to be
	// dot-prefixed. Empty means DefaultSuffix unless NoSuffix is set.
	Suffix string

	// NoSuffix uses Name verbatim, with no extension appended.
	NoSuffix bool

	// Memory opens an in-memory database; Name and Suffix are ignored.
	Memory bool
}

// DatabasePath resolves the configuration to the path handed to the engine.
func (c Config) DatabasePath() string {
	if c.Memory {
		return ":memory:"
	}
	if c.NoSuffix {
		return c.Name
	}
	suffix := c.Suffix
	if suffix == "" {
		suffix = DefaultSuffix
	} else if !strings.HasPrefix(suffix, ".") {
		suffix = "." + suffix
	}
	return c.Name + suffix
}

// Open creates an adapter for the configured database. The connection is
// established lazily on the first operation; Close releases it.
func Open(cfg Config) *Adapter {
	return New(db.NewClient(cfg.DatabasePath()))
}

// Close disconnects the underlying connection when the adapter owns one. A
// later operation reconnects lazily.
func (a *Adapter) Close() error {
	if c, ok := a.conn.(*db.Client); ok {
		return c.Disconnect()
	}
	return nil
}
