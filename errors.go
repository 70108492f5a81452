package litemigrate

import "errors"

// Sentinel errors distinguishing the adapter's failure modes. Callers match
// with errors.Is; messages carry the operation-specific detail.
var (
	// ErrUnsupportedType marks an abstract column type with no valid SQLite
	// mapping, whether recognized-but-unsupported or entirely unknown.
	ErrUnsupportedType = errors.New("unsupported column type")

	// ErrInvalidArgument marks a caller mistake detected before any mutating
	// statement executes: a named constraint where SQLite has none, a
	// malformed primary-key value, or a reference to a missing column.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrUnsupportedOperation marks an alteration that has no emulation on
	// SQLite, such as changing a table comment or dropping a foreign key by
	// constraint name.
	ErrUnsupportedOperation = errors.New("operation not supported by SQLite")
)
