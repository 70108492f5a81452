package litemigrate

// Abstract column type tags understood by the migration model. The adapter
// maps these onto SQLite declared types; tags listed in unsupportedTypes are
// recognized but have no safe SQLite representation.
const (
	TypeBigInteger   = "biginteger"
	TypeBinary       = "binary"
	TypeBlob         = "blob"
	TypeBoolean      = "boolean"
	TypeChar         = "char"
	TypeDate         = "date"
	TypeDatetime     = "datetime"
	TypeDouble       = "double"
	TypeFloat        = "float"
	TypeInteger      = "integer"
	TypeJSON         = "json"
	TypeJSONB        = "jsonb"
	TypeSmallInteger = "smallinteger"
	TypeString       = "string"
	TypeText         = "text"
	TypeTime         = "time"
	TypeTimestamp    = "timestamp"
	TypeTinyInteger  = "tinyinteger"
	TypeUUID         = "uuid"
	TypeVarbinary    = "varbinary"
)

// Magic default keywords the engine resolves at insert time.
const (
	CurrentDate      = "CURRENT_DATE"
	CurrentTime      = "CURRENT_TIME"
	CurrentTimestamp = "CURRENT_TIMESTAMP"
)

// TypeSpec identifies a column type: one of the abstract tags, or, when
// Literal is set, a raw engine type expression passed through verbatim.
// A zero Name with Literal unset means the column has no declared type,
// which SQLite permits.
type TypeSpec struct {
	Name    string
	Literal bool
}

// Type returns a TypeSpec for an abstract type tag.
func Type(name string) TypeSpec {
	return TypeSpec{Name: name}
}

// LiteralType returns a pass-through TypeSpec whose Name is interpolated into
// DDL unchanged.
func LiteralType(def string) TypeSpec {
	return TypeSpec{Name: def, Literal: true}
}

// Expr is a raw SQL default expression, interpolated into DDL without
// quoting. Plain string defaults are quoted as string literals.
type Expr string

// Column describes a single table column.
//
// Default holds the parsed default value: nil (none), bool, int64, float64,
// or string. String defaults cover quoted literals, the magic Current*
// keywords, and opaque expressions; the DDL synthesizer quotes plain strings
// and passes keywords and expressions through.
type Column struct {
	Name      string
	Type      TypeSpec
	Null      bool
	Default   any
	Limit     int
	Precision int
	Scale     int
	Identity  bool
	Update    string
	Comment   string
	Values    []string
}

// TableOptions carries engine-independent CREATE TABLE knobs.
//
// By default a table receives an implicit integer identity column named "id".
// ID renames it; NoID suppresses it so PrimaryKey (or an explicit identity
// column) can take over.
type TableOptions struct {
	ID         string
	NoID       bool
	PrimaryKey []string
	Comment    string
}

// Table is an abstract table definition, possibly schema-qualified as
// "schema.table".
type Table struct {
	Name        string
	Columns     []Column
	Indexes     []Index
	ForeignKeys []ForeignKey
	Options     TableOptions
}

// Index describes an index on its owning table. An empty Name is synthesized
// as <table>_<col1>_<col2>_..._index.
type Index struct {
	Name    string
	Columns []string
	Unique  bool
}

// ForeignKey describes a referential constraint.
type ForeignKey struct {
	Constraint        string
	Columns           []string
	ReferencedTable   string
	ReferencedColumns []string
	OnDelete          string
	OnUpdate          string
}

// SchemaName is a parsed, possibly-qualified table name. Schema is empty when
// the name was unqualified.
type SchemaName struct {
	Schema string
	Table  string
}

// TableResolution reports the namespace in which a table was found. When
// Exists is false, Schema holds the namespace a lookup would default to.
type TableResolution struct {
	Schema string
	Exists bool
}
