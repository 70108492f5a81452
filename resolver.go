package litemigrate

import (
	"context"
	"fmt"
	"regexp"
)

// qualifiedNameRe splits "schema.table" at the last dot. Earlier segments,
// dots included, form the schema qualifier.
var qualifiedNameRe = regexp.MustCompile(`^(.+)\.([^.]+)$`)

// parseQualifiedName splits a possibly-qualified table name. Schema is empty
// when the name carries no dot.
func parseQualifiedName(raw string) SchemaName {
	if m := qualifiedNameRe.FindStringSubmatch(raw); m != nil {
		return SchemaName{Schema: m[1], Table: m[2]}
	}
	return SchemaName{Table: raw}
}

// probeResult classifies a per-namespace table lookup. An unattached
// namespace is unavailable, which the search loop folds into "not found"
// rather than propagating.
type probeResult int

const (
	probeNotFound probeResult = iota
	probeFound
	probeUnavailable
)

// probeNamespace checks one namespace's catalog for a table of the given
// name. Matching is exact, case-insensitive with ASCII-only folding; names
// are compared as opaque strings, so a table named "0" never matches "0e2".
func (a *Adapter) probeNamespace(ctx context.Context, schema, table string) probeResult {
	query := fmt.Sprintf(
		"SELECT name FROM %s.sqlite_master WHERE type = 'table' AND lower(name) = %s",
		QuoteIdentifier(schema),
		quoteString(asciiLower(table)),
	)
	rows, err := a.conn.FetchAll(ctx, query)
	if err != nil {
		return probeUnavailable
	}
	if len(rows) > 0 {
		return probeFound
	}
	return probeNotFound
}

// resolveTable locates the namespace a table lives in. A qualified name
// searches only its own namespace. An unqualified name searches temp first,
// then every other attached namespace in catalog order, defaulting to main
// when nothing matches.
func (a *Adapter) resolveTable(ctx context.Context, name string) (TableResolution, error) {
	sn := parseQualifiedName(name)

	var candidates []string
	defaultSchema := "main"
	if sn.Schema != "" {
		candidates = []string{sn.Schema}
		defaultSchema = sn.Schema
	} else {
		candidates = []string{"temp"}
		attached, err := a.AttachedDatabases(ctx)
		if err != nil {
			return TableResolution{}, err
		}
		for _, schema := range attached {
			if asciiLower(schema) != "temp" {
				candidates = append(candidates, schema)
			}
		}
	}

	for _, schema := range candidates {
		if a.probeNamespace(ctx, schema, sn.Table) == probeFound {
			return TableResolution{Schema: schema, Exists: true}, nil
		}
	}
	return TableResolution{Schema: defaultSchema}, nil
}

// HasTable reports whether the table exists in any visible namespace.
func (a *Adapter) HasTable(ctx context.Context, name string) (bool, error) {
	res, err := a.resolveTable(ctx, name)
	if err != nil {
		return false, err
	}
	return res.Exists, nil
}
