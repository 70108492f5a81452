package litemigrate

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseQualifiedName(t *testing.T) {
	tests := []struct {
		input string
		want  SchemaName
	}{
		{"users", SchemaName{Table: "users"}},
		{"main.users", SchemaName{Schema: "main", Table: "users"}},
		{"a.b.c", SchemaName{Schema: "a.b", Table: "c"}},
		{".t", SchemaName{Schema: "", Table: ".t"}},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, parseQualifiedName(tc.input), "input %q", tc.input)
	}
}

// masterConn simulates sqlite_master probes across namespaces. tables maps a
// namespace to the lowercased table names it holds; a namespace absent from
// the map errors, like a detached database would.
type masterConn struct {
	fakeConn
	attached []string
	tables   map[string][]string
}

func (m *masterConn) FetchAll(ctx context.Context, sqlText string) ([]map[string]any, error) {
	if strings.Contains(sqlText, "database_list") {
		return databaseListRows(m.attached...), nil
	}
	for schema, names := range m.tables {
		if strings.Contains(sqlText, QuoteIdentifier(schema)+".sqlite_master") {
			for _, n := range names {
				if strings.Contains(sqlText, quoteString(n)) {
					return []map[string]any{{"name": n}}, nil
				}
			}
			return nil, nil
		}
	}
	return nil, errors.New("no such database")
}

func TestResolveTablePrefersTemp(t *testing.T) {
	conn := &masterConn{
		attached: []string{"main", "temp", "other"},
		tables: map[string][]string{
			"main": {"users"},
			"temp": {"users"},
		},
	}
	a := New(conn)

	res, err := a.resolveTable(context.Background(), "users")
	require.NoError(t, err)
	assert.Equal(t, TableResolution{Schema: "temp", Exists: true}, res)
}

func TestResolveTableSearchesAttachedInOrder(t *testing.T) {
	conn := &masterConn{
		attached: []string{"main", "temp", "aux"},
		tables: map[string][]string{
			"main": {},
			"temp": {},
			"aux":  {"logs"},
		},
	}
	a := New(conn)

	res, err := a.resolveTable(context.Background(), "logs")
	require.NoError(t, err)
	assert.Equal(t, TableResolution{Schema: "aux", Exists: true}, res)
}

func TestResolveTableCaseInsensitive(t *testing.T) {
	conn := &masterConn{
		attached: []string{"main", "temp"},
		tables:   map[string][]string{"main": {"users"}, "temp": {}},
	}
	a := New(conn)

	res, err := a.resolveTable(context.Background(), "USERS")
	require.NoError(t, err)
	assert.Equal(t, TableResolution{Schema: "main", Exists: true}, res)
}

func TestResolveTableMissingDefaultsToMain(t *testing.T) {
	conn := &masterConn{
		attached: []string{"main", "temp"},
		tables:   map[string][]string{"main": {}, "temp": {}},
	}
	a := New(conn)

	res, err := a.resolveTable(context.Background(), "ghost")
	require.NoError(t, err)
	assert.Equal(t, TableResolution{Schema: "main", Exists: false}, res)
}

func TestResolveTableQualifiedOnlySearchesOwnNamespace(t *testing.T) {
	conn := &masterConn{
		attached: []string{"main", "temp", "aux"},
		tables:   map[string][]string{"main": {"users"}, "temp": {"users"}, "aux": {}},
	}
	a := New(conn)

	res, err := a.resolveTable(context.Background(), "aux.users")
	require.NoError(t, err)
	assert.Equal(t, TableResolution{Schema: "aux", Exists: false}, res)

	res, err = a.resolveTable(context.Background(), "main.users")
	require.NoError(t, err)
	assert.Equal(t, TableResolution{Schema: "main", Exists: true}, res)
}

func TestResolveTableUnavailableNamespaceIsNotFound(t *testing.T) {
	// A probe against a namespace that cannot be queried is treated as a
	// miss, not an error.
	conn := &masterConn{tables: map[string][]string{}}
	a := New(conn)

	res, err := a.resolveTable(context.Background(), "gone.users")
	require.NoError(t, err)
	assert.Equal(t, TableResolution{Schema: "gone", Exists: false}, res)
}

func TestProbeNamespaceExactNameMatch(t *testing.T) {
	// Names are compared as opaque strings: a table named "0" must not be
	// confused with "0e2" or any numerically equal spelling.
	conn := &masterConn{
		attached: []string{"main", "temp"},
		tables:   map[string][]string{"main": {"0"}, "temp": {}},
	}
	a := New(conn)

	exists, err := a.HasTable(context.Background(), "0")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = a.HasTable(context.Background(), "0e2")
	require.NoError(t, err)
	assert.False(t, exists)
}
