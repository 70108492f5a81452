//go:build integration
// +build integration

package litemigrate_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/litemigrate/litemigrate"
)

func openMemoryAdapter(t *testing.T) *litemigrate.Adapter {
	t.Helper()
	adapter := litemigrate.Open(litemigrate.Config{Memory: true})
	t.Cleanup(func() { adapter.Close() })
	return adapter
}

func TestCreateAndIntrospectTable(t *testing.T) {
	ctx := context.Background()
	adapter := openMemoryAdapter(t)

	err := adapter.CreateTable(ctx, litemigrate.Table{
		Name: "users",
		Columns: []litemigrate.Column{
			{Name: "email", Type: litemigrate.Type(litemigrate.TypeString), Limit: 255},
			{Name: "active", Type: litemigrate.Type(litemigrate.TypeBoolean), Default: true},
			{Name: "bio", Type: litemigrate.Type(litemigrate.TypeText), Null: true},
		},
	})
	require.NoError(t, err)

	has, err := adapter.HasTable(ctx, "users")
	require.NoError(t, err)
	assert.True(t, has)

	// Resolution folds case.
	has, err = adapter.HasTable(ctx, "USERS")
	require.NoError(t, err)
	assert.True(t, has)

	columns, err := adapter.GetColumns(ctx, "users")
	require.NoError(t, err)
	require.Len(t, columns, 4)

	assert.Equal(t, "id", columns[0].Name)
	assert.True(t, columns[0].Identity)

	assert.Equal(t, "email", columns[1].Name)
	assert.Equal(t, litemigrate.Type(litemigrate.TypeString), columns[1].Type)
	assert.Equal(t, 255, columns[1].Limit)
	assert.False(t, columns[1].Null)

	assert.Equal(t, "active", columns[2].Name)
	assert.Equal(t, litemigrate.Type(litemigrate.TypeBoolean), columns[2].Type)
	assert.Equal(t, true, columns[2].Default)

	assert.True(t, columns[3].Null)

	pk, err := adapter.GetPrimaryKey(ctx, "users")
	require.NoError(t, err)
	assert.Equal(t, []string{"id"}, pk)
}

func TestCompositePrimaryKey(t *testing.T) {
	ctx := context.Background()
	adapter := openMemoryAdapter(t)

	err := adapter.CreateTable(ctx, litemigrate.Table{
		Name: "follows",
		Options: litemigrate.TableOptions{
			NoID:       true,
			PrimaryKey: []string{"follower_id", "followee_id"},
		},
		Columns: []litemigrate.Column{
			{Name: "follower_id", Type: litemigrate.Type(litemigrate.TypeInteger)},
			{Name: "followee_id", Type: litemigrate.Type(litemigrate.TypeInteger)},
		},
	})
	require.NoError(t, err)

	has, err := adapter.HasPrimaryKey(ctx, "follows", []string{"FOLLOWEE_ID", "follower_id"}, "")
	require.NoError(t, err)
	assert.True(t, has)

	// A composite key never carries an identity column.
	columns, err := adapter.GetColumns(ctx, "follows")
	require.NoError(t, err)
	for _, col := range columns {
		assert.False(t, col.Identity, "column %s", col.Name)
	}

	// The table-level key materializes as an automatic index.
	has, err = adapter.HasIndexByName(ctx, "follows", "sqlite_autoindex_follows_1")
	require.NoError(t, err)
	assert.True(t, has)

	has, err = adapter.HasIndex(ctx, "follows", []string{"follower_id", "followee_id"})
	require.NoError(t, err)
	assert.True(t, has)
}

func TestIndexLifecycle(t *testing.T) {
	ctx := context.Background()
	adapter := openMemoryAdapter(t)

	err := adapter.CreateTable(ctx, litemigrate.Table{
		Name: "users",
		Columns: []litemigrate.Column{
			{Name: "email", Type: litemigrate.Type(litemigrate.TypeString), Limit: 255},
		},
		Indexes: []litemigrate.Index{{Columns: []string{"email"}, Unique: true}},
	})
	require.NoError(t, err)

	has, err := adapter.HasIndex(ctx, "users", []string{"email"})
	require.NoError(t, err)
	assert.True(t, has)

	has, err = adapter.HasIndexByName(ctx, "users", "users_email_index")
	require.NoError(t, err)
	assert.True(t, has)

	require.NoError(t, adapter.DropIndex(ctx, "users", []string{"email"}))

	has, err = adapter.HasIndex(ctx, "users", []string{"email"})
	require.NoError(t, err)
	assert.False(t, has)
}

func TestColumnAlterations(t *testing.T) {
	ctx := context.Background()
	adapter := openMemoryAdapter(t)

	err := adapter.CreateTable(ctx, litemigrate.Table{
		Name: "articles",
		Columns: []litemigrate.Column{
			{Name: "title", Type: litemigrate.Type(litemigrate.TypeString), Limit: 100},
			{Name: "draft", Type: litemigrate.Type(litemigrate.TypeBoolean), Default: true},
		},
	})
	require.NoError(t, err)

	require.NoError(t, adapter.Execute(ctx, "INSERT INTO articles (title, draft) VALUES ('first', 1)"))

	// Rename keeps rows and the identity column.
	require.NoError(t, adapter.RenameColumn(ctx, "articles", "title", "headline"))
	has, err := adapter.HasColumn(ctx, "articles", "headline")
	require.NoError(t, err)
	assert.True(t, has)

	columns, err := adapter.GetColumns(ctx, "articles")
	require.NoError(t, err)
	assert.True(t, columns[0].Identity)

	// Change widens the column under the same name.
	err = adapter.ChangeColumn(ctx, "articles", "headline", litemigrate.Column{
		Type:  litemigrate.Type(litemigrate.TypeString),
		Limit: 500,
		Null:  true,
	})
	require.NoError(t, err)
	columns, err = adapter.GetColumns(ctx, "articles")
	require.NoError(t, err)
	assert.Equal(t, 500, columns[1].Limit)

	// Drop removes the column but keeps the rest.
	require.NoError(t, adapter.DropColumn(ctx, "articles", "draft"))
	has, err = adapter.HasColumn(ctx, "articles", "draft")
	require.NoError(t, err)
	assert.False(t, has)
}

func TestForeignKeyLifecycle(t *testing.T) {
	ctx := context.Background()
	adapter := openMemoryAdapter(t)

	require.NoError(t, adapter.CreateTable(ctx, litemigrate.Table{Name: "users"}))
	require.NoError(t, adapter.CreateTable(ctx, litemigrate.Table{
		Name:    "posts",
		Columns: []litemigrate.Column{{Name: "user_id", Type: litemigrate.Type(litemigrate.TypeInteger)}},
	}))

	err := adapter.AddForeignKey(ctx, "posts", litemigrate.ForeignKey{
		Columns:           []string{"user_id"},
		ReferencedTable:   "users",
		ReferencedColumns: []string{"id"},
		OnDelete:          "CASCADE",
	})
	require.NoError(t, err)

	has, err := adapter.HasForeignKey(ctx, "posts", []string{"USER_ID"}, "")
	require.NoError(t, err)
	assert.True(t, has)

	require.NoError(t, adapter.DropForeignKey(ctx, "posts", []string{"user_id"}))

	has, err = adapter.HasForeignKey(ctx, "posts", []string{"user_id"}, "")
	require.NoError(t, err)
	assert.False(t, has)
}

func TestTempNamespacePrecedence(t *testing.T) {
	ctx := context.Background()
	adapter := openMemoryAdapter(t)

	require.NoError(t, adapter.CreateTable(ctx, litemigrate.Table{
		Name:    "shadow",
		Columns: []litemigrate.Column{{Name: "a", Type: litemigrate.Type(litemigrate.TypeInteger)}},
	}))
	require.NoError(t, adapter.Execute(ctx, "CREATE TEMP TABLE shadow (b TEXT)"))

	// The temp copy wins for unqualified names.
	has, err := adapter.HasColumn(ctx, "shadow", "b")
	require.NoError(t, err)
	assert.True(t, has)

	// Qualification reaches past it.
	has, err = adapter.HasColumn(ctx, "main.shadow", "a")
	require.NoError(t, err)
	assert.True(t, has)
}

func TestTruncateResetsSequence(t *testing.T) {
	ctx := context.Background()
	adapter := openMemoryAdapter(t)

	require.NoError(t, adapter.CreateTable(ctx, litemigrate.Table{
		Name:    "events",
		Columns: []litemigrate.Column{{Name: "kind", Type: litemigrate.Type(litemigrate.TypeString), Limit: 20}},
	}))
	require.NoError(t, adapter.Execute(ctx, "INSERT INTO events (kind) VALUES ('a'), ('b')"))

	require.NoError(t, adapter.TruncateTable(ctx, "events"))
	require.NoError(t, adapter.Execute(ctx, "INSERT INTO events (kind) VALUES ('c')"))

	columns, err := adapter.GetColumns(ctx, "events")
	require.NoError(t, err)
	assert.True(t, columns[0].Identity)
}

func TestVersionReports(t *testing.T) {
	ctx := context.Background()
	adapter := openMemoryAdapter(t)

	version, err := adapter.Version(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, version)
}
