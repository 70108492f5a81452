// Package formatter renders introspected schema metadata for the CLI.
package formatter

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/litemigrate/litemigrate"
)

// TableInfo bundles everything the adapter reports about one table.
type TableInfo struct {
	Name        string
	Columns     []litemigrate.Column
	PrimaryKey  []string
	Indexes     map[string][]string
	ForeignKeys map[int][]string
}

// TextFormatter formats tables as compact text.
type TextFormatter struct {
	writer io.Writer
}

// NewTextFormatter creates a new text formatter.
func NewTextFormatter(w io.Writer) *TextFormatter {
	return &TextFormatter{writer: w}
}

// Format writes each table in compact text format.
func (f *TextFormatter) Format(tables []TableInfo) error {
	for i, table := range tables {
		if i > 0 {
			_, _ = fmt.Fprintln(f.writer)
		}
		f.formatTable(table)
	}
	return nil
}

func (f *TextFormatter) formatTable(table TableInfo) {
	pkStr := ""
	if len(table.PrimaryKey) > 0 {
		pkStr = fmt.Sprintf(" (PK: %s)", strings.Join(table.PrimaryKey, ", "))
	}
	_, _ = fmt.Fprintf(f.writer, "TABLE %s%s\n", table.Name, pkStr)

	for _, col := range table.Columns {
		_, _ = fmt.Fprintf(f.writer, "  %s\n", f.formatColumn(col))
	}

	if len(table.ForeignKeys) > 0 {
		_, _ = fmt.Fprintln(f.writer)
		_, _ = fmt.Fprintln(f.writer, "  FOREIGN KEYS:")
		ids := make([]int, 0, len(table.ForeignKeys))
		for id := range table.ForeignKeys {
			ids = append(ids, id)
		}
		sort.Ints(ids)
		for _, id := range ids {
			_, _ = fmt.Fprintf(f.writer, "    #%d (%s)\n", id, strings.Join(table.ForeignKeys[id], ", "))
		}
	}

	if len(table.Indexes) > 0 {
		_, _ = fmt.Fprintln(f.writer)
		_, _ = fmt.Fprintln(f.writer, "  INDEXES:")
		names := make([]string, 0, len(table.Indexes))
		for name := range table.Indexes {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			_, _ = fmt.Fprintf(f.writer, "    %s (%s)\n", name, strings.Join(table.Indexes[name], ", "))
		}
	}
}

func (f *TextFormatter) formatColumn(col litemigrate.Column) string {
	parts := []string{col.Name + ":"}

	typeStr := col.Type.Name
	if typeStr == "" {
		typeStr = "(untyped)"
	}
	if col.Limit > 0 {
		typeStr = fmt.Sprintf("%s(%d)", typeStr, col.Limit)
	}
	parts = append(parts, typeStr)

	if col.Identity {
		parts = append(parts, "IDENTITY")
	}
	if !col.Null {
		parts = append(parts, "NOT NULL")
	}
	if col.Default != nil {
		parts = append(parts, fmt.Sprintf("DEFAULT %v", col.Default))
	}

	return strings.Join(parts, " ")
}
