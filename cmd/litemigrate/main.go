package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/litemigrate/litemigrate"
	"github.com/litemigrate/litemigrate/internal/formatter"
)

var (
	dbName   string
	suffix   string
	noSuffix bool
	memory   bool
)

var rootCmd = &cobra.Command{
	Use:   "litemigrate",
	Short: "Inspect SQLite schemas through the migration adapter",
	Long: `litemigrate introspects SQLite databases through the same adapter the
migration runner uses: tables, columns, primary keys, foreign keys, and
indexes, resolved across all attached namespaces.`,
	SilenceUsage: true,
}

var tablesCmd = &cobra.Command{
	Use:   "tables",
	Short: "List the tables of the main namespace",
	RunE: func(cmd *cobra.Command, args []string) error {
		adapter, err := openAdapter()
		if err != nil {
			return err
		}
		defer adapter.Close()

		tables, err := adapter.Tables(cmd.Context(), "")
		if err != nil {
			return err
		}
		for _, name := range tables {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
		return nil
	},
}

var inspectCmd = &cobra.Command{
	Use:   "inspect [table...]",
	Short: "Show columns, keys, and indexes of the given tables (default: all)",
	RunE: func(cmd *cobra.Command, args []string) error {
		adapter, err := openAdapter()
		if err != nil {
			return err
		}
		defer adapter.Close()

		ctx := cmd.Context()
		names := args
		if len(names) == 0 {
			names, err = adapter.Tables(ctx, "")
			if err != nil {
				return err
			}
		}

		infos := make([]formatter.TableInfo, 0, len(names))
		for _, name := range names {
			info, err := describeTable(ctx, adapter, name)
			if err != nil {
				return fmt.Errorf("failed to inspect table %s: %w", name, err)
			}
			infos = append(infos, info)
		}
		return formatter.NewTextFormatter(cmd.OutOrStdout()).Format(infos)
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the engine library version",
	RunE: func(cmd *cobra.Command, args []string) error {
		adapter, err := openAdapter()
		if err != nil {
			return err
		}
		defer adapter.Close()

		version, err := adapter.Version(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), version)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbName, "db", "", "database base name (env: LITEMIGRATE_DATABASE)")
	rootCmd.PersistentFlags().StringVar(&suffix, "suffix", "", "database file suffix (env: LITEMIGRATE_SUFFIX, default .sqlite3)")
	rootCmd.PersistentFlags().BoolVar(&noSuffix, "no-suffix", false, "use the base name verbatim, without a suffix")
	rootCmd.PersistentFlags().BoolVar(&memory, "memory", false, "use an in-memory database (env: LITEMIGRATE_MEMORY)")
	rootCmd.AddCommand(tablesCmd, inspectCmd, versionCmd)
}

// openAdapter builds the adapter from flags, falling back to the environment
// (a .env file is honored when present).
func openAdapter() (*litemigrate.Adapter, error) {
	_ = godotenv.Load()

	if dbName == "" {
		dbName = os.Getenv("LITEMIGRATE_DATABASE")
	}
	if suffix == "" {
		suffix = os.Getenv("LITEMIGRATE_SUFFIX")
	}
	if !memory {
		memory, _ = strconv.ParseBool(os.Getenv("LITEMIGRATE_MEMORY"))
	}
	if dbName == "" && !memory {
		return nil, fmt.Errorf("--db or LITEMIGRATE_DATABASE is required")
	}

	cfg := litemigrate.Config{
		Name:     dbName,
		Suffix:   suffix,
		NoSuffix: noSuffix,
		Memory:   memory,
	}
	return litemigrate.Open(cfg), nil
}

func describeTable(ctx context.Context, adapter *litemigrate.Adapter, name string) (formatter.TableInfo, error) {
	columns, err := adapter.GetColumns(ctx, name)
	if err != nil {
		return formatter.TableInfo{}, err
	}
	pk, err := adapter.GetPrimaryKey(ctx, name)
	if err != nil {
		return formatter.TableInfo{}, err
	}
	indexes, err := adapter.GetIndexes(ctx, name)
	if err != nil {
		return formatter.TableInfo{}, err
	}
	fks, err := adapter.GetForeignKeys(ctx, name)
	if err != nil {
		return formatter.TableInfo{}, err
	}
	return formatter.TableInfo{
		Name:        name,
		Columns:     columns,
		PrimaryKey:  pk,
		Indexes:     indexes,
		ForeignKeys: fks,
	}, nil
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
