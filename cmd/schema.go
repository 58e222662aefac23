package cmd

import (
	"context"
	"fmt"
	"sort"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/riyasyash/sqlgate/internal/db"
)

var schemaDBPath string

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Display the tables and columns of the database",
	Long:  `Schema prints the catalog of user-defined tables with column types, constraints and primary keys.`,
	RunE:  runSchema,
}

func init() {
	schemaCmd.Flags().StringVar(&schemaDBPath, "db", "", "SQLite database file (default: SQLGATE_DATABASE env var)")
}

func runSchema(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	connector := db.NewConnector(schemaDBPath)
	schema, err := connector.FetchSchema(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch schema: %w", err)
	}

	tables := make([]string, 0, len(schema))
	for table := range schema {
		tables = append(tables, table)
	}
	sort.Strings(tables)

	cyan := color.New(color.FgCyan, color.Bold)
	dim := color.New(color.FgHiBlack)

	fmt.Printf("Database Schema (%d tables):\n\n", len(tables))

	for _, table := range tables {
		cyan.Println(table)

		for _, col := range schema[table] {
			line := fmt.Sprintf("  %s %s", col.Name, col.Type)
			if col.PrimaryKey {
				line += " PK"
			}
			if col.NotNull {
				line += " NOT NULL"
			}
			fmt.Println(line)
			if col.Default != nil {
				dim.Printf("    default: %v\n", col.Default)
			}
		}

		fmt.Println()
	}

	return nil
}
