// Package cmd implements the command-line interface for sqlgate using Cobra.
// It defines the root command and all subcommands (serve, schema, query,
// check, version).
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version is the current version of sqlgate, set at build time via ldflags.
var Version = "0.0.1"

var rootCmd = &cobra.Command{
	Use:   "sqlgate",
	Short: "Read-only SQL gateway with validation guardrails",
	Long: `sqlgate serves a read-only SQL surface over a fixed SQLite database.
Incoming queries pass through a validation pipeline (SELECT-only enforcement,
forbidden-keyword screening, schema cross-referencing, dry-run EXPLAIN checks)
before an execution gateway runs them against a storage-level read-only
connection.`,
}

// Execute runs the root command and returns any error encountered.
// This is called from main.go.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(schemaCmd)
	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("sqlgate v%s\n", Version)
	},
}
