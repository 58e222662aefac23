package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/riyasyash/sqlgate/internal/db"
	"github.com/riyasyash/sqlgate/internal/guard"
)

var (
	checkDBPath string
	checkFile   string
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Batch-validate queries from a file",
	Long: `Check reads one SQL query per line from a file (blank lines and lines
starting with -- are skipped) and runs each through the validation pipeline,
reporting every failure with its reasons.`,
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().StringVar(&checkDBPath, "db", "", "SQLite database file (default: SQLGATE_DATABASE env var)")
	checkCmd.Flags().StringVar(&checkFile, "file", "", "File with one query per line (required)")

	checkCmd.MarkFlagRequired("file")
}

func runCheck(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	queries, err := readQueries(checkFile)
	if err != nil {
		return err
	}
	if len(queries) == 0 {
		return fmt.Errorf("no queries found in %s", checkFile)
	}

	log := zerolog.New(os.Stderr).Level(zerolog.Disabled)
	connector := db.NewConnector(checkDBPath)
	validator := guard.NewValidator(connector, connector, log)

	bar := progressbar.NewOptions(len(queries),
		progressbar.OptionSetDescription("Validating"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWriter(os.Stderr),
	)

	type failure struct {
		query  string
		errors []string
	}

	var (
		failures []failure
		warnings int
	)

	for _, query := range queries {
		result := validator.Validate(ctx, query, map[string]any{})
		if !result.Valid {
			failures = append(failures, failure{query: query, errors: result.Errors})
		}
		warnings += len(result.Warnings)
		bar.Add(1)
	}
	bar.Finish()
	fmt.Fprintln(os.Stderr)

	green := color.New(color.FgGreen, color.Bold)
	red := color.New(color.FgRed, color.Bold)
	yellow := color.New(color.FgYellow)

	green.Printf("✓ %d passed\n", len(queries)-len(failures))
	if warnings > 0 {
		yellow.Printf("⚠ %d warnings\n", warnings)
	}

	if len(failures) > 0 {
		red.Printf("✗ %d failed\n\n", len(failures))
		for _, f := range failures {
			fmt.Printf("  %s\n", f.query)
			for _, e := range f.errors {
				red.Printf("    %s\n", e)
			}
		}
		return fmt.Errorf("%d of %d queries failed validation", len(failures), len(queries))
	}

	return nil
}

// readQueries loads one query per line, skipping blanks and -- comments.
func readQueries(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open query file: %w", err)
	}
	defer f.Close()

	var queries []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "--") {
			continue
		}
		queries = append(queries, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read query file: %w", err)
	}

	return queries, nil
}
