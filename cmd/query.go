package cmd

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/riyasyash/sqlgate/internal/db"
	"github.com/riyasyash/sqlgate/internal/guard"
)

var (
	queryDBPath    string
	queryText      string
	queryParams    []string
	skipValidation bool
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Validate and execute a single SELECT query",
	Long: `Query runs one SELECT statement through the validation pipeline and,
if it passes, executes it against the read-only database and prints the rows.`,
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().StringVar(&queryDBPath, "db", "", "SQLite database file (default: SQLGATE_DATABASE env var)")
	queryCmd.Flags().StringVar(&queryText, "query", "", "SQL SELECT query (required)")
	queryCmd.Flags().StringArrayVar(&queryParams, "param", nil, "Named parameter binding as name=value (repeatable)")
	queryCmd.Flags().BoolVar(&skipValidation, "skip-validation", false, "Execute without running the validation pipeline first")

	queryCmd.MarkFlagRequired("query")
}

func runQuery(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	params, err := parseParams(queryParams)
	if err != nil {
		return err
	}

	log := zerolog.New(os.Stderr).Level(zerolog.WarnLevel).With().Timestamp().Logger()
	connector := db.NewConnector(queryDBPath)

	red := color.New(color.FgRed, color.Bold)
	yellow := color.New(color.FgYellow)
	green := color.New(color.FgGreen, color.Bold)

	if !skipValidation {
		validator := guard.NewValidator(connector, connector, log)
		result := validator.Validate(ctx, queryText, params)

		for _, warning := range result.Warnings {
			yellow.Fprintf(os.Stderr, "⚠  %s\n", warning)
		}
		if !result.Valid {
			for _, e := range result.Errors {
				red.Fprintf(os.Stderr, "✗  %s\n", e)
			}
			return fmt.Errorf("query rejected by validation")
		}
	}

	gateway := db.NewGateway(connector, log)
	result, err := gateway.Execute(ctx, queryText, params)
	if err != nil {
		return err
	}

	fmt.Println(strings.Join(result.Columns, " | "))
	for _, row := range result.Rows {
		cells := make([]string, len(row))
		for i, v := range row {
			cells[i] = fmt.Sprintf("%v", v)
		}
		fmt.Println(strings.Join(cells, " | "))
	}

	green.Fprintf(os.Stderr, "✓ %d rows\n", len(result.Rows))
	return nil
}

// parseParams converts repeated name=value flags into a binding map.
// Values that look numeric are bound as numbers, everything else as text.
func parseParams(pairs []string) (map[string]any, error) {
	if len(pairs) == 0 {
		return map[string]any{}, nil
	}

	params := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		name, value, found := strings.Cut(pair, "=")
		if !found || name == "" {
			return nil, fmt.Errorf("invalid --param %q, expected name=value", pair)
		}
		if n, err := strconv.ParseInt(value, 10, 64); err == nil {
			params[name] = n
		} else if f, err := strconv.ParseFloat(value, 64); err == nil {
			params[name] = f
		} else {
			params[name] = value
		}
	}

	return params, nil
}
