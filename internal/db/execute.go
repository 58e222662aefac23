package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

// QueryResult holds the outcome of an executed query: result-set column
// names and all rows, in result-set order. Every row has one value per
// column.
type QueryResult struct {
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
}

// Gateway executes approved read-only queries. It re-asserts the
// SELECT-only invariant itself and does not depend on validation having
// run first.
type Gateway struct {
	connector *Connector
	log       zerolog.Logger
}

// NewGateway creates an execution gateway over the given connector.
func NewGateway(connector *Connector, log zerolog.Logger) *Gateway {
	return &Gateway{connector: connector, log: log}
}

// Execute runs a SELECT query with named parameter bindings and returns
// its columns and rows. A query whose trimmed text does not start with
// "select" is rejected with a SecurityViolationError before any database
// interaction. Database errors are logged and returned unchanged so the
// caller sees the real message.
func (g *Gateway) Execute(ctx context.Context, query string, params map[string]any) (*QueryResult, error) {
	if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(query)), "select") {
		g.log.Error().Str("query", query).Msg("execution refused: not a SELECT")
		return nil, &SecurityViolationError{Query: query}
	}

	conn, err := g.connector.Open(ctx)
	if err != nil {
		g.log.Error().Err(err).Msg("failed to open database")
		return nil, err
	}
	defer conn.Close()

	rows, err := conn.QueryContext(ctx, query, bindParams(params)...)
	if err != nil {
		g.log.Error().Err(err).Str("query", query).Msg("SQL execution error")
		return nil, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		g.log.Error().Err(err).Msg("failed to read result columns")
		return nil, err
	}

	result := &QueryResult{Columns: columns, Rows: [][]any{}}
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			g.log.Error().Err(err).Msg("failed to scan row")
			return nil, err
		}
		for i, v := range values {
			if b, ok := v.([]byte); ok {
				values[i] = string(b)
			}
		}
		result.Rows = append(result.Rows, values)
	}
	if err := rows.Err(); err != nil {
		g.log.Error().Err(err).Msg("result iteration failed")
		return nil, err
	}

	return result, nil
}

// Explain performs a dry-run syntax/schema check by requesting the query
// plan with the supplied bindings, without executing the query itself.
func (c *Connector) Explain(ctx context.Context, query string, params map[string]any) error {
	conn, err := c.Open(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	rows, err := conn.QueryContext(ctx, fmt.Sprintf("EXPLAIN %s", query), bindParams(params)...)
	if err != nil {
		return err
	}
	return rows.Close()
}

// bindParams converts a named-parameter mapping into driver arguments.
// Parameters are always bound, never interpolated into the SQL text.
func bindParams(params map[string]any) []any {
	args := make([]any, 0, len(params))
	for name, value := range params {
		args = append(args, sql.Named(name, value))
	}
	return args
}
