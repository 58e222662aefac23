package db

import (
	"context"
	"database/sql"
	"fmt"
)

// Column describes a single column of a user table at schema-fetch time.
type Column struct {
	Name       string `json:"name"`
	Type       string `json:"type"`
	NotNull    bool   `json:"notnull"`
	Default    any    `json:"default_value"`
	PrimaryKey bool   `json:"pk"`
}

// Schema maps table names (case-preserving) to their columns in natural
// column order. A snapshot covers exactly the user-defined tables visible
// at fetch time; it is built fresh per call and never cached.
type Schema map[string][]Column

// FetchSchema reads the full catalog of user-defined tables and their
// column metadata. System tables (sqlite_*) are excluded by name.
// Any connection or metadata failure is returned as a SchemaUnavailableError.
func (c *Connector) FetchSchema(ctx context.Context) (Schema, error) {
	conn, err := c.Open(ctx)
	if err != nil {
		return nil, &SchemaUnavailableError{Cause: err}
	}
	defer conn.Close()

	tables, err := listTables(ctx, conn)
	if err != nil {
		return nil, &SchemaUnavailableError{Cause: err}
	}

	schema := make(Schema, len(tables))
	for _, table := range tables {
		cols, err := tableColumns(ctx, conn, table)
		if err != nil {
			return nil, &SchemaUnavailableError{Cause: err}
		}
		schema[table] = cols
	}

	return schema, nil
}

func listTables(ctx context.Context, conn *sql.DB) ([]string, error) {
	rows, err := conn.QueryContext(ctx,
		"SELECT name FROM sqlite_master WHERE type='table' AND name NOT LIKE 'sqlite_%' ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan table name: %w", err)
		}
		tables = append(tables, name)
	}

	return tables, rows.Err()
}

func tableColumns(ctx context.Context, conn *sql.DB, table string) ([]Column, error) {
	// PRAGMA table_info returns columns in their natural declaration order.
	rows, err := conn.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%q)", table))
	if err != nil {
		return nil, fmt.Errorf("failed to read columns for %s: %w", table, err)
	}
	defer rows.Close()

	var cols []Column
	for rows.Next() {
		var (
			cid     int
			col     Column
			notNull int
			pk      int
			dflt    sql.NullString
		)
		if err := rows.Scan(&cid, &col.Name, &col.Type, &notNull, &dflt, &pk); err != nil {
			return nil, fmt.Errorf("failed to scan column for %s: %w", table, err)
		}
		col.NotNull = notNull != 0
		col.PrimaryKey = pk != 0
		if dflt.Valid {
			col.Default = dflt.String
		}
		cols = append(cols, col)
	}

	return cols, rows.Err()
}
