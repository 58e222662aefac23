// Package db provides read-only access to the backing SQLite database.
// It handles connection opening, schema introspection, dry-run EXPLAIN
// checks, and guarded query execution.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	_ "github.com/mattn/go-sqlite3"
)

// Connector opens read-only connections to the database file.
// Every caller gets its own connection, used for a single request and
// closed before returning; nothing is pooled or cached across requests.
type Connector struct {
	path string
}

// NewConnector creates a connector for the given database file path.
// If path is empty, it falls back to the SQLGATE_DATABASE environment variable.
func NewConnector(path string) *Connector {
	if path == "" {
		path = os.Getenv("SQLGATE_DATABASE")
	}
	return &Connector{path: path}
}

// Path returns the configured database file path.
func (c *Connector) Path() string {
	return c.path
}

// Open returns a new read-only connection to the database file.
// The connection is opened with mode=ro so writes fail at the storage
// layer regardless of what SQL reaches it. The caller owns the returned
// handle and must close it.
func (c *Connector) Open(ctx context.Context) (*sql.DB, error) {
	if c.path == "" {
		return nil, fmt.Errorf("database not specified. Use --db flag or set SQLGATE_DATABASE environment variable")
	}
	if _, err := os.Stat(c.path); err != nil {
		if os.IsNotExist(err) {
			return nil, &DatabaseMissingError{Path: c.path}
		}
		return nil, fmt.Errorf("failed to stat database file: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?mode=ro", c.path)
	conn, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return conn, nil
}
