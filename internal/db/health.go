package db

import (
	"context"
	"fmt"
	"time"
)

// Health reports the outcome of a trivial liveness probe against the
// database.
type Health struct {
	Status    string `json:"status"`
	Database  string `json:"database"`
	Version   string `json:"version"`
	Timestamp string `json:"timestamp"`
}

// CheckHealth performs a trivial read (SELECT 1) against the database and
// reports the result. It never returns an error: any failure demotes the
// status to "degraded" and carries the detail in the Database field.
func (c *Connector) CheckHealth(ctx context.Context) Health {
	h := Health{
		Status:    "ok",
		Database:  "healthy",
		Version:   "unknown",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	conn, err := c.Open(ctx)
	if err != nil {
		h.Status = "degraded"
		h.Database = fmt.Sprintf("unhealthy: %v", err)
		return h
	}
	defer conn.Close()

	var one int
	if err := conn.QueryRowContext(ctx, "SELECT 1").Scan(&one); err != nil {
		h.Status = "degraded"
		h.Database = fmt.Sprintf("unhealthy: %v", err)
		return h
	}

	var version string
	if err := conn.QueryRowContext(ctx, "SELECT sqlite_version()").Scan(&version); err == nil {
		h.Version = version
	}

	return h
}
