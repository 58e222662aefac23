package db

import "fmt"

// DatabaseMissingError indicates the backing database file does not exist.
type DatabaseMissingError struct {
	Path string
}

func (e *DatabaseMissingError) Error() string {
	return fmt.Sprintf("database missing at: %s", e.Path)
}

// SchemaUnavailableError indicates the schema catalog could not be read,
// either because the connection failed or a metadata query errored.
type SchemaUnavailableError struct {
	Cause error
}

func (e *SchemaUnavailableError) Error() string {
	return fmt.Sprintf("schema unavailable: %v", e.Cause)
}

func (e *SchemaUnavailableError) Unwrap() error {
	return e.Cause
}

// SecurityViolationError indicates a query reached the execution gateway
// without satisfying the SELECT-only invariant. It is raised before any
// database interaction and is distinct from ordinary execution errors so
// the boundary can surface it as a protocol-level failure.
type SecurityViolationError struct {
	Query string
}

func (e *SecurityViolationError) Error() string {
	return "security violation: only SELECT queries are allowed"
}
