// sqlgate exposes a narrow, read-only SQL surface over a fixed SQLite
// database to untrusted callers, with a validation and guardrail engine
// that decides whether a query is safe before it ever executes.
//
// See README.md for usage documentation.
package main

import (
	"fmt"
	"os"

	"github.com/riyasyash/sqlgate/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
