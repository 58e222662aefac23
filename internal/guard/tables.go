// Package guard implements the SQL validation layers: table reference
// extraction, statement classification, the forbidden-keyword screen, and
// the ordered validation pipeline that combines them.
package guard

import (
	"regexp"
	"strings"
)

// tableRefPattern matches the identifier immediately following a FROM or
// JOIN keyword, optionally schema-qualified (schema.table).
var tableRefPattern = regexp.MustCompile(`(?i)\b(?:FROM|JOIN)\s+([a-zA-Z_][\w.]*)`)

// ExtractTables returns the distinct table names referenced via FROM/JOIN
// clauses, in first-occurrence order. Schema qualifiers are stripped so
// only the trailing table segment remains.
//
// This is a lexical scan, not a semantic one: aliases, subqueries used as
// tables, and quoted identifiers with embedded separators are not
// resolved. Malformed input never produces an error, only fewer matches.
func ExtractTables(query string) []string {
	var tables []string
	seen := make(map[string]bool)

	for _, match := range tableRefPattern.FindAllStringSubmatch(query, -1) {
		name := match[1]
		if i := strings.LastIndex(name, "."); i >= 0 {
			name = name[i+1:]
		}
		if !seen[name] {
			seen[name] = true
			tables = append(tables, name)
		}
	}

	return tables
}
