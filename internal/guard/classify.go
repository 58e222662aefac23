package guard

import (
	"regexp"
	"strings"

	"github.com/xwb1989/sqlparser"
)

// forbiddenKeywords is the fixed deny-set. A query containing any of these
// as a word-boundary token anywhere in its text is rejected regardless of
// statement shape.
var forbiddenKeywords = map[string]bool{
	"INSERT":         true,
	"UPDATE":         true,
	"DELETE":         true,
	"DROP":           true,
	"ALTER":          true,
	"CREATE":         true,
	"ATTACH":         true,
	"DETACH":         true,
	"PRAGMA":         true,
	"VACUUM":         true,
	"LOAD_EXTENSION": true,
}

var wordPattern = regexp.MustCompile(`\b\w+\b`)

// ParseStatement parses a SQL string into a statement handle. Blank input
// is treated as unparseable rather than handed to the parser.
func ParseStatement(query string) (sqlparser.Statement, error) {
	return sqlparser.Parse(query)
}

// StatementType returns the top-level type of a parsed statement as an
// upper-case keyword (SELECT, INSERT, DROP, ...), or UNKNOWN for
// statements the classifier does not recognize. Unions are SELECT-shaped
// and classify as SELECT.
func StatementType(stmt sqlparser.Statement) string {
	switch s := stmt.(type) {
	case *sqlparser.Select, *sqlparser.Union, *sqlparser.ParenSelect:
		return "SELECT"
	case *sqlparser.Insert:
		return "INSERT"
	case *sqlparser.Update:
		return "UPDATE"
	case *sqlparser.Delete:
		return "DELETE"
	case *sqlparser.DDL:
		return strings.ToUpper(s.Action)
	case *sqlparser.Set:
		return "SET"
	case *sqlparser.Show:
		return "SHOW"
	case *sqlparser.Use:
		return "USE"
	case *sqlparser.Begin:
		return "BEGIN"
	case *sqlparser.Commit:
		return "COMMIT"
	case *sqlparser.Rollback:
		return "ROLLBACK"
	default:
		return "UNKNOWN"
	}
}

// ScanForbidden tokenizes the raw query text into word-boundary tokens,
// upper-cases them, and checks each against the deny-set. It returns the
// first forbidden token found. The scan covers the entire text, including
// content nested inside parentheses and subqueries, and deliberately does
// not understand string literals: a keyword inside a quoted literal is
// still flagged.
func ScanForbidden(query string) (string, bool) {
	for _, word := range wordPattern.FindAllString(strings.ToUpper(query), -1) {
		if forbiddenKeywords[word] {
			return word, true
		}
	}
	return "", false
}
