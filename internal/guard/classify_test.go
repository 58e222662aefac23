package guard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatementType(t *testing.T) {
	cases := []struct {
		query string
		want  string
	}{
		{"SELECT 1", "SELECT"},
		{"SELECT ProductName FROM Products WHERE ProductID = :productId", "SELECT"},
		{"SELECT a FROM t UNION SELECT b FROM u", "SELECT"},
		{"INSERT INTO t (a) VALUES (1)", "INSERT"},
		{"UPDATE t SET a = 1", "UPDATE"},
		{"DELETE FROM t", "DELETE"},
		{"DROP TABLE Customers", "DROP"},
		{"CREATE TABLE t (a int)", "CREATE"},
	}

	for _, tc := range cases {
		t.Run(tc.query, func(t *testing.T) {
			stmt, err := ParseStatement(tc.query)
			require.NoError(t, err)
			assert.Equal(t, tc.want, StatementType(stmt))
		})
	}
}

func TestParseStatementRejectsGarbage(t *testing.T) {
	_, err := ParseStatement("not even close to sql ((")
	assert.Error(t, err)
}

func TestScanForbidden(t *testing.T) {
	cases := []struct {
		name  string
		query string
		token string
		found bool
	}{
		{
			name:  "clean select",
			query: "SELECT ProductName FROM Products",
			found: false,
		},
		{
			name:  "drop statement",
			query: "DROP TABLE Customers",
			token: "DROP",
			found: true,
		},
		{
			name:  "nested inside parentheses",
			query: "SELECT * FROM Products WHERE ProductID IN (SELECT id FROM t); DELETE FROM t",
			token: "DELETE",
			found: true,
		},
		{
			name:  "lower case is still caught",
			query: "select * from t where pragma_value = 1 or 1=1; vacuum",
			token: "VACUUM",
			found: true,
		},
		{
			name:  "keyword inside a string literal is flagged",
			query: "SELECT * FROM Products WHERE ProductName = 'DROP'",
			token: "DROP",
			found: true,
		},
		{
			name:  "load_extension is a single token",
			query: "SELECT load_extension('evil')",
			token: "LOAD_EXTENSION",
			found: true,
		},
		{
			name:  "substrings of longer words do not match",
			query: "SELECT dropped, updates, creator FROM audit",
			found: false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			token, found := ScanForbidden(tc.query)
			assert.Equal(t, tc.found, found)
			assert.Equal(t, tc.token, token)
		})
	}
}
