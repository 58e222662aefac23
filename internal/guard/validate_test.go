package guard

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riyasyash/sqlgate/internal/db"
)

type fakeSchemas struct {
	schema db.Schema
	err    error
	calls  int
}

func (f *fakeSchemas) FetchSchema(ctx context.Context) (db.Schema, error) {
	f.calls++
	return f.schema, f.err
}

type fakeDryRun struct {
	err   error
	calls int
}

func (f *fakeDryRun) Explain(ctx context.Context, query string, params map[string]any) error {
	f.calls++
	return f.err
}

func northwindSchema() db.Schema {
	return db.Schema{
		"Products": {
			{Name: "ProductID", Type: "INTEGER", PrimaryKey: true},
			{Name: "ProductName", Type: "TEXT", NotNull: true},
		},
		"Orders":       {{Name: "OrderID", Type: "INTEGER", PrimaryKey: true}},
		"OrderDetails": {{Name: "OrderID", Type: "INTEGER"}},
		"Categories":   {{Name: "CategoryID", Type: "INTEGER", PrimaryKey: true}},
		"Suppliers":    {{Name: "SupplierID", Type: "INTEGER", PrimaryKey: true}},
	}
}

func newTestValidator(schemas *fakeSchemas, dryRun *fakeDryRun) *Validator {
	return NewValidator(schemas, dryRun, zerolog.Nop())
}

func TestValidateAcceptsCleanSelect(t *testing.T) {
	schemas := &fakeSchemas{schema: northwindSchema()}
	dryRun := &fakeDryRun{}
	v := newTestValidator(schemas, dryRun)

	result := v.Validate(context.Background(),
		"SELECT ProductName FROM Products WHERE ProductID = :productId",
		map[string]any{"productId": 51})

	assert.True(t, result.Valid)
	assert.Empty(t, result.Errors)
	assert.Empty(t, result.Warnings)
	assert.Equal(t, 1, schemas.calls)
	assert.Equal(t, 1, dryRun.calls)
}

func TestValidateRejectsUnparseableQuery(t *testing.T) {
	v := newTestValidator(&fakeSchemas{}, &fakeDryRun{})

	for _, query := range []string{"   ", "", "this is not sql (("} {
		result := v.Validate(context.Background(), query, map[string]any{})
		assert.False(t, result.Valid)
		assert.Equal(t, []string{"Unable to parse SQL query."}, result.Errors)
		assert.Empty(t, result.Warnings)
	}
}

func TestValidateRejectsNonSelectStatements(t *testing.T) {
	schemas := &fakeSchemas{schema: northwindSchema()}
	dryRun := &fakeDryRun{}
	v := newTestValidator(schemas, dryRun)

	queries := []string{
		"INSERT INTO Products (ProductName) VALUES ('x')",
		"UPDATE Products SET ProductName = 'x'",
		"DELETE FROM Products",
		"DROP TABLE Customers",
	}

	for _, query := range queries {
		result := v.Validate(context.Background(), query, map[string]any{})
		require.False(t, result.Valid, query)
		assert.Equal(t, "Only SELECT queries are allowed.", result.Errors[0], query)
	}

	// Fail-fast: nothing past the classifier ran.
	assert.Zero(t, schemas.calls)
	assert.Zero(t, dryRun.calls)
}

func TestValidateScreensForbiddenKeywords(t *testing.T) {
	dryRun := &fakeDryRun{}
	v := newTestValidator(&fakeSchemas{schema: northwindSchema()}, dryRun)

	// SELECT-shaped wrapper around a forbidden token, nested in a literal.
	result := v.Validate(context.Background(),
		"SELECT ProductName FROM Products WHERE ProductName = 'DROP'", map[string]any{})

	assert.False(t, result.Valid)
	assert.Equal(t, []string{"Query contains forbidden keyword: DROP"}, result.Errors)
	assert.Zero(t, dryRun.calls)
}

func TestValidateRequiresParamsWhenMarkerPresent(t *testing.T) {
	v := newTestValidator(&fakeSchemas{schema: northwindSchema()}, &fakeDryRun{})

	result := v.Validate(context.Background(),
		"SELECT ProductName FROM Products WHERE ProductID = :productId", map[string]any{})

	assert.False(t, result.Valid)
	assert.Equal(t, []string{"Query uses parameters but no params were provided."}, result.Errors)
}

func TestValidateReportsEveryUnknownTable(t *testing.T) {
	dryRun := &fakeDryRun{}
	v := newTestValidator(&fakeSchemas{schema: northwindSchema()}, dryRun)

	result := v.Validate(context.Background(),
		"SELECT a FROM Nowhere JOIN Missing ON 1=1", map[string]any{})

	assert.False(t, result.Valid)
	assert.Equal(t, []string{
		"Table does not exist: nowhere",
		"Table does not exist: missing",
	}, result.Errors)
	// Unknown tables never reach the dry-run step.
	assert.Zero(t, dryRun.calls)
}

func TestValidateTableMatchingIsCaseInsensitive(t *testing.T) {
	v := newTestValidator(&fakeSchemas{schema: northwindSchema()}, &fakeDryRun{})

	result := v.Validate(context.Background(),
		"SELECT ProductName FROM PRODUCTS", map[string]any{})

	assert.True(t, result.Valid)
}

func TestValidateReportsDryRunFailure(t *testing.T) {
	dryRun := &fakeDryRun{err: errors.New("near \"FRM\": syntax error")}
	v := newTestValidator(&fakeSchemas{schema: northwindSchema()}, dryRun)

	result := v.Validate(context.Background(),
		"SELECT ProductName FROM Products", map[string]any{})

	assert.False(t, result.Valid)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "EXPLAIN failed. SQL syntax/schema error: near \"FRM\": syntax error", result.Errors[0])
}

func TestValidateWarningsAreOrderedAndNonBlocking(t *testing.T) {
	v := newTestValidator(&fakeSchemas{schema: northwindSchema()}, &fakeDryRun{})

	query := "SELECT * FROM Products " +
		"JOIN Orders ON 1=1 " +
		"JOIN OrderDetails ON 1=1 " +
		"JOIN Categories ON 1=1 " +
		"JOIN Suppliers ON 1=1"

	result := v.Validate(context.Background(), query, map[string]any{})

	assert.True(t, result.Valid)
	assert.Empty(t, result.Errors)
	assert.Equal(t, []string{
		"Query contains multiple JOINs; may be complex.",
		"Query uses SELECT *; consider specifying columns.",
	}, result.Warnings)
}

func TestValidateThreeJoinsDoNotWarn(t *testing.T) {
	v := newTestValidator(&fakeSchemas{schema: northwindSchema()}, &fakeDryRun{})

	query := "SELECT ProductName FROM Products " +
		"JOIN Orders ON 1=1 " +
		"JOIN OrderDetails ON 1=1 " +
		"JOIN Categories ON 1=1"

	result := v.Validate(context.Background(), query, map[string]any{})

	assert.True(t, result.Valid)
	assert.Empty(t, result.Warnings)
}

func TestValidateConvertsInternalFaultsToResult(t *testing.T) {
	schemas := &fakeSchemas{err: errors.New("disk exploded")}
	v := newTestValidator(schemas, &fakeDryRun{})

	result := v.Validate(context.Background(),
		"SELECT ProductName FROM Products", map[string]any{})

	assert.False(t, result.Valid)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "Unexpected error during validation: disk exploded", result.Errors[0])
}

func TestValidateIsIdempotent(t *testing.T) {
	v := newTestValidator(&fakeSchemas{schema: northwindSchema()}, &fakeDryRun{})

	query := "SELECT ProductName FROM Products WHERE ProductID = :productId"
	params := map[string]any{"productId": 51}

	first := v.Validate(context.Background(), query, params)
	second := v.Validate(context.Background(), query, params)

	assert.Equal(t, first, second)
}
