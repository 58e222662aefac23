package guard

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/riyasyash/sqlgate/internal/db"
)

// SchemaProvider yields a fresh schema snapshot. Each validation call
// fetches its own snapshot; nothing is cached between requests.
type SchemaProvider interface {
	FetchSchema(ctx context.Context) (db.Schema, error)
}

// DryRunner performs a syntax/schema dry-run of a query (an EXPLAIN
// request) without executing it.
type DryRunner interface {
	Explain(ctx context.Context, query string, params map[string]any) error
}

// Result is the outcome of validating one query. Valid is true exactly
// when Errors is empty; Warnings are advisory and never block.
type Result struct {
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

// Validator runs the ordered validation pipeline: parse, classify,
// keyword screen, parameter sanity, table/schema cross-reference, dry-run,
// complexity warnings. Checks are fail-fast: the first blocking failure
// terminates the pipeline and the result is returned immediately.
type Validator struct {
	schemas SchemaProvider
	dryRun  DryRunner
	log     zerolog.Logger
}

// NewValidator creates a validator over the given schema provider and
// dry-run executor.
func NewValidator(schemas SchemaProvider, dryRun DryRunner, log zerolog.Logger) *Validator {
	return &Validator{schemas: schemas, dryRun: dryRun, log: log}
}

// outcome tags each pipeline step's decision: continue to the next check
// or stop with the result collected so far.
type outcome int

const (
	proceed outcome = iota
	halt
)

// visit carries one query through the pipeline.
type visit struct {
	query  string
	params map[string]any
	result *Result
}

type step func(ctx context.Context, v *visit) (outcome, error)

// Validate checks a query against every guardrail and returns the
// decision as data. It never returns an error or panics to the caller:
// internal faults are converted into an invalid result with an
// "Unexpected error during validation" entry.
func (vd *Validator) Validate(ctx context.Context, query string, params map[string]any) (result *Result) {
	result = &Result{Errors: []string{}, Warnings: []string{}}

	defer func() {
		if r := recover(); r != nil {
			vd.log.Error().Interface("panic", r).Msg("validation panicked")
			result.Errors = append(result.Errors, fmt.Sprintf("Unexpected error during validation: %v", r))
			result.Valid = false
		}
	}()

	v := &visit{query: query, params: params, result: result}
	steps := []step{
		vd.checkStatement,
		vd.screenKeywords,
		vd.checkParams,
		vd.checkTables,
		vd.checkPlan,
		vd.addWarnings,
	}

	for _, s := range steps {
		out, err := s(ctx, v)
		if err != nil {
			vd.log.Error().Err(err).Msg("unexpected error during validation")
			result.Errors = append(result.Errors, fmt.Sprintf("Unexpected error during validation: %v", err))
			break
		}
		if out == halt {
			break
		}
	}

	result.Valid = len(result.Errors) == 0
	return result
}

// checkStatement parses the query and requires a top-level SELECT.
func (vd *Validator) checkStatement(_ context.Context, v *visit) (outcome, error) {
	if strings.TrimSpace(v.query) == "" {
		vd.log.Error().Msg("unable to parse SQL query")
		v.result.Errors = append(v.result.Errors, "Unable to parse SQL query.")
		return halt, nil
	}

	stmt, err := ParseStatement(v.query)
	if err != nil {
		vd.log.Error().Err(err).Msg("unable to parse SQL query")
		v.result.Errors = append(v.result.Errors, "Unable to parse SQL query.")
		return halt, nil
	}

	if StatementType(stmt) != "SELECT" {
		vd.log.Error().Str("query", v.query).Msg("only SELECT queries are allowed")
		v.result.Errors = append(v.result.Errors, "Only SELECT queries are allowed.")
		return halt, nil
	}

	return proceed, nil
}

// screenKeywords rejects the query if any deny-set token appears anywhere
// in the raw text. This layer is independent of statement shape: a
// SELECT wrapping a forbidden keyword in a sub-expression is still
// rejected.
func (vd *Validator) screenKeywords(_ context.Context, v *visit) (outcome, error) {
	if token, found := ScanForbidden(v.query); found {
		vd.log.Error().Str("keyword", token).Msg("query contains forbidden keyword")
		v.result.Errors = append(v.result.Errors, fmt.Sprintf("Query contains forbidden keyword: %s", token))
		return halt, nil
	}
	return proceed, nil
}

// checkParams requires a non-empty params mapping when the query uses the
// named-parameter marker.
func (vd *Validator) checkParams(_ context.Context, v *visit) (outcome, error) {
	if strings.Contains(v.query, ":") && len(v.params) == 0 {
		vd.log.Error().Msg("query uses parameters but no params were provided")
		v.result.Errors = append(v.result.Errors, "Query uses parameters but no params were provided.")
		return halt, nil
	}
	return proceed, nil
}

// checkTables cross-references every extracted table against a fresh
// schema snapshot. Unlike the other checks, it reports all unknown tables
// before halting, not just the first.
func (vd *Validator) checkTables(ctx context.Context, v *visit) (outcome, error) {
	schema, err := vd.schemas.FetchSchema(ctx)
	if err != nil {
		return halt, err
	}

	known := make(map[string]bool, len(schema))
	for table := range schema {
		known[strings.ToLower(table)] = true
	}

	for _, table := range ExtractTables(v.query) {
		lower := strings.ToLower(table)
		if !known[lower] {
			vd.log.Error().Str("table", lower).Msg("table does not exist in schema")
			v.result.Errors = append(v.result.Errors, fmt.Sprintf("Table does not exist: %s", lower))
		}
	}

	if len(v.result.Errors) > 0 {
		return halt, nil
	}
	return proceed, nil
}

// checkPlan dry-runs the query through the database's planner with the
// supplied bindings, catching syntax and schema errors the earlier lexical
// checks cannot see.
func (vd *Validator) checkPlan(ctx context.Context, v *visit) (outcome, error) {
	if err := vd.dryRun.Explain(ctx, v.query, v.params); err != nil {
		vd.log.Error().Err(err).Msg("EXPLAIN failed")
		v.result.Errors = append(v.result.Errors, fmt.Sprintf("EXPLAIN failed. SQL syntax/schema error: %v", err))
		return halt, nil
	}
	return proceed, nil
}

// addWarnings appends non-blocking complexity warnings. The JOIN count is
// a case-insensitive substring count over the raw text.
func (vd *Validator) addWarnings(_ context.Context, v *visit) (outcome, error) {
	if strings.Count(strings.ToLower(v.query), "join") > 3 {
		vd.log.Warn().Msg("query contains multiple JOINs")
		v.result.Warnings = append(v.result.Warnings, "Query contains multiple JOINs; may be complex.")
	}
	if strings.Contains(v.query, "*") {
		vd.log.Warn().Msg("query uses SELECT *")
		v.result.Warnings = append(v.result.Warnings, "Query uses SELECT *; consider specifying columns.")
	}
	return proceed, nil
}
