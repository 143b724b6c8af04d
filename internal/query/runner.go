package query

import (
	"context"
	"strings"

	"taxitalk/internal/warehouse"
)

// Kind tags the failure modes of running a generated query.
type Kind int

const (
	// KindInvalidShape means the model output is not a recognizable
	// read-only query. It is never executed.
	KindInvalidShape Kind = iota
	// KindEngineFailed means the engine rejected or failed the query.
	KindEngineFailed
)

// Error is the tagged failure returned by Run.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Result is a successful execution. Zero rows is a valid result, distinct
// from an error.
type Result struct {
	// Query is the sanitized statement that was actually executed.
	Query string
	// Rows are the raw engine rows, bounded by the appended limit.
	Rows []warehouse.Row
	// Formatted holds at most five display-ready rows.
	Formatted []map[string]string
}

// Empty reports a successful query that matched no rows.
func (r *Result) Empty() bool { return len(r.Rows) == 0 }

// Runner sanitizes model-generated SQL and executes it against the engine.
// It never retries; retry policy belongs to the orchestrator.
type Runner struct {
	engine   warehouse.Engine
	rowLimit int
}

// NewRunner creates a runner bound to an engine. rowLimit caps result
// volume for queries the model leaves unbounded.
func NewRunner(engine warehouse.Engine, rowLimit int) *Runner {
	if rowLimit <= 0 {
		rowLimit = 100
	}
	return &Runner{engine: engine, rowLimit: rowLimit}
}

// Run sanitizes, validates, bounds and executes raw model output.
func (r *Runner) Run(ctx context.Context, raw string) (*Result, error) {
	q, err := Extract(raw)
	if err != nil {
		return nil, err
	}

	qualified := r.engine.Table()
	if bare := bareTableName(qualified); bare != qualified {
		q = QualifyTable(q, bare, qualified)
	}

	q = EnsureLimit(q, r.rowLimit)

	rows, err := r.engine.Query(ctx, q)
	if err != nil {
		return nil, &Error{Kind: KindEngineFailed, Message: "engine rejected query", Err: err}
	}

	return &Result{
		Query:     q,
		Rows:      rows,
		Formatted: FormatRows(rows),
	}, nil
}

// bareTableName returns the last path segment of a qualified table name,
// e.g. "trips" for "project.dataset.trips".
func bareTableName(qualified string) string {
	trimmed := strings.Trim(qualified, "`")
	if i := strings.LastIndex(trimmed, "."); i >= 0 {
		return trimmed[i+1:]
	}
	return trimmed
}
