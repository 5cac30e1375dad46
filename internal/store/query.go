package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/roach88/uncalc/internal/ir"
)

// Filter selects evaluations across sessions. Zero fields match everything.
type Filter struct {
	SessionID   string
	Status      ir.EvaluationStatus
	ErrorCode   string
	ProgramHash string
	Limit       int // 0 means no limit
}

// Validate reports an unknown status or a negative limit.
func (f Filter) Validate() error {
	switch f.Status {
	case "", ir.StatusOK, ir.StatusSyntaxError, ir.StatusArithmeticError:
	default:
		return fmt.Errorf("unknown status %q", f.Status)
	}
	if f.Limit < 0 {
		return fmt.Errorf("negative limit %d", f.Limit)
	}
	return nil
}

// IsZero reports whether f matches every evaluation.
func (f Filter) IsZero() bool {
	return f == Filter{}
}

// compileQuery turns f into a parameterized query.
//
// Values are always bound as parameters, never interpolated. Every query
// has an ORDER BY so the result order does not depend on the query plan.
func compileQuery(f Filter) (string, []any) {
	var preds []string
	var params []any

	equals := func(column string, value any) {
		preds = append(preds, column+" = ?")
		params = append(params, value)
	}
	if f.SessionID != "" {
		equals("e.session_id", f.SessionID)
	}
	if f.Status != "" {
		equals("e.status", string(f.Status))
	}
	if f.ErrorCode != "" {
		equals("e.error_code", f.ErrorCode)
	}
	if f.ProgramHash != "" {
		equals("e.program_hash", f.ProgramHash)
	}

	var b strings.Builder
	b.WriteString(selectEvaluation)
	if len(preds) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(preds, " AND "))
	}
	b.WriteString(" ORDER BY e.seq ASC, e.session_id COLLATE BINARY ASC")
	if f.Limit > 0 {
		b.WriteString(" LIMIT ?")
		params = append(params, f.Limit)
	}
	return b.String(), params
}

// Query returns the evaluations matching f in seq order.
//
// Returns an empty slice (not nil) if nothing matches.
func (s *Store) Query(ctx context.Context, f Filter) ([]ir.Evaluation, error) {
	if err := f.Validate(); err != nil {
		return nil, fmt.Errorf("invalid filter: %w", err)
	}

	query, params := compileQuery(f)
	rows, err := s.db.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, fmt.Errorf("query evaluations: %w", err)
	}
	defer rows.Close()

	evals := []ir.Evaluation{}
	for rows.Next() {
		ev, err := scanEvaluation(rows)
		if err != nil {
			return nil, err
		}
		evals = append(evals, ev)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate evaluations: %w", err)
	}

	return evals, nil
}
