package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/uncalc/internal/compiler"
	"github.com/roach88/uncalc/internal/ir"
)

func seedQueryStore(t *testing.T) *Store {
	t.Helper()
	s := createTestStore(t)
	ctx := context.Background()

	div := createTestEvaluation(t, "b", 4, "7/0", 0)
	div.Status = ir.StatusArithmeticError
	div.ErrorCode = "DIVISION_BY_ZERO"
	div.ErrorMessage = "divided by zero"

	for _, ev := range []ir.Evaluation{
		createTestEvaluation(t, "a", 1, "1+1", 2),
		createSyntaxErrorEvaluation("a", 2, "1+", string(compiler.ErrCodeMissingOperand), "Missing operand"),
		createTestEvaluation(t, "b", 3, "1+1", 2),
		div,
		createTestEvaluation(t, "a", 5, "2*3", 6),
	} {
		require.NoError(t, s.WriteEvaluation(ctx, ev))
	}
	return s
}

func seqsOf(evals []ir.Evaluation) []int64 {
	seqs := make([]int64, 0, len(evals))
	for _, ev := range evals {
		seqs = append(seqs, ev.Seq)
	}
	return seqs
}

func TestQuery(t *testing.T) {
	s := seedQueryStore(t)
	hash := ir.MustProgramHash(mustCompile(t, "1+1"))

	tests := []struct {
		name   string
		filter Filter
		want   []int64
	}{
		{"zero filter", Filter{}, []int64{1, 2, 3, 4, 5}},
		{"session", Filter{SessionID: "a"}, []int64{1, 2, 5}},
		{"status", Filter{Status: ir.StatusOK}, []int64{1, 3, 5}},
		{"syntax errors", Filter{Status: ir.StatusSyntaxError}, []int64{2}},
		{"error code", Filter{ErrorCode: "DIVISION_BY_ZERO"}, []int64{4}},
		{"program hash", Filter{ProgramHash: hash}, []int64{1, 3}},
		{"combined", Filter{SessionID: "b", ProgramHash: hash}, []int64{3}},
		{"limit", Filter{Status: ir.StatusOK, Limit: 2}, []int64{1, 3}},
		{"no match", Filter{SessionID: "c"}, []int64{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			evals, err := s.Query(context.Background(), tt.filter)
			require.NoError(t, err)
			require.NotNil(t, evals)
			assert.Equal(t, tt.want, seqsOf(evals))
		})
	}
}

func TestQuery_LoadsPrograms(t *testing.T) {
	s := seedQueryStore(t)

	evals, err := s.Query(context.Background(), Filter{ErrorCode: "DIVISION_BY_ZERO"})
	require.NoError(t, err)
	require.Len(t, evals, 1)
	require.NotNil(t, evals[0].Program)
	assert.Equal(t, "7 0 /", evals[0].Program.String())
	assert.Equal(t, "divided by zero", evals[0].ErrorMessage)
}

func TestQuery_InvalidFilter(t *testing.T) {
	s := createTestStore(t)

	_, err := s.Query(context.Background(), Filter{Status: "pending"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown status "pending"`)

	_, err = s.Query(context.Background(), Filter{Limit: -1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "negative limit")
}

func TestCompileQuery_Parameterized(t *testing.T) {
	query, params := compileQuery(Filter{
		SessionID: "x' OR 1=1 --",
		Status:    ir.StatusOK,
		Limit:     3,
	})

	assert.NotContains(t, query, "OR 1=1")
	assert.Contains(t, query, "WHERE e.session_id = ? AND e.status = ?")
	assert.Contains(t, query, "ORDER BY e.seq ASC")
	assert.Contains(t, query, "LIMIT ?")
	assert.Equal(t, []any{"x' OR 1=1 --", "ok", 3}, params)
}

func TestCompileQuery_AlwaysOrdered(t *testing.T) {
	query, params := compileQuery(Filter{})

	assert.NotContains(t, query, "WHERE")
	assert.Contains(t, query, "ORDER BY e.seq ASC, e.session_id COLLATE BINARY ASC")
	assert.Empty(t, params)
}

func TestFilter_IsZero(t *testing.T) {
	assert.True(t, Filter{}.IsZero())
	assert.False(t, Filter{Limit: 1}.IsZero())
	assert.False(t, Filter{ErrorCode: "OVERFLOW"}.IsZero())
}

func mustCompile(t *testing.T, expr string) *ir.Program {
	t.Helper()
	p, err := compiler.Compile(expr)
	require.NoError(t, err)
	return p
}
