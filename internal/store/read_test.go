package store

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/uncalc/internal/compiler"
)

func TestReadSession_OrderedBySeq(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	// Written out of order.
	require.NoError(t, s.WriteEvaluation(ctx, createTestEvaluation(t, "a", 3, "3", 3)))
	require.NoError(t, s.WriteEvaluation(ctx, createTestEvaluation(t, "a", 1, "1", 1)))
	require.NoError(t, s.WriteEvaluation(ctx, createTestEvaluation(t, "b", 2, "2", 2)))
	require.NoError(t, s.WriteEvaluation(ctx, createSyntaxErrorEvaluation("a", 2, "1+", string(compiler.ErrCodeMissingOperand), "Missing operand")))

	evals, err := s.ReadSession(ctx, "a")
	require.NoError(t, err)
	require.Len(t, evals, 3)

	var seqs []int64
	for _, ev := range evals {
		seqs = append(seqs, ev.Seq)
		assert.Equal(t, "a", ev.SessionID)
	}
	assert.Equal(t, []int64{1, 2, 3}, seqs)
}

func TestReadSession_Unknown(t *testing.T) {
	s := createTestStore(t)

	evals, err := s.ReadSession(context.Background(), "nope")
	require.NoError(t, err)
	assert.NotNil(t, evals)
	assert.Empty(t, evals)
}

func TestReadEvaluation_NotFound(t *testing.T) {
	s := createTestStore(t)

	_, err := s.ReadEvaluation(context.Background(), "s", 42)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestReadProgram_NotFound(t *testing.T) {
	s := createTestStore(t)

	_, err := s.ReadProgram(context.Background(), "0000")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestListSessions(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	sessions, err := s.ListSessions(ctx)
	require.NoError(t, err)
	assert.Empty(t, sessions)

	require.NoError(t, s.WriteEvaluation(ctx, createTestEvaluation(t, "beta", 4, "4", 4)))
	require.NoError(t, s.WriteEvaluation(ctx, createTestEvaluation(t, "alpha", 1, "1", 1)))
	require.NoError(t, s.WriteEvaluation(ctx, createTestEvaluation(t, "alpha", 2, "2", 2)))
	require.NoError(t, s.WriteEvaluation(ctx, createTestEvaluation(t, "beta", 5, "5", 5)))
	require.NoError(t, s.WriteEvaluation(ctx, createTestEvaluation(t, "beta", 6, "6", 6)))

	sessions, err = s.ListSessions(ctx)
	require.NoError(t, err)
	assert.Equal(t, []SessionSummary{
		{SessionID: "alpha", Evaluations: 2, FirstSeq: 1, LastSeq: 2},
		{SessionID: "beta", Evaluations: 3, FirstSeq: 4, LastSeq: 6},
	}, sessions)
}

func TestLastSeq(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	seq, err := s.LastSeq(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), seq)

	require.NoError(t, s.WriteEvaluation(ctx, createTestEvaluation(t, "a", 7, "7", 7)))
	require.NoError(t, s.WriteEvaluation(ctx, createTestEvaluation(t, "b", 3, "3", 3)))

	seq, err = s.LastSeq(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(7), seq)
}
