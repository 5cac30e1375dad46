package store

import (
	"path/filepath"
	"testing"

	"github.com/roach88/uncalc/internal/compiler"
	"github.com/roach88/uncalc/internal/ir"
)

// createTestStore creates a new file-backed store for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestEvaluation builds a successful evaluation of expr.
func createTestEvaluation(t *testing.T, sessionID string, seq int64, expr string, value int64) ir.Evaluation {
	t.Helper()
	p, err := compiler.Compile(expr)
	if err != nil {
		t.Fatalf("Compile(%q) failed: %v", expr, err)
	}
	return ir.Evaluation{
		Seq:           seq,
		SessionID:     sessionID,
		Source:        expr,
		Program:       p,
		ProgramHash:   ir.MustProgramHash(p),
		Status:        ir.StatusOK,
		Value:         value,
		EngineVersion: ir.EngineVersion,
		IRVersion:     ir.IRVersion,
	}
}

// createSyntaxErrorEvaluation builds an evaluation that failed to compile.
func createSyntaxErrorEvaluation(sessionID string, seq int64, expr, code, message string) ir.Evaluation {
	return ir.Evaluation{
		Seq:           seq,
		SessionID:     sessionID,
		Source:        expr,
		Status:        ir.StatusSyntaxError,
		ErrorCode:     code,
		ErrorMessage:  message,
		EngineVersion: ir.EngineVersion,
		IRVersion:     ir.IRVersion,
	}
}
