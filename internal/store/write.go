package store

import (
	"context"
	"fmt"

	"github.com/roach88/uncalc/internal/ir"
)

// WriteEvaluation records one evaluated line.
//
// The compiled program, if any, is written to the programs table first and
// deduplicated by hash. Both inserts use ON CONFLICT DO NOTHING, so writing
// the same (session_id, seq) twice keeps the first record.
func (s *Store) WriteEvaluation(ctx context.Context, ev ir.Evaluation) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write evaluation: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	var programHash any // NULL without a program
	if ev.Program != nil {
		hash := ev.ProgramHash
		if hash == "" {
			if hash, err = ir.ProgramHash(ev.Program); err != nil {
				return fmt.Errorf("write evaluation: %w", err)
			}
		}
		programJSON, err := marshalProgram(ev.Program)
		if err != nil {
			return fmt.Errorf("write evaluation: %w", err)
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO programs (hash, program)
			VALUES (?, ?)
			ON CONFLICT(hash) DO NOTHING
		`, hash, programJSON)
		if err != nil {
			return fmt.Errorf("write evaluation: insert program: %w", err)
		}
		programHash = hash
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO evaluations
		(session_id, seq, source, program_hash, status, value, error_code, error_message, engine_version, ir_version)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(session_id, seq) DO NOTHING
	`,
		ev.SessionID,
		ev.Seq,
		ev.Source,
		programHash,
		string(ev.Status),
		ev.Value,
		ev.ErrorCode,
		ev.ErrorMessage,
		ev.EngineVersion,
		ev.IRVersion,
	)
	if err != nil {
		return fmt.Errorf("write evaluation: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write evaluation: commit: %w", err)
	}
	return nil
}
