package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/roach88/uncalc/internal/compiler"
	"github.com/roach88/uncalc/internal/ir"
)

// HistoryReader reads recorded evaluations. Implemented by store.Store.
type HistoryReader interface {
	ReadSession(ctx context.Context, sessionID string) ([]ir.Evaluation, error)
}

// ReplayMismatch describes a recorded evaluation that did not reproduce.
type ReplayMismatch struct {
	Seq      int64  `json:"seq"`
	Source   string `json:"source"`
	Field    string `json:"field"`
	Recorded string `json:"recorded"`
	Replayed string `json:"replayed"`
}

// ReplayReport summarizes a replay of one session.
type ReplayReport struct {
	SessionID     string           `json:"session_id"`
	Evaluations   int              `json:"evaluations"`
	Mismatches    []ReplayMismatch `json:"mismatches,omitempty"`
	Deterministic bool             `json:"deterministic"`
}

// Replay recompiles and re-evaluates every recorded line of a session and
// compares the outcome with what was recorded.
//
// For each evaluation:
//  1. The source is compiled again; status, error code and program hash
//     must match the record.
//  2. The stored program is validated and evaluated; status, value and
//     error code must match the record.
//
// Replay never writes. It returns an error only when the history cannot be
// read.
func Replay(ctx context.Context, history HistoryReader, sessionID string, logger *slog.Logger) (*ReplayReport, error) {
	evals, err := history.ReadSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("replay session %s: %w", sessionID, err)
	}

	report := &ReplayReport{
		SessionID:     sessionID,
		Evaluations:   len(evals),
		Mismatches:    []ReplayMismatch{},
		Deterministic: true,
	}

	for _, ev := range evals {
		for _, m := range replayOne(ev) {
			report.Mismatches = append(report.Mismatches, m)
			if logger != nil {
				logger.Warn("replay mismatch",
					"session_id", sessionID,
					"seq", m.Seq,
					"field", m.Field,
					"recorded", m.Recorded,
					"replayed", m.Replayed)
			}
		}
	}

	report.Deterministic = len(report.Mismatches) == 0
	return report, nil
}

func replayOne(ev ir.Evaluation) []ReplayMismatch {
	var out []ReplayMismatch
	mismatch := func(field, recorded, replayed string) {
		if recorded != replayed {
			out = append(out, ReplayMismatch{
				Seq:      ev.Seq,
				Source:   ev.Source,
				Field:    field,
				Recorded: recorded,
				Replayed: replayed,
			})
		}
	}

	// Recompile from source.
	program, err := compiler.Compile(ev.Source)
	if err != nil {
		code := ""
		if se, ok := compiler.AsSyntaxError(err); ok {
			code = string(se.Code)
		}
		mismatch("status", string(ev.Status), string(ir.StatusSyntaxError))
		mismatch("error_code", ev.ErrorCode, code)
		return out
	}
	if ev.Status == ir.StatusSyntaxError {
		mismatch("status", string(ev.Status), "compiled")
		return out
	}
	mismatch("program_hash", ev.ProgramHash, ir.MustProgramHash(program))

	// Re-evaluate the stored program, which may differ from the recompiled
	// one if the history was edited.
	stored := ev.Program
	if stored == nil {
		mismatch("program", "missing", program.String())
		return out
	}
	if errs := compiler.Validate(stored); len(errs) > 0 {
		mismatch("program", "invalid", errs[0].Error())
		return out
	}

	value, err := Evaluate(stored)
	if err != nil {
		code := ""
		if ae, ok := AsArithmeticError(err); ok {
			code = string(ae.Code)
		}
		mismatch("status", string(ev.Status), string(ir.StatusArithmeticError))
		mismatch("error_code", ev.ErrorCode, code)
		return out
	}

	mismatch("status", string(ev.Status), string(ir.StatusOK))
	if ev.Status == ir.StatusOK {
		mismatch("value", fmt.Sprintf("%d", ev.Value), fmt.Sprintf("%d", value))
	}
	return out
}
