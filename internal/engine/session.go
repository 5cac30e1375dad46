package engine

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/uncalc/internal/compiler"
	"github.com/roach88/uncalc/internal/ir"
)

// Recorder persists evaluations. Implemented by store.Store.
type Recorder interface {
	WriteEvaluation(ctx context.Context, ev ir.Evaluation) error
}

// Outcome is the result of evaluating one line.
// Err is the *compiler.SyntaxError or *ArithmeticError, nil on success.
type Outcome struct {
	ir.Evaluation
	Err error
}

// Session evaluates lines one at a time, the way the REPL does.
//
// Each line is compiled and evaluated independently; a failing line never
// affects the next one. Lines are stamped with increasing seq numbers and
// handed to the Recorder when one is configured.
//
// Session is not safe for concurrent use.
type Session struct {
	id       string
	clock    Sequencer
	logger   *slog.Logger
	recorder Recorder
}

// SessionOption allows configuration of a session.
type SessionOption func(*Session)

// WithClock sets the sequencer used to stamp evaluations.
// Use NewClockAt to continue numbering of an existing history.
func WithClock(clock Sequencer) SessionOption {
	return func(s *Session) {
		s.clock = clock
	}
}

// WithLogger sets the structured logger. Default discards.
func WithLogger(logger *slog.Logger) SessionOption {
	return func(s *Session) {
		s.logger = logger
	}
}

// WithRecorder stores every evaluation through r.
func WithRecorder(r Recorder) SessionOption {
	return func(s *Session) {
		s.recorder = r
	}
}

// NewSession creates a session with an ID from ids.
func NewSession(ids SessionIDGenerator, opts ...SessionOption) *Session {
	s := &Session{
		id:     ids.Generate(),
		clock:  NewClock(),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Eval compiles and evaluates one line.
//
// Syntax and arithmetic failures are reported in the Outcome, not as the
// returned error. The returned error is non-nil only when the evaluation
// could not be recorded; the Outcome is still valid in that case.
func (s *Session) Eval(ctx context.Context, text string) (Outcome, error) {
	out := Outcome{Evaluation: ir.Evaluation{
		Seq:           s.clock.Next(),
		SessionID:     s.id,
		Source:        text,
		EngineVersion: ir.EngineVersion,
		IRVersion:     ir.IRVersion,
	}}

	s.evaluate(&out)

	if s.recorder != nil {
		if err := s.recorder.WriteEvaluation(ctx, out.Evaluation); err != nil {
			s.logger.Error("recording evaluation failed",
				"session_id", s.id,
				"seq", out.Seq,
				"error", err)
			return out, fmt.Errorf("record evaluation %d: %w", out.Seq, err)
		}
	}

	return out, nil
}

func (s *Session) evaluate(out *Outcome) {
	program, err := compiler.Compile(out.Source)
	if err != nil {
		se, _ := compiler.AsSyntaxError(err)
		out.Status = ir.StatusSyntaxError
		out.Err = err
		if se != nil {
			out.ErrorCode = string(se.Code)
			out.ErrorMessage = se.Message
		} else {
			out.ErrorMessage = err.Error()
		}
		s.logger.Debug("syntax error",
			"seq", out.Seq,
			"source", out.Source,
			"error", err)
		return
	}

	out.Program = program
	if hash, err := ir.ProgramHash(program); err == nil {
		out.ProgramHash = hash
	}
	s.logger.Debug("compiled",
		"seq", out.Seq,
		"postfix", program.String(),
		"program_hash", out.ProgramHash)

	value, err := Evaluate(program)
	if err != nil {
		out.Status = ir.StatusArithmeticError
		out.Err = err
		if ae, ok := AsArithmeticError(err); ok {
			out.ErrorCode = string(ae.Code)
			out.ErrorMessage = ae.Message
		} else {
			out.ErrorMessage = err.Error()
		}
		s.logger.Debug("arithmetic error",
			"seq", out.Seq,
			"error", err)
		return
	}

	out.Status = ir.StatusOK
	out.Value = value
	s.logger.Debug("evaluated",
		"seq", out.Seq,
		"value", value)
}
