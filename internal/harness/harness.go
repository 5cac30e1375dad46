package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/uncalc/internal/engine"
	"github.com/roach88/uncalc/internal/store"
	"github.com/roach88/uncalc/internal/testutil"
)

// Harness holds the per-run state of a scenario execution.
type Harness struct {
	store   *store.Store
	session *engine.Session
}

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh in-memory store for isolation. Expectation
// and assertion failures are reported in the Result; the returned error is
// reserved for infrastructure failures such as the store being unavailable.
func Run(scenario *Scenario) (*Result, error) {
	st, err := store.Open(store.MemoryPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	clock := testutil.NewDeterministicClock()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	sess := engine.NewSession(
		testutil.NewFixedSessionGenerator(scenario.SessionID),
		engine.WithClock(clock),
		engine.WithRecorder(st),
		engine.WithLogger(logger),
	)

	h := &Harness{
		store:   st,
		session: sess,
	}

	ctx := context.Background()
	result := NewResult()
	if err := h.executeCases(ctx, scenario.Cases, result); err != nil {
		return nil, fmt.Errorf("failed to execute cases: %w", err)
	}

	actx := &AssertionContext{
		Store:     st,
		Ctx:       ctx,
		SessionID: sess.ID(),
	}
	for _, msg := range EvaluateAssertions(result, scenario.Assertions, actx) {
		result.AddError(msg)
	}

	return result, nil
}

// SessionIDOrDefault returns the session ID a scenario runs under.
func (s *Scenario) SessionIDOrDefault() string {
	return testutil.NewFixedSessionGenerator(s.SessionID).Generate()
}

func (h *Harness) executeCases(ctx context.Context, cases []Case, result *Result) error {
	for i, c := range cases {
		out, err := h.session.Eval(ctx, c.Expr)
		if err != nil {
			return fmt.Errorf("cases[%d] %q: %w", i, c.Expr, err)
		}

		ev := result.AddTrace(out)
		if c.Trace && out.Program != nil {
			// Steps stop at the failing instruction on arithmetic errors.
			steps, _, _ := engine.Trace(out.Program)
			ev.Steps = steps
		}

		for _, msg := range checkExpect(c, out) {
			result.AddError(fmt.Sprintf("cases[%d] %q: %s", i, c.Expr, msg))
		}
	}
	return nil
}

// checkExpect compares an outcome with the case's expect clause.
func checkExpect(c Case, out engine.Outcome) []string {
	if c.Expect == nil {
		return nil
	}
	exp := c.Expect

	var errs []string
	if exp.Value != nil {
		switch {
		case out.Err != nil:
			errs = append(errs, fmt.Sprintf("expected value %d, got error %s", *exp.Value, out.ErrorCode))
		case out.Value != *exp.Value:
			errs = append(errs, fmt.Sprintf("expected value %d, got %d", *exp.Value, out.Value))
		}
	}

	if exp.Error != "" {
		switch {
		case out.Err == nil:
			errs = append(errs, fmt.Sprintf("expected error %s, got value %d", exp.Error, out.Value))
		case out.ErrorCode != exp.Error:
			errs = append(errs, fmt.Sprintf("expected error %s, got %s", exp.Error, out.ErrorCode))
		}
	}

	if exp.Postfix != "" {
		got := ""
		if out.Program != nil {
			got = out.Program.String()
		}
		if got != exp.Postfix {
			errs = append(errs, fmt.Sprintf("expected postfix %q, got %q", exp.Postfix, got))
		}
	}

	return errs
}
