package harness

import (
	"context"
	"fmt"
	"strings"

	"github.com/roach88/uncalc/internal/store"
)

// AssertionContext gives assertions access to the history store.
type AssertionContext struct {
	Store     *store.Store
	Ctx       context.Context
	SessionID string
}

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	fmt.Fprintf(&buf, "\nFull trace:\n")
	for _, event := range e.Trace {
		if event.Value != nil {
			fmt.Fprintf(&buf, "  [%d] %q = %d\n", event.Seq, event.Expr, *event.Value)
		} else {
			fmt.Fprintf(&buf, "  [%d] %q %s\n", event.Seq, event.Expr, event.ErrorCode)
		}
	}

	return buf.String()
}

// assertTraceContains checks that expr was evaluated, with the given status
// if one is specified.
func assertTraceContains(trace []TraceEvent, assertion Assertion) error {
	for _, event := range trace {
		if event.Expr != assertion.Expr {
			continue
		}
		if assertion.Status == "" || event.Status == assertion.Status {
			return nil
		}
	}

	expected := fmt.Sprintf("%q", assertion.Expr)
	if assertion.Status != "" {
		expected += " with status " + assertion.Status
	}
	return &AssertionError{
		Type:     AssertTraceContains,
		Expected: expected,
		Actual:   "not found in trace",
		Trace:    trace,
	}
}

// assertStatusCount checks the number of trace events with a status.
func assertStatusCount(trace []TraceEvent, assertion Assertion) error {
	count := 0
	for _, event := range trace {
		if event.Status == assertion.Status {
			count++
		}
	}

	if count != assertion.Count {
		return &AssertionError{
			Type:     AssertStatusCount,
			Expected: fmt.Sprintf("%d evaluations with status %s", assertion.Count, assertion.Status),
			Actual:   fmt.Sprintf("%d", count),
			Trace:    trace,
		}
	}
	return nil
}

// assertHistoryCount checks what the store actually recorded.
func assertHistoryCount(actx *AssertionContext, trace []TraceEvent, assertion Assertion) error {
	evals, err := actx.Store.ReadSession(actx.Ctx, actx.SessionID)
	if err != nil {
		return fmt.Errorf("history_count: %w", err)
	}

	if len(evals) != assertion.Count {
		return &AssertionError{
			Type:     AssertHistoryCount,
			Expected: fmt.Sprintf("%d recorded evaluations", assertion.Count),
			Actual:   fmt.Sprintf("%d", len(evals)),
			Trace:    trace,
		}
	}
	return nil
}

// assertReplayDeterministic replays the recorded session.
func assertReplayDeterministic(actx *AssertionContext, trace []TraceEvent) error {
	report, err := actx.Store.Replay(actx.Ctx, actx.SessionID, nil)
	if err != nil {
		return fmt.Errorf("replay_deterministic: %w", err)
	}

	if !report.Deterministic {
		var mismatches []string
		for _, m := range report.Mismatches {
			mismatches = append(mismatches, fmt.Sprintf("seq %d %s: recorded %s, replayed %s", m.Seq, m.Field, m.Recorded, m.Replayed))
		}
		return &AssertionError{
			Type:     AssertReplayDeterministic,
			Expected: "no replay mismatches",
			Actual:   strings.Join(mismatches, "; "),
			Trace:    trace,
		}
	}
	return nil
}

// EvaluateAssertions runs every assertion and returns the failure messages.
func EvaluateAssertions(result *Result, assertions []Assertion, actx *AssertionContext) []string {
	var errs []string
	for _, a := range assertions {
		var err error
		switch a.Type {
		case AssertTraceContains:
			err = assertTraceContains(result.Trace, a)
		case AssertStatusCount:
			err = assertStatusCount(result.Trace, a)
		case AssertHistoryCount:
			err = assertHistoryCount(actx, result.Trace, a)
		case AssertReplayDeterministic:
			err = assertReplayDeterministic(actx, result.Trace)
		default:
			err = fmt.Errorf("unknown assertion type: %s", a.Type)
		}
		if err != nil {
			errs = append(errs, err.Error())
		}
	}
	return errs
}
