package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func int64Ptr(v int64) *int64 { return &v }

func TestRun_Pass(t *testing.T) {
	scenario := &Scenario{
		Name:        "pass",
		Description: "all expectations hold",
		Cases: []Case{
			{Expr: "2+3*4", Expect: &Expect{Value: int64Ptr(14), Postfix: "2 3 4 * +"}},
			{Expr: "5/0", Expect: &Expect{Error: "DIVISION_BY_ZERO"}},
			{Expr: "(", Expect: &Expect{Error: "MISSING_CLOSE_PAREN"}},
			{Expr: "2^-1", Expect: &Expect{Value: int64Ptr(0)}},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Empty(t, result.Errors)

	require.Len(t, result.Trace, 4)
	assert.Equal(t, int64(1), result.Trace[0].Seq)
	assert.Equal(t, int64(4), result.Trace[3].Seq)
	assert.Equal(t, "ok", result.Trace[0].Status)
	assert.Equal(t, "arithmetic_error", result.Trace[1].Status)
	assert.Equal(t, "5 0 /", result.Trace[1].Postfix)
	assert.Nil(t, result.Trace[1].Value)
	assert.Equal(t, "syntax_error", result.Trace[2].Status)
	assert.Empty(t, result.Trace[2].Postfix)
}

func TestRun_ExpectationFailures(t *testing.T) {
	scenario := &Scenario{
		Name:        "fail",
		Description: "every kind of mismatch",
		Cases: []Case{
			{Expr: "2+2", Expect: &Expect{Value: int64Ptr(5)}},
			{Expr: "1/0", Expect: &Expect{Value: int64Ptr(1)}},
			{Expr: "1+1", Expect: &Expect{Error: "OVERFLOW"}},
			{Expr: "1%0", Expect: &Expect{Error: "DIVISION_BY_ZERO"}},
			{Expr: "1+2", Expect: &Expect{Postfix: "1 + 2"}},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 5)

	assert.Contains(t, result.Errors[0], "expected value 5, got 4")
	assert.Contains(t, result.Errors[1], "expected value 1, got error DIVISION_BY_ZERO")
	assert.Contains(t, result.Errors[2], "expected error OVERFLOW, got value 2")
	assert.Contains(t, result.Errors[3], "expected error DIVISION_BY_ZERO, got MODULO_BY_ZERO")
	assert.Contains(t, result.Errors[4], `expected postfix "1 + 2", got "1 2 +"`)
}

func TestRun_TraceSteps(t *testing.T) {
	scenario := &Scenario{
		Name:        "steps",
		Description: "stack trace per instruction",
		Cases: []Case{
			{Expr: "1+2", Trace: true},
			{Expr: "1+", Trace: true},
			{Expr: "3*4"},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)

	require.Len(t, result.Trace[0].Steps, 3)
	assert.Equal(t, []int64{3}, result.Trace[0].Steps[2].Stack)
	assert.Empty(t, result.Trace[1].Steps, "no program, no steps")
	assert.Empty(t, result.Trace[2].Steps, "trace not requested")
}

func TestRun_IsolatedAndRepeatable(t *testing.T) {
	scenario := &Scenario{
		Name:        "repeat",
		Description: "two runs produce the same trace",
		SessionID:   "fixed",
		Cases:       []Case{{Expr: "1"}, {Expr: "2"}},
		Assertions:  []Assertion{{Type: AssertHistoryCount, Count: 2}},
	}

	first, err := Run(scenario)
	require.NoError(t, err)
	second, err := Run(scenario)
	require.NoError(t, err)

	assert.True(t, second.Pass, "each run must start from an empty store: %v", second.Errors)
	assert.Equal(t, first.Trace, second.Trace)
}
