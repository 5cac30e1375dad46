package harness

import (
	"github.com/roach88/uncalc/internal/engine"
	"github.com/roach88/uncalc/internal/ir"
)

// TraceEvent is one evaluated case as it appears in golden files.
type TraceEvent struct {
	Seq       int64         `json:"seq"`
	Expr      string        `json:"expr"`
	Status    string        `json:"status"`
	Postfix   string        `json:"postfix,omitempty"`
	Value     *int64        `json:"value,omitempty"`
	ErrorCode string        `json:"error_code,omitempty"`
	Steps     []engine.Step `json:"steps,omitempty"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true if every expect clause and assertion held.
	Pass bool `json:"pass"`

	// Trace contains one event per case, in order.
	Trace []TraceEvent `json:"trace"`

	// Errors is empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddTrace records an outcome.
func (r *Result) AddTrace(out engine.Outcome) *TraceEvent {
	ev := TraceEvent{
		Seq:       out.Seq,
		Expr:      out.Source,
		Status:    string(out.Status),
		ErrorCode: out.ErrorCode,
	}
	if out.Program != nil {
		ev.Postfix = out.Program.String()
	}
	if out.Status == ir.StatusOK {
		v := out.Value
		ev.Value = &v
	}
	r.Trace = append(r.Trace, ev)
	return &r.Trace[len(r.Trace)-1]
}
