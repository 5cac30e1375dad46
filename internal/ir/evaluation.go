package ir

// EvaluationStatus is the outcome class of one evaluated line.
type EvaluationStatus string

const (
	StatusOK              EvaluationStatus = "ok"
	StatusSyntaxError     EvaluationStatus = "syntax_error"
	StatusArithmeticError EvaluationStatus = "arithmetic_error"
)

// Evaluation is one line entered in a session and what came of it.
// It is the record kept by the history store.
type Evaluation struct {
	Seq           int64            `json:"seq"` // Logical clock, never wall-clock
	SessionID     string           `json:"session_id"`
	Source        string           `json:"source"`
	Program       *Program         `json:"program,omitempty"`      // nil on syntax error
	ProgramHash   string           `json:"program_hash,omitempty"` // ProgramHash(Program)
	Status        EvaluationStatus `json:"status"`
	Value         int64            `json:"value"` // valid when Status is StatusOK
	ErrorCode     string           `json:"error_code,omitempty"`
	ErrorMessage  string           `json:"error_message,omitempty"`
	EngineVersion string           `json:"engine_version"`
	IRVersion     string           `json:"ir_version"`
}
