package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/uncalc/internal/compiler"
	"github.com/roach88/uncalc/internal/engine"
	"github.com/roach88/uncalc/internal/ir"
)

// Scenario is a list of lines evaluated in one session, with expectations.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// SessionID is the fixed session ID. Defaults to "test-session".
	SessionID string `yaml:"session_id,omitempty"`

	// Cases are evaluated in order in a single session.
	Cases []Case `yaml:"cases"`

	// Assertions validate the whole run.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Case is one input line.
type Case struct {
	// Expr is the line typed into the session. May be empty.
	Expr string `yaml:"expr"`

	// Trace records the value stack after each instruction.
	Trace bool `yaml:"trace,omitempty"`

	// Expect is optional; without it the case is only recorded.
	Expect *Expect `yaml:"expect,omitempty"`
}

// Expect describes the expected outcome of a case.
// Value and Error are mutually exclusive.
type Expect struct {
	Value   *int64 `yaml:"value,omitempty"`
	Error   string `yaml:"error,omitempty"`
	Postfix string `yaml:"postfix,omitempty"`
}

// Assertion validates the trace or the history store.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Expr is used by trace_contains.
	Expr string `yaml:"expr,omitempty"`

	// Status is used by trace_contains (optional) and status_count.
	Status string `yaml:"status,omitempty"`

	// Count is used by status_count and history_count.
	Count int `yaml:"count,omitempty"`
}

// Assertion type constants.
const (
	AssertTraceContains       = "trace_contains"
	AssertStatusCount         = "status_count"
	AssertHistoryCount        = "history_count"
	AssertReplayDeterministic = "replay_deterministic"
)

// knownErrorCodes are the codes an expect clause may name.
var knownErrorCodes = map[string]bool{
	string(compiler.ErrCodeOperandTooBig):              true,
	string(compiler.ErrCodeMissingOperator):            true,
	string(compiler.ErrCodeMissingOperand):             true,
	string(compiler.ErrCodeMissingOperatorBeforeParen): true,
	string(compiler.ErrCodeMissingOperandBeforeParen):  true,
	string(compiler.ErrCodeMissingOpenParen):           true,
	string(compiler.ErrCodeMissingCloseParen):          true,
	string(compiler.ErrCodeUnknownOperator):            true,
	string(compiler.ErrCodeEmptyExpression):            true,
	string(engine.ErrCodeDivisionByZero):               true,
	string(engine.ErrCodeModuloByZero):                 true,
	string(engine.ErrCodeOverflow):                     true,
}

var knownStatuses = map[string]bool{
	string(ir.StatusOK):              true,
	string(ir.StatusSyntaxError):     true,
	string(ir.StatusArithmeticError): true,
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	// Strict field validation catches typos like "assertion:" vs "assertions:".
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Cases) == 0 {
		return fmt.Errorf("cases list is required and must be non-empty")
	}

	for i, c := range s.Cases {
		if c.Expect == nil {
			continue
		}
		if c.Expect.Value != nil && c.Expect.Error != "" {
			return fmt.Errorf("cases[%d]: expect.value and expect.error are mutually exclusive", i)
		}
		if c.Expect.Error != "" && !knownErrorCodes[c.Expect.Error] {
			return fmt.Errorf("cases[%d]: unknown error code %q", i, c.Expect.Error)
		}
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(a); err != nil {
			return fmt.Errorf("assertions[%d]: %w", i, err)
		}
	}

	return nil
}

func validateAssertion(a Assertion) error {
	switch a.Type {
	case AssertTraceContains:
		if a.Expr == "" {
			return fmt.Errorf("trace_contains requires expr")
		}
		if a.Status != "" && !knownStatuses[a.Status] {
			return fmt.Errorf("unknown status %q", a.Status)
		}
	case AssertStatusCount:
		if !knownStatuses[a.Status] {
			return fmt.Errorf("status_count requires a valid status, got %q", a.Status)
		}
		if a.Count < 0 {
			return fmt.Errorf("count must be non-negative")
		}
	case AssertHistoryCount:
		if a.Count < 0 {
			return fmt.Errorf("count must be non-negative")
		}
	case AssertReplayDeterministic:
	case "":
		return fmt.Errorf("type is required")
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
	return nil
}
