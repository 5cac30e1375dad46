// Package harness runs uncalc scenario files as executable tests.
//
// # Scenario Format
//
// Scenarios are YAML files:
//
//	name: precedence
//	description: "Multiplication binds tighter than addition"
//	session_id: precedence
//	cases:
//	  - expr: "2+3*4"
//	    expect:
//	      value: 14
//	      postfix: "2 3 4 * +"
//	  - expr: "5/0"
//	    expect:
//	      error: DIVISION_BY_ZERO
//	  - expr: "1+2"
//	    trace: true
//	assertions:
//	  - type: status_count
//	    status: ok
//	    count: 2
//	  - type: replay_deterministic
//
// # Assertion Types
//
//   - trace_contains: an evaluation of expr exists, optionally with status
//   - status_count: exactly count evaluations ended with status
//   - history_count: the history store holds exactly count evaluations
//   - replay_deterministic: replaying the recorded session reproduces it
//
// # Deterministic Testing
//
// Every scenario runs in a fresh in-memory history store with a
// testutil.DeterministicClock and a fixed session ID, so the trace of a
// scenario is byte-identical across runs and can be compared against a
// golden file.
package harness
