package store

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/uncalc/internal/ir"
)

// marshalProgram converts a program to canonical JSON TEXT for storage.
// Only instructions are stored; the source lives on the evaluation row so
// programs that differ only in spacing share one row.
func marshalProgram(p *ir.Program) (string, error) {
	data, err := ir.MarshalCanonical(&ir.Program{Instructions: p.Instructions})
	if err != nil {
		return "", fmt.Errorf("marshal program: %w", err)
	}
	return string(data), nil
}

// unmarshalProgram parses stored program JSON and attaches source.
func unmarshalProgram(data, source string) (*ir.Program, error) {
	var p ir.Program
	if err := json.Unmarshal([]byte(data), &p); err != nil {
		return nil, fmt.Errorf("unmarshal program: %w", err)
	}
	p.Source = source
	return &p, nil
}
