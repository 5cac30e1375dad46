package ir

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"golang.org/x/text/unicode/norm"
)

// MarshalCanonical produces the canonical JSON encoding of a program.
// CRITICAL: This is the ONLY serialization used for content-addressed identity.
//
// Differences from encoding/json:
// 1. Keys are written in a fixed, sorted order
// 2. No HTML escaping (< > & are NOT escaped)
// 3. The source string is NFC normalized
// 4. No insignificant whitespace
// 5. A literal always carries its value, including zero
func MarshalCanonical(p *Program) ([]byte, error) {
	if p == nil {
		return nil, fmt.Errorf("canonical: nil program")
	}

	var buf bytes.Buffer
	buf.WriteString(`{"instructions":[`)
	for i, in := range p.Instructions {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeCanonicalInstruction(&buf, in); err != nil {
			return nil, fmt.Errorf("canonical: instruction %d: %w", i, err)
		}
	}
	buf.WriteByte(']')

	if p.Source != "" {
		buf.WriteString(`,"source":`)
		s, err := marshalCanonicalString(p.Source)
		if err != nil {
			return nil, fmt.Errorf("canonical: source: %w", err)
		}
		buf.Write(s)
	}
	buf.WriteByte('}')

	return buf.Bytes(), nil
}

func writeCanonicalInstruction(buf *bytes.Buffer, in Instruction) error {
	name, err := in.Kind.MarshalText()
	if err != nil {
		return err
	}
	buf.WriteString(`{"op":"`)
	buf.Write(name)
	buf.WriteByte('"')
	if in.Kind == KindLiteral {
		buf.WriteString(`,"value":`)
		buf.WriteString(strconv.FormatInt(in.Value, 10))
	}
	buf.WriteByte('}')
	return nil
}

// marshalCanonicalString encodes s as a JSON string after NFC normalization.
func marshalCanonicalString(s string) ([]byte, error) {
	normalized := norm.NFC.String(s)

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(normalized); err != nil {
		return nil, err
	}

	// json.Encoder adds a trailing newline
	return bytes.TrimSuffix(buf.Bytes(), []byte{'\n'}), nil
}
