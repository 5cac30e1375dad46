package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// Version suffix enables future algorithm migration.
const (
	DomainProgram = "uncalc/program/v1"
)

// hashWithDomain computes SHA-256 hash with domain separation.
// Format: SHA256(domain + 0x00 + data)
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// ProgramHash computes the content-addressed ID of a program.
//
// Only the instruction sequence is hashed, so "2+3" and "2 + 3" share an ID.
func ProgramHash(p *Program) (string, error) {
	if p == nil {
		return "", fmt.Errorf("ProgramHash: nil program")
	}
	canonical, err := MarshalCanonical(&Program{Instructions: p.Instructions})
	if err != nil {
		return "", fmt.Errorf("ProgramHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainProgram, canonical), nil
}

// MustProgramHash is like ProgramHash but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustProgramHash(p *Program) string {
	hash, err := ProgramHash(p)
	if err != nil {
		panic(err)
	}
	return hash
}
