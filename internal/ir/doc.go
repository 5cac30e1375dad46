// Package ir provides the compiled representation of an arithmetic expression.
//
// This package contains the instruction model, the operator registry and the
// postfix program together with its text and canonical encodings. All other
// internal packages import ir; ir imports nothing internal.
//
// Key design constraints:
//   - NO float types anywhere - values are int64
//   - Instructions are plain values; programs own them in evaluation order
//   - All JSON tags use snake_case
//   - The operator table is read-only after package initialization
package ir
