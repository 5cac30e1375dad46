// Package config loads uncalc settings from an optional CUE file.
//
// The file is unified with an embedded #Config schema that supplies
// defaults, so a missing file and an empty file give the same Config.
//
//	prompt: "calc> "
//	history: db: "~/.uncalc/history.db"
//	log: level: "info"
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
)

// DefaultFileName is looked up in the working directory when no path is given.
const DefaultFileName = "uncalc.cue"

//go:embed schema.cue
var schemaCUE string

// Error codes for configuration failures.
const (
	ErrCodeRead         = "E010" // Config file unreadable
	ErrCodeSyntax       = "E011" // Not valid CUE
	ErrCodeUnknownField = "E012" // Field not in #Config
	ErrCodeInvalid      = "E013" // Value does not satisfy #Config
)

// Config holds resolved settings.
type Config struct {
	Prompt      string `json:"prompt"`
	ShowPostfix bool   `json:"show_postfix"`
	Color       bool   `json:"color"`
	HistoryDB   string `json:"history_db"`
	LogLevel    string `json:"log_level"`

	// Source is the file the settings came from, empty for defaults.
	Source string `json:"source,omitempty"`
}

// Level returns the slog level for LogLevel, falling back to warn.
func (c *Config) Level() slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelWarn
	}
	return l
}

// LoadError is a configuration error with the CUE position if known.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// AsLoadError extracts a LoadError from err.
func AsLoadError(err error) (*LoadError, bool) {
	var le *LoadError
	ok := errors.As(err, &le)
	return le, ok
}

// Default returns the schema defaults.
func Default() *Config {
	cfg, err := Parse(nil, "defaults")
	if err != nil {
		// The embedded schema is fixed at build time.
		panic(fmt.Sprintf("config: embedded schema: %v", err))
	}
	return cfg
}

// Resolve loads path, or DefaultFileName if path is empty and that file
// exists, or the defaults otherwise. An explicit path must exist.
func Resolve(path string) (*Config, error) {
	if path != "" {
		return Load(path)
	}
	if _, err := os.Stat(DefaultFileName); err == nil {
		return Load(DefaultFileName)
	}
	return Default(), nil
}

// Load reads and validates a CUE config file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeRead, Message: fmt.Sprintf("reading config: %v", err)}
	}

	cfg, err := Parse(data, path)
	if err != nil {
		return nil, err
	}
	cfg.Source = path
	return cfg, nil
}

// Parse validates CUE source against #Config. filename is used in
// error positions.
func Parse(data []byte, filename string) (*Config, error) {
	ctx := cuecontext.New()

	user := ctx.CompileBytes(data, cue.Filename(filename))
	if err := user.Err(); err != nil {
		return nil, formatCUEError(ErrCodeSyntax, err)
	}

	schema, err := lookupSchema(ctx)
	if err != nil {
		return nil, err
	}
	if err := checkKnownFields(schema, user, ""); err != nil {
		return nil, err
	}

	return decodeValue(schema.Unify(user))
}

func lookupSchema(ctx *cue.Context) (cue.Value, error) {
	v := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := v.Err(); err != nil {
		return cue.Value{}, formatCUEError(ErrCodeSyntax, err)
	}
	return v.LookupPath(cue.ParsePath("#Config")), nil
}

func decodeValue(v cue.Value) (*Config, error) {
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError(ErrCodeInvalid, err)
	}

	cfg := &Config{}
	var err error
	if cfg.Prompt, err = stringField(v, "prompt"); err != nil {
		return nil, err
	}
	if cfg.ShowPostfix, err = boolField(v, "show_postfix"); err != nil {
		return nil, err
	}
	if cfg.Color, err = boolField(v, "color"); err != nil {
		return nil, err
	}
	if cfg.HistoryDB, err = stringField(v, "history.db"); err != nil {
		return nil, err
	}
	if cfg.LogLevel, err = stringField(v, "log.level"); err != nil {
		return nil, err
	}
	return cfg, nil
}

func stringField(v cue.Value, path string) (string, error) {
	f, _ := v.LookupPath(cue.ParsePath(path)).Default()
	s, err := f.String()
	if err != nil {
		return "", formatCUEError(ErrCodeInvalid, err)
	}
	return s, nil
}

func boolField(v cue.Value, path string) (bool, error) {
	f, _ := v.LookupPath(cue.ParsePath(path)).Default()
	b, err := f.Bool()
	if err != nil {
		return false, formatCUEError(ErrCodeInvalid, err)
	}
	return b, nil
}

// checkKnownFields rejects fields the schema does not declare, so a typo
// such as "show_postfx" is reported instead of silently ignored.
func checkKnownFields(schema, user cue.Value, prefix string) error {
	iter, err := user.Fields()
	if err != nil {
		return nil // not a struct; unification reports the conflict
	}
	for iter.Next() {
		label := iter.Selector().String()
		path := label
		if prefix != "" {
			path = prefix + "." + label
		}

		field := schema.LookupPath(cue.MakePath(iter.Selector()))
		if !field.Exists() {
			return &LoadError{
				Code:    ErrCodeUnknownField,
				Message: fmt.Sprintf("unknown field %q", path),
				Pos:     iter.Value().Pos(),
			}
		}
		if field.IncompleteKind() == cue.StructKind {
			if err := checkKnownFields(field, iter.Value(), path); err != nil {
				return err
			}
		}
	}
	return nil
}

// formatCUEError converts the first CUE error to a LoadError with position info.
func formatCUEError(code string, err error) error {
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return &LoadError{Code: code, Message: err.Error()}
	}

	first := errs[0]
	le := &LoadError{Code: code, Message: first.Error()}
	if positions := cueerrors.Positions(first); len(positions) > 0 {
		le.Pos = positions[0]
	}
	return le
}
