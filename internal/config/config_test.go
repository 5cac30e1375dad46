package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), DefaultFileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// chdir changes the working directory for the duration of the test
// (equivalent of testing.T.Chdir, which requires Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "> ", cfg.Prompt)
	assert.False(t, cfg.ShowPostfix)
	assert.True(t, cfg.Color)
	assert.Empty(t, cfg.HistoryDB)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, slog.LevelWarn, cfg.Level())
	assert.Empty(t, cfg.Source)
}

func TestLoad_OverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
prompt: "calc> "
show_postfix: true
history: db: "history.db"
log: level: "debug"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "calc> ", cfg.Prompt)
	assert.True(t, cfg.ShowPostfix)
	assert.True(t, cfg.Color, "unset fields keep their defaults")
	assert.Equal(t, "history.db", cfg.HistoryDB)
	assert.Equal(t, slog.LevelDebug, cfg.Level())
	assert.Equal(t, path, cfg.Source)
}

func TestLoad_EmptyFileIsDefault(t *testing.T) {
	cfg, err := Load(writeConfig(t, ""))
	require.NoError(t, err)

	def := Default()
	cfg.Source = ""
	assert.Equal(t, def, cfg)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		code    string
	}{
		{"syntax", "prompt: \"unterminated\n", ErrCodeSyntax},
		{"unknown top-level field", "show_postfx: true\n", ErrCodeUnknownField},
		{"unknown nested field", "history: path: \"x.db\"\n", ErrCodeUnknownField},
		{"wrong type", "color: \"yes\"\n", ErrCodeInvalid},
		{"bad level", "log: level: \"trace\"\n", ErrCodeInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			require.Error(t, err)

			le, ok := AsLoadError(err)
			require.True(t, ok, "expected *LoadError, got %T: %v", err, err)
			assert.Equal(t, tt.code, le.Code, le.Error())
		})
	}
}

func TestLoad_UnknownFieldHasPosition(t *testing.T) {
	path := writeConfig(t, "prompt: \"> \"\ncolour: false\n")

	_, err := Load(path)
	le, ok := AsLoadError(err)
	require.True(t, ok)
	assert.Equal(t, ErrCodeUnknownField, le.Code)
	assert.Contains(t, le.Message, `"colour"`)
	require.True(t, le.Pos.IsValid())
	assert.Equal(t, 2, le.Pos.Line())
	assert.Contains(t, le.Error(), path+":2:")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.cue"))

	le, ok := AsLoadError(err)
	require.True(t, ok)
	assert.Equal(t, ErrCodeRead, le.Code)
	assert.False(t, le.Pos.IsValid())
}

func TestResolve(t *testing.T) {
	t.Run("explicit path", func(t *testing.T) {
		cfg, err := Resolve(writeConfig(t, `prompt: "$ "`))
		require.NoError(t, err)
		assert.Equal(t, "$ ", cfg.Prompt)
	})

	t.Run("explicit path must exist", func(t *testing.T) {
		_, err := Resolve(filepath.Join(t.TempDir(), "nope.cue"))
		assert.Error(t, err)
	})

	t.Run("working directory file", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultFileName), []byte(`color: false`), 0o644))
		chdir(t, dir)

		cfg, err := Resolve("")
		require.NoError(t, err)
		assert.False(t, cfg.Color)
		assert.Equal(t, DefaultFileName, cfg.Source)
	})

	t.Run("no file", func(t *testing.T) {
		chdir(t, t.TempDir())

		cfg, err := Resolve("")
		require.NoError(t, err)
		assert.Equal(t, Default(), cfg)
	})
}

func TestLevelFallback(t *testing.T) {
	cfg := &Config{LogLevel: "nonsense"}
	assert.Equal(t, slog.LevelWarn, cfg.Level())

	cfg.LogLevel = "error"
	assert.Equal(t, slog.LevelError, cfg.Level())
}
