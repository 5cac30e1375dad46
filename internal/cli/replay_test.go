package cli

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// tamper runs a statement against the history database behind the store's back.
func tamper(t *testing.T, dbPath, query string, args ...any) {
	t.Helper()

	db, err := sql.Open("sqlite3", dbPath)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(query, args...)
	require.NoError(t, err)
}

func TestReplayDeterministic(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "history.db")
	seedHistory(t, dbPath, "session-a", "2+3*4\n(1\n1/0\n")
	seedHistory(t, dbPath, "session-b", "--5\n")

	out, _, err := execute(t, NewReplayCommand(&RootOptions{Format: "text"}), "--db", dbPath)
	require.NoError(t, err)

	assert.Contains(t, out, "Replay Summary: 2 session(s)")
	assert.Contains(t, out, "✓ Session: session-a")
	assert.Contains(t, out, "Evaluations: 3")
	assert.Contains(t, out, "✓ Session: session-b")
	assert.Contains(t, out, "✓ All sessions verified deterministic")
}

func TestReplayDetectsEditedValue(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "history.db")
	seedHistory(t, dbPath, "session-a", "2+3\n4*4\n")
	tamper(t, dbPath, `UPDATE evaluations SET value = 6 WHERE session_id = ? AND seq = 1`, "session-a")

	out, _, err := execute(t, NewReplayCommand(&RootOptions{Format: "text"}), "--db", dbPath)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	assert.Contains(t, out, "✗ Session: session-a")
	assert.Contains(t, out, `seq 1 "2+3": value recorded "6", replayed "5"`)
	assert.Contains(t, out, "✗ Determinism verification failed")
}

func TestReplayJSON(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "history.db")
	seedHistory(t, dbPath, "session-a", "7%3\n")
	tamper(t, dbPath, `UPDATE evaluations SET status = 'arithmetic_error', error_code = 'MODULO_BY_ZERO' WHERE seq = 1`)

	out, _, err := execute(t, NewReplayCommand(&RootOptions{Format: "json"}), "--db", dbPath)
	require.Error(t, err)

	var result ReplayResult
	resp := decodeResponse(t, out, &result)
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeNonDeterministic, resp.Error.Code)

	assert.False(t, result.AllDeterministic)
	require.Len(t, result.Sessions, 1)
	assert.False(t, result.Sessions[0].Deterministic)
	require.NotEmpty(t, result.Sessions[0].Mismatches)
	assert.Equal(t, "status", result.Sessions[0].Mismatches[0].Field)
}

func TestReplaySingleSession(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "history.db")
	seedHistory(t, dbPath, "session-a", "1+1\n")
	seedHistory(t, dbPath, "session-b", "2+2\n")
	tamper(t, dbPath, `UPDATE evaluations SET value = 0 WHERE session_id = 'session-b'`)

	// Only the requested session is replayed.
	out, _, err := execute(t, NewReplayCommand(&RootOptions{Format: "json"}),
		"--db", dbPath, "--session", "session-a")
	require.NoError(t, err)

	var result ReplayResult
	decodeResponse(t, out, &result)
	assert.True(t, result.AllDeterministic)
	require.Len(t, result.Sessions, 1)
	assert.Equal(t, "session-a", result.Sessions[0].SessionID)
	assert.Equal(t, 1, result.Sessions[0].Evaluations)
}

func TestReplayUnknownSession(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "history.db")
	seedHistory(t, dbPath, "session-a", "1\n")

	out, _, err := execute(t, NewReplayCommand(&RootOptions{Format: "text"}),
		"--db", dbPath, "--session", "missing")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "Error [E304]")
}

func TestReplayEmptyDatabase(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "history.db")
	seedHistory(t, dbPath, "session-a", "")

	out, _, err := execute(t, NewReplayCommand(&RootOptions{Format: "text"}), "--db", dbPath)
	require.NoError(t, err)
	assert.Equal(t, "No sessions found in database.\n", out)
}

func TestReplayMissingDatabase(t *testing.T) {
	_, _, err := execute(t, NewReplayCommand(&RootOptions{Format: "text"}),
		"--db", filepath.Join(t.TempDir(), "missing.db"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestReplayRequiresDB(t *testing.T) {
	_, _, err := execute(t, NewReplayCommand(&RootOptions{Format: "text"}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required flag")
}
