package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/uncalc/internal/ir"
)

const selectEvaluation = `
	SELECT e.session_id, e.seq, e.source, e.program_hash, p.program,
	       e.status, e.value, e.error_code, e.error_message,
	       e.engine_version, e.ir_version
	FROM evaluations e
	LEFT JOIN programs p ON p.hash = e.program_hash
`

// SessionSummary describes one recorded session.
type SessionSummary struct {
	SessionID   string `json:"session_id"`
	Evaluations int    `json:"evaluations"`
	FirstSeq    int64  `json:"first_seq"`
	LastSeq     int64  `json:"last_seq"`
}

// ReadSession returns every evaluation of a session ordered by seq.
//
// Returns an empty slice (not nil) if the session has no records.
func (s *Store) ReadSession(ctx context.Context, sessionID string) ([]ir.Evaluation, error) {
	rows, err := s.db.QueryContext(ctx, selectEvaluation+`
		WHERE e.session_id = ?
		ORDER BY e.seq ASC
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query session: %w", err)
	}
	defer rows.Close()

	evals := []ir.Evaluation{}
	for rows.Next() {
		ev, err := scanEvaluation(rows)
		if err != nil {
			return nil, err
		}
		evals = append(evals, ev)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate session: %w", err)
	}

	return evals, nil
}

// ReadEvaluation retrieves a single evaluation.
// Returns sql.ErrNoRows if not found.
func (s *Store) ReadEvaluation(ctx context.Context, sessionID string, seq int64) (ir.Evaluation, error) {
	row := s.db.QueryRowContext(ctx, selectEvaluation+`
		WHERE e.session_id = ? AND e.seq = ?
	`, sessionID, seq)

	return scanEvaluation(row)
}

// ReadProgram retrieves a stored program by hash. The returned program has
// no source. Returns sql.ErrNoRows if not found.
func (s *Store) ReadProgram(ctx context.Context, hash string) (*ir.Program, error) {
	var data string
	err := s.db.QueryRowContext(ctx, `
		SELECT program FROM programs WHERE hash = ?
	`, hash).Scan(&data)
	if err != nil {
		return nil, err
	}
	return unmarshalProgram(data, "")
}

// ListSessions returns a summary of every recorded session, ordered by
// session ID. UUIDv7 IDs sort in creation order.
func (s *Store) ListSessions(ctx context.Context) ([]SessionSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT session_id, COUNT(*), MIN(seq), MAX(seq)
		FROM evaluations
		GROUP BY session_id
		ORDER BY session_id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	sessions := []SessionSummary{}
	for rows.Next() {
		var sum SessionSummary
		if err := rows.Scan(&sum.SessionID, &sum.Evaluations, &sum.FirstSeq, &sum.LastSeq); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, sum)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}

	return sessions, nil
}

// LastSeq returns the highest seq recorded across all sessions, or 0.
// A new session continues numbering from here.
func (s *Store) LastSeq(ctx context.Context) (int64, error) {
	var seq int64
	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(seq), 0) FROM evaluations
	`).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("get last seq: %w", err)
	}
	return seq, nil
}

// rowScanner is implemented by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvaluation(row rowScanner) (ir.Evaluation, error) {
	var (
		ev          ir.Evaluation
		status      string
		programHash sql.NullString
		programJSON sql.NullString
	)

	err := row.Scan(
		&ev.SessionID,
		&ev.Seq,
		&ev.Source,
		&programHash,
		&programJSON,
		&status,
		&ev.Value,
		&ev.ErrorCode,
		&ev.ErrorMessage,
		&ev.EngineVersion,
		&ev.IRVersion,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ev, err
		}
		return ev, fmt.Errorf("scan evaluation: %w", err)
	}

	ev.Status = ir.EvaluationStatus(status)
	if programHash.Valid {
		ev.ProgramHash = programHash.String
	}
	if programJSON.Valid {
		p, err := unmarshalProgram(programJSON.String, ev.Source)
		if err != nil {
			return ev, fmt.Errorf("scan evaluation %d: %w", ev.Seq, err)
		}
		ev.Program = p
	}

	return ev, nil
}
