package store

import (
	"context"
	"log/slog"

	"github.com/roach88/uncalc/internal/engine"
)

// Replay re-runs a recorded session and reports whether every stored
// outcome reproduces. The store is only read.
func (s *Store) Replay(ctx context.Context, sessionID string, logger *slog.Logger) (*engine.ReplayReport, error) {
	return engine.Replay(ctx, s, sessionID, logger)
}

// ReplayAll replays every recorded session in ListSessions order.
func (s *Store) ReplayAll(ctx context.Context, logger *slog.Logger) ([]*engine.ReplayReport, error) {
	sessions, err := s.ListSessions(ctx)
	if err != nil {
		return nil, err
	}

	reports := make([]*engine.ReplayReport, 0, len(sessions))
	for _, sum := range sessions {
		report, err := s.Replay(ctx, sum.SessionID, logger)
		if err != nil {
			return nil, err
		}
		reports = append(reports, report)
	}
	return reports, nil
}
