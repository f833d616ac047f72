package store

import (
	"context"
	"time"
)

// Rate-limit rows are ephemeral bookkeeping; pruning them never
// affects ledger correctness.

func (s *Store) CountRateEvents(ctx context.Context, agentID, kind string, since time.Time) (int, error) {
	var n int
	err := s.Pool.QueryRow(ctx, `
		SELECT COUNT(1) FROM rate_limits
		WHERE agent_id = $1 AND kind = $2 AND created_at >= $3`,
		agentID, kind, since).Scan(&n)
	return n, err
}

// OldestRateEventSince returns the oldest in-window timestamp, or nil
// when the window is empty.
func (s *Store) OldestRateEventSince(ctx context.Context, agentID, kind string, since time.Time) (*time.Time, error) {
	var t time.Time
	err := s.Pool.QueryRow(ctx, `
		SELECT created_at FROM rate_limits
		WHERE agent_id = $1 AND kind = $2 AND created_at >= $3
		ORDER BY created_at ASC LIMIT 1`,
		agentID, kind, since).Scan(&t)
	if err != nil {
		if mapNotFound(err) == ErrNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

func (s *Store) InsertRateEvent(ctx context.Context, agentID, kind string, at time.Time) error {
	_, err := s.Pool.Exec(ctx, `
		INSERT INTO rate_limits (agent_id, kind, created_at) VALUES ($1,$2,$3)`,
		agentID, kind, at)
	return err
}

// PruneRateEvents drops records older than the cutoff. Run from a
// janitor loop.
func (s *Store) PruneRateEvents(ctx context.Context, before time.Time) (int64, error) {
	tag, err := s.Pool.Exec(ctx, `DELETE FROM rate_limits WHERE created_at < $1`, before)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
