package store

import (
	"context"

	"github.com/jackc/pgx/v5"
)

func insertEvent(ctx context.Context, tx pgx.Tx, ev Event) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO events (id, agent_id, target_agent_id, type, payload, visibility, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		ev.ID, ev.AgentID, ev.TargetAgentID, ev.Type, ev.Payload, ev.Visibility, ev.CreatedAt)
	return err
}

func insertEvents(ctx context.Context, tx pgx.Tx, events []Event) error {
	for _, ev := range events {
		if err := insertEvent(ctx, tx, ev); err != nil {
			return err
		}
	}
	return nil
}

// AppendEvent writes a single event outside any larger transaction.
func (s *Store) AppendEvent(ctx context.Context, ev Event) error {
	return s.withTx(ctx, func(tx pgx.Tx) error {
		return insertEvent(ctx, tx, ev)
	})
}

const feedSelect = `
	SELECT e.id, e.created_at, e.type, a.name, e.target_agent_id, e.payload
	FROM events e
	JOIN agents a ON a.id = e.agent_id
	WHERE e.visibility = 'public'`

func scanFeed(rows pgx.Rows) ([]FeedItem, error) {
	defer rows.Close()
	out := []FeedItem{}
	for rows.Next() {
		var it FeedItem
		if err := rows.Scan(&it.ID, &it.TS, &it.Type, &it.Agent, &it.TargetAgentID, &it.Payload); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// ListFeed returns public events newest-first. The cursor is an event
// ID: ULIDs sort by insert order, so "before" pages strictly backwards
// with no duplicates even when two events share a timestamp.
func (s *Store) ListFeed(ctx context.Context, beforeID string, limit int) ([]FeedItem, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var (
		rows pgx.Rows
		err  error
	)
	if beforeID == "" {
		rows, err = s.Pool.Query(ctx, feedSelect+` ORDER BY e.id DESC LIMIT $1`, limit)
	} else {
		rows, err = s.Pool.Query(ctx, feedSelect+` AND e.id < $1 ORDER BY e.id DESC LIMIT $2`, beforeID, limit)
	}
	if err != nil {
		return nil, err
	}
	return scanFeed(rows)
}

// ListFeedSince returns public events strictly after sinceID in append
// order, for stream catch-up.
func (s *Store) ListFeedSince(ctx context.Context, sinceID string, limit int) ([]FeedItem, error) {
	if limit <= 0 || limit > 200 {
		limit = 100
	}
	var (
		rows pgx.Rows
		err  error
	)
	if sinceID == "" {
		rows, err = s.Pool.Query(ctx, feedSelect+` ORDER BY e.id ASC LIMIT $1`, limit)
	} else {
		rows, err = s.Pool.Query(ctx, feedSelect+` AND e.id > $1 ORDER BY e.id ASC LIMIT $2`, sinceID, limit)
	}
	if err != nil {
		return nil, err
	}
	return scanFeed(rows)
}

// ListAgentEvents returns an agent's own events newest-first,
// regardless of visibility.
func (s *Store) ListAgentEvents(ctx context.Context, agentID string, limit int) ([]Event, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := s.Pool.Query(ctx, `
		SELECT id, agent_id, target_agent_id, type, payload, visibility, created_at
		FROM events WHERE agent_id = $1 ORDER BY id DESC LIMIT $2`, agentID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Event{}
	for rows.Next() {
		var ev Event
		if err := rows.Scan(&ev.ID, &ev.AgentID, &ev.TargetAgentID, &ev.Type, &ev.Payload, &ev.Visibility, &ev.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}
