package store

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5"
)

type InsertMemoryParams struct {
	Memory Memory
	Event  Event
}

// InsertMemory stores the private memory row and its feed echo event
// together.
func (s *Store) InsertMemory(ctx context.Context, p InsertMemoryParams) error {
	tags, err := json.Marshal(p.Memory.Tags)
	if err != nil {
		return err
	}
	return s.withTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `
			INSERT INTO agent_memory (id, agent_id, kind, content, tags, visibility, logic, created_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7,now())`,
			p.Memory.ID, p.Memory.AgentID, p.Memory.Kind, p.Memory.Content,
			tags, p.Memory.Visibility, p.Memory.Logic); err != nil {
			return err
		}
		return insertEvent(ctx, tx, p.Event)
	})
}

type MemoryFilter struct {
	Kind       string
	Visibility string
}

func (s *Store) ListMemories(ctx context.Context, agentID string, f MemoryFilter, limit int) ([]Memory, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := s.Pool.Query(ctx, `
		SELECT id, agent_id, kind, content, tags, visibility, logic, created_at
		FROM agent_memory
		WHERE agent_id = $1
		  AND ($2 = '' OR kind = $2)
		  AND ($3 = '' OR visibility = $3)
		ORDER BY created_at DESC
		LIMIT $4`, agentID, f.Kind, f.Visibility, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Memory{}
	for rows.Next() {
		var m Memory
		var tags []byte
		if err := rows.Scan(&m.ID, &m.AgentID, &m.Kind, &m.Content, &tags, &m.Visibility, &m.Logic, &m.CreatedAt); err != nil {
			return nil, err
		}
		if len(tags) > 0 {
			_ = json.Unmarshal(tags, &m.Tags)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
