package store

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// GetFairState returns the current commitment row, or ErrNotFound.
func (s *Store) GetFairState(ctx context.Context, agentID string) (*FairState, error) {
	var fs FairState
	err := s.Pool.QueryRow(ctx, `
		SELECT agent_id, server_seed, server_seed_hash, nonce, updated_at
		FROM fair_state WHERE agent_id = $1`, agentID).
		Scan(&fs.AgentID, &fs.ServerSeed, &fs.ServerSeedHash, &fs.Nonce, &fs.UpdatedAt)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return &fs, nil
}

// EnsureFairState creates the row with the given fresh commitment if
// the agent has none yet, and returns whichever row is now current.
func (s *Store) EnsureFairState(ctx context.Context, agentID, seed, seedHash string) (*FairState, error) {
	_, err := s.Pool.Exec(ctx, `
		INSERT INTO fair_state (agent_id, server_seed, server_seed_hash, nonce, updated_at)
		VALUES ($1,$2,$3,0,now())
		ON CONFLICT (agent_id) DO NOTHING`, agentID, seed, seedHash)
	if err != nil {
		return nil, err
	}
	return s.GetFairState(ctx, agentID)
}

// RotateFairState locks the agent's fair_state row, hands the current
// state to fn, and persists the replacement fn returns. Draw and
// rotation are therefore a single atomic unit: a failure anywhere
// leaves the old commitment in place.
func (s *Store) RotateFairState(ctx context.Context, agentID string, fn func(cur FairState) FairState) (cur FairState, next FairState, err error) {
	err = s.withTx(ctx, func(tx pgx.Tx) error {
		e := tx.QueryRow(ctx, `
			SELECT agent_id, server_seed, server_seed_hash, nonce, updated_at
			FROM fair_state WHERE agent_id = $1 FOR UPDATE`, agentID).
			Scan(&cur.AgentID, &cur.ServerSeed, &cur.ServerSeedHash, &cur.Nonce, &cur.UpdatedAt)
		if e != nil {
			return mapNotFound(e)
		}
		next = fn(cur)
		_, e = tx.Exec(ctx, `
			UPDATE fair_state SET server_seed = $1, server_seed_hash = $2, nonce = $3, updated_at = now()
			WHERE agent_id = $4`,
			next.ServerSeed, next.ServerSeedHash, next.Nonce, agentID)
		return e
	})
	if err != nil {
		return FairState{}, FairState{}, err
	}
	return cur, next, nil
}
