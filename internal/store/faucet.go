package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
)

func (s *Store) GetFaucetState(ctx context.Context, agentID string) (*FaucetState, error) {
	var fs FaucetState
	err := s.Pool.QueryRow(ctx, `
		SELECT agent_id, zeroed_at, available_at, last_claimed_at
		FROM faucet_state WHERE agent_id = $1`, agentID).
		Scan(&fs.AgentID, &fs.ZeroedAt, &fs.AvailableAt, &fs.LastClaimedAt)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return &fs, nil
}

// ArmFaucet inserts the faucet row if the agent has none, emitting the
// broke event only when this call actually armed it. Arming happens at
// most once per bankruptcy.
func (s *Store) ArmFaucet(ctx context.Context, agentID string, zeroedAt, availableAt time.Time, broke Event) (armed bool, err error) {
	err = s.withTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			INSERT INTO faucet_state (agent_id, zeroed_at, available_at, last_claimed_at)
			VALUES ($1,$2,$3,NULL)
			ON CONFLICT (agent_id) DO NOTHING`, agentID, zeroedAt, availableAt)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return nil
		}
		armed = true
		return insertEvent(ctx, tx, broke)
	})
	return armed, err
}

// DisarmFaucet clears the armed state after wealth returns above zero
// via a grant, so a later bankruptcy can re-arm it.
func (s *Store) DisarmFaucet(ctx context.Context, agentID string) error {
	_, err := s.Pool.Exec(ctx, `DELETE FROM faucet_state WHERE agent_id = $1`, agentID)
	return err
}

type FaucetGrantParams struct {
	GrantID string
	AgentID string
	Amount  int64
	Granted Event
}

// GrantFaucet records the grant, credits the casino balance and stamps
// last_claimed_at in one transaction. Returns the new casino balance.
func (s *Store) GrantFaucet(ctx context.Context, p FaucetGrantParams) (int64, error) {
	var newBal int64
	err := s.withTx(ctx, func(tx pgx.Tx) error {
		bal, err := lockBalance(ctx, tx, "balances", p.AgentID)
		if err != nil {
			return err
		}
		newBal = bal + p.Amount
		if err := setBalance(ctx, tx, "balances", p.AgentID, newBal); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO faucet_grants (id, agent_id, amount, created_at) VALUES ($1,$2,$3,now())`,
			p.GrantID, p.AgentID, p.Amount); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `
			UPDATE faucet_state SET last_claimed_at = now() WHERE agent_id = $1`, p.AgentID); err != nil {
			return err
		}
		return insertEvent(ctx, tx, p.Granted)
	})
	if err != nil {
		return 0, err
	}
	return newBal, nil
}
