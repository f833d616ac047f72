package store

import "context"

func (s *Store) GetAgentConfig(ctx context.Context, agentID string) (*AgentConfig, error) {
	var c AgentConfig
	err := s.Pool.QueryRow(ctx, `
		SELECT agent_id, risk_profile, max_bet, stop_loss, take_profit, anchor_balance, updated_at
		FROM agent_configs WHERE agent_id = $1`, agentID).
		Scan(&c.AgentID, &c.RiskProfile, &c.MaxBet, &c.StopLoss, &c.TakeProfit, &c.AnchorBalance, &c.UpdatedAt)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return &c, nil
}

// UpsertAgentConfig writes the full config row: insert when the agent
// has none, otherwise replace every field with the caller's resolved
// values. Callers merge old and new before calling.
func (s *Store) UpsertAgentConfig(ctx context.Context, c AgentConfig) error {
	_, err := s.Pool.Exec(ctx, `
		INSERT INTO agent_configs (agent_id, risk_profile, max_bet, stop_loss, take_profit, anchor_balance, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,now())
		ON CONFLICT (agent_id) DO UPDATE SET
			risk_profile = EXCLUDED.risk_profile,
			max_bet = EXCLUDED.max_bet,
			stop_loss = EXCLUDED.stop_loss,
			take_profit = EXCLUDED.take_profit,
			anchor_balance = EXCLUDED.anchor_balance,
			updated_at = now()`,
		c.AgentID, c.RiskProfile, c.MaxBet, c.StopLoss, c.TakeProfit, c.AnchorBalance)
	return err
}
