package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const agentColumns = `id, name, COALESCE(description,''), api_key_hash, claim_token_hash,
	COALESCE(x_handle,''), COALESCE(claim_tweet_url,''), claim_status, claimed_at,
	is_paused, COALESCE(paused_reason,''), created_at`

func scanAgent(row pgx.Row) (*Agent, error) {
	var a Agent
	err := row.Scan(&a.ID, &a.Name, &a.Description, &a.APIKeyHash, &a.ClaimTokenHash,
		&a.XHandle, &a.ClaimTweetURL, &a.ClaimStatus, &a.ClaimedAt,
		&a.IsPaused, &a.PausedReason, &a.CreatedAt)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return &a, nil
}

type CreateAgentParams struct {
	ID             string
	Name           string
	Description    string
	APIKeyHash     string
	ClaimTokenHash string
	InitialBalance int64
	ServerSeed     string
	ServerSeedHash string
	Registered     Event
}

// CreateAgent inserts the agent together with its starting balance,
// default config, fairness commitment and registration event in one
// transaction.
func (s *Store) CreateAgent(ctx context.Context, p CreateAgentParams) error {
	err := s.withTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `
			INSERT INTO agents (id, name, description, api_key_hash, claim_token_hash, claim_status)
			VALUES ($1,$2,NULLIF($3,''),$4,$5,'pending_claim')`,
			p.ID, p.Name, p.Description, p.APIKeyHash, p.ClaimTokenHash); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `INSERT INTO balances (agent_id, amount, updated_at) VALUES ($1,$2,now())`,
			p.ID, p.InitialBalance); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO agent_configs (agent_id, risk_profile, max_bet, anchor_balance, updated_at)
			VALUES ($1,'degen',250,$2,now())`,
			p.ID, p.InitialBalance); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO fair_state (agent_id, server_seed, server_seed_hash, nonce, updated_at)
			VALUES ($1,$2,$3,0,now())`,
			p.ID, p.ServerSeed, p.ServerSeedHash); err != nil {
			return err
		}
		return insertEvent(ctx, tx, p.Registered)
	})
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrNameTaken
	}
	return err
}

func (s *Store) GetAgentByID(ctx context.Context, id string) (*Agent, error) {
	return scanAgent(s.Pool.QueryRow(ctx, `SELECT `+agentColumns+` FROM agents WHERE id = $1`, id))
}

func (s *Store) GetAgentByName(ctx context.Context, name string) (*Agent, error) {
	return scanAgent(s.Pool.QueryRow(ctx, `SELECT `+agentColumns+` FROM agents WHERE name = $1`, name))
}

func (s *Store) GetAgentByAPIKeyHash(ctx context.Context, hash string) (*Agent, error) {
	return scanAgent(s.Pool.QueryRow(ctx, `SELECT `+agentColumns+` FROM agents WHERE api_key_hash = $1`, hash))
}

func (s *Store) GetAgentByClaimTokenHash(ctx context.Context, hash string) (*Agent, error) {
	return scanAgent(s.Pool.QueryRow(ctx, `SELECT `+agentColumns+` FROM agents WHERE claim_token_hash = $1`, hash))
}

func (s *Store) ListAgents(ctx context.Context, limit, offset int) ([]Agent, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.Pool.Query(ctx, `SELECT `+agentColumns+` FROM agents ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Agent{}
	for rows.Next() {
		a, err := scanAgent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

// SetAgentPaused flips the pause flag and records the change in the
// event log atomically.
func (s *Store) SetAgentPaused(ctx context.Context, agentID string, paused bool, reason string, ev Event) error {
	return s.withTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `UPDATE agents SET is_paused = $1, paused_reason = NULLIF($2,'') WHERE id = $3`,
			paused, reason, agentID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		return insertEvent(ctx, tx, ev)
	})
}

// SubmitClaim records the agent's ownership claim and moves it to
// pending_review. Verification itself happens out of process.
func (s *Store) SubmitClaim(ctx context.Context, agentID, xHandle, tweetURL string) error {
	tag, err := s.Pool.Exec(ctx, `
		UPDATE agents SET x_handle = $1, claim_tweet_url = $2, claim_status = 'pending_review'
		WHERE id = $3 AND claim_status = 'pending_claim'`,
		xHandle, tweetURL, agentID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) MarkAgentClaimed(ctx context.Context, agentID string) error {
	tag, err := s.Pool.Exec(ctx, `
		UPDATE agents SET claim_status = 'claimed', claimed_at = now() WHERE id = $1`, agentID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) ListLeaderboard(ctx context.Context, limit int) ([]LeaderboardRow, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.Pool.Query(ctx, `
		SELECT a.name, a.claim_status, a.is_paused,
		       b.amount AS casino_balance,
		       COALESCE(bb.amount, 0) AS bank_balance
		FROM agents a
		JOIN balances b ON b.agent_id = a.id
		LEFT JOIN bank_balances bb ON bb.agent_id = a.id
		ORDER BY b.amount + COALESCE(bb.amount, 0) DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []LeaderboardRow{}
	for rows.Next() {
		var r LeaderboardRow
		if err := rows.Scan(&r.Name, &r.ClaimStatus, &r.IsPaused, &r.CasinoBalance, &r.BankBalance); err != nil {
			return nil, err
		}
		r.TotalWealth = r.CasinoBalance + r.BankBalance
		out = append(out, r)
	}
	return out, rows.Err()
}
