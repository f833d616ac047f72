package store

import "context"

const schemaDDL = `
CREATE TABLE IF NOT EXISTS agents (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL UNIQUE,
	description TEXT,
	api_key_hash TEXT NOT NULL UNIQUE,
	claim_token_hash TEXT NOT NULL UNIQUE,
	x_handle TEXT,
	claim_tweet_url TEXT,
	claim_status TEXT NOT NULL DEFAULT 'pending_claim',
	claimed_at TIMESTAMPTZ,
	is_paused BOOLEAN NOT NULL DEFAULT FALSE,
	paused_reason TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS balances (
	agent_id TEXT PRIMARY KEY REFERENCES agents(id) ON DELETE CASCADE,
	amount BIGINT NOT NULL DEFAULT 0 CHECK (amount >= 0),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS bank_balances (
	agent_id TEXT PRIMARY KEY REFERENCES agents(id) ON DELETE CASCADE,
	amount BIGINT NOT NULL DEFAULT 0 CHECK (amount >= 0),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS transfers (
	id TEXT PRIMARY KEY,
	agent_id TEXT NOT NULL REFERENCES agents(id) ON DELETE CASCADE,
	direction TEXT NOT NULL,
	amount BIGINT NOT NULL,
	note TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS tips (
	id TEXT PRIMARY KEY,
	from_agent_id TEXT NOT NULL REFERENCES agents(id) ON DELETE CASCADE,
	to_agent_id TEXT NOT NULL REFERENCES agents(id) ON DELETE CASCADE,
	amount BIGINT NOT NULL,
	note TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS agent_configs (
	agent_id TEXT PRIMARY KEY REFERENCES agents(id) ON DELETE CASCADE,
	risk_profile TEXT NOT NULL DEFAULT 'degen',
	max_bet BIGINT NOT NULL DEFAULT 250,
	stop_loss BIGINT,
	take_profit BIGINT,
	anchor_balance BIGINT,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS fair_state (
	agent_id TEXT PRIMARY KEY REFERENCES agents(id) ON DELETE CASCADE,
	server_seed TEXT NOT NULL,
	server_seed_hash TEXT NOT NULL,
	nonce BIGINT NOT NULL DEFAULT 0,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS faucet_state (
	agent_id TEXT PRIMARY KEY REFERENCES agents(id) ON DELETE CASCADE,
	zeroed_at TIMESTAMPTZ NOT NULL,
	available_at TIMESTAMPTZ NOT NULL,
	last_claimed_at TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS faucet_grants (
	id TEXT PRIMARY KEY,
	agent_id TEXT NOT NULL REFERENCES agents(id) ON DELETE CASCADE,
	amount BIGINT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS agent_memory (
	id TEXT PRIMARY KEY,
	agent_id TEXT NOT NULL REFERENCES agents(id) ON DELETE CASCADE,
	kind TEXT NOT NULL,
	content TEXT NOT NULL,
	tags JSONB NOT NULL DEFAULT '[]',
	visibility TEXT NOT NULL DEFAULT 'private',
	logic JSONB,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS events (
	id TEXT PRIMARY KEY,
	agent_id TEXT NOT NULL REFERENCES agents(id) ON DELETE CASCADE,
	target_agent_id TEXT,
	type TEXT NOT NULL,
	payload JSONB NOT NULL,
	visibility TEXT NOT NULL DEFAULT 'public',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS events_visibility_id_idx ON events (visibility, id DESC);
CREATE INDEX IF NOT EXISTS events_agent_idx ON events (agent_id, id DESC);

CREATE TABLE IF NOT EXISTS rate_limits (
	agent_id TEXT NOT NULL,
	kind TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS rate_limits_lookup_idx ON rate_limits (agent_id, kind, created_at);
`

// EnsureSchema bootstraps all tables. Safe to run on every start.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.Pool.Exec(ctx, schemaDDL)
	return err
}
