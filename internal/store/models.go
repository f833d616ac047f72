package store

import (
	"encoding/json"
	"time"
)

type Agent struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	Description    string     `json:"description,omitempty"`
	APIKeyHash     string     `json:"-"`
	ClaimTokenHash string     `json:"-"`
	XHandle        string     `json:"x_handle,omitempty"`
	ClaimTweetURL  string     `json:"claim_tweet_url,omitempty"`
	ClaimStatus    string     `json:"claim_status"`
	ClaimedAt      *time.Time `json:"claimed_at,omitempty"`
	IsPaused       bool       `json:"is_paused"`
	PausedReason   string     `json:"paused_reason,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

type Balance struct {
	AgentID   string    `json:"agent_id"`
	Amount    int64     `json:"amount"`
	UpdatedAt time.Time `json:"updated_at"`
}

type AgentConfig struct {
	AgentID       string    `json:"agent_id"`
	RiskProfile   string    `json:"risk_profile"`
	MaxBet        int64     `json:"max_bet"`
	StopLoss      *int64    `json:"stop_loss"`
	TakeProfit    *int64    `json:"take_profit"`
	AnchorBalance *int64    `json:"anchor_balance"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// FairState is the commit-reveal state for one agent. ServerSeed is
// secret until the draw that uses it; ServerSeedHash is the public
// commitment.
type FairState struct {
	AgentID        string    `json:"agent_id"`
	ServerSeed     string    `json:"-"`
	ServerSeedHash string    `json:"server_seed_hash"`
	Nonce          int64     `json:"nonce"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type FaucetState struct {
	AgentID       string     `json:"agent_id"`
	ZeroedAt      time.Time  `json:"zeroed_at"`
	AvailableAt   time.Time  `json:"available_at"`
	LastClaimedAt *time.Time `json:"last_claimed_at"`
}

type Transfer struct {
	ID        string    `json:"id"`
	AgentID   string    `json:"agent_id"`
	Direction string    `json:"direction"`
	Amount    int64     `json:"amount"`
	Note      *string   `json:"note"`
	CreatedAt time.Time `json:"created_at"`
}

type Tip struct {
	ID          string    `json:"id"`
	FromAgentID string    `json:"from_agent_id"`
	ToAgentID   string    `json:"to_agent_id"`
	Amount      int64     `json:"amount"`
	Note        *string   `json:"note"`
	CreatedAt   time.Time `json:"created_at"`
}

type Memory struct {
	ID         string          `json:"id"`
	AgentID    string          `json:"-"`
	Kind       string          `json:"kind"`
	Content    string          `json:"content"`
	Tags       []string        `json:"tags"`
	Visibility string          `json:"visibility"`
	Logic      json.RawMessage `json:"logic,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

// Event is one append-only fact in the audit log. Payload stays an
// opaque serialized blob in the row; typed shapes live in payloads.go.
type Event struct {
	ID            string          `json:"id"`
	AgentID       string          `json:"agent_id"`
	TargetAgentID *string         `json:"target_agent_id"`
	Type          string          `json:"type"`
	Payload       json.RawMessage `json:"payload"`
	Visibility    string          `json:"visibility"`
	CreatedAt     time.Time       `json:"created_at"`
}

// FeedItem is the public projection of an Event, joined with the
// acting agent's name.
type FeedItem struct {
	ID            string          `json:"id"`
	TS            time.Time       `json:"ts"`
	Type          string          `json:"type"`
	Agent         string          `json:"agent"`
	TargetAgentID *string         `json:"target_agent_id"`
	Payload       json.RawMessage `json:"payload"`
}

type LeaderboardRow struct {
	Name          string `json:"name"`
	CasinoBalance int64  `json:"casino_balance"`
	BankBalance   int64  `json:"bank_balance"`
	TotalWealth   int64  `json:"total_wealth"`
	ClaimStatus   string `json:"claim_status"`
	IsPaused      bool   `json:"is_paused"`
}
