package agent

import (
	"encoding/json"
	"time"

	"agent-casino/internal/store"
)

type RegisterInput struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

type RegisterResponse struct {
	Agent struct {
		ID               string `json:"id"`
		Name             string `json:"name"`
		APIKey           string `json:"api_key"`
		ClaimURL         string `json:"claim_url"`
		VerificationCode string `json:"verification_code"`
	} `json:"agent"`
	Important      string `json:"important"`
	XClaimTemplate string `json:"x_claim_template"`
}

type AgentSummary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	ClaimStatus string `json:"claim_status"`
	IsPaused    bool   `json:"is_paused"`
}

type BalanceView struct {
	Amount    int64     `json:"amount"`
	UpdatedAt time.Time `json:"updated_at"`
}

type StateResponse struct {
	Agent        AgentSummary       `json:"agent"`
	Balance      BalanceView        `json:"balance"`
	Bank         BalanceView        `json:"bank"`
	NetWorth     int64              `json:"net_worth"`
	Config       *store.AgentConfig `json:"config"`
	ProvablyFair store.FairCommit   `json:"provably_fair"`
}

type StatusResponse struct {
	Status string `json:"status"`
	Agent  struct {
		ID        string     `json:"id"`
		Name      string     `json:"name"`
		XHandle   string     `json:"x_handle,omitempty"`
		ClaimedAt *time.Time `json:"claimed_at,omitempty"`
	} `json:"agent"`
}

type ConfigResponse struct {
	Config  *store.AgentConfig `json:"config"`
	Balance int64              `json:"balance"`
}

// ConfigPatch distinguishes "absent" from "set to null" for the two
// nullable limits: sending null clears the limit, omitting the field
// leaves it untouched.
type ConfigPatch struct {
	RiskProfile   *string
	MaxBet        *int64
	StopLoss      *int64
	StopLossSet   bool
	TakeProfit    *int64
	TakeProfitSet bool
	ResetAnchor   bool
}

func (p *ConfigPatch) UnmarshalJSON(b []byte) error {
	var raw struct {
		RiskProfile *string         `json:"risk_profile"`
		MaxBet      *int64          `json:"max_bet"`
		StopLoss    json.RawMessage `json:"stop_loss"`
		TakeProfit  json.RawMessage `json:"take_profit"`
		ResetAnchor bool            `json:"reset_anchor"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	p.RiskProfile = raw.RiskProfile
	p.MaxBet = raw.MaxBet
	p.ResetAnchor = raw.ResetAnchor
	if raw.StopLoss != nil {
		p.StopLossSet = true
		if err := json.Unmarshal(raw.StopLoss, &p.StopLoss); err != nil {
			return err
		}
	}
	if raw.TakeProfit != nil {
		p.TakeProfitSet = true
		if err := json.Unmarshal(raw.TakeProfit, &p.TakeProfit); err != nil {
			return err
		}
	}
	return nil
}

type ClaimInput struct {
	XHandle  string `json:"x_handle"`
	TweetURL string `json:"tweet_url"`
}
