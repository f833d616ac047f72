package store

import (
	"encoding/json"
	"time"
)

// Event types. Each type has a payload struct below; unknown future
// kinds still round-trip because the row keeps the serialized form.
const (
	EventAgentRegistered = "agent_registered"
	EventBetPlaced       = "bet_placed"
	EventBetResolved     = "bet_resolved"
	EventLimitHit        = "limit_hit"
	EventBroke           = "broke"
	EventTipSent         = "tip_sent"
	EventCashIn          = "cashin"
	EventCashOut         = "cashout"
	EventBegRequested    = "beg_requested"
	EventThought         = "thought"
	EventChat            = "chat"
	EventSocialSignal    = "social_signal"
	EventMemoryWritten   = "memory_written"
	EventBailoutGranted  = "bailout_granted"
	EventBailoutTooSoon  = "bailout_denied_too_soon"
	EventAgentPaused     = "agent_paused"
	EventAgentResumed    = "agent_resumed"
)

const (
	VisibilityPublic = "public"
	VisibilityHidden = "moderation_hidden"
)

type FairCommit struct {
	ServerSeedHash string `json:"server_seed_hash"`
	Nonce          int64  `json:"nonce"`
}

type FairReveal struct {
	ServerSeed     string `json:"server_seed"`
	ServerSeedHash string `json:"server_seed_hash"`
	Nonce          int64  `json:"nonce"`
	ClientSeed     string `json:"client_seed"`
}

type AgentRegisteredPayload struct {
	VerificationCode string     `json:"verification_code"`
	FairCommit       FairCommit `json:"fair_commit"`
}

type BetPlacedPayload struct {
	Game          string          `json:"game"`
	Stake         int64           `json:"stake"`
	Choice        string          `json:"choice,omitempty"`
	Target        int             `json:"target,omitempty"`
	Direction     string          `json:"direction,omitempty"`
	Note          string          `json:"note,omitempty"`
	Logic         json.RawMessage `json:"logic,omitempty"`
	BalanceBefore int64           `json:"balance_before"`
	Balance       int64           `json:"balance"`
	ProvablyFair  struct {
		ClientSeed     string `json:"client_seed"`
		ServerSeedHash string `json:"server_seed_hash"`
		Nonce          int64  `json:"nonce"`
	} `json:"provably_fair"`
}

type BetResolvedPayload struct {
	Game          string          `json:"game"`
	Stake         int64           `json:"stake"`
	Win           bool            `json:"win"`
	Payout        int64           `json:"payout"`
	Outcome       json.RawMessage `json:"outcome"`
	BalanceBefore int64           `json:"balance_before"`
	Balance       int64           `json:"balance"`
	ProvablyFair  struct {
		Reveal             FairReveal `json:"reveal"`
		NextServerSeedHash string     `json:"next_server_seed_hash"`
	} `json:"provably_fair"`
}

type LimitHitPayload struct {
	Kind          string `json:"kind"`
	StopLoss      *int64 `json:"stop_loss,omitempty"`
	TakeProfit    *int64 `json:"take_profit,omitempty"`
	AnchorBalance *int64 `json:"anchor_balance,omitempty"`
	Balance       int64  `json:"balance"`
}

type BrokePayload struct {
	AvailableAt time.Time `json:"available_at"`
}

type TipSentPayload struct {
	To          string          `json:"to"`
	Amount      int64           `json:"amount"`
	Note        string          `json:"note,omitempty"`
	Logic       json.RawMessage `json:"logic,omitempty"`
	FromBalance int64           `json:"from_balance"`
	ToBalance   int64           `json:"to_balance"`
}

type CashMovePayload struct {
	Amount        int64           `json:"amount"`
	Note          string          `json:"note,omitempty"`
	Logic         json.RawMessage `json:"logic,omitempty"`
	CasinoBalance int64           `json:"casino_balance"`
	BankBalance   int64           `json:"bank_balance"`
}

type BegRequestedPayload struct {
	To     string          `json:"to,omitempty"`
	Amount int64           `json:"amount,omitempty"`
	Reason string          `json:"reason"`
	Logic  json.RawMessage `json:"logic"`
}

type ThoughtPayload struct {
	Content  string          `json:"content"`
	Mood     string          `json:"mood,omitempty"`
	Stage    string          `json:"stage,omitempty"`
	Logic    json.RawMessage `json:"logic,omitempty"`
	Redacted bool            `json:"redacted"`
}

type ChatPayload struct {
	To       string          `json:"to"`
	Content  string          `json:"content"`
	Logic    json.RawMessage `json:"logic,omitempty"`
	Redacted bool            `json:"redacted"`
}

type SocialSignalPayload struct {
	Signal    string          `json:"signal"`
	Intensity float64         `json:"intensity"`
	Content   string          `json:"content"`
	Logic     json.RawMessage `json:"logic,omitempty"`
}

type MemoryWrittenPayload struct {
	Kind      string          `json:"kind"`
	TagsCount int             `json:"tags_count"`
	Logic     json.RawMessage `json:"logic,omitempty"`
}

type BailoutGrantedPayload struct {
	Amount  int64 `json:"amount"`
	Balance int64 `json:"balance"`
}

type BailoutTooSoonPayload struct {
	RemainingSeconds int64 `json:"remaining_seconds"`
}

type PauseStatePayload struct {
	Reason string `json:"reason,omitempty"`
}

// NewEvent builds an Event with a fresh ULID and the payload marshalled
// to its opaque persisted form.
func NewEvent(agentID string, targetAgentID *string, eventType string, payload any) Event {
	raw, err := json.Marshal(payload)
	if err != nil {
		raw = []byte("{}")
	}
	return Event{
		ID:            NewID(),
		AgentID:       agentID,
		TargetAgentID: targetAgentID,
		Type:          eventType,
		Payload:       raw,
		Visibility:    VisibilityPublic,
		CreatedAt:     time.Now().UTC(),
	}
}
