// Package bank moves chips without a wager attached: peer tips, the
// casino-to-bank vault in both directions, and the bankruptcy faucet.
package bank

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"strings"
	"time"

	"agent-casino/internal/agentlock"
	"agent-casino/internal/config"
	"agent-casino/internal/feed"
	"agent-casino/internal/ratelimit"
	"agent-casino/internal/reasoning"
	"agent-casino/internal/redact"
	"agent-casino/internal/store"
)

type Service struct {
	store  *store.Store
	limits *ratelimit.Limiter
	locks  *agentlock.Table
	feed   *feed.Broadcaster
	cfg    config.ServerConfig
}

func NewService(st *store.Store, rl *ratelimit.Limiter, locks *agentlock.Table, bc *feed.Broadcaster, cfg config.ServerConfig) *Service {
	return &Service{store: st, limits: rl, locks: locks, feed: bc, cfg: cfg}
}

func (s *Service) publish(ev store.Event, agentName string) {
	if ev.Visibility == store.VisibilityPublic {
		s.feed.Publish(feed.ItemFromEvent(ev, agentName))
	}
}

type TipInput struct {
	To     string          `json:"to"`
	Amount int64           `json:"amount"`
	Note   string          `json:"note,omitempty"`
	Logic  json.RawMessage `json:"logic,omitempty"`
}

// Tip moves chips between two agents' casino balances. Both agents'
// serialization boundaries are held for the duration; the row locks
// underneath use the same deterministic ordering.
func (s *Service) Tip(ctx context.Context, a *store.Agent, in TipInput) error {
	if err := s.limits.Allow(ctx, a.ID, ratelimit.KindTip); err != nil {
		return err
	}
	if in.Amount < 1 || in.Amount > 100000 || len(in.To) < 2 || len(in.To) > 32 || len(in.Note) > 160 {
		return ErrInvalidBody
	}
	if _, err := reasoning.Validate(in.Logic); err != nil {
		return ErrInvalidBody
	}
	toName := strings.ToLower(in.To)
	if toName == a.Name {
		return ErrNoSelfTip
	}
	target, err := s.store.GetAgentByName(ctx, toName)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrTargetNotFound
		}
		return err
	}

	unlock := s.locks.LockPair(a.ID, target.ID)
	defer unlock()

	var note *string
	scrubbed := ""
	if in.Note != "" {
		scrubbed, _ = redact.Scrub(in.Note)
		note = &scrubbed
	}

	tip := store.Tip{
		ID:          store.NewID(),
		FromAgentID: a.ID,
		ToAgentID:   target.ID,
		Amount:      in.Amount,
		Note:        note,
	}
	// Both serialization boundaries are held, so the balances read here
	// are exactly what the transfer transaction will see.
	bal, err := s.store.GetBalance(ctx, a.ID)
	if err != nil {
		return err
	}
	if bal.Amount < in.Amount {
		return &InsufficientFundsError{Balance: bal.Amount}
	}
	targetBal, err := s.store.GetBalance(ctx, target.ID)
	if err != nil {
		return err
	}

	ev := store.NewEvent(a.ID, &target.ID, store.EventTipSent, store.TipSentPayload{
		To:          target.Name,
		Amount:      in.Amount,
		Note:        scrubbed,
		Logic:       in.Logic,
		FromBalance: bal.Amount - in.Amount,
		ToBalance:   targetBal.Amount + in.Amount,
	})
	if _, _, err := s.store.TipTransfer(ctx, store.TipTransferParams{Tip: tip, Event: ev}); err != nil {
		if errors.Is(err, store.ErrInsufficientFunds) {
			return &InsufficientFundsError{Balance: bal.Amount}
		}
		return err
	}
	s.publish(ev, a.Name)
	return nil
}

type CashMoveInput struct {
	Amount int64           `json:"amount"`
	Note   string          `json:"note,omitempty"`
	Logic  json.RawMessage `json:"logic,omitempty"`
}

type CashMoveResult struct {
	CasinoBalance int64 `json:"casino_balance"`
	BankBalance   int64 `json:"bank_balance"`
}

func (in *CashMoveInput) validate() error {
	if in.Amount < 1 || in.Amount > 100000000 || len(in.Note) > 160 {
		return ErrInvalidBody
	}
	if _, err := reasoning.Validate(in.Logic); err != nil {
		return ErrInvalidBody
	}
	return nil
}

// CashOut vaults chips from the casino floor into the bank.
func (s *Service) CashOut(ctx context.Context, a *store.Agent, in CashMoveInput) (*CashMoveResult, error) {
	if err := s.limits.Allow(ctx, a.ID, ratelimit.KindCashOut); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}
	unlock := s.locks.Lock(a.ID)
	defer unlock()
	return s.moveCash(ctx, a, in, "cashout")
}

// CashIn brings banked chips back onto the casino floor.
func (s *Service) CashIn(ctx context.Context, a *store.Agent, in CashMoveInput) (*CashMoveResult, error) {
	if err := s.limits.Allow(ctx, a.ID, ratelimit.KindCashIn); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}
	unlock := s.locks.Lock(a.ID)
	defer unlock()
	return s.moveCash(ctx, a, in, "cashin")
}

func (s *Service) moveCash(ctx context.Context, a *store.Agent, in CashMoveInput, direction string) (*CashMoveResult, error) {
	var note *string
	scrubbed := ""
	if in.Note != "" {
		scrubbed, _ = redact.Scrub(in.Note)
		note = &scrubbed
	}
	transfer := store.Transfer{
		ID:        store.NewID(),
		AgentID:   a.ID,
		Direction: direction,
		Amount:    in.Amount,
		Note:      note,
	}

	bal, err := s.store.GetBalance(ctx, a.ID)
	if err != nil {
		return nil, err
	}
	bank, err := s.store.GetBankBalance(ctx, a.ID)
	if err != nil {
		return nil, err
	}

	eventType := store.EventCashOut
	var wantCasino, wantBank int64
	if direction == "cashout" {
		if bal.Amount < in.Amount {
			return nil, &InsufficientFundsError{Balance: bal.Amount}
		}
		wantCasino, wantBank = bal.Amount-in.Amount, bank.Amount+in.Amount
	} else {
		eventType = store.EventCashIn
		if bank.Amount < in.Amount {
			return nil, &InsufficientBankError{BankBalance: bank.Amount}
		}
		wantCasino, wantBank = bal.Amount+in.Amount, bank.Amount-in.Amount
	}

	ev := store.NewEvent(a.ID, nil, eventType, store.CashMovePayload{
		Amount:        in.Amount,
		Note:          scrubbed,
		Logic:         in.Logic,
		CasinoBalance: wantCasino,
		BankBalance:   wantBank,
	})

	var casino, bankBal int64
	params := store.BankMoveParams{Transfer: transfer, Event: ev}
	if direction == "cashout" {
		casino, bankBal, err = s.store.MoveToBank(ctx, params)
	} else {
		casino, bankBal, err = s.store.MoveFromBank(ctx, params)
	}
	if err != nil {
		switch {
		case errors.Is(err, store.ErrInsufficientFunds):
			return nil, &InsufficientFundsError{Balance: bal.Amount}
		case errors.Is(err, store.ErrInsufficientBank):
			return nil, &InsufficientBankError{BankBalance: bank.Amount}
		}
		return nil, err
	}
	s.publish(ev, a.Name)
	return &CashMoveResult{CasinoBalance: casino, BankBalance: bankBal}, nil
}

type FaucetStatus struct {
	Armed            bool       `json:"armed"`
	TotalWealth      int64      `json:"total_wealth"`
	ZeroedAt         *time.Time `json:"zeroed_at,omitempty"`
	AvailableAt      *time.Time `json:"available_at,omitempty"`
	RemainingSeconds int64      `json:"remaining_seconds"`
	CanClaim         bool       `json:"can_claim"`
}

// Status reports the faucet view, arming it on first observation of
// bankruptcy so an agent polling its options starts the cooldown
// without having to lose one more bet.
func (s *Service) Status(ctx context.Context, a *store.Agent) (*FaucetStatus, error) {
	unlock := s.locks.Lock(a.ID)
	defer unlock()

	total, err := s.totalWealth(ctx, a.ID)
	if err != nil {
		return nil, err
	}
	if total > 0 {
		return &FaucetStatus{Armed: false, TotalWealth: total}, nil
	}

	fs, err := s.store.GetFaucetState(ctx, a.ID)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			return nil, err
		}
		now := time.Now().UTC()
		availableAt := now.Add(s.cooldown())
		brokeEv := store.NewEvent(a.ID, nil, store.EventBroke, store.BrokePayload{AvailableAt: availableAt})
		armed, err := s.store.ArmFaucet(ctx, a.ID, now, availableAt, brokeEv)
		if err != nil {
			return nil, err
		}
		if armed {
			s.publish(brokeEv, a.Name)
		}
		return &FaucetStatus{
			Armed:            true,
			TotalWealth:      0,
			ZeroedAt:         &now,
			AvailableAt:      &availableAt,
			RemainingSeconds: int64(s.cooldown().Seconds()),
			CanClaim:         false,
		}, nil
	}

	remaining := remainingSeconds(fs.AvailableAt)
	return &FaucetStatus{
		Armed:            true,
		TotalWealth:      0,
		ZeroedAt:         &fs.ZeroedAt,
		AvailableAt:      &fs.AvailableAt,
		RemainingSeconds: remaining,
		CanClaim:         remaining == 0,
	}, nil
}

type ClaimResult struct {
	Amount  int64 `json:"amount"`
	Balance int64 `json:"balance"`
}

// Claim pays the bailout once the cooldown has run. The grant clears
// the armed state so a later bankruptcy starts a fresh cooldown.
func (s *Service) Claim(ctx context.Context, a *store.Agent, confirmed bool) (*ClaimResult, error) {
	if !confirmed {
		return nil, ErrConfirmRequired
	}
	unlock := s.locks.Lock(a.ID)
	defer unlock()

	total, err := s.totalWealth(ctx, a.ID)
	if err != nil {
		return nil, err
	}
	if total > 0 {
		return nil, &NotBrokeError{TotalWealth: total}
	}

	fs, err := s.store.GetFaucetState(ctx, a.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotArmed
		}
		return nil, err
	}
	if remaining := remainingSeconds(fs.AvailableAt); remaining > 0 {
		ev := store.NewEvent(a.ID, nil, store.EventBailoutTooSoon, store.BailoutTooSoonPayload{RemainingSeconds: remaining})
		if err := s.store.AppendEvent(ctx, ev); err != nil {
			return nil, err
		}
		s.publish(ev, a.Name)
		return nil, &TooSoonError{RemainingSeconds: remaining}
	}

	amount := s.cfg.FaucetAmount
	grantedEv := store.NewEvent(a.ID, nil, store.EventBailoutGranted, store.BailoutGrantedPayload{
		Amount:  amount,
		Balance: amount,
	})
	balance, err := s.store.GrantFaucet(ctx, store.FaucetGrantParams{
		GrantID: store.NewID(),
		AgentID: a.ID,
		Amount:  amount,
		Granted: grantedEv,
	})
	if err != nil {
		return nil, err
	}
	if err := s.store.DisarmFaucet(ctx, a.ID); err != nil {
		return nil, err
	}
	s.publish(grantedEv, a.Name)
	return &ClaimResult{Amount: amount, Balance: balance}, nil
}

func (s *Service) totalWealth(ctx context.Context, agentID string) (int64, error) {
	bal, err := s.store.GetBalance(ctx, agentID)
	if err != nil {
		return 0, err
	}
	bank, err := s.store.GetBankBalance(ctx, agentID)
	if err != nil {
		return 0, err
	}
	return bal.Amount + bank.Amount, nil
}

func (s *Service) cooldown() time.Duration {
	return time.Duration(s.cfg.FaucetCooldownMins) * time.Minute
}

func remainingSeconds(availableAt time.Time) int64 {
	r := int64(math.Ceil(time.Until(availableAt).Seconds()))
	if r < 0 {
		return 0
	}
	return r
}
