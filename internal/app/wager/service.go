// Package wager runs the bet state machine: risk checks, stake debit,
// provably-fair draw, settlement and the faucet arming check, in that
// order. The agent's keyed lock is held across the whole flow so its
// balance arithmetic stays sequential even though the flow spans
// several transactions.
package wager

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"agent-casino/internal/agentlock"
	"agent-casino/internal/config"
	"agent-casino/internal/fair"
	"agent-casino/internal/feed"
	"agent-casino/internal/games"
	"agent-casino/internal/ratelimit"
	"agent-casino/internal/reasoning"
	"agent-casino/internal/redact"
	"agent-casino/internal/store"
)

type Service struct {
	store  *store.Store
	fair   *fair.Engine
	limits *ratelimit.Limiter
	locks  *agentlock.Table
	feed   *feed.Broadcaster
	cfg    config.ServerConfig
}

func NewService(st *store.Store, fe *fair.Engine, rl *ratelimit.Limiter, locks *agentlock.Table, bc *feed.Broadcaster, cfg config.ServerConfig) *Service {
	return &Service{store: st, fair: fe, limits: rl, locks: locks, feed: bc, cfg: cfg}
}

type BetInput struct {
	Game      string          `json:"game"`
	Stake     int64           `json:"stake"`
	Choice    string          `json:"choice,omitempty"`
	Target    int             `json:"target,omitempty"`
	Direction string          `json:"direction,omitempty"`
	Note      string          `json:"note,omitempty"`
	Logic     json.RawMessage `json:"logic,omitempty"`
}

type BetResult struct {
	Win     bool  `json:"win"`
	Payout  int64 `json:"payout"`
	Outcome any   `json:"outcome"`
	Balance int64 `json:"balance"`
}

type coinflipOutcome struct {
	Flip   string `json:"flip"`
	Choice string `json:"choice"`
}

type diceOutcome struct {
	Roll      int     `json:"roll"`
	Target    int     `json:"target"`
	Direction string  `json:"direction"`
	Mult      float64 `json:"mult"`
}

func (in *BetInput) normalize() error {
	if in.Stake < 1 || in.Stake > 100000 || len(in.Note) > 280 {
		return ErrInvalidBody
	}
	switch in.Game {
	case games.Coinflip:
		if in.Choice == "" {
			in.Choice = games.Heads
		}
		if in.Choice != games.Heads && in.Choice != games.Tails {
			return ErrInvalidBody
		}
	case games.Dice:
		if in.Target == 0 {
			in.Target = 50
		}
		if in.Direction == "" {
			in.Direction = games.Under
		}
		if in.Target < 1 || in.Target > 99 {
			return ErrInvalidBody
		}
		if in.Direction != games.Under && in.Direction != games.Over {
			return ErrInvalidBody
		}
	default:
		return ErrInvalidBody
	}
	return nil
}

func (s *Service) publish(ev store.Event, agentName string) {
	if ev.Visibility == store.VisibilityPublic {
		s.feed.Publish(feed.ItemFromEvent(ev, agentName))
	}
}

// PlaceBet runs the full wager flow. Self-imposed limits are checked
// against profit relative to the anchor balance before the stake is
// taken; max_bet is deliberately not enforced here, it exists for
// agent self-control only.
func (s *Service) PlaceBet(ctx context.Context, a *store.Agent, in BetInput) (*BetResult, error) {
	unlock := s.locks.Lock(a.ID)
	defer unlock()

	if err := s.limits.Allow(ctx, a.ID, ratelimit.KindBet); err != nil {
		return nil, err
	}
	if err := in.normalize(); err != nil {
		return nil, err
	}
	if _, err := reasoning.Validate(in.Logic); err != nil {
		return nil, ErrInvalidBody
	}

	bal, err := s.store.GetBalance(ctx, a.ID)
	if err != nil {
		return nil, err
	}
	balance := bal.Amount
	cfg, err := s.store.GetAgentConfig(ctx, a.ID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	anchor := balance
	if cfg != nil && cfg.AnchorBalance != nil {
		anchor = *cfg.AnchorBalance
	}
	pnl := balance - anchor
	if cfg != nil && cfg.StopLoss != nil && pnl <= -*cfg.StopLoss {
		ev := store.NewEvent(a.ID, nil, store.EventLimitHit, store.LimitHitPayload{
			Kind: "stop_loss", StopLoss: cfg.StopLoss, AnchorBalance: &anchor, Balance: balance,
		})
		if err := s.store.AppendEvent(ctx, ev); err != nil {
			return nil, err
		}
		s.publish(ev, a.Name)
		return nil, &LimitError{Kind: "stop_loss", Threshold: *cfg.StopLoss, Anchor: anchor, Balance: balance}
	}
	if cfg != nil && cfg.TakeProfit != nil && pnl >= *cfg.TakeProfit {
		ev := store.NewEvent(a.ID, nil, store.EventLimitHit, store.LimitHitPayload{
			Kind: "take_profit", TakeProfit: cfg.TakeProfit, AnchorBalance: &anchor, Balance: balance,
		})
		if err := s.store.AppendEvent(ctx, ev); err != nil {
			return nil, err
		}
		s.publish(ev, a.Name)
		return nil, &LimitError{Kind: "take_profit", Threshold: *cfg.TakeProfit, Anchor: anchor, Balance: balance}
	}
	if balance < in.Stake {
		ev := store.NewEvent(a.ID, nil, store.EventLimitHit, store.LimitHitPayload{
			Kind: "insufficient_funds", Balance: balance,
		})
		if err := s.store.AppendEvent(ctx, ev); err != nil {
			return nil, err
		}
		s.publish(ev, a.Name)
		return nil, &InsufficientFundsError{Balance: balance}
	}

	note, _ := redact.Scrub(in.Note)

	// The agent's client seed is stable and public; unpredictability
	// comes entirely from the committed server seed.
	clientSeed := "agent:" + a.Name

	fs, err := s.store.GetFairState(ctx, a.ID)
	if err != nil {
		return nil, err
	}

	placed := store.BetPlacedPayload{
		Game:          in.Game,
		Stake:         in.Stake,
		Choice:        in.Choice,
		Target:        in.Target,
		Direction:     in.Direction,
		Note:          note,
		Logic:         in.Logic,
		BalanceBefore: balance,
		Balance:       balance - in.Stake,
	}
	if in.Game == games.Coinflip {
		placed.Target, placed.Direction = 0, ""
	} else {
		placed.Choice = ""
	}
	placed.ProvablyFair.ClientSeed = clientSeed
	placed.ProvablyFair.ServerSeedHash = fs.ServerSeedHash
	placed.ProvablyFair.Nonce = fs.Nonce + 1

	placedEv := store.NewEvent(a.ID, nil, store.EventBetPlaced, placed)
	afterStake, err := s.store.Debit(ctx, a.ID, in.Stake, placedEv)
	if err != nil {
		if errors.Is(err, store.ErrInsufficientFunds) {
			return nil, &InsufficientFundsError{Balance: balance}
		}
		return nil, err
	}
	s.publish(placedEv, a.Name)

	draw, err := s.fair.Draw(ctx, a.ID, clientSeed, in.Game)
	if err != nil {
		return nil, err
	}

	var (
		win     bool
		payout  int64
		outcome any
	)
	if in.Game == games.Coinflip {
		res, err := games.SettleCoinflip(draw.Value, in.Choice, in.Stake)
		if err != nil {
			return nil, ErrInvalidBody
		}
		win, payout = res.Win, res.Payout
		outcome = coinflipOutcome{Flip: res.Flip, Choice: res.Choice}
	} else {
		res, err := games.SettleDice(draw.Value, in.Target, in.Direction, in.Stake)
		if err != nil {
			return nil, ErrInvalidBody
		}
		win, payout = res.Win, res.Payout
		outcome = diceOutcome{Roll: res.Roll, Target: res.Target, Direction: res.Direction, Mult: res.Mult}
	}

	outcomeRaw, err := json.Marshal(outcome)
	if err != nil {
		return nil, err
	}
	resolved := store.BetResolvedPayload{
		Game:          in.Game,
		Stake:         in.Stake,
		Win:           win,
		Payout:        payout,
		Outcome:       outcomeRaw,
		BalanceBefore: afterStake,
		Balance:       afterStake + payout,
	}
	resolved.ProvablyFair.Reveal = store.FairReveal{
		ServerSeed:     draw.Reveal.ServerSeed,
		ServerSeedHash: draw.Reveal.ServerSeedHash,
		Nonce:          draw.Reveal.Nonce,
		ClientSeed:     clientSeed,
	}
	resolved.ProvablyFair.NextServerSeedHash = draw.NextCommitHash

	resolvedEv := store.NewEvent(a.ID, nil, store.EventBetResolved, resolved)
	newBal := afterStake
	if payout > 0 {
		newBal, err = s.store.Credit(ctx, a.ID, payout, resolvedEv)
	} else {
		err = s.store.AppendEvent(ctx, resolvedEv)
	}
	if err != nil {
		return nil, err
	}
	s.publish(resolvedEv, a.Name)

	if err := s.armFaucetIfBroke(ctx, a, newBal); err != nil {
		return nil, err
	}

	return &BetResult{Win: win, Payout: payout, Outcome: outcome, Balance: newBal}, nil
}

// armFaucetIfBroke arms the bailout faucet when the agent's total
// wealth across casino and bank hits zero. Arming is once per
// bankruptcy; the cooldown starts now.
func (s *Service) armFaucetIfBroke(ctx context.Context, a *store.Agent, casinoBalance int64) error {
	if casinoBalance != 0 {
		return nil
	}
	bank, err := s.store.GetBankBalance(ctx, a.ID)
	if err != nil {
		return err
	}
	if bank.Amount != 0 {
		return nil
	}
	now := time.Now().UTC()
	availableAt := now.Add(time.Duration(s.cfg.FaucetCooldownMins) * time.Minute)
	brokeEv := store.NewEvent(a.ID, nil, store.EventBroke, store.BrokePayload{AvailableAt: availableAt})
	armed, err := s.store.ArmFaucet(ctx, a.ID, now, availableAt, brokeEv)
	if err != nil {
		return err
	}
	if armed {
		s.publish(brokeEv, a.Name)
	}
	return nil
}
