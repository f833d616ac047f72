package store

import (
	"context"

	"github.com/jackc/pgx/v5"
)

func (s *Store) GetBalance(ctx context.Context, agentID string) (*Balance, error) {
	var b Balance
	b.AgentID = agentID
	err := s.Pool.QueryRow(ctx, `SELECT amount, updated_at FROM balances WHERE agent_id = $1`, agentID).
		Scan(&b.Amount, &b.UpdatedAt)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return &b, nil
}

// GetBankBalance treats a missing row as a zero balance; the row is
// created lazily on the first bank movement.
func (s *Store) GetBankBalance(ctx context.Context, agentID string) (*Balance, error) {
	var b Balance
	b.AgentID = agentID
	err := s.Pool.QueryRow(ctx, `SELECT amount, updated_at FROM bank_balances WHERE agent_id = $1`, agentID).
		Scan(&b.Amount, &b.UpdatedAt)
	if err != nil {
		if mapNotFound(err) == ErrNotFound {
			return &b, nil
		}
		return nil, err
	}
	return &b, nil
}

func lockBalance(ctx context.Context, tx pgx.Tx, table, agentID string) (int64, error) {
	var amount int64
	err := tx.QueryRow(ctx, `SELECT amount FROM `+table+` WHERE agent_id = $1 FOR UPDATE`, agentID).Scan(&amount)
	if err != nil {
		return 0, mapNotFound(err)
	}
	return amount, nil
}

func setBalance(ctx context.Context, tx pgx.Tx, table, agentID string, amount int64) error {
	_, err := tx.Exec(ctx, `UPDATE `+table+` SET amount = $1, updated_at = now() WHERE agent_id = $2`, amount, agentID)
	return err
}

func ensureBankRow(ctx context.Context, tx pgx.Tx, agentID string) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO bank_balances (agent_id, amount, updated_at) VALUES ($1, 0, now())
		ON CONFLICT (agent_id) DO NOTHING`, agentID)
	return err
}

// Debit subtracts amount from the casino balance, failing with
// ErrInsufficientFunds and no visible effect if the result would go
// negative. Any events are appended in the same transaction.
func (s *Store) Debit(ctx context.Context, agentID string, amount int64, events ...Event) (int64, error) {
	var newBal int64
	err := s.withTx(ctx, func(tx pgx.Tx) error {
		bal, err := lockBalance(ctx, tx, "balances", agentID)
		if err != nil {
			return err
		}
		if bal < amount {
			return ErrInsufficientFunds
		}
		newBal = bal - amount
		if err := setBalance(ctx, tx, "balances", agentID, newBal); err != nil {
			return err
		}
		return insertEvents(ctx, tx, events)
	})
	return newBal, err
}

// Credit adds amount to the casino balance. Always succeeds for an
// existing agent.
func (s *Store) Credit(ctx context.Context, agentID string, amount int64, events ...Event) (int64, error) {
	var newBal int64
	err := s.withTx(ctx, func(tx pgx.Tx) error {
		bal, err := lockBalance(ctx, tx, "balances", agentID)
		if err != nil {
			return err
		}
		newBal = bal + amount
		if err := setBalance(ctx, tx, "balances", agentID, newBal); err != nil {
			return err
		}
		return insertEvents(ctx, tx, events)
	})
	return newBal, err
}

type TipTransferParams struct {
	Tip   Tip
	Event Event
}

// TipTransfer atomically moves Amount from one agent's casino balance
// to another's and records the tip plus its feed event. Row locks are
// taken in lexical agent-id order so two agents tipping each other at
// once cannot deadlock.
func (s *Store) TipTransfer(ctx context.Context, p TipTransferParams) (fromBal, toBal int64, err error) {
	from, to := p.Tip.FromAgentID, p.Tip.ToAgentID
	err = s.withTx(ctx, func(tx pgx.Tx) error {
		first, second := from, to
		if second < first {
			first, second = second, first
		}
		firstBal, err := lockBalance(ctx, tx, "balances", first)
		if err != nil {
			return err
		}
		secondBal, err := lockBalance(ctx, tx, "balances", second)
		if err != nil {
			return err
		}
		fromBal, toBal = firstBal, secondBal
		if first != from {
			fromBal, toBal = secondBal, firstBal
		}
		if fromBal < p.Tip.Amount {
			return ErrInsufficientFunds
		}
		fromBal -= p.Tip.Amount
		toBal += p.Tip.Amount
		if err := setBalance(ctx, tx, "balances", from, fromBal); err != nil {
			return err
		}
		if err := setBalance(ctx, tx, "balances", to, toBal); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO tips (id, from_agent_id, to_agent_id, amount, note, created_at)
			VALUES ($1,$2,$3,$4,$5,now())`,
			p.Tip.ID, from, to, p.Tip.Amount, p.Tip.Note); err != nil {
			return err
		}
		return insertEvent(ctx, tx, p.Event)
	})
	if err != nil {
		return 0, 0, err
	}
	return fromBal, toBal, nil
}

type BankMoveParams struct {
	Transfer Transfer
	Event    Event
}

// MoveToBank shifts chips from the casino balance into the bank
// (a "cashout" in player terms). All-or-nothing.
func (s *Store) MoveToBank(ctx context.Context, p BankMoveParams) (casino, bank int64, err error) {
	agentID := p.Transfer.AgentID
	err = s.withTx(ctx, func(tx pgx.Tx) error {
		bal, err := lockBalance(ctx, tx, "balances", agentID)
		if err != nil {
			return err
		}
		if bal < p.Transfer.Amount {
			return ErrInsufficientFunds
		}
		if err := ensureBankRow(ctx, tx, agentID); err != nil {
			return err
		}
		bankBal, err := lockBalance(ctx, tx, "bank_balances", agentID)
		if err != nil {
			return err
		}
		casino = bal - p.Transfer.Amount
		bank = bankBal + p.Transfer.Amount
		if err := setBalance(ctx, tx, "balances", agentID, casino); err != nil {
			return err
		}
		if err := setBalance(ctx, tx, "bank_balances", agentID, bank); err != nil {
			return err
		}
		if err := insertTransfer(ctx, tx, p.Transfer); err != nil {
			return err
		}
		return insertEvent(ctx, tx, p.Event)
	})
	if err != nil {
		return 0, 0, err
	}
	return casino, bank, nil
}

// MoveFromBank shifts chips from the bank back onto the casino floor
// (a "cashin"). Fails with ErrInsufficientBank if the bank lacks funds.
func (s *Store) MoveFromBank(ctx context.Context, p BankMoveParams) (casino, bank int64, err error) {
	agentID := p.Transfer.AgentID
	err = s.withTx(ctx, func(tx pgx.Tx) error {
		bal, err := lockBalance(ctx, tx, "balances", agentID)
		if err != nil {
			return err
		}
		if err := ensureBankRow(ctx, tx, agentID); err != nil {
			return err
		}
		bankBal, err := lockBalance(ctx, tx, "bank_balances", agentID)
		if err != nil {
			return err
		}
		if bankBal < p.Transfer.Amount {
			return ErrInsufficientBank
		}
		casino = bal + p.Transfer.Amount
		bank = bankBal - p.Transfer.Amount
		if err := setBalance(ctx, tx, "bank_balances", agentID, bank); err != nil {
			return err
		}
		if err := setBalance(ctx, tx, "balances", agentID, casino); err != nil {
			return err
		}
		if err := insertTransfer(ctx, tx, p.Transfer); err != nil {
			return err
		}
		return insertEvent(ctx, tx, p.Event)
	})
	if err != nil {
		return 0, 0, err
	}
	return casino, bank, nil
}

func insertTransfer(ctx context.Context, tx pgx.Tx, t Transfer) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO transfers (id, agent_id, direction, amount, note, created_at)
		VALUES ($1,$2,$3,$4,$5,now())`,
		t.ID, t.AgentID, t.Direction, t.Amount, t.Note)
	return err
}
