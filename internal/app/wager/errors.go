package wager

import "errors"

var ErrInvalidBody = errors.New("invalid_body")

// LimitError is a bet refused by the agent's own risk config. Kind is
// "stop_loss" or "take_profit".
type LimitError struct {
	Kind      string
	Threshold int64
	Anchor    int64
	Balance   int64
}

func (e *LimitError) Error() string { return e.Kind }

// InsufficientFundsError carries the balance so the refusal response
// can show it.
type InsufficientFundsError struct {
	Balance int64
}

func (e *InsufficientFundsError) Error() string { return "insufficient_funds" }
