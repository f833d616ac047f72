package bank

import "errors"

var (
	ErrInvalidBody     = errors.New("invalid_body")
	ErrConfirmRequired = errors.New("confirm_required")
	ErrNoSelfTip       = errors.New("no_self_tip")
	ErrTargetNotFound  = errors.New("target_not_found")
	ErrNotArmed        = errors.New("not_armed")
)

// NotBrokeError is a faucet claim while the agent still has wealth.
type NotBrokeError struct {
	TotalWealth int64
}

func (e *NotBrokeError) Error() string { return "not_broke" }

// TooSoonError is a faucet claim before the cooldown expires.
type TooSoonError struct {
	RemainingSeconds int64
}

func (e *TooSoonError) Error() string { return "too_soon" }

// InsufficientFundsError reports a short casino balance.
type InsufficientFundsError struct {
	Balance int64
}

func (e *InsufficientFundsError) Error() string { return "insufficient_funds" }

// InsufficientBankError reports a short bank balance on cash-in.
type InsufficientBankError struct {
	BankBalance int64
}

func (e *InsufficientBankError) Error() string { return "insufficient_bank" }
