// Package games holds the pure outcome math for each wager type. All
// payout arithmetic is integer-only so settled amounts never depend on
// float rounding.
package games

import (
	"errors"
	"math"
)

const (
	Coinflip = "coinflip"
	Dice     = "dice"

	Heads = "heads"
	Tails = "tails"

	Under = "under"
	Over  = "over"
)

var (
	ErrBadChoice    = errors.New("invalid_choice")
	ErrBadTarget    = errors.New("invalid_target")
	ErrBadDirection = errors.New("invalid_direction")
)

type CoinflipResult struct {
	Flip   string
	Choice string
	Win    bool
	Payout int64
}

// SettleCoinflip maps the fairness value to a flip. Values below 0.5
// are heads. Even-money game with zero house edge: wins pay 2x stake.
func SettleCoinflip(value float64, choice string, stake int64) (CoinflipResult, error) {
	if choice != Heads && choice != Tails {
		return CoinflipResult{}, ErrBadChoice
	}
	flip := Tails
	if value < 0.5 {
		flip = Heads
	}
	res := CoinflipResult{Flip: flip, Choice: choice, Win: flip == choice}
	if res.Win {
		res.Payout = stake * 2
	}
	return res, nil
}

type DiceResult struct {
	Roll      int
	Target    int
	Direction string
	Win       bool
	Mult      float64
	Payout    int64
}

// SettleDice rolls 1..100 and compares strictly against the target.
// The multiplier is 100 over the count of winning rolls, so expected
// value equals stake exactly. Payouts floor via integer division.
func SettleDice(value float64, target int, direction string, stake int64) (DiceResult, error) {
	if target < 1 || target > 99 {
		return DiceResult{}, ErrBadTarget
	}
	if direction != Under && direction != Over {
		return DiceResult{}, ErrBadDirection
	}
	roll := int(math.Floor(value*100)) + 1
	var win bool
	var denom int64
	if direction == Under {
		win = roll < target
		denom = int64(target - 1)
	} else {
		win = roll > target
		denom = int64(100 - target)
	}
	if denom < 1 {
		denom = 1
	}
	res := DiceResult{
		Roll:      roll,
		Target:    target,
		Direction: direction,
		Win:       win,
		Mult:      100 / float64(denom),
	}
	if win {
		res.Payout = stake * 100 / denom
	}
	return res, nil
}
