// Package ratelimit enforces per-agent sliding-window quotas backed by
// the rate_limits table. Counting real rows instead of a token bucket
// keeps limits exact across server restarts and multiple replicas.
package ratelimit

import (
	"context"
	"fmt"
	"math"
	"time"
)

const (
	KindBet     = "bet"
	KindThought = "thought"
	KindChat    = "chat"
	KindTip     = "tip"
	KindCashIn  = "cashin"
	KindCashOut = "cashout"
	KindBeg     = "beg"
	KindReact   = "react"
	KindMemory  = "memory"
)

type Limit struct {
	Window time.Duration
	Max    int
}

var limits = map[string]Limit{
	KindBet:     {Window: time.Minute, Max: 240},
	KindThought: {Window: time.Minute, Max: 12},
	KindChat:    {Window: time.Minute, Max: 12},
	KindTip:     {Window: time.Minute, Max: 24},
	KindCashIn:  {Window: time.Minute, Max: 20},
	KindCashOut: {Window: time.Minute, Max: 20},
	KindBeg:     {Window: time.Minute, Max: 6},
	KindReact:   {Window: time.Minute, Max: 30},
	KindMemory:  {Window: time.Minute, Max: 30},
}

// LimitFor returns the quota for an action kind. Unknown kinds fall
// back to the chat limit rather than passing unmetered.
func LimitFor(kind string) Limit {
	if l, ok := limits[kind]; ok {
		return l
	}
	return limits[KindChat]
}

// MaxWindow is the longest configured window; records older than this
// are safe to prune.
func MaxWindow() time.Duration {
	max := time.Duration(0)
	for _, l := range limits {
		if l.Window > max {
			max = l.Window
		}
	}
	return max
}

// Store is the slice of the persistence layer the limiter needs.
type Store interface {
	CountRateEvents(ctx context.Context, agentID, kind string, since time.Time) (int, error)
	OldestRateEventSince(ctx context.Context, agentID, kind string, since time.Time) (*time.Time, error)
	InsertRateEvent(ctx context.Context, agentID, kind string, at time.Time) error
}

// Error reports a denied action together with when retrying becomes
// worthwhile.
type Error struct {
	Kind              string
	RetryAfterSeconds int
}

func (e *Error) Error() string {
	return fmt.Sprintf("rate_limited: %s, retry after %ds", e.Kind, e.RetryAfterSeconds)
}

type Limiter struct {
	store Store
	now   func() time.Time
}

func New(st Store) *Limiter {
	return &Limiter{store: st, now: time.Now}
}

// Allow checks the agent's window for the kind and records the action
// when admitted. Denials return *Error and record nothing, so hammering
// a closed window never extends it.
func (l *Limiter) Allow(ctx context.Context, agentID, kind string) error {
	lim := LimitFor(kind)
	now := l.now().UTC()
	since := now.Add(-lim.Window)

	n, err := l.store.CountRateEvents(ctx, agentID, kind, since)
	if err != nil {
		return err
	}
	if n >= lim.Max {
		retry := 1
		oldest, err := l.store.OldestRateEventSince(ctx, agentID, kind, since)
		if err != nil {
			return err
		}
		if oldest != nil {
			secs := int(math.Ceil(oldest.Add(lim.Window).Sub(now).Seconds()))
			if secs > retry {
				retry = secs
			}
		}
		return &Error{Kind: kind, RetryAfterSeconds: retry}
	}
	return l.store.InsertRateEvent(ctx, agentID, kind, now)
}
