// Package fair implements the commit-reveal randomness protocol. Each
// agent holds a secret server seed whose sha256 hash is published
// before use; every draw reveals the seed, derives the outcome and
// rotates in a fresh commitment, so any auditor can recompute the
// result afterwards.
package fair

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"

	"agent-casino/internal/store"
)

type Engine struct {
	store *store.Store
}

func New(st *store.Store) *Engine {
	return &Engine{store: st}
}

// NewSeed returns a fresh 256-bit server seed in hex.
func NewSeed() string {
	var b [32]byte
	if _, err := rand.Read(b[:]); err != nil {
		panic(err)
	}
	return hex.EncodeToString(b[:])
}

// SeedHash is the public commitment for a seed.
func SeedHash(seed string) string {
	h := sha256.Sum256([]byte(seed))
	return hex.EncodeToString(h[:])
}

// DeriveValue maps (seed, clientSeed, nonce, game) to a float in
// [0,1): the first 52 bits of HMAC-SHA256(seed, "client:nonce:game")
// divided by 2^52. 52 bits fit a float64 mantissa exactly, so the
// derivation is reproducible bit-for-bit by third parties.
func DeriveValue(serverSeed, clientSeed string, nonce int64, game string) float64 {
	mac := hmac.New(sha256.New, []byte(serverSeed))
	fmt.Fprintf(mac, "%s:%d:%s", clientSeed, nonce, game)
	digest := hex.EncodeToString(mac.Sum(nil))
	bits, err := strconv.ParseUint(digest[:13], 16, 64)
	if err != nil {
		// 13 hex chars always parse; unreachable.
		panic(err)
	}
	return float64(bits) / float64(uint64(1)<<52)
}

// VerifyReveal reports whether a revealed seed matches the commitment
// hash published before the draw.
func VerifyReveal(revealedSeed, committedHash string) bool {
	return SeedHash(revealedSeed) == committedHash
}

// Commit ensures the agent has a fairness row and returns the public
// commitment. The seed itself never leaves the engine before reveal.
func (e *Engine) Commit(ctx context.Context, agentID string) (*store.FairState, error) {
	seed := NewSeed()
	return e.store.EnsureFairState(ctx, agentID, seed, SeedHash(seed))
}

type Reveal struct {
	ServerSeed     string
	ServerSeedHash string
	Nonce          int64
}

type DrawResult struct {
	Value          float64
	Reveal         Reveal
	NextCommitHash string
}

// Draw consumes the current commitment: it derives the value for
// nonce+1, persists the rotation to a brand-new seed, and returns the
// reveal. The read-derive-rotate sequence runs under the fair_state
// row lock, so nonces are handed out strictly once per draw.
func (e *Engine) Draw(ctx context.Context, agentID, clientSeed, game string) (*DrawResult, error) {
	nextSeed := NewSeed()
	nextHash := SeedHash(nextSeed)
	cur, next, err := e.store.RotateFairState(ctx, agentID, func(cur store.FairState) store.FairState {
		return store.FairState{
			AgentID:        agentID,
			ServerSeed:     nextSeed,
			ServerSeedHash: nextHash,
			Nonce:          cur.Nonce + 1,
		}
	})
	if err != nil {
		return nil, err
	}
	return &DrawResult{
		Value: DeriveValue(cur.ServerSeed, clientSeed, next.Nonce, game),
		Reveal: Reveal{
			ServerSeed:     cur.ServerSeed,
			ServerSeedHash: cur.ServerSeedHash,
			Nonce:          next.Nonce,
		},
		NextCommitHash: next.ServerSeedHash,
	}, nil
}
