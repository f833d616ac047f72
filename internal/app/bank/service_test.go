package bank

import (
	"context"
	"errors"
	"testing"

	"agent-casino/internal/agentlock"
	"agent-casino/internal/config"
	"agent-casino/internal/fair"
	"agent-casino/internal/feed"
	"agent-casino/internal/ratelimit"
	"agent-casino/internal/store"
	"agent-casino/internal/testutil"
)

func newTestService(st *store.Store, cooldownMins int) *Service {
	cfg := config.ServerConfig{FaucetAmount: 1000, FaucetCooldownMins: cooldownMins}
	return NewService(st, ratelimit.New(st), agentlock.New(), feed.NewBroadcaster(100), cfg)
}

func createAgent(t *testing.T, st *store.Store, ctx context.Context, name string, initial int64) *store.Agent {
	t.Helper()
	id := store.NewID()
	seed := fair.NewSeed()
	err := st.CreateAgent(ctx, store.CreateAgentParams{
		ID:             id,
		Name:           name,
		APIKeyHash:     store.HashToken("key-" + name),
		ClaimTokenHash: store.HashToken("claim-" + name),
		InitialBalance: initial,
		ServerSeed:     seed,
		ServerSeedHash: fair.SeedHash(seed),
		Registered:     store.NewEvent(id, nil, store.EventAgentRegistered, store.AgentRegisteredPayload{}),
	})
	if err != nil {
		t.Fatalf("create agent: %v", err)
	}
	a, err := st.GetAgentByID(ctx, id)
	if err != nil {
		t.Fatalf("get agent: %v", err)
	}
	return a
}

func TestTipMovesChips(t *testing.T) {
	st, ctx, cleanup := testutil.OpenStore(t)
	defer cleanup()
	svc := newTestService(st, 30)

	from := createAgent(t, st, ctx, "generous", 500)
	createAgent(t, st, ctx, "lucky", 100)

	if err := svc.Tip(ctx, from, TipInput{To: "Lucky", Amount: 200, Note: "gg"}); err != nil {
		t.Fatalf("tip: %v", err)
	}

	fb, _ := st.GetBalance(ctx, from.ID)
	if fb.Amount != 300 {
		t.Fatalf("sender should have 300, got %d", fb.Amount)
	}
	target, _ := st.GetAgentByName(ctx, "lucky")
	tb, _ := st.GetBalance(ctx, target.ID)
	if tb.Amount != 300 {
		t.Fatalf("receiver should have 300, got %d", tb.Amount)
	}
}

func TestTipRejectsSelfAndUnknown(t *testing.T) {
	st, ctx, cleanup := testutil.OpenStore(t)
	defer cleanup()
	svc := newTestService(st, 30)

	a := createAgent(t, st, ctx, "loner", 500)

	if err := svc.Tip(ctx, a, TipInput{To: "LONER", Amount: 10}); !errors.Is(err, ErrNoSelfTip) {
		t.Fatalf("expected ErrNoSelfTip, got %v", err)
	}
	if err := svc.Tip(ctx, a, TipInput{To: "nobody", Amount: 10}); !errors.Is(err, ErrTargetNotFound) {
		t.Fatalf("expected ErrTargetNotFound, got %v", err)
	}
}

func TestCashOutThenCashIn(t *testing.T) {
	st, ctx, cleanup := testutil.OpenStore(t)
	defer cleanup()
	svc := newTestService(st, 30)

	a := createAgent(t, st, ctx, "saver", 1000)

	res, err := svc.CashOut(ctx, a, CashMoveInput{Amount: 600})
	if err != nil {
		t.Fatalf("cashout: %v", err)
	}
	if res.CasinoBalance != 400 || res.BankBalance != 600 {
		t.Fatalf("expected 400/600, got %+v", res)
	}

	res, err = svc.CashIn(ctx, a, CashMoveInput{Amount: 100})
	if err != nil {
		t.Fatalf("cashin: %v", err)
	}
	if res.CasinoBalance != 500 || res.BankBalance != 500 {
		t.Fatalf("expected 500/500, got %+v", res)
	}

	_, err = svc.CashIn(ctx, a, CashMoveInput{Amount: 501})
	var bankErr *InsufficientBankError
	if !errors.As(err, &bankErr) {
		t.Fatalf("expected InsufficientBankError, got %v", err)
	}
	if bankErr.BankBalance != 500 {
		t.Fatalf("error must carry bank balance, got %d", bankErr.BankBalance)
	}
}

func TestFaucetStatusArmsOnFirstSight(t *testing.T) {
	st, ctx, cleanup := testutil.OpenStore(t)
	defer cleanup()
	svc := newTestService(st, 30)

	a := createAgent(t, st, ctx, "flat", 0)

	status, err := svc.Status(ctx, a)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if !status.Armed || status.CanClaim {
		t.Fatalf("fresh bankruptcy should be armed but cooling down: %+v", status)
	}
	if status.RemainingSeconds <= 0 {
		t.Fatalf("cooldown should be running: %+v", status)
	}

	// The row persists, so a second look reports the same arming.
	if _, err := st.GetFaucetState(ctx, a.ID); err != nil {
		t.Fatalf("faucet state should exist: %v", err)
	}
}

func TestFaucetStatusSolventAgent(t *testing.T) {
	st, ctx, cleanup := testutil.OpenStore(t)
	defer cleanup()
	svc := newTestService(st, 30)

	a := createAgent(t, st, ctx, "solvent", 50)

	status, err := svc.Status(ctx, a)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if status.Armed || status.TotalWealth != 50 {
		t.Fatalf("solvent agent must not arm the faucet: %+v", status)
	}
}

func TestFaucetClaimLifecycle(t *testing.T) {
	st, ctx, cleanup := testutil.OpenStore(t)
	defer cleanup()
	// Zero cooldown so the claim is immediately available.
	svc := newTestService(st, 0)

	a := createAgent(t, st, ctx, "broke", 0)

	if _, err := svc.Claim(ctx, a, false); !errors.Is(err, ErrConfirmRequired) {
		t.Fatalf("expected ErrConfirmRequired, got %v", err)
	}
	if _, err := svc.Claim(ctx, a, true); !errors.Is(err, ErrNotArmed) {
		t.Fatalf("claim before arming should fail, got %v", err)
	}

	if _, err := svc.Status(ctx, a); err != nil {
		t.Fatalf("status: %v", err)
	}

	res, err := svc.Claim(ctx, a, true)
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
	if res.Amount != 1000 || res.Balance != 1000 {
		t.Fatalf("expected 1000 chip grant, got %+v", res)
	}

	// Solvent again, so a second claim is refused and the armed state
	// is gone until the next bankruptcy.
	_, err = svc.Claim(ctx, a, true)
	var notBroke *NotBrokeError
	if !errors.As(err, &notBroke) {
		t.Fatalf("expected NotBrokeError, got %v", err)
	}
	if notBroke.TotalWealth != 1000 {
		t.Fatalf("error must carry total wealth, got %d", notBroke.TotalWealth)
	}
	if _, err := st.GetFaucetState(ctx, a.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("grant must disarm the faucet, got %v", err)
	}
}

func TestFaucetClaimTooSoon(t *testing.T) {
	st, ctx, cleanup := testutil.OpenStore(t)
	defer cleanup()
	svc := newTestService(st, 30)

	a := createAgent(t, st, ctx, "eager", 0)

	if _, err := svc.Status(ctx, a); err != nil {
		t.Fatalf("status: %v", err)
	}

	_, err := svc.Claim(ctx, a, true)
	var tooSoon *TooSoonError
	if !errors.As(err, &tooSoon) {
		t.Fatalf("expected TooSoonError, got %v", err)
	}
	if tooSoon.RemainingSeconds <= 0 || tooSoon.RemainingSeconds > 30*60 {
		t.Fatalf("unexpected remaining seconds: %d", tooSoon.RemainingSeconds)
	}
}
