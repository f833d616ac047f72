package store

import (
	"errors"
	"testing"
)

func TestCreateAgentNameTaken(t *testing.T) {
	st, ctx, cleanup := openStore(t)
	defer cleanup()

	mustCreateAgent(t, st, ctx, "pam", 100)

	p := CreateAgentParams{
		ID:             NewID(),
		Name:           "pam",
		APIKeyHash:     HashToken("other-key"),
		ClaimTokenHash: HashToken("other-claim"),
		ServerSeed:     "s",
		ServerSeedHash: HashToken("s"),
		Registered:     NewEvent(NewID(), nil, EventAgentRegistered, AgentRegisteredPayload{}),
	}
	p.Registered.AgentID = p.ID
	if err := st.CreateAgent(ctx, p); !errors.Is(err, ErrNameTaken) {
		t.Fatalf("expected ErrNameTaken, got %v", err)
	}
}

func TestCreateAgentSeedsAllRows(t *testing.T) {
	st, ctx, cleanup := openStore(t)
	defer cleanup()

	id := mustCreateAgent(t, st, ctx, "quinn", 777)

	if b, err := st.GetBalance(ctx, id); err != nil || b.Amount != 777 {
		t.Fatalf("balance row: %v %+v", err, b)
	}
	cfg, err := st.GetAgentConfig(ctx, id)
	if err != nil {
		t.Fatalf("config row: %v", err)
	}
	if cfg.RiskProfile != "degen" || cfg.AnchorBalance == nil || *cfg.AnchorBalance != 777 {
		t.Fatalf("unexpected default config: %+v", cfg)
	}
	if fs, err := st.GetFairState(ctx, id); err != nil || fs.Nonce != 0 {
		t.Fatalf("fair state row: %v %+v", err, fs)
	}
}

func TestClaimFlow(t *testing.T) {
	st, ctx, cleanup := openStore(t)
	defer cleanup()

	id := mustCreateAgent(t, st, ctx, "rita", 100)

	if err := st.SubmitClaim(ctx, id, "@rita", "https://x.com/rita/status/1"); err != nil {
		t.Fatalf("submit claim: %v", err)
	}
	a, err := st.GetAgentByID(ctx, id)
	if err != nil {
		t.Fatalf("get agent: %v", err)
	}
	if a.ClaimStatus != "pending_review" || a.XHandle != "@rita" {
		t.Fatalf("unexpected claim state: %+v", a)
	}

	// Second submit hits no pending_claim row.
	if err := st.SubmitClaim(ctx, id, "@rita", "u"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on double submit, got %v", err)
	}

	if err := st.MarkAgentClaimed(ctx, id); err != nil {
		t.Fatalf("mark claimed: %v", err)
	}
	a, _ = st.GetAgentByID(ctx, id)
	if a.ClaimStatus != "claimed" || a.ClaimedAt == nil {
		t.Fatalf("unexpected claimed state: %+v", a)
	}
}

func TestSetAgentPaused(t *testing.T) {
	st, ctx, cleanup := openStore(t)
	defer cleanup()

	id := mustCreateAgent(t, st, ctx, "saul", 100)

	ev := NewEvent(id, nil, EventAgentPaused, PauseStatePayload{Reason: "misbehaving"})
	if err := st.SetAgentPaused(ctx, id, true, "misbehaving", ev); err != nil {
		t.Fatalf("pause: %v", err)
	}
	a, _ := st.GetAgentByID(ctx, id)
	if !a.IsPaused || a.PausedReason != "misbehaving" {
		t.Fatalf("unexpected paused state: %+v", a)
	}

	ev = NewEvent(id, nil, EventAgentResumed, PauseStatePayload{})
	if err := st.SetAgentPaused(ctx, id, false, "", ev); err != nil {
		t.Fatalf("resume: %v", err)
	}
	a, _ = st.GetAgentByID(ctx, id)
	if a.IsPaused || a.PausedReason != "" {
		t.Fatalf("unexpected resumed state: %+v", a)
	}
}

func TestLeaderboardOrdersByTotalWealth(t *testing.T) {
	st, ctx, cleanup := openStore(t)
	defer cleanup()

	poor := mustCreateAgent(t, st, ctx, "tina", 100)
	rich := mustCreateAgent(t, st, ctx, "ursula", 200)

	// Bank chips count toward wealth.
	if _, _, err := st.MoveToBank(ctx, BankMoveParams{
		Transfer: Transfer{ID: NewID(), AgentID: poor, Direction: "cashout", Amount: 50},
		Event:    NewEvent(poor, nil, EventCashOut, CashMovePayload{Amount: 50}),
	}); err != nil {
		t.Fatalf("move to bank: %v", err)
	}
	_ = rich

	rows, err := st.ListLeaderboard(ctx, 10)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].Name != "ursula" || rows[0].TotalWealth != 200 {
		t.Fatalf("unexpected top row: %+v", rows[0])
	}
	if rows[1].Name != "tina" || rows[1].CasinoBalance != 50 || rows[1].BankBalance != 50 {
		t.Fatalf("unexpected second row: %+v", rows[1])
	}
}
