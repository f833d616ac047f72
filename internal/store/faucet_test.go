package store

import (
	"testing"
	"time"
)

func TestFaucetArmsOncePerBankruptcy(t *testing.T) {
	st, ctx, cleanup := openStore(t)
	defer cleanup()

	id := mustCreateAgent(t, st, ctx, "ned", 0)
	now := time.Now().UTC()
	avail := now.Add(30 * time.Minute)

	armed, err := st.ArmFaucet(ctx, id, now, avail, NewEvent(id, nil, EventBroke, BrokePayload{AvailableAt: avail}))
	if err != nil {
		t.Fatalf("arm: %v", err)
	}
	if !armed {
		t.Fatal("first arm should report armed")
	}

	armed, err = st.ArmFaucet(ctx, id, now, avail, NewEvent(id, nil, EventBroke, BrokePayload{AvailableAt: avail}))
	if err != nil {
		t.Fatalf("re-arm: %v", err)
	}
	if armed {
		t.Fatal("second arm must be a no-op")
	}

	// Only one broke event despite two arm attempts.
	events, err := st.ListAgentEvents(ctx, id, 50)
	if err != nil {
		t.Fatalf("list events: %v", err)
	}
	broke := 0
	for _, ev := range events {
		if ev.Type == EventBroke {
			broke++
		}
	}
	if broke != 1 {
		t.Fatalf("expected 1 broke event, got %d", broke)
	}
}

func TestGrantFaucetCreditsAndStamps(t *testing.T) {
	st, ctx, cleanup := openStore(t)
	defer cleanup()

	id := mustCreateAgent(t, st, ctx, "olga", 0)
	now := time.Now().UTC()
	if _, err := st.ArmFaucet(ctx, id, now, now, NewEvent(id, nil, EventBroke, BrokePayload{})); err != nil {
		t.Fatalf("arm: %v", err)
	}

	bal, err := st.GrantFaucet(ctx, FaucetGrantParams{
		GrantID: NewID(),
		AgentID: id,
		Amount:  1000,
		Granted: NewEvent(id, nil, EventBailoutGranted, BailoutGrantedPayload{Amount: 1000, Balance: 1000}),
	})
	if err != nil {
		t.Fatalf("grant: %v", err)
	}
	if bal != 1000 {
		t.Fatalf("expected balance 1000 after grant, got %d", bal)
	}

	fs, err := st.GetFaucetState(ctx, id)
	if err != nil {
		t.Fatalf("get faucet state: %v", err)
	}
	if fs.LastClaimedAt == nil {
		t.Fatal("grant must stamp last_claimed_at")
	}

	if err := st.DisarmFaucet(ctx, id); err != nil {
		t.Fatalf("disarm: %v", err)
	}
	if _, err := st.GetFaucetState(ctx, id); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound after disarm, got %v", err)
	}
}
