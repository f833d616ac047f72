package store

import (
	"testing"
	"time"
)

func TestRateEventsCountAndPrune(t *testing.T) {
	st, ctx, cleanup := openStore(t)
	defer cleanup()

	id := mustCreateAgent(t, st, ctx, "wade", 100)
	now := time.Now().UTC()

	for i := 0; i < 3; i++ {
		if err := st.InsertRateEvent(ctx, id, "bet", now.Add(time.Duration(i)*time.Second)); err != nil {
			t.Fatalf("insert rate event: %v", err)
		}
	}
	if err := st.InsertRateEvent(ctx, id, "bet", now.Add(-2*time.Minute)); err != nil {
		t.Fatalf("insert stale event: %v", err)
	}
	if err := st.InsertRateEvent(ctx, id, "chat", now); err != nil {
		t.Fatalf("insert other kind: %v", err)
	}

	n, err := st.CountRateEvents(ctx, id, "bet", now.Add(-time.Minute))
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 3 {
		t.Fatalf("expected 3 in-window bet events, got %d", n)
	}

	oldest, err := st.OldestRateEventSince(ctx, id, "bet", now.Add(-time.Minute))
	if err != nil {
		t.Fatalf("oldest: %v", err)
	}
	if oldest == nil || oldest.Sub(now).Abs() > time.Second {
		t.Fatalf("unexpected oldest timestamp: %v", oldest)
	}

	oldest, err = st.OldestRateEventSince(ctx, id, "tip", now.Add(-time.Minute))
	if err != nil {
		t.Fatalf("oldest empty: %v", err)
	}
	if oldest != nil {
		t.Fatalf("expected nil for empty window, got %v", oldest)
	}

	pruned, err := st.PruneRateEvents(ctx, now.Add(-time.Minute))
	if err != nil {
		t.Fatalf("prune: %v", err)
	}
	if pruned != 1 {
		t.Fatalf("expected 1 pruned row, got %d", pruned)
	}
}
