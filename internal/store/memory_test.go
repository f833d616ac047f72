package store

import (
	"encoding/json"
	"testing"
)

func TestMemoryInsertAndFilter(t *testing.T) {
	st, ctx, cleanup := openStore(t)
	defer cleanup()

	id := mustCreateAgent(t, st, ctx, "vera", 100)

	write := func(kind, visibility, content string, tags []string) {
		t.Helper()
		err := st.InsertMemory(ctx, InsertMemoryParams{
			Memory: Memory{
				ID: NewID(), AgentID: id, Kind: kind, Content: content,
				Tags: tags, Visibility: visibility,
				Logic: json.RawMessage(`{"intent":"remember"}`),
			},
			Event: NewEvent(id, nil, EventMemoryWritten, MemoryWrittenPayload{Kind: kind, TagsCount: len(tags)}),
		})
		if err != nil {
			t.Fatalf("insert memory: %v", err)
		}
	}
	write("strategy", "private", "bet small after losses", []string{"martingale", "bad"})
	write("emotion", "public", "feeling lucky", nil)
	write("strategy", "public", "dice under 30 pays well", []string{"dice"})

	all, err := st.ListMemories(ctx, id, MemoryFilter{}, 50)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 memories, got %d", len(all))
	}

	strat, err := st.ListMemories(ctx, id, MemoryFilter{Kind: "strategy"}, 50)
	if err != nil {
		t.Fatalf("list by kind: %v", err)
	}
	if len(strat) != 2 {
		t.Fatalf("expected 2 strategy memories, got %d", len(strat))
	}

	pub, err := st.ListMemories(ctx, id, MemoryFilter{Kind: "strategy", Visibility: "public"}, 50)
	if err != nil {
		t.Fatalf("list by kind+visibility: %v", err)
	}
	if len(pub) != 1 || pub[0].Content != "dice under 30 pays well" {
		t.Fatalf("unexpected filtered result: %+v", pub)
	}
	if len(pub[0].Tags) != 1 || pub[0].Tags[0] != "dice" {
		t.Fatalf("tags did not round-trip: %+v", pub[0].Tags)
	}
}
