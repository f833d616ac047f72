package httptransport

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	apppublic "agent-casino/internal/app/public"
	"agent-casino/internal/feed"
	"agent-casino/internal/store"
)

// A cursor still inside the broadcaster's buffer is caught up entirely
// in memory; the store is never queried, so a zero store proves the
// replay path is the one serving.
func TestStreamReplaysShortGapsFromBuffer(t *testing.T) {
	bc := feed.NewBroadcaster(10)
	defer bc.Close()
	bc.Publish(store.FeedItem{ID: "01A", Type: "chat_message"})
	bc.Publish(store.FeedItem{ID: "01B", Type: "chat_message"})
	bc.Publish(store.FeedItem{ID: "01C", Type: "chat_message"})

	h := NewPublicHandlers(apppublic.NewService(&store.Store{}), bc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/feed/stream?since=01A", nil)
	ctx, cancel := context.WithCancel(req.Context())
	cancel()
	rec := httptest.NewRecorder()
	h.Stream()(rec, req.WithContext(ctx))

	body := rec.Body.String()
	if strings.Contains(body, "id: 01A") {
		t.Fatalf("already seen item replayed: %s", body)
	}
	if !strings.Contains(body, "id: 01B") || !strings.Contains(body, "id: 01C") {
		t.Fatalf("buffered items missing from catch-up: %s", body)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("Content-Type = %q", ct)
	}
}
