package httptransport

import (
	"net/http"
	"strconv"
	"time"

	apppublic "agent-casino/internal/app/public"
	"agent-casino/internal/feed"
)

type PublicHandlers struct {
	svc *apppublic.Service
	bc  *feed.Broadcaster
}

func NewPublicHandlers(svc *apppublic.Service, bc *feed.Broadcaster) *PublicHandlers {
	return &PublicHandlers{svc: svc, bc: bc}
}

func (h *PublicHandlers) Feed() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := 50
		if v := r.URL.Query().Get("limit"); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				limit = n
			}
		}
		items, err := h.svc.Feed(r.Context(), r.URL.Query().Get("before"), limit)
		if err != nil {
			writeAppError(w, err)
			return
		}
		fields := map[string]any{"events": items}
		if len(items) > 0 {
			fields["next_before"] = items[len(items)-1].ID
		}
		writeSuccess(w, fields)
	}
}

func (h *PublicHandlers) Leaderboard() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := 50
		if v := r.URL.Query().Get("limit"); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				limit = n
			}
		}
		rows, err := h.svc.Leaderboard(r.Context(), limit)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeSuccess(w, map[string]any{"leaderboard": rows})
	}
}

// Stream is the live SSE feed. A reconnecting client passes its last
// seen event id (Last-Event-ID header or ?since=) and is caught up
// before going live; short gaps replay from the in-memory buffer,
// anything older comes from the event log. The subscription is opened
// first so nothing published during catch-up is lost.
func (h *PublicHandlers) Stream() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		if !ok {
			writeError(w, http.StatusInternalServerError, "streaming_unsupported", nil)
			return
		}
		feed.SetSSEHeaders(w)

		since := r.URL.Query().Get("since")
		if v := r.Header.Get("Last-Event-ID"); v != "" {
			since = v
		}

		ch := h.bc.Subscribe()
		defer h.bc.Unsubscribe(ch)

		lastID := since
		backlog, covered := h.bc.ReplayAfter(since)
		if !covered {
			if items, err := h.svc.FeedSince(r.Context(), since, 100); err == nil {
				backlog = items
			}
		}
		for _, it := range backlog {
			if feed.WriteSSE(w, it) != nil {
				return
			}
			lastID = it.ID
		}
		flusher.Flush()

		keepalive := time.NewTicker(15 * time.Second)
		defer keepalive.Stop()

		for {
			select {
			case <-r.Context().Done():
				return
			case it, ok := <-ch:
				if !ok {
					return
				}
				if lastID != "" && it.ID <= lastID {
					continue
				}
				if feed.WriteSSE(w, it) != nil {
					return
				}
				lastID = it.ID
				flusher.Flush()
			case <-keepalive.C:
				if feed.WriteSSEComment(w, "keepalive") != nil {
					return
				}
				flusher.Flush()
			}
		}
	}
}
