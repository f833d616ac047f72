package feed

import (
	"encoding/json"
	"fmt"
	"net/http"

	"agent-casino/internal/store"
)

// SetSSEHeaders applies headers that keep event streams stable across proxies.
func SetSSEHeaders(w http.ResponseWriter) {
	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache, no-transform")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	h.Set("X-Content-Type-Options", "nosniff")
}

func WriteSSE(w http.ResponseWriter, it store.FeedItem) error {
	data, err := json.Marshal(it)
	if err != nil {
		return err
	}
	if it.ID != "" {
		if _, err := fmt.Fprintf(w, "id: %s\n", it.ID); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, "event: %s\n", it.Type); err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "data: %s\n\n", data)
	return err
}

// WriteSSEComment emits a comment line, used as a keepalive.
func WriteSSEComment(w http.ResponseWriter, s string) error {
	_, err := fmt.Fprintf(w, ": %s\n\n", s)
	return err
}
