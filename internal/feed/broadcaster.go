// Package feed fans freshly appended events out to live SSE
// subscribers. The database remains the source of truth; the
// broadcaster is only the low-latency path plus a short replay buffer
// for reconnecting clients.
package feed

import (
	"sync"

	"agent-casino/internal/store"
)

// ItemFromEvent projects a persisted event into its public feed shape.
func ItemFromEvent(ev store.Event, agentName string) store.FeedItem {
	return store.FeedItem{
		ID:            ev.ID,
		TS:            ev.CreatedAt,
		Type:          ev.Type,
		Agent:         agentName,
		TargetAgentID: ev.TargetAgentID,
		Payload:       ev.Payload,
	}
}

type Broadcaster struct {
	mu       sync.Mutex
	max      int
	items    []store.FeedItem
	watchers map[chan store.FeedItem]struct{}
	closed   bool
}

func NewBroadcaster(max int) *Broadcaster {
	if max <= 0 {
		max = 500
	}
	return &Broadcaster{
		max:      max,
		watchers: map[chan store.FeedItem]struct{}{},
	}
}

// Publish pushes the item to every watcher. Slow watchers drop items
// rather than block the publisher; they recover via replay on
// reconnect.
func (b *Broadcaster) Publish(it store.FeedItem) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.items = append(b.items, it)
	if len(b.items) > b.max {
		b.items = b.items[len(b.items)-b.max:]
	}
	for ch := range b.watchers {
		select {
		case ch <- it:
		default:
		}
	}
}

// ReplayAfter returns buffered items newer than lastID, plus whether
// the buffer reaches back far enough to cover the gap. When it does
// not, the caller must catch up from the event log instead. Item ids
// are ULIDs, so lexical comparison is chronological.
func (b *Broadcaster) ReplayAfter(lastID string) ([]store.FeedItem, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if lastID == "" || len(b.items) == 0 {
		return nil, false
	}
	if b.items[0].ID > lastID {
		return nil, false
	}
	out := make([]store.FeedItem, 0, len(b.items))
	for _, it := range b.items {
		if it.ID > lastID {
			out = append(out, it)
		}
	}
	return out, true
}

func (b *Broadcaster) Subscribe() chan store.FeedItem {
	ch := make(chan store.FeedItem, 32)
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		close(ch)
		return ch
	}
	b.watchers[ch] = struct{}{}
	return ch
}

func (b *Broadcaster) Unsubscribe(ch chan store.FeedItem) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.watchers[ch]; ok {
		delete(b.watchers, ch)
		close(ch)
	}
}

func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for ch := range b.watchers {
		close(ch)
		delete(b.watchers, ch)
	}
}
