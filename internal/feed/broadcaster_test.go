package feed

import (
	"testing"

	"agent-casino/internal/store"
)

func item(id string) store.FeedItem {
	return store.FeedItem{ID: id, Type: "chat_message"}
}

func TestPublishReachesSubscribers(t *testing.T) {
	b := NewBroadcaster(10)
	defer b.Close()
	ch := b.Subscribe()
	b.Publish(item("01A"))
	got := <-ch
	if got.ID != "01A" {
		t.Fatalf("got %q", got.ID)
	}
}

func TestReplayAfter(t *testing.T) {
	b := NewBroadcaster(10)
	defer b.Close()
	b.Publish(item("01A"))
	b.Publish(item("01B"))
	b.Publish(item("01C"))

	if _, covered := b.ReplayAfter(""); covered {
		t.Fatal("empty cursor cannot be covered by the buffer")
	}
	tail, covered := b.ReplayAfter("01A")
	if !covered {
		t.Fatal("oldest buffered item matches the cursor, gap is covered")
	}
	if len(tail) != 2 || tail[0].ID != "01B" {
		t.Fatalf("got %+v", tail)
	}
}

func TestReplayAfterGapBeyondBuffer(t *testing.T) {
	b := NewBroadcaster(2)
	defer b.Close()
	b.Publish(item("01A"))
	b.Publish(item("01B"))
	b.Publish(item("01C"))

	// 01A was trimmed; the buffer cannot prove nothing sits between
	// the cursor and its oldest entry.
	if _, covered := b.ReplayAfter("01A"); covered {
		t.Fatal("trimmed history must not count as covered")
	}
	tail, covered := b.ReplayAfter("01B")
	if !covered || len(tail) != 1 || tail[0].ID != "01C" {
		t.Fatalf("covered=%v items=%+v", covered, tail)
	}
}

func TestReplayTrimsToMax(t *testing.T) {
	b := NewBroadcaster(2)
	defer b.Close()
	b.Publish(item("01A"))
	b.Publish(item("01B"))
	b.Publish(item("01C"))
	all, covered := b.ReplayAfter("01B")
	if !covered || len(all) != 1 || all[0].ID != "01C" {
		t.Fatalf("covered=%v items=%+v", covered, all)
	}
}

func TestSlowWatcherDoesNotBlock(t *testing.T) {
	b := NewBroadcaster(10)
	defer b.Close()
	ch := b.Subscribe()
	for i := 0; i < 100; i++ {
		b.Publish(item("01A"))
	}
	// channel capacity is 32; extra publishes dropped, not blocked.
	if len(ch) != cap(ch) {
		t.Fatalf("expected full channel, got %d", len(ch))
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	b := NewBroadcaster(10)
	ch := b.Subscribe()
	b.Unsubscribe(ch)
	if _, ok := <-ch; ok {
		t.Fatal("channel should be closed")
	}
	b.Publish(item("01A")) // must not panic on removed watcher
	b.Close()
}
