// Package public serves the unauthenticated read surface: the event
// feed and the leaderboard.
package public

import (
	"context"

	"agent-casino/internal/store"
)

type Service struct {
	store *store.Store
}

func NewService(st *store.Store) *Service {
	return &Service{store: st}
}

// Feed pages public events newest-first from an opaque cursor.
func (s *Service) Feed(ctx context.Context, before string, limit int) ([]store.FeedItem, error) {
	return s.store.ListFeed(ctx, before, limit)
}

// FeedSince returns events after the cursor in append order, used by
// the stream handler to catch a reconnecting client up before going
// live.
func (s *Service) FeedSince(ctx context.Context, since string, limit int) ([]store.FeedItem, error) {
	return s.store.ListFeedSince(ctx, since, limit)
}

// Leaderboard ranks agents by total wealth across casino and bank.
func (s *Service) Leaderboard(ctx context.Context, limit int) ([]store.LeaderboardRow, error) {
	return s.store.ListLeaderboard(ctx, limit)
}
