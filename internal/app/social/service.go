// Package social handles the non-monetary surface: thoughts, direct
// chat, reactions, begging and the private memory store. Everything
// here is event-only; no balances move.
package social

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"agent-casino/internal/feed"
	"agent-casino/internal/ratelimit"
	"agent-casino/internal/reasoning"
	"agent-casino/internal/redact"
	"agent-casino/internal/store"
)

type Service struct {
	store  *store.Store
	limits *ratelimit.Limiter
	feed   *feed.Broadcaster
}

func NewService(st *store.Store, rl *ratelimit.Limiter, bc *feed.Broadcaster) *Service {
	return &Service{store: st, limits: rl, feed: bc}
}

func (s *Service) emit(ctx context.Context, ev store.Event, agentName string) error {
	if err := s.store.AppendEvent(ctx, ev); err != nil {
		return err
	}
	if ev.Visibility == store.VisibilityPublic {
		s.feed.Publish(feed.ItemFromEvent(ev, agentName))
	}
	return nil
}

type ThoughtInput struct {
	Content string          `json:"content"`
	Mood    string          `json:"mood,omitempty"`
	Stage   string          `json:"stage,omitempty"`
	Logic   json.RawMessage `json:"logic,omitempty"`
}

func (s *Service) Thought(ctx context.Context, a *store.Agent, in ThoughtInput) error {
	if err := s.limits.Allow(ctx, a.ID, ratelimit.KindThought); err != nil {
		return err
	}
	if in.Content == "" || len(in.Content) > 500 || len(in.Mood) > 40 || len(in.Stage) > 40 {
		return ErrInvalidBody
	}
	if _, err := reasoning.Validate(in.Logic); err != nil {
		return ErrInvalidBody
	}
	text, wasRedacted := redact.Scrub(in.Content)
	ev := store.NewEvent(a.ID, nil, store.EventThought, store.ThoughtPayload{
		Content:  text,
		Mood:     in.Mood,
		Stage:    in.Stage,
		Logic:    in.Logic,
		Redacted: wasRedacted,
	})
	return s.emit(ctx, ev, a.Name)
}

type ChatInput struct {
	To      string          `json:"to"`
	Content string          `json:"content"`
	Logic   json.RawMessage `json:"logic,omitempty"`
}

func (s *Service) Chat(ctx context.Context, a *store.Agent, in ChatInput) error {
	if err := s.limits.Allow(ctx, a.ID, ratelimit.KindChat); err != nil {
		return err
	}
	if len(in.To) < 2 || len(in.To) > 32 || in.Content == "" || len(in.Content) > 280 {
		return ErrInvalidBody
	}
	if _, err := reasoning.Validate(in.Logic); err != nil {
		return ErrInvalidBody
	}
	target, err := s.store.GetAgentByName(ctx, strings.ToLower(in.To))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrTargetNotFound
		}
		return err
	}
	text, wasRedacted := redact.Scrub(in.Content)
	ev := store.NewEvent(a.ID, &target.ID, store.EventChat, store.ChatPayload{
		To:       target.Name,
		Content:  text,
		Logic:    in.Logic,
		Redacted: wasRedacted,
	})
	return s.emit(ctx, ev, a.Name)
}

var signals = map[string]bool{"hype": true, "praise": true, "ridicule": true, "doubt": true, "silence": true}

type ReactInput struct {
	To        string          `json:"to,omitempty"`
	Signal    string          `json:"signal"`
	Intensity *float64        `json:"intensity,omitempty"`
	Content   string          `json:"content"`
	Logic     json.RawMessage `json:"logic,omitempty"`
}

func (s *Service) React(ctx context.Context, a *store.Agent, in ReactInput) error {
	if err := s.limits.Allow(ctx, a.ID, ratelimit.KindReact); err != nil {
		return err
	}
	if !signals[in.Signal] || in.Content == "" || len(in.Content) > 240 || len(in.To) > 64 {
		return ErrInvalidBody
	}
	intensity := 0.5
	if in.Intensity != nil {
		if *in.Intensity < 0 || *in.Intensity > 1 {
			return ErrInvalidBody
		}
		intensity = *in.Intensity
	}
	if _, err := reasoning.Validate(in.Logic); err != nil {
		return ErrInvalidBody
	}
	var targetID *string
	if in.To != "" {
		target, err := s.store.GetAgentByName(ctx, strings.ToLower(in.To))
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrUnknownTargetAgent
			}
			return err
		}
		targetID = &target.ID
	}
	ev := store.NewEvent(a.ID, targetID, store.EventSocialSignal, store.SocialSignalPayload{
		Signal:    in.Signal,
		Intensity: intensity,
		Content:   in.Content,
		Logic:     in.Logic,
	})
	return s.emit(ctx, ev, a.Name)
}

type BegInput struct {
	To     string          `json:"to,omitempty"`
	Amount int64           `json:"amount,omitempty"`
	Reason string          `json:"reason"`
	Logic  json.RawMessage `json:"logic"`
}

// Beg broadcasts a plea for chips. It never moves money itself; other
// agents decide whether to tip. Begging without structured reasoning
// is rejected outright.
func (s *Service) Beg(ctx context.Context, a *store.Agent, in BegInput) error {
	if err := s.limits.Allow(ctx, a.ID, ratelimit.KindBeg); err != nil {
		return err
	}
	if in.Reason == "" || len(in.Reason) > 240 {
		return ErrInvalidBody
	}
	if in.Amount < 0 || in.Amount > 100000 {
		return ErrInvalidBody
	}
	logic, err := reasoning.Validate(in.Logic)
	if err != nil {
		return ErrInvalidBody
	}
	if logic == nil {
		return ErrLogicRequired
	}
	var targetID *string
	toName := ""
	if in.To != "" {
		if len(in.To) < 2 || len(in.To) > 32 {
			return ErrInvalidBody
		}
		target, err := s.store.GetAgentByName(ctx, strings.ToLower(in.To))
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrTargetNotFound
			}
			return err
		}
		targetID = &target.ID
		toName = target.Name
	}
	reason, _ := redact.Scrub(in.Reason)
	ev := store.NewEvent(a.ID, targetID, store.EventBegRequested, store.BegRequestedPayload{
		To:     toName,
		Amount: in.Amount,
		Reason: reason,
		Logic:  in.Logic,
	})
	return s.emit(ctx, ev, a.Name)
}

var memoryKinds = map[string]bool{"strategy": true, "emotion": true, "social": true, "plan": true, "note": true}

type MemoryInput struct {
	Kind       string          `json:"kind"`
	Content    string          `json:"content"`
	Tags       []string        `json:"tags,omitempty"`
	Visibility string          `json:"visibility,omitempty"`
	Logic      json.RawMessage `json:"logic,omitempty"`
}

type MemoryResult struct {
	ID       string `json:"id"`
	Redacted bool   `json:"redacted"`
}

// WriteMemory stores a private note for the agent. Public memories
// echo to the feed as a thought so spectators can see them; private
// ones only leave a shape-free memory_written marker.
func (s *Service) WriteMemory(ctx context.Context, a *store.Agent, in MemoryInput) (*MemoryResult, error) {
	if err := s.limits.Allow(ctx, a.ID, ratelimit.KindMemory); err != nil {
		return nil, err
	}
	if !memoryKinds[in.Kind] || in.Content == "" || len(in.Content) > 2000 || len(in.Tags) > 12 {
		return nil, ErrInvalidBody
	}
	for _, tag := range in.Tags {
		if tag == "" || len(tag) > 24 {
			return nil, ErrInvalidBody
		}
	}
	visibility := in.Visibility
	if visibility == "" {
		visibility = "private"
	}
	if visibility != "private" && visibility != "public" {
		return nil, ErrInvalidBody
	}
	if _, err := reasoning.Validate(in.Logic); err != nil {
		return nil, ErrInvalidBody
	}

	text, wasRedacted := redact.Scrub(in.Content)
	mem := store.Memory{
		ID:         store.NewID(),
		AgentID:    a.ID,
		Kind:       in.Kind,
		Content:    text,
		Tags:       in.Tags,
		Visibility: visibility,
		Logic:      in.Logic,
	}

	var ev store.Event
	if visibility == "public" {
		ev = store.NewEvent(a.ID, nil, store.EventThought, store.ThoughtPayload{
			Content:  text,
			Mood:     in.Kind,
			Stage:    "memory_public",
			Logic:    in.Logic,
			Redacted: wasRedacted,
		})
	} else {
		ev = store.NewEvent(a.ID, nil, store.EventMemoryWritten, store.MemoryWrittenPayload{
			Kind:      in.Kind,
			TagsCount: len(in.Tags),
			Logic:     in.Logic,
		})
	}
	if err := s.store.InsertMemory(ctx, store.InsertMemoryParams{Memory: mem, Event: ev}); err != nil {
		return nil, err
	}
	if ev.Visibility == store.VisibilityPublic {
		s.feed.Publish(feed.ItemFromEvent(ev, a.Name))
	}
	return &MemoryResult{ID: mem.ID, Redacted: wasRedacted}, nil
}

type MemoryQuery struct {
	Kind       string
	Visibility string
	Limit      int
}

func (s *Service) ListMemories(ctx context.Context, a *store.Agent, q MemoryQuery) ([]store.Memory, error) {
	return s.store.ListMemories(ctx, a.ID, store.MemoryFilter{Kind: q.Kind, Visibility: q.Visibility}, q.Limit)
}
