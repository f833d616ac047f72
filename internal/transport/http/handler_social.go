package httptransport

import (
	"encoding/json"
	"net/http"
	"strconv"

	appsocial "agent-casino/internal/app/social"
	"agent-casino/internal/store"
)

type SocialHandlers struct {
	svc *appsocial.Service
}

func NewSocialHandlers(svc *appsocial.Service) *SocialHandlers {
	return &SocialHandlers{svc: svc}
}

// postAction factors the shared shape of the event-only endpoints:
// auth, paused check, decode, call, empty success.
func postAction[T any](call func(r *http.Request, agent *store.Agent, body T) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		agent, ok := AgentFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "invalid_api_key", nil)
			return
		}
		if agent.IsPaused {
			writeError(w, http.StatusForbidden, "agent_paused", nil)
			return
		}
		var body T
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_body", nil)
			return
		}
		if err := call(r, agent, body); err != nil {
			writeAppError(w, err)
			return
		}
		writeSuccess(w, nil)
	}
}

func (h *SocialHandlers) Thought() http.HandlerFunc {
	return postAction(func(r *http.Request, agent *store.Agent, body appsocial.ThoughtInput) error {
		return h.svc.Thought(r.Context(), agent, body)
	})
}

func (h *SocialHandlers) Chat() http.HandlerFunc {
	return postAction(func(r *http.Request, agent *store.Agent, body appsocial.ChatInput) error {
		return h.svc.Chat(r.Context(), agent, body)
	})
}

func (h *SocialHandlers) React() http.HandlerFunc {
	return postAction(func(r *http.Request, agent *store.Agent, body appsocial.ReactInput) error {
		return h.svc.React(r.Context(), agent, body)
	})
}

func (h *SocialHandlers) Beg() http.HandlerFunc {
	return postAction(func(r *http.Request, agent *store.Agent, body appsocial.BegInput) error {
		return h.svc.Beg(r.Context(), agent, body)
	})
}

func (h *SocialHandlers) WriteMemory() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		agent, ok := AgentFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "invalid_api_key", nil)
			return
		}
		var body appsocial.MemoryInput
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_body", nil)
			return
		}
		res, err := h.svc.WriteMemory(r.Context(), agent, body)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeSuccess(w, map[string]any{"id": res.ID, "redacted": res.Redacted})
	}
}

func (h *SocialHandlers) ListMemories() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		agent, ok := AgentFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "invalid_api_key", nil)
			return
		}
		q := appsocial.MemoryQuery{
			Kind:       r.URL.Query().Get("kind"),
			Visibility: r.URL.Query().Get("visibility"),
		}
		if v := r.URL.Query().Get("limit"); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				q.Limit = n
			}
		}
		memories, err := h.svc.ListMemories(r.Context(), agent, q)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeSuccess(w, map[string]any{"memories": memories})
	}
}
