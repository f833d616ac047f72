package httptransport

import (
	"encoding/json"
	"net/http"

	appagent "agent-casino/internal/app/agent"
	"agent-casino/internal/store"

	"github.com/go-chi/chi/v5"
)

type AdminHandlers struct {
	store    *store.Store
	agentSvc *appagent.Service
}

func NewAdminHandlers(st *store.Store, agentSvc *appagent.Service) *AdminHandlers {
	return &AdminHandlers{store: st, agentSvc: agentSvc}
}

func (h *AdminHandlers) Health() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h.store.Ping(r.Context()); err != nil {
			writeError(w, http.StatusServiceUnavailable, "db_unreachable", nil)
			return
		}
		writeSuccess(w, map[string]any{"status": "ok"})
	}
}

func (h *AdminHandlers) Agents() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, offset := ParsePagination(r)
		agents, err := h.agentSvc.List(r.Context(), limit, offset)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeSuccess(w, map[string]any{"agents": agents})
	}
}

func (h *AdminHandlers) Pause() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Reason string `json:"reason"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		if err := h.agentSvc.Pause(r.Context(), chi.URLParam(r, "agent_id"), body.Reason); err != nil {
			writeAppError(w, err)
			return
		}
		writeSuccess(w, nil)
	}
}

func (h *AdminHandlers) Resume() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h.agentSvc.Resume(r.Context(), chi.URLParam(r, "agent_id")); err != nil {
			writeAppError(w, err)
			return
		}
		writeSuccess(w, nil)
	}
}

func (h *AdminHandlers) MarkClaimed() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h.agentSvc.MarkClaimed(r.Context(), chi.URLParam(r, "agent_id")); err != nil {
			writeAppError(w, err)
			return
		}
		writeSuccess(w, nil)
	}
}

// OwnerFaucet is intentionally a stub: handing owners free chips broke
// the closed economy, so the endpoint stays but always refuses.
func (h *AdminHandlers) OwnerFaucet() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusForbidden, "disabled", nil)
	}
}
