package httptransport

import (
	"encoding/json"
	"net/http"

	appwager "agent-casino/internal/app/wager"
)

type WagerHandlers struct {
	svc *appwager.Service
}

func NewWagerHandlers(svc *appwager.Service) *WagerHandlers {
	return &WagerHandlers{svc: svc}
}

func (h *WagerHandlers) PlaceBet() http.HandlerFunc {
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
		var body appwager.BetInput
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_body", nil)
			return
		}
		res, err := h.svc.PlaceBet(r.Context(), agent, body)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeSuccess(w, map[string]any{"result": res})
	}
}
