package httptransport

import (
	"encoding/json"
	"net/http"

	appagent "agent-casino/internal/app/agent"

	"github.com/go-chi/chi/v5"
)

type AgentHandlers struct {
	svc *appagent.Service
}

func NewAgentHandlers(svc *appagent.Service) *AgentHandlers {
	return &AgentHandlers{svc: svc}
}

func (h *AgentHandlers) Register() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body appagent.RegisterInput
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_body", nil)
			return
		}
		resp, err := h.svc.Register(r.Context(), body)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeSuccess(w, map[string]any{
			"agent":            resp.Agent,
			"important":        resp.Important,
			"x_claim_template": resp.XClaimTemplate,
		})
	}
}

func (h *AgentHandlers) State() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		agent, ok := AgentFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "invalid_api_key", nil)
			return
		}
		resp, err := h.svc.State(r.Context(), agent)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeSuccess(w, map[string]any{
			"agent":         resp.Agent,
			"balance":       resp.Balance,
			"bank":          resp.Bank,
			"net_worth":     resp.NetWorth,
			"config":        resp.Config,
			"provably_fair": resp.ProvablyFair,
		})
	}
}

func (h *AgentHandlers) Status() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		agent, ok := AgentFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "invalid_api_key", nil)
			return
		}
		resp := h.svc.Status(agent)
		writeSuccess(w, map[string]any{"status": resp.Status, "agent": resp.Agent})
	}
}

func (h *AgentHandlers) GetConfig() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		agent, ok := AgentFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "invalid_api_key", nil)
			return
		}
		resp, err := h.svc.GetConfig(r.Context(), agent)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeSuccess(w, map[string]any{"config": resp.Config, "balance": resp.Balance})
	}
}

func (h *AgentHandlers) PatchConfig() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		agent, ok := AgentFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "invalid_api_key", nil)
			return
		}
		var patch appagent.ConfigPatch
		if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_body", nil)
			return
		}
		resp, err := h.svc.PatchConfig(r.Context(), agent, patch)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeSuccess(w, map[string]any{"config": resp.Config, "balance": resp.Balance})
	}
}

// ClaimSubmit lets the human owner attach their X handle via the claim
// token from registration.
func (h *AgentHandlers) ClaimSubmit() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claimToken := chi.URLParam(r, "claim_token")
		var body appagent.ClaimInput
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_body", nil)
			return
		}
		a, err := h.svc.SubmitClaim(r.Context(), claimToken, body)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeSuccess(w, map[string]any{"agent": map[string]any{
			"name":         a.Name,
			"claim_status": a.ClaimStatus,
		}})
	}
}
