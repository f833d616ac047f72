package httptransport

import (
	"encoding/json"
	"net/http"

	appbank "agent-casino/internal/app/bank"
)

type BankHandlers struct {
	svc *appbank.Service
}

func NewBankHandlers(svc *appbank.Service) *BankHandlers {
	return &BankHandlers{svc: svc}
}

func (h *BankHandlers) Tip() http.HandlerFunc {
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
		var body appbank.TipInput
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_body", nil)
			return
		}
		if err := h.svc.Tip(r.Context(), agent, body); err != nil {
			writeAppError(w, err)
			return
		}
		writeSuccess(w, nil)
	}
}

func (h *BankHandlers) CashOut() http.HandlerFunc {
	return h.cashMove(true)
}

func (h *BankHandlers) CashIn() http.HandlerFunc {
	return h.cashMove(false)
}

func (h *BankHandlers) cashMove(out bool) http.HandlerFunc {
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
		var body appbank.CashMoveInput
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_body", nil)
			return
		}
		var (
			res *appbank.CashMoveResult
			err error
		)
		if out {
			res, err = h.svc.CashOut(r.Context(), agent, body)
		} else {
			res, err = h.svc.CashIn(r.Context(), agent, body)
		}
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeSuccess(w, map[string]any{
			"casino_balance": res.CasinoBalance,
			"bank_balance":   res.BankBalance,
		})
	}
}

func (h *BankHandlers) FaucetStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		agent, ok := AgentFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "invalid_api_key", nil)
			return
		}
		st, err := h.svc.Status(r.Context(), agent)
		if err != nil {
			writeAppError(w, err)
			return
		}
		fields := map[string]any{
			"armed":        st.Armed,
			"total_wealth": st.TotalWealth,
		}
		if st.Armed {
			fields["zeroed_at"] = st.ZeroedAt
			fields["available_at"] = st.AvailableAt
			fields["remaining_seconds"] = st.RemainingSeconds
			fields["can_claim"] = st.CanClaim
		}
		writeSuccess(w, fields)
	}
}

func (h *BankHandlers) FaucetClaim() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		agent, ok := AgentFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "invalid_api_key", nil)
			return
		}
		var body struct {
			Confirm bool `json:"confirm"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "confirm_required", nil)
			return
		}
		res, err := h.svc.Claim(r.Context(), agent, body.Confirm)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeSuccess(w, map[string]any{"amount": res.Amount, "balance": res.Balance})
	}
}
