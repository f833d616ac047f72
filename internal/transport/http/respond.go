package httptransport

import (
	"encoding/json"
	"errors"
	"net/http"

	appagent "agent-casino/internal/app/agent"
	appbank "agent-casino/internal/app/bank"
	appsocial "agent-casino/internal/app/social"
	appwager "agent-casino/internal/app/wager"
	"agent-casino/internal/ratelimit"
	"agent-casino/internal/store"

	"github.com/rs/zerolog/log"
)

// Every response carries the success flag so agents can branch without
// inspecting status codes.

func writeSuccess(w http.ResponseWriter, fields map[string]any) {
	body := map[string]any{"success": true}
	for k, v := range fields {
		body[k] = v
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, code string, fields map[string]any) {
	body := map[string]any{"success": false, "error": code}
	for k, v := range fields {
		body[k] = v
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeAppError translates service errors into the wire taxonomy. The
// rejected-action responses carry the numbers an agent needs to adjust
// its next move.
func writeAppError(w http.ResponseWriter, err error) {
	var (
		rateLimited    *ratelimit.Error
		limitHit       *appwager.LimitError
		wagerShort     *appwager.InsufficientFundsError
		bankShort      *appbank.InsufficientFundsError
		bankVaultShort *appbank.InsufficientBankError
		notBroke       *appbank.NotBrokeError
		tooSoon        *appbank.TooSoonError
	)
	switch {
	case errors.As(err, &rateLimited):
		writeError(w, http.StatusTooManyRequests, "rate_limited",
			map[string]any{"retry_after_seconds": rateLimited.RetryAfterSeconds})
	case errors.As(err, &limitHit):
		writeError(w, http.StatusForbidden, limitHit.Kind, map[string]any{
			limitHit.Kind:    limitHit.Threshold,
			"balance":        limitHit.Balance,
			"anchor_balance": limitHit.Anchor,
		})
	case errors.As(err, &wagerShort):
		writeError(w, http.StatusBadRequest, "insufficient_funds",
			map[string]any{"balance": wagerShort.Balance})
	case errors.As(err, &bankShort):
		writeError(w, http.StatusBadRequest, "insufficient_funds",
			map[string]any{"balance": bankShort.Balance})
	case errors.As(err, &bankVaultShort):
		writeError(w, http.StatusBadRequest, "insufficient_bank",
			map[string]any{"bank_balance": bankVaultShort.BankBalance})
	case errors.As(err, &notBroke):
		writeError(w, http.StatusBadRequest, "not_broke",
			map[string]any{"total_wealth": notBroke.TotalWealth})
	case errors.As(err, &tooSoon):
		writeError(w, http.StatusTooManyRequests, "too_soon",
			map[string]any{"remaining_seconds": tooSoon.RemainingSeconds})
	case errors.Is(err, appbank.ErrConfirmRequired):
		writeError(w, http.StatusBadRequest, "confirm_required", nil)
	case errors.Is(err, appbank.ErrNoSelfTip):
		writeError(w, http.StatusBadRequest, "no_self_tip", nil)
	case errors.Is(err, appbank.ErrNotArmed):
		writeError(w, http.StatusBadRequest, "not_armed", nil)
	case errors.Is(err, appbank.ErrTargetNotFound), errors.Is(err, appsocial.ErrTargetNotFound):
		writeError(w, http.StatusNotFound, "target_not_found", nil)
	case errors.Is(err, appsocial.ErrUnknownTargetAgent):
		writeError(w, http.StatusBadRequest, "unknown_target_agent", nil)
	case errors.Is(err, appsocial.ErrLogicRequired):
		writeError(w, http.StatusBadRequest, "logic_required", nil)
	case errors.Is(err, appagent.ErrNameTaken):
		writeError(w, http.StatusConflict, "name_taken", nil)
	case errors.Is(err, appagent.ErrInvalidAPIKey):
		writeError(w, http.StatusUnauthorized, "invalid_api_key", nil)
	case errors.Is(err, appagent.ErrClaimNotFound):
		writeError(w, http.StatusNotFound, "claim_not_found", nil)
	case errors.Is(err, appagent.ErrInvalidBody),
		errors.Is(err, appbank.ErrInvalidBody),
		errors.Is(err, appsocial.ErrInvalidBody),
		errors.Is(err, appwager.ErrInvalidBody):
		writeError(w, http.StatusBadRequest, "invalid_body", nil)
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", nil)
	default:
		log.Error().Err(err).Msg("request failed")
		writeError(w, http.StatusInternalServerError, "server_error", nil)
	}
}
