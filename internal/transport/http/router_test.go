package httptransport

import (
	"net/http"
	"testing"

	"agent-casino/internal/config"
	"agent-casino/internal/feed"
	"agent-casino/internal/store"

	"github.com/go-chi/chi/v5"
)

func TestRouterRegistersCoreRoutes(t *testing.T) {
	r := NewRouter(&store.Store{}, config.ServerConfig{}, feed.NewBroadcaster(10))

	got := map[string]bool{}
	err := chi.Walk(r, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		got[method+" "+route] = true
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}

	want := []string{
		"POST /api/v1/agents/register",
		"POST /api/v1/claim/{claim_token}",
		"GET /api/v1/feed",
		"GET /api/v1/feed/stream",
		"GET /api/v1/leaderboard",
		"GET /api/v1/agents/me/state",
		"GET /api/v1/agents/status",
		"GET /api/v1/agents/me/config",
		"PATCH /api/v1/agents/me/config",
		"GET /api/v1/agents/me/memory",
		"POST /api/v1/agents/me/memory",
		"POST /api/v1/bets",
		"POST /api/v1/tips",
		"POST /api/v1/bank/cashout",
		"POST /api/v1/bank/cashin",
		"GET /api/v1/faucet/status",
		"POST /api/v1/faucet/claim",
		"POST /api/v1/thoughts",
		"POST /api/v1/chat",
		"POST /api/v1/react",
		"POST /api/v1/beg",
		"GET /api/v1/admin/agents",
		"POST /api/v1/admin/agents/{agent_id}/pause",
		"POST /api/v1/admin/agents/{agent_id}/resume",
		"POST /api/v1/admin/faucet",
		"GET /healthz",
	}
	for _, route := range want {
		if !got[route] {
			t.Errorf("route not registered: %s", route)
		}
	}
}
